// Package retention prunes the in-process metrics sample window on a
// schedule. Audit and history records are append-only and are never
// touched by retention.
package retention

import (
	"context"
	"log/slog"
	"time"

	"mercator-hq/ganymede/pkg/telemetry/metrics"
)

// Config contains configuration for the retention pruner.
type Config struct {
	// RetentionPeriod is how long metrics samples are kept.
	// 0 means keep samples forever (no pruning).
	RetentionPeriod time.Duration

	// PruneSchedule is a cron expression for scheduling pruning.
	// Example: "0 3 * * *" (daily at 3 AM)
	PruneSchedule string
}

// DefaultConfig returns the default retention configuration.
func DefaultConfig() *Config {
	return &Config{
		RetentionPeriod: 7 * 24 * time.Hour,
		PruneSchedule:   "0 3 * * *",
	}
}

// Pruner enforces the retention period on the metrics sample window.
type Pruner struct {
	collector *metrics.Collector
	config    *Config
	logger    *slog.Logger
	scheduler *Scheduler
}

// NewPruner creates a retention pruner for the collector.
func NewPruner(collector *metrics.Collector, config *Config) *Pruner {
	if config == nil {
		config = DefaultConfig()
	}

	pruner := &Pruner{
		collector: collector,
		config:    config,
		logger:    slog.Default().With("component", "telemetry.retention"),
	}

	pruner.scheduler = NewScheduler(pruner)

	return pruner
}

// Prune drops samples older than the retention period and returns the
// number removed.
func (p *Pruner) Prune(ctx context.Context) (int, error) {
	if p.config.RetentionPeriod <= 0 {
		p.logger.Debug("retention period not configured, skipping prune")
		return 0, nil
	}

	cutoff := time.Now().Add(-p.config.RetentionPeriod)
	removed := p.collector.Prune(cutoff)

	if removed > 0 {
		p.logger.Info("metrics samples pruned",
			"removed", removed,
			"cutoff", cutoff,
		)
	} else {
		p.logger.Debug("no metrics samples pruned",
			"cutoff", cutoff,
		)
	}

	return removed, nil
}

// Start starts the automatic pruning scheduler.
func (p *Pruner) Start(ctx context.Context) error {
	return p.scheduler.Start(ctx)
}

// Stop stops the automatic pruning scheduler.
func (p *Pruner) Stop() {
	p.scheduler.Stop()
}

// NextPruning returns the time of the next scheduled pruning.
func (p *Pruner) NextPruning() *time.Time {
	return p.scheduler.NextRun()
}
