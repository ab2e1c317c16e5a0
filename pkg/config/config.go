package config

import (
	"time"

	"mercator-hq/ganymede/pkg/audit"
	"mercator-hq/ganymede/pkg/engine"
	"mercator-hq/ganymede/pkg/history"
	"mercator-hq/ganymede/pkg/telemetry/metrics"
	"mercator-hq/ganymede/pkg/telemetry/retention"
)

// Backend names accepted by the store sections.
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
)

// Config is the root configuration.
type Config struct {
	Engine    EngineConfig    `yaml:"engine"`
	Audit     StoreConfig     `yaml:"audit"`
	History   StoreConfig     `yaml:"history"`
	Metrics   MetricsConfig   `yaml:"metrics"`
	Retention RetentionConfig `yaml:"retention"`
}

// EngineConfig mirrors the engine execution options.
type EngineConfig struct {
	// AlwaysValidate runs validation even when the mode is not commit.
	AlwaysValidate bool `yaml:"always_validate"`

	// ExecutionTimeout bounds the apply phase. Zero means unbounded.
	ExecutionTimeout time.Duration `yaml:"execution_timeout"`

	// StopBatchOnFirstFailure stops a batch at the first failed result.
	StopBatchOnFirstFailure bool `yaml:"stop_batch_on_first_failure"`
}

// StoreConfig selects and configures a storage backend.
type StoreConfig struct {
	// Backend is "memory" or "sqlite".
	Backend string `yaml:"backend"`

	// SQLite configures the sqlite backend. Ignored for memory.
	SQLite SQLiteConfig `yaml:"sqlite"`
}

// SQLiteConfig contains SQLite backend settings.
type SQLiteConfig struct {
	Path         string        `yaml:"path"`
	MaxOpenConns int           `yaml:"max_open_conns"`
	MaxIdleConns int           `yaml:"max_idle_conns"`
	BusyTimeout  time.Duration `yaml:"busy_timeout"`
	WALMode      bool          `yaml:"wal_mode"`
}

// MetricsConfig configures the metrics collector.
type MetricsConfig struct {
	Enabled    bool   `yaml:"enabled"`
	Namespace  string `yaml:"namespace"`
	Subsystem  string `yaml:"subsystem"`
	MaxSamples int    `yaml:"max_samples"`
}

// RetentionConfig configures scheduled pruning of the metrics sample
// window.
type RetentionConfig struct {
	// RetentionPeriod is how long samples are kept. Zero disables pruning.
	RetentionPeriod time.Duration `yaml:"retention_period"`

	// PruneSchedule is a cron expression. Empty disables the scheduler.
	PruneSchedule string `yaml:"prune_schedule"`
}

// EngineOptions converts the engine section into engine options.
func (c *Config) EngineOptions() *engine.Options {
	return &engine.Options{
		AlwaysValidate:          c.Engine.AlwaysValidate,
		ExecutionTimeout:        c.Engine.ExecutionTimeout,
		StopBatchOnFirstFailure: c.Engine.StopBatchOnFirstFailure,
	}
}

// BuildAuditLedger constructs the configured audit ledger.
func (c *Config) BuildAuditLedger() (audit.Ledger, error) {
	if c.Audit.Backend == BackendSQLite {
		return audit.NewSQLiteLedger(&audit.SQLiteConfig{
			Path:         c.Audit.SQLite.Path,
			MaxOpenConns: c.Audit.SQLite.MaxOpenConns,
			MaxIdleConns: c.Audit.SQLite.MaxIdleConns,
			WALMode:      c.Audit.SQLite.WALMode,
			BusyTimeout:  c.Audit.SQLite.BusyTimeout,
		})
	}
	return audit.NewMemoryLedger(), nil
}

// BuildHistoryStore constructs the configured history store.
func (c *Config) BuildHistoryStore() (history.Store, error) {
	if c.History.Backend == BackendSQLite {
		return history.NewSQLiteStore(&history.SQLiteConfig{
			Path:         c.History.SQLite.Path,
			MaxOpenConns: c.History.SQLite.MaxOpenConns,
			MaxIdleConns: c.History.SQLite.MaxIdleConns,
			BusyTimeout:  c.History.SQLite.BusyTimeout,
		})
	}
	return history.NewMemoryStore(), nil
}

// BuildCollector constructs the configured metrics collector.
func (c *Config) BuildCollector() *metrics.Collector {
	return metrics.NewCollector(&metrics.Config{
		Enabled:    c.Metrics.Enabled,
		Namespace:  c.Metrics.Namespace,
		Subsystem:  c.Metrics.Subsystem,
		MaxSamples: c.Metrics.MaxSamples,
	}, nil)
}

// BuildPruner constructs the retention pruner for the collector.
func (c *Config) BuildPruner(collector *metrics.Collector) *retention.Pruner {
	return retention.NewPruner(collector, &retention.Config{
		RetentionPeriod: c.Retention.RetentionPeriod,
		PruneSchedule:   c.Retention.PruneSchedule,
	})
}
