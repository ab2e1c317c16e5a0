package retention

import (
	"context"
	"testing"
	"time"

	"mercator-hq/ganymede/pkg/mutation"
	"mercator-hq/ganymede/pkg/telemetry/metrics"
)

func newCollectorWithSamples(ages ...time.Duration) *metrics.Collector {
	c := metrics.NewCollector(&metrics.Config{Enabled: false}, nil)
	now := time.Now()
	for i, age := range ages {
		c.Record("exec", &mutation.Metrics{
			RecordedAt:    now.Add(-age),
			ExecutionTime: time.Duration(i+1) * time.Millisecond,
		})
	}
	return c
}

func TestPrunerRemovesExpiredSamples(t *testing.T) {
	collector := newCollectorWithSamples(48*time.Hour, time.Hour, time.Minute)
	pruner := NewPruner(collector, &Config{RetentionPeriod: 24 * time.Hour})

	removed, err := pruner.Prune(context.Background())
	if err != nil {
		t.Fatalf("Prune failed: %v", err)
	}
	if removed != 1 {
		t.Errorf("expected 1 sample removed, got %d", removed)
	}
	if collector.Len() != 2 {
		t.Errorf("expected 2 samples remaining, got %d", collector.Len())
	}
}

func TestPrunerZeroRetentionKeepsEverything(t *testing.T) {
	collector := newCollectorWithSamples(100 * 24 * time.Hour)
	pruner := NewPruner(collector, &Config{RetentionPeriod: 0})

	removed, err := pruner.Prune(context.Background())
	if err != nil {
		t.Fatalf("Prune failed: %v", err)
	}
	if removed != 0 || collector.Len() != 1 {
		t.Errorf("zero retention must not prune, removed=%d remaining=%d", removed, collector.Len())
	}
}

func TestPrunerDefaults(t *testing.T) {
	pruner := NewPruner(newCollectorWithSamples(), nil)
	if pruner.config.RetentionPeriod != 7*24*time.Hour {
		t.Errorf("unexpected default retention period: %s", pruner.config.RetentionPeriod)
	}
	if pruner.config.PruneSchedule == "" {
		t.Error("expected a default prune schedule")
	}
}

func TestSchedulerRejectsInvalidCron(t *testing.T) {
	pruner := NewPruner(newCollectorWithSamples(), &Config{
		RetentionPeriod: time.Hour,
		PruneSchedule:   "not a cron expression",
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := pruner.Start(ctx); err == nil {
		t.Fatal("expected invalid cron schedule to be rejected")
	}
}

func TestSchedulerEmptyScheduleIsNoOp(t *testing.T) {
	pruner := NewPruner(newCollectorWithSamples(), &Config{
		RetentionPeriod: time.Hour,
		PruneSchedule:   "",
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := pruner.Start(ctx); err != nil {
		t.Fatalf("empty schedule must be a no-op, got %v", err)
	}
	if pruner.scheduler.IsRunning() {
		t.Error("scheduler must not run without a schedule")
	}
	if pruner.NextPruning() != nil {
		t.Error("expected no scheduled pruning")
	}
}

func TestSchedulerStartStop(t *testing.T) {
	pruner := NewPruner(newCollectorWithSamples(time.Minute), &Config{
		RetentionPeriod: time.Hour,
		PruneSchedule:   "0 3 * * *",
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := pruner.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if !pruner.scheduler.IsRunning() {
		t.Error("expected scheduler running")
	}
	if pruner.NextPruning() == nil {
		t.Error("expected a next pruning time")
	}

	pruner.Stop()
	if pruner.scheduler.IsRunning() {
		t.Error("expected scheduler stopped")
	}
}
