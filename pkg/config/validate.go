package config

import (
	"fmt"

	"github.com/robfig/cron/v3"
)

// Validate checks the configuration for consistency. It is called after
// defaults are applied, so zero values that have defaults never reach it.
func Validate(cfg *Config) error {
	if cfg.Engine.ExecutionTimeout < 0 {
		return fmt.Errorf("engine.execution_timeout must not be negative, got %s",
			cfg.Engine.ExecutionTimeout)
	}

	if err := validateStore("audit", &cfg.Audit); err != nil {
		return err
	}
	if err := validateStore("history", &cfg.History); err != nil {
		return err
	}

	if cfg.Metrics.MaxSamples < 0 {
		return fmt.Errorf("metrics.max_samples must not be negative, got %d",
			cfg.Metrics.MaxSamples)
	}

	if cfg.Retention.RetentionPeriod < 0 {
		return fmt.Errorf("retention.retention_period must not be negative, got %s",
			cfg.Retention.RetentionPeriod)
	}
	if cfg.Retention.PruneSchedule != "" {
		if _, err := cron.ParseStandard(cfg.Retention.PruneSchedule); err != nil {
			return fmt.Errorf("retention.prune_schedule is not a valid cron expression: %w", err)
		}
	}

	return nil
}

func validateStore(section string, cfg *StoreConfig) error {
	switch cfg.Backend {
	case BackendMemory:
		return nil
	case BackendSQLite:
		if cfg.SQLite.Path == "" {
			return fmt.Errorf("%s.sqlite.path is required for the sqlite backend", section)
		}
		if cfg.SQLite.MaxOpenConns < 1 {
			return fmt.Errorf("%s.sqlite.max_open_conns must be at least 1, got %d",
				section, cfg.SQLite.MaxOpenConns)
		}
		if cfg.SQLite.MaxIdleConns < 0 {
			return fmt.Errorf("%s.sqlite.max_idle_conns must not be negative, got %d",
				section, cfg.SQLite.MaxIdleConns)
		}
		return nil
	default:
		return fmt.Errorf("%s.backend must be %q or %q, got %q",
			section, BackendMemory, BackendSQLite, cfg.Backend)
	}
}
