package config

import "time"

// ApplyDefaults fills in default values for fields that were not set.
func ApplyDefaults(cfg *Config) {
	if cfg.Audit.Backend == "" {
		cfg.Audit.Backend = BackendMemory
	}
	applySQLiteDefaults(&cfg.Audit.SQLite, "data/audit.db")

	if cfg.History.Backend == "" {
		cfg.History.Backend = BackendMemory
	}
	applySQLiteDefaults(&cfg.History.SQLite, "data/history.db")

	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = "ganymede"
	}
	if cfg.Metrics.Subsystem == "" {
		cfg.Metrics.Subsystem = "engine"
	}
	if cfg.Metrics.MaxSamples == 0 {
		cfg.Metrics.MaxSamples = 100000
	}

	if cfg.Retention.RetentionPeriod == 0 {
		cfg.Retention.RetentionPeriod = 7 * 24 * time.Hour
	}
	if cfg.Retention.PruneSchedule == "" {
		cfg.Retention.PruneSchedule = "0 3 * * *"
	}
}

func applySQLiteDefaults(cfg *SQLiteConfig, defaultPath string) {
	if cfg.Path == "" {
		cfg.Path = defaultPath
	}
	if cfg.MaxOpenConns == 0 {
		cfg.MaxOpenConns = 10
	}
	if cfg.MaxIdleConns == 0 {
		cfg.MaxIdleConns = 5
	}
	if cfg.BusyTimeout == 0 {
		cfg.BusyTimeout = 5 * time.Second
	}
}
