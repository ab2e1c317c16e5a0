package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ganymede.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfigFile(t, `
engine:
  always_validate: true
  execution_timeout: 250ms
audit:
  backend: sqlite
  sqlite:
    path: /tmp/audit.db
metrics:
  enabled: true
  max_samples: 500
retention:
  retention_period: 48h
  prune_schedule: "30 2 * * *"
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if !cfg.Engine.AlwaysValidate {
		t.Error("always_validate not loaded")
	}
	if cfg.Engine.ExecutionTimeout != 250*time.Millisecond {
		t.Errorf("unexpected execution timeout: %s", cfg.Engine.ExecutionTimeout)
	}
	if cfg.Audit.Backend != BackendSQLite || cfg.Audit.SQLite.Path != "/tmp/audit.db" {
		t.Errorf("audit section not loaded: %+v", cfg.Audit)
	}
	// Unset sections fall back to defaults.
	if cfg.History.Backend != BackendMemory {
		t.Errorf("expected history to default to memory, got %q", cfg.History.Backend)
	}
	if cfg.Metrics.Namespace != "ganymede" || cfg.Metrics.MaxSamples != 500 {
		t.Errorf("metrics section not merged with defaults: %+v", cfg.Metrics)
	}
	if cfg.Retention.RetentionPeriod != 48*time.Hour {
		t.Errorf("unexpected retention period: %s", cfg.Retention.RetentionPeriod)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadConfigInvalidYAML(t *testing.T) {
	path := writeConfigFile(t, "engine: [not a mapping")
	if _, err := LoadConfig(path); err == nil {
		t.Fatal("expected error for malformed YAML")
	}
}

func TestApplyDefaults(t *testing.T) {
	var cfg Config
	ApplyDefaults(&cfg)

	if cfg.Audit.Backend != BackendMemory || cfg.History.Backend != BackendMemory {
		t.Errorf("expected memory backends by default: %q/%q", cfg.Audit.Backend, cfg.History.Backend)
	}
	if cfg.Audit.SQLite.Path == "" || cfg.Audit.SQLite.MaxOpenConns < 1 {
		t.Errorf("sqlite defaults not applied: %+v", cfg.Audit.SQLite)
	}
	if cfg.Metrics.Namespace != "ganymede" || cfg.Metrics.Subsystem != "engine" {
		t.Errorf("metrics defaults not applied: %+v", cfg.Metrics)
	}
	if cfg.Metrics.MaxSamples != 100000 {
		t.Errorf("unexpected default sample cap: %d", cfg.Metrics.MaxSamples)
	}
	if cfg.Retention.RetentionPeriod != 7*24*time.Hour || cfg.Retention.PruneSchedule == "" {
		t.Errorf("retention defaults not applied: %+v", cfg.Retention)
	}
}

func TestEnvOverrides(t *testing.T) {
	path := writeConfigFile(t, `
engine:
  execution_timeout: 1s
history:
  backend: memory
`)

	t.Setenv("GANYMEDE_ENGINE_EXECUTION_TIMEOUT", "5s")
	t.Setenv("GANYMEDE_ENGINE_ALWAYS_VALIDATE", "true")
	t.Setenv("GANYMEDE_HISTORY_BACKEND", "sqlite")
	t.Setenv("GANYMEDE_HISTORY_SQLITE_PATH", "/tmp/override.db")
	t.Setenv("GANYMEDE_METRICS_MAX_SAMPLES", "42")

	cfg, err := LoadConfigWithEnvOverrides(path)
	if err != nil {
		t.Fatalf("LoadConfigWithEnvOverrides failed: %v", err)
	}

	if cfg.Engine.ExecutionTimeout != 5*time.Second {
		t.Errorf("env override must win over file value, got %s", cfg.Engine.ExecutionTimeout)
	}
	if !cfg.Engine.AlwaysValidate {
		t.Error("boolean env override not applied")
	}
	if cfg.History.Backend != BackendSQLite || cfg.History.SQLite.Path != "/tmp/override.db" {
		t.Errorf("history overrides not applied: %+v", cfg.History)
	}
	if cfg.Metrics.MaxSamples != 42 {
		t.Errorf("integer env override not applied: %d", cfg.Metrics.MaxSamples)
	}
}

func TestEnvOverridesRevalidate(t *testing.T) {
	path := writeConfigFile(t, "")

	t.Setenv("GANYMEDE_AUDIT_BACKEND", "postgres")

	if _, err := LoadConfigWithEnvOverrides(path); err == nil {
		t.Fatal("expected validation failure for unknown backend from env")
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		var cfg Config
		ApplyDefaults(&cfg)
		return &cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults are valid", func(c *Config) {}, false},
		{"negative execution timeout", func(c *Config) { c.Engine.ExecutionTimeout = -time.Second }, true},
		{"unknown backend", func(c *Config) { c.Audit.Backend = "postgres" }, true},
		{"sqlite without path", func(c *Config) {
			c.History.Backend = BackendSQLite
			c.History.SQLite.Path = ""
		}, true},
		{"sqlite zero open conns", func(c *Config) {
			c.Audit.Backend = BackendSQLite
			c.Audit.SQLite.MaxOpenConns = 0
		}, true},
		{"negative idle conns", func(c *Config) {
			c.Audit.Backend = BackendSQLite
			c.Audit.SQLite.MaxIdleConns = -1
		}, true},
		{"negative max samples", func(c *Config) { c.Metrics.MaxSamples = -1 }, true},
		{"negative retention period", func(c *Config) { c.Retention.RetentionPeriod = -time.Hour }, true},
		{"bad cron expression", func(c *Config) { c.Retention.PruneSchedule = "every day at noon" }, true},
		{"empty schedule allowed", func(c *Config) { c.Retention.PruneSchedule = "" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := Validate(cfg)
			if tt.wantErr && err == nil {
				t.Error("expected validation error")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected validation error: %v", err)
			}
		})
	}
}

func TestBuildStores(t *testing.T) {
	dir := t.TempDir()

	var cfg Config
	ApplyDefaults(&cfg)
	cfg.Audit.Backend = BackendSQLite
	cfg.Audit.SQLite.Path = filepath.Join(dir, "audit.db")
	cfg.History.Backend = BackendSQLite
	cfg.History.SQLite.Path = filepath.Join(dir, "history.db")

	ledger, err := cfg.BuildAuditLedger()
	if err != nil {
		t.Fatalf("BuildAuditLedger failed: %v", err)
	}
	if ledger == nil {
		t.Fatal("expected a ledger")
	}

	store, err := cfg.BuildHistoryStore()
	if err != nil {
		t.Fatalf("BuildHistoryStore failed: %v", err)
	}
	if store == nil {
		t.Fatal("expected a history store")
	}

	collector := cfg.BuildCollector()
	if collector == nil {
		t.Fatal("expected a collector")
	}
	if pruner := cfg.BuildPruner(collector); pruner == nil {
		t.Fatal("expected a pruner")
	}
}
