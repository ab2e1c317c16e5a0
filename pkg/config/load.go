package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// LoadConfig loads configuration from a YAML file, applies defaults, and
// validates the result. Environment variables are not consulted; use
// LoadConfigWithEnvOverrides for that.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and
// applies environment variable overrides. Variables follow the naming
// convention GANYMEDE_SECTION_FIELD (e.g. GANYMEDE_ENGINE_EXECUTION_TIMEOUT)
// and always take precedence over file values.
//
// The loading sequence is:
//  1. Load YAML from file
//  2. Apply default values
//  3. Apply environment variable overrides
//  4. Validate final configuration
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}

	return cfg, nil
}

// applyEnvOverrides applies GANYMEDE_SECTION_FIELD environment overrides.
func applyEnvOverrides(cfg *Config) {
	// Engine overrides
	if val := os.Getenv("GANYMEDE_ENGINE_ALWAYS_VALIDATE"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Engine.AlwaysValidate = b
		}
	}
	if val := os.Getenv("GANYMEDE_ENGINE_EXECUTION_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Engine.ExecutionTimeout = d
		}
	}
	if val := os.Getenv("GANYMEDE_ENGINE_STOP_BATCH_ON_FIRST_FAILURE"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Engine.StopBatchOnFirstFailure = b
		}
	}

	// Audit overrides
	if val := os.Getenv("GANYMEDE_AUDIT_BACKEND"); val != "" {
		cfg.Audit.Backend = val
	}
	if val := os.Getenv("GANYMEDE_AUDIT_SQLITE_PATH"); val != "" {
		cfg.Audit.SQLite.Path = val
	}

	// History overrides
	if val := os.Getenv("GANYMEDE_HISTORY_BACKEND"); val != "" {
		cfg.History.Backend = val
	}
	if val := os.Getenv("GANYMEDE_HISTORY_SQLITE_PATH"); val != "" {
		cfg.History.SQLite.Path = val
	}

	// Metrics overrides
	if val := os.Getenv("GANYMEDE_METRICS_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Metrics.Enabled = b
		}
	}
	if val := os.Getenv("GANYMEDE_METRICS_NAMESPACE"); val != "" {
		cfg.Metrics.Namespace = val
	}
	if val := os.Getenv("GANYMEDE_METRICS_MAX_SAMPLES"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Metrics.MaxSamples = i
		}
	}

	// Retention overrides
	if val := os.Getenv("GANYMEDE_RETENTION_PERIOD"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Retention.RetentionPeriod = d
		}
	}
	if val := os.Getenv("GANYMEDE_RETENTION_PRUNE_SCHEDULE"); val != "" {
		cfg.Retention.PruneSchedule = val
	}
}
