// Package config loads and validates the YAML configuration and builds the
// engine's stores from it.
//
// Loading order: YAML file, then defaults for unset fields, then
// GANYMEDE_* environment overrides, then validation. A FileWatcher can hot
// reload the file; reloads that fail validation are skipped and the
// previous configuration stays in effect.
//
// # Basic Usage
//
//	cfg, err := config.LoadConfigWithEnvOverrides("ganymede.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	ledger, err := cfg.BuildAuditLedger()
//	store, err := cfg.BuildHistoryStore()
//	collector := cfg.BuildCollector()
//
//	eng, err := engine.NewWithStores[MyState](cfg.EngineOptions(), ledger, store, collector)
package config
