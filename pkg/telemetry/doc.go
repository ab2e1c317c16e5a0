// Package telemetry provides observability for Ganymede.
//
// # Overview
//
// The telemetry package implements structured logging, per-execution and
// Prometheus metrics, and scheduled retention for the metrics sample window.
//
// # Components
//
//   - logging: process-wide slog configuration and context helpers
//   - metrics: per-execution scopes, windowed aggregation, Prometheus export
//   - retention: cron-scheduled pruning of the metrics sample window
//
// # Usage
//
//	// Configure logging once at startup
//	logging.Setup(&logging.Config{Level: "info", Format: logging.FormatJSON})
//
//	// Collect execution metrics
//	collector := metrics.NewCollector(metrics.DefaultConfig(), nil)
//	http.Handle("/metrics", collector.Handler())
//
//	// Prune old samples on a schedule
//	pruner := retention.NewPruner(collector, nil)
//	pruner.Start(ctx)
//
// The audit ledger and mutation history are append-only records and are
// never pruned; retention applies to metrics samples only.
package telemetry
