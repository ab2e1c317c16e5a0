// Package metrics provides the per-execution metrics scope and the
// time-windowed aggregator for the mutation engine.
//
// The engine opens a Scope per execution to accumulate phase timings, then
// builds a finalized mutation.Metrics and records it into the Collector
// under the execution id. The collector keeps an in-process sample window
// for Aggregate and Statistics queries, and mirrors every recording into
// Prometheus instruments exposed via Handler.
//
// Percentile semantics: execution times in the window are sorted ascending
// and the index floor(n*q) is selected, clamped to [0, n-1]. For q=0.99
// with n<100 this selects the maximum; that behavior is kept for
// compatibility with existing dashboards.
package metrics
