package metrics

import (
	"log/slog"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"mercator-hq/ganymede/pkg/mutation"
)

// Outcome labels recorded on the executions counter.
const (
	OutcomeSuccess          = "success"
	OutcomeValidationFailed = "validation_failed"
	OutcomePolicyBlocked    = "policy_blocked"
	OutcomeError            = "error"
)

// Config contains configuration for the metrics collector.
type Config struct {
	// Enabled enables Prometheus instrument registration. The in-process
	// sample window is always maintained.
	Enabled bool

	// Namespace is the Prometheus metric namespace.
	// Default: "ganymede"
	Namespace string

	// Subsystem is the Prometheus metric subsystem.
	// Default: "engine"
	Subsystem string

	// MaxSamples caps the in-process sample window. Oldest samples are
	// dropped first. Zero means unbounded.
	// Default: 100000
	MaxSamples int
}

// DefaultConfig returns the default collector configuration.
func DefaultConfig() *Config {
	return &Config{
		Enabled:    true,
		Namespace:  "ganymede",
		Subsystem:  "engine",
		MaxSamples: 100000,
	}
}

// sample is one finalized execution recording in the aggregation window.
type sample struct {
	executionID   string
	recordedAt    time.Time
	executionTime time.Duration
}

// Collector records finalized per-execution metrics and aggregates them
// over time windows. It also mirrors recordings into Prometheus
// instruments. Safe for concurrent use.
type Collector struct {
	config   *Config
	registry *prometheus.Registry
	logger   *slog.Logger

	mu      sync.RWMutex
	samples []sample

	// Prometheus instruments (nil when disabled)
	executionsTotal    *prometheus.CounterVec
	executionDuration  prometheus.Histogram
	validationDuration prometheus.Histogram
	policyDuration     prometheus.Histogram
	changesPerMutation prometheus.Histogram
	blockedTotal       *prometheus.CounterVec
}

// NewCollector creates a metrics collector. If registry is nil a fresh
// Prometheus registry is used.
func NewCollector(cfg *Config, registry *prometheus.Registry) *Collector {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	c := &Collector{
		config:   cfg,
		registry: registry,
		logger:   slog.Default().With("component", "telemetry.metrics"),
	}

	if cfg.Enabled {
		c.registerInstruments()
	}

	return c
}

// registerInstruments creates and registers the Prometheus instruments.
func (c *Collector) registerInstruments() {
	c.executionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: c.config.Namespace,
			Subsystem: c.config.Subsystem,
			Name:      "executions_total",
			Help:      "Total number of mutation executions by outcome",
		},
		[]string{"outcome"},
	)

	c.executionDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: c.config.Namespace,
			Subsystem: c.config.Subsystem,
			Name:      "execution_duration_seconds",
			Help:      "Wall-clock duration of mutation executions in seconds",
			// Executions span validation, policy evaluation, and apply
			Buckets: prometheus.ExponentialBuckets(0.00001, 2, 18), // 10µs to ~1.3s
		},
	)

	c.validationDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: c.config.Namespace,
			Subsystem: c.config.Subsystem,
			Name:      "validation_duration_seconds",
			Help:      "Duration of the validation phase in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.000001, 2, 15), // 1µs to 16ms
		},
	)

	c.policyDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: c.config.Namespace,
			Subsystem: c.config.Subsystem,
			Name:      "policy_evaluation_duration_seconds",
			Help:      "Duration of the policy evaluation phase in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.000001, 2, 15), // 1µs to 16ms
		},
	)

	c.changesPerMutation = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: c.config.Namespace,
			Subsystem: c.config.Subsystem,
			Name:      "changes_per_mutation",
			Help:      "Number of state changes produced per mutation",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 12), // 1 to 2048
		},
	)

	c.blockedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: c.config.Namespace,
			Subsystem: c.config.Subsystem,
			Name:      "policy_blocked_total",
			Help:      "Total number of mutations blocked, by policy",
		},
		[]string{"policy"},
	)

	c.registry.MustRegister(
		c.executionsTotal,
		c.executionDuration,
		c.validationDuration,
		c.policyDuration,
		c.changesPerMutation,
		c.blockedTotal,
	)
}

// BeginScope opens a per-execution metrics scope and starts its wall clock.
func (c *Collector) BeginScope(executionID string) *Scope {
	return newScope(executionID)
}

// Record associates finalized metrics with an execution id: the sample
// enters the aggregation window and the Prometheus histograms observe it.
func (c *Collector) Record(executionID string, m *mutation.Metrics) {
	if m == nil {
		return
	}

	c.mu.Lock()
	c.samples = append(c.samples, sample{
		executionID:   executionID,
		recordedAt:    m.RecordedAt,
		executionTime: m.ExecutionTime,
	})
	if c.config.MaxSamples > 0 && len(c.samples) > c.config.MaxSamples {
		overflow := len(c.samples) - c.config.MaxSamples
		c.samples = c.samples[overflow:]
	}
	c.mu.Unlock()

	if c.config.Enabled {
		c.executionDuration.Observe(m.ExecutionTime.Seconds())
		c.validationDuration.Observe(m.ValidationTime.Seconds())
		c.policyDuration.Observe(m.PolicyEvaluationTime.Seconds())
		c.changesPerMutation.Observe(float64(m.ChangesCount))
	}
}

// ObserveOutcome increments the executions counter for the outcome label.
func (c *Collector) ObserveOutcome(outcome string) {
	if c.config.Enabled {
		c.executionsTotal.WithLabelValues(outcome).Inc()
	}
}

// ObserveBlocked increments the blocked counter for the denying policy.
func (c *Collector) ObserveBlocked(policyName string) {
	if c.config.Enabled {
		if policyName == "" {
			policyName = "unknown"
		}
		c.blockedTotal.WithLabelValues(policyName).Inc()
	}
}

// Prune drops samples recorded before the cutoff and returns the number
// removed.
func (c *Collector) Prune(olderThan time.Time) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	kept := c.samples[:0]
	removed := 0
	for _, s := range c.samples {
		if s.recordedAt.Before(olderThan) {
			removed++
			continue
		}
		kept = append(kept, s)
	}
	c.samples = kept

	if removed > 0 {
		c.logger.Debug("metrics samples pruned", "removed", removed, "remaining", len(kept))
	}
	return removed
}

// Len returns the number of samples in the aggregation window.
func (c *Collector) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.samples)
}

// Registry returns the Prometheus registry the collector registers into.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}
