package metrics

import (
	"sort"
	"time"
)

// Aggregated summarizes the execution-time samples recorded within a time
// window.
type Aggregated struct {
	// From and To are the inclusive window bounds the aggregation covered.
	From time.Time `json:"from"`
	To   time.Time `json:"to"`

	// Total is the number of samples in the window.
	Total int `json:"total"`

	// Execution-time summary over the window.
	Average time.Duration `json:"average"`
	Min     time.Duration `json:"min"`
	Max     time.Duration `json:"max"`
	P50     time.Duration `json:"p50"`
	P95     time.Duration `json:"p95"`
	P99     time.Duration `json:"p99"`

	// ThroughputPerSecond is Total divided by the window span.
	ThroughputPerSecond float64 `json:"throughput_per_second"`
}

// Aggregate summarizes the samples recorded within [from, to] inclusive.
// An empty window yields a zero summary with the bounds echoed back.
func (c *Collector) Aggregate(from, to time.Time) *Aggregated {
	c.mu.RLock()
	var durations []time.Duration
	for _, s := range c.samples {
		if s.recordedAt.Before(from) || s.recordedAt.After(to) {
			continue
		}
		durations = append(durations, s.executionTime)
	}
	c.mu.RUnlock()

	agg := &Aggregated{From: from, To: to, Total: len(durations)}
	if len(durations) == 0 {
		return agg
	}

	sort.Slice(durations, func(i, j int) bool { return durations[i] < durations[j] })

	var sum time.Duration
	for _, d := range durations {
		sum += d
	}

	agg.Average = sum / time.Duration(len(durations))
	agg.Min = durations[0]
	agg.Max = durations[len(durations)-1]
	agg.P50 = percentile(durations, 0.50)
	agg.P95 = percentile(durations, 0.95)
	agg.P99 = percentile(durations, 0.99)

	span := to.Sub(from).Seconds()
	if span <= 0 {
		span = 1e-9
	}
	agg.ThroughputPerSecond = float64(len(durations)) / span

	return agg
}

// Statistics aggregates over the whole retained window, bounded by the
// oldest and newest recorded samples.
func (c *Collector) Statistics() *Aggregated {
	c.mu.RLock()
	if len(c.samples) == 0 {
		c.mu.RUnlock()
		return &Aggregated{}
	}
	from := c.samples[0].recordedAt
	to := c.samples[0].recordedAt
	for _, s := range c.samples[1:] {
		if s.recordedAt.Before(from) {
			from = s.recordedAt
		}
		if s.recordedAt.After(to) {
			to = s.recordedAt
		}
	}
	c.mu.RUnlock()

	return c.Aggregate(from, to)
}

// percentile selects index floor(n*q) from sorted durations, clamped to
// the valid range.
func percentile(sorted []time.Duration, q float64) time.Duration {
	idx := int(float64(len(sorted)) * q)
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	if idx < 0 {
		idx = 0
	}
	return sorted[idx]
}
