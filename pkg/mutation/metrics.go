package mutation

import "time"

// Metrics holds per-execution timing and size measurements. One Metrics
// value is produced per execution and recorded into the metrics collector
// under the execution id.
type Metrics struct {
	// RecordedAt is when the metrics were finalized.
	RecordedAt time.Time `json:"recorded_at"`

	// ExecutionTime is the wall-clock duration of the whole execution.
	ExecutionTime time.Duration `json:"execution_time"`

	// ValidationTime is the duration of the validation phase.
	ValidationTime time.Duration `json:"validation_time"`

	// PolicyEvaluationTime is the duration of the policy phase.
	PolicyEvaluationTime time.Duration `json:"policy_evaluation_time"`

	// ValidatedRules is the number of validation findings examined.
	ValidatedRules int `json:"validated_rules"`

	// EvaluatedPolicies is the number of policies evaluated.
	EvaluatedPolicies int `json:"evaluated_policies"`

	// ChangesCount is the number of changes the mutation produced.
	ChangesCount int `json:"changes_count"`

	// StateSize is the estimated serialized size of the state, if known.
	StateSize int64 `json:"state_size,omitempty"`

	// MemoryUsed is the estimated memory used by the execution, if known.
	MemoryUsed int64 `json:"memory_used,omitempty"`

	// UsedCache reports whether a cached evaluation was used.
	UsedCache bool `json:"used_cache,omitempty"`

	// Additional carries implementation-specific measurements.
	Additional map[string]float64 `json:"additional,omitempty"`
}
