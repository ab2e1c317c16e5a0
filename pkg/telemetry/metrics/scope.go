package metrics

import (
	"sync"
	"time"

	"mercator-hq/ganymede/pkg/mutation"
)

// Scope accumulates per-execution measurements. The engine opens one scope
// per execution; Build stops the wall clock and produces the finalized
// mutation.Metrics.
type Scope struct {
	executionID string
	startedAt   time.Time

	mu                   sync.Mutex
	validationTime       time.Duration
	policyEvaluationTime time.Duration
	validatedRules       int
	evaluatedPolicies    int
	changesCount         int
	stateSize            int64
	memoryUsed           int64
	usedCache            bool
	additional           map[string]float64
}

// newScope starts a scope with the wall clock running.
func newScope(executionID string) *Scope {
	return &Scope{
		executionID: executionID,
		startedAt:   time.Now(),
	}
}

// ExecutionID returns the execution id the scope is bound to.
func (s *Scope) ExecutionID() string { return s.executionID }

// StartedAt returns when the scope's wall clock started.
func (s *Scope) StartedAt() time.Time { return s.startedAt }

// SetValidationTime records the validation phase duration.
func (s *Scope) SetValidationTime(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.validationTime = d
}

// SetPolicyEvaluationTime records the policy phase duration.
func (s *Scope) SetPolicyEvaluationTime(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.policyEvaluationTime = d
}

// SetValidatedRules records the number of validation findings examined.
func (s *Scope) SetValidatedRules(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.validatedRules = n
}

// SetEvaluatedPolicies records the number of policies evaluated.
func (s *Scope) SetEvaluatedPolicies(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.evaluatedPolicies = n
}

// SetChangesCount records the number of changes produced.
func (s *Scope) SetChangesCount(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.changesCount = n
}

// SetStateSize records the estimated serialized state size.
func (s *Scope) SetStateSize(size int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stateSize = size
}

// SetMemoryUsed records the estimated memory used by the execution.
func (s *Scope) SetMemoryUsed(bytes int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.memoryUsed = bytes
}

// MarkCacheUsed marks the execution as having used a cached evaluation.
func (s *Scope) MarkCacheUsed() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.usedCache = true
}

// AddMetric records an implementation-specific measurement.
func (s *Scope) AddMetric(name string, value float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.additional == nil {
		s.additional = make(map[string]float64)
	}
	s.additional[name] = value
}

// Build stops the wall clock and produces the finalized metrics.
func (s *Scope) Build() *mutation.Metrics {
	s.mu.Lock()
	defer s.mu.Unlock()

	var additional map[string]float64
	if len(s.additional) > 0 {
		additional = make(map[string]float64, len(s.additional))
		for k, v := range s.additional {
			additional[k] = v
		}
	}

	return &mutation.Metrics{
		RecordedAt:           time.Now(),
		ExecutionTime:        time.Since(s.startedAt),
		ValidationTime:       s.validationTime,
		PolicyEvaluationTime: s.policyEvaluationTime,
		ValidatedRules:       s.validatedRules,
		EvaluatedPolicies:    s.evaluatedPolicies,
		ChangesCount:         s.changesCount,
		StateSize:            s.stateSize,
		MemoryUsed:           s.memoryUsed,
		UsedCache:            s.usedCache,
		Additional:           additional,
	}
}
