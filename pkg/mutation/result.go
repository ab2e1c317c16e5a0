package mutation

import "time"

// SideEffect describes an external effect a mutation surfaced during apply.
// The engine collects side effects on the result and persists them into
// history; it does not dispatch them.
type SideEffect struct {
	// Type classifies the effect (e.g., "notify", "invalidate-cache").
	Type string `json:"type"`

	// Description is a human-readable summary of the effect.
	Description string `json:"description,omitempty"`

	// Payload carries effect-specific attributes.
	Payload map[string]any `json:"payload,omitempty"`
}

// Result is the outcome of executing a mutation. Every result carries a
// ChangeSet, even on failure (it may be empty).
type Result[S any] struct {
	// Success reports whether the mutation succeeded.
	Success bool `json:"success"`

	// NewState is the state after the transition. Nil on failure and on
	// validate-only runs that produce no transition.
	NewState *S `json:"new_state,omitempty"`

	// Changes records the state deltas. Never nil.
	Changes *ChangeSet `json:"changes"`

	// Validation holds the validation findings, if validation ran.
	Validation *ValidationResult `json:"validation,omitempty"`

	// PolicyDecisions records the decisions that governed this execution.
	PolicyDecisions []*PolicyDecision `json:"policy_decisions,omitempty"`

	// SideEffects lists external effects surfaced by the mutation.
	SideEffects []SideEffect `json:"side_effects,omitempty"`

	// Metrics holds per-execution timing and size measurements.
	Metrics *Metrics `json:"metrics,omitempty"`

	// Err holds the recovered execution error, if any.
	Err error `json:"-"`

	// CompletedAt is when the result was produced.
	CompletedAt time.Time `json:"completed_at"`
}

// Success returns a successful result carrying the new state and changes.
func Success[S any](newState S, changes *ChangeSet, sideEffects ...SideEffect) *Result[S] {
	if changes == nil {
		changes = NewChangeSet()
	}
	return &Result[S]{
		Success:     true,
		NewState:    &newState,
		Changes:     changes,
		SideEffects: sideEffects,
		CompletedAt: time.Now(),
	}
}

// Failure returns a failed result carrying the validation findings.
func Failure[S any](validation *ValidationResult) *Result[S] {
	return &Result[S]{
		Success:     false,
		Changes:     NewChangeSet(),
		Validation:  validation,
		CompletedAt: time.Now(),
	}
}

// PolicyBlocked returns a failed result carrying the denying decision.
func PolicyBlocked[S any](decision *PolicyDecision) *Result[S] {
	return &Result[S]{
		Success:         false,
		Changes:         NewChangeSet(),
		PolicyDecisions: []*PolicyDecision{decision},
		CompletedAt:     time.Now(),
	}
}

// IsBlocked reports whether the result was denied by a policy.
func (r *Result[S]) IsBlocked() bool {
	for _, d := range r.PolicyDecisions {
		if d != nil && !d.IsAllowed {
			return true
		}
	}
	return false
}

// BlockingDecision returns the first denying decision, if any.
func (r *Result[S]) BlockingDecision() *PolicyDecision {
	for _, d := range r.PolicyDecisions {
		if d != nil && !d.IsAllowed {
			return d
		}
	}
	return nil
}
