package mutation

import "time"

// Requirement is a precondition a policy attaches to a decision (e.g., an
// approval that must be collected before the mutation may proceed).
type Requirement struct {
	// Type classifies the requirement (e.g., "approval").
	Type string `json:"type"`

	// Description explains what must be fulfilled.
	Description string `json:"description,omitempty"`

	// Data carries requirement-specific attributes.
	Data map[string]any `json:"data,omitempty"`

	// IsFulfilled reports whether the requirement has been satisfied.
	IsFulfilled bool `json:"is_fulfilled"`
}

// PolicyDecision is the outcome of evaluating a single policy against a
// mutation and a state. Decisions are values; once produced they are never
// mutated.
type PolicyDecision struct {
	// IsAllowed reports whether the policy permits the mutation.
	IsAllowed bool `json:"is_allowed"`

	// Reason explains the decision, if given.
	Reason string `json:"reason,omitempty"`

	// PolicyName is the name of the deciding policy. Empty for the synthetic
	// allow produced when every policy passes.
	PolicyName string `json:"policy_name,omitempty"`

	// Severity grades the decision.
	Severity Severity `json:"severity"`

	// Modifications carries policy-requested result adjustments. The schema
	// is reserved; the engine records but does not interpret it.
	Modifications map[string]any `json:"modifications,omitempty"`

	// Requirements lists preconditions attached to the decision.
	Requirements []Requirement `json:"requirements,omitempty"`

	// Metadata carries additional decision attributes.
	Metadata map[string]any `json:"metadata,omitempty"`

	// Timestamp is when the decision was produced.
	Timestamp time.Time `json:"timestamp"`
}

// HasModifications reports whether the decision carries modifications.
func (d *PolicyDecision) HasModifications() bool {
	return len(d.Modifications) > 0
}

// UnfulfilledRequirements returns the requirements not yet satisfied.
func (d *PolicyDecision) UnfulfilledRequirements() []Requirement {
	var out []Requirement
	for _, r := range d.Requirements {
		if !r.IsFulfilled {
			out = append(out, r)
		}
	}
	return out
}
