package policy

import (
	"context"
	"time"

	"mercator-hq/ganymede/pkg/mutation"
)

// Default priorities for common policy classes.
const (
	// PriorityHigh is for security and compliance policies (blocking).
	PriorityHigh = 100

	// PriorityMedium is for modifying and approval policies.
	PriorityMedium = 50

	// PriorityLow is for monitoring and tagging policies.
	PriorityLow = 10

	// PriorityDefault is the default priority when not specified.
	PriorityDefault = PriorityMedium
)

// Policy is a named, prioritized governance rule over mutations of state
// type S. Evaluate must be side-effect free.
type Policy[S any] interface {
	// Name returns the unique policy name.
	Name() string

	// Priority returns the evaluation priority. Higher evaluates first.
	Priority() int

	// Description returns a human-readable summary of the policy.
	Description() string

	// Evaluate produces a decision for the mutation against the state.
	Evaluate(ctx context.Context, m mutation.Mutation[S], state S) *mutation.PolicyDecision
}

// Func is a function-backed Policy implementation.
type Func[S any] struct {
	// PolicyName is the unique policy name.
	PolicyName string

	// PolicyPriority is the evaluation priority. Higher evaluates first.
	PolicyPriority int

	// PolicyDescription is a human-readable summary.
	PolicyDescription string

	// EvaluateFunc produces the decision. A nil func allows everything.
	EvaluateFunc func(ctx context.Context, m mutation.Mutation[S], state S) *mutation.PolicyDecision
}

// Name returns the policy name.
func (f Func[S]) Name() string { return f.PolicyName }

// Priority returns the evaluation priority.
func (f Func[S]) Priority() int { return f.PolicyPriority }

// Description returns the policy description.
func (f Func[S]) Description() string { return f.PolicyDescription }

// Evaluate produces the decision for the mutation against the state.
func (f Func[S]) Evaluate(ctx context.Context, m mutation.Mutation[S], state S) *mutation.PolicyDecision {
	if f.EvaluateFunc == nil {
		return Allow()
	}
	return f.EvaluateFunc(ctx, m, state)
}

// Allow returns an allowing decision.
func Allow() *mutation.PolicyDecision {
	return &mutation.PolicyDecision{
		IsAllowed: true,
		Severity:  mutation.SeverityInfo,
		Timestamp: time.Now(),
	}
}

// Deny returns a denying decision with error severity.
func Deny(reason, policyName string) *mutation.PolicyDecision {
	return &mutation.PolicyDecision{
		IsAllowed:  false,
		Reason:     reason,
		PolicyName: policyName,
		Severity:   mutation.SeverityError,
		Timestamp:  time.Now(),
	}
}

// DenyCritical returns a denying decision with critical severity.
func DenyCritical(reason, policyName string) *mutation.PolicyDecision {
	return &mutation.PolicyDecision{
		IsAllowed:  false,
		Reason:     reason,
		PolicyName: policyName,
		Severity:   mutation.SeverityCritical,
		Timestamp:  time.Now(),
	}
}

// Modify returns an allowing decision carrying result modifications. The
// modification schema is reserved; the engine records but does not interpret
// it.
func Modify(modifications map[string]any, policyName string) *mutation.PolicyDecision {
	return &mutation.PolicyDecision{
		IsAllowed:     true,
		PolicyName:    policyName,
		Severity:      mutation.SeverityInfo,
		Modifications: modifications,
		Timestamp:     time.Now(),
	}
}

// RequireApproval returns a decision that denies until the requirement is
// fulfilled, carrying the requirement for the caller to satisfy.
func RequireApproval(req mutation.Requirement, policyName string) *mutation.PolicyDecision {
	return &mutation.PolicyDecision{
		IsAllowed:    req.IsFulfilled,
		Reason:       req.Description,
		PolicyName:   policyName,
		Severity:     mutation.SeverityWarning,
		Requirements: []mutation.Requirement{req},
		Timestamp:    time.Now(),
	}
}
