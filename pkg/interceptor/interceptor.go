package interceptor

import (
	"context"

	"mercator-hq/ganymede/pkg/mutation"
)

// BeforeEvent is delivered before policy evaluation.
type BeforeEvent struct {
	// ExecutionID is the engine-generated id for this execution.
	ExecutionID string

	// Intent is the mutation's declarative intent.
	Intent mutation.Intent

	// Context is the mutation's execution context.
	Context mutation.Context

	// State is the input state, untyped.
	State any
}

// AfterEvent is delivered after a successful apply.
type AfterEvent struct {
	ExecutionID string
	Intent      mutation.Intent
	Context     mutation.Context

	// OldState is the state before the transition.
	OldState any

	// NewState is the state after the transition.
	NewState any

	// Changes records the deltas the mutation produced.
	Changes *mutation.ChangeSet
}

// FailedEvent is delivered when an execution fails with an error.
type FailedEvent struct {
	ExecutionID string
	Intent      mutation.Intent
	Context     mutation.Context
	State       any

	// Err is the error that failed the execution.
	Err error
}

// PolicyBlockedEvent is delivered when a policy denies the mutation.
type PolicyBlockedEvent struct {
	ExecutionID string
	Intent      mutation.Intent
	Context     mutation.Context
	State       any

	// Decision is the effective denying decision.
	Decision *mutation.PolicyDecision
}

// Interceptor is a named, ordered observer of mutation lifecycle events.
// Lower order runs first. Hooks must not mutate the state or produce
// observable changes to mutation outcomes.
type Interceptor interface {
	// Name returns the unique interceptor name.
	Name() string

	// Order returns the pipeline position. Lower runs first.
	Order() int

	// ShouldRun reports whether the interceptor participates in the
	// lifecycle events of a mutation with the given intent and context.
	ShouldRun(intent mutation.Intent, mctx mutation.Context) bool

	// OnBefore is invoked before policy evaluation.
	OnBefore(ctx context.Context, ev BeforeEvent) error

	// OnAfter is invoked after a successful apply.
	OnAfter(ctx context.Context, ev AfterEvent) error

	// OnFailed is invoked when the execution fails with an error.
	OnFailed(ctx context.Context, ev FailedEvent) error

	// OnPolicyBlocked is invoked when a policy denies the mutation.
	OnPolicyBlocked(ctx context.Context, ev PolicyBlockedEvent) error
}

// Base provides no-op hook implementations and an always-true ShouldRun.
// Embed it and override the hooks of interest; Name and Order are left to
// the embedder.
type Base struct{}

// ShouldRun always participates.
func (Base) ShouldRun(mutation.Intent, mutation.Context) bool { return true }

// OnBefore is a no-op.
func (Base) OnBefore(context.Context, BeforeEvent) error { return nil }

// OnAfter is a no-op.
func (Base) OnAfter(context.Context, AfterEvent) error { return nil }

// OnFailed is a no-op.
func (Base) OnFailed(context.Context, FailedEvent) error { return nil }

// OnPolicyBlocked is a no-op.
func (Base) OnPolicyBlocked(context.Context, PolicyBlockedEvent) error { return nil }
