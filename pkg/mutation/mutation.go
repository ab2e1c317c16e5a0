package mutation

import (
	"time"
)

// Mode determines how a mutation is executed.
type Mode string

const (
	// ModeSimulate performs a dry run: Apply semantics with no persistence.
	ModeSimulate Mode = "simulate"

	// ModeValidate runs validation only; no state transition is produced.
	ModeValidate Mode = "validate"

	// ModeCommit applies the mutation and persists it to history.
	ModeCommit Mode = "commit"
)

// ActorType classifies the identity that initiated a mutation.
type ActorType string

const (
	ActorUnknown       ActorType = "unknown"
	ActorUser          ActorType = "user"
	ActorSystem        ActorType = "system"
	ActorService       ActorType = "service"
	ActorPolicy        ActorType = "policy"
	ActorScheduler     ActorType = "scheduler"
	ActorAdministrator ActorType = "administrator"
)

// RiskLevel estimates the risk of applying a mutation.
type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

// BlastRadius estimates the impact scope of a mutation.
type BlastRadius string

const (
	BlastSingle BlastRadius = "single"
	BlastModule BlastRadius = "module"
	BlastSystem BlastRadius = "system"
	BlastGlobal BlastRadius = "global"
)

// Actor identifies who or what initiated a mutation.
type Actor struct {
	// ID is the stable identifier of the actor.
	ID string `json:"id"`

	// Name is the human-readable name of the actor.
	Name string `json:"name,omitempty"`

	// Type classifies the actor (user, system, service, ...).
	Type ActorType `json:"type"`
}

// Intent declaratively describes what a mutation intends to change and why.
// It is immutable for the lifetime of the mutation.
type Intent struct {
	// Operation is the operation name (e.g., "enable-feature").
	Operation string `json:"operation"`

	// Category groups related operations (e.g., "flags", "billing").
	Category string `json:"category,omitempty"`

	// Description is a human-readable summary of the change.
	Description string `json:"description,omitempty"`

	// Risk is the estimated risk level of the change.
	Risk RiskLevel `json:"risk,omitempty"`

	// Reversible indicates whether the change can be undone.
	Reversible bool `json:"reversible,omitempty"`

	// BlastRadius is the estimated impact scope of the change.
	BlastRadius BlastRadius `json:"blast_radius,omitempty"`

	// Tags is a set of free-form labels.
	Tags []string `json:"tags,omitempty"`

	// Metadata carries additional intent attributes.
	Metadata map[string]any `json:"metadata,omitempty"`

	// CreatedAt is when the intent was declared.
	CreatedAt time.Time `json:"created_at"`
}

// Context carries metadata about who initiated a mutation, why, when, and in
// which mode. It is immutable for the lifetime of the mutation.
type Context struct {
	// Mode determines how the mutation is executed.
	Mode Mode `json:"mode"`

	// Actor identifies who initiated the mutation.
	Actor Actor `json:"actor"`

	// Reason explains why the mutation was initiated.
	Reason string `json:"reason,omitempty"`

	// CorrelationID links the mutation to an external workflow.
	CorrelationID string `json:"correlation_id,omitempty"`

	// CausationID identifies the event that caused this mutation.
	CausationID string `json:"causation_id,omitempty"`

	// SessionID identifies the session the mutation belongs to.
	SessionID string `json:"session_id,omitempty"`

	// SourceIP is the originating IP address, if known.
	SourceIP string `json:"source_ip,omitempty"`

	// UserAgent is the originating user agent, if known.
	UserAgent string `json:"user_agent,omitempty"`

	// Timestamp is when the context was created.
	Timestamp time.Time `json:"timestamp"`

	// Timezone is an optional IANA timezone name for the actor.
	Timezone string `json:"timezone,omitempty"`

	// Metadata carries additional context attributes (e.g., approvals).
	Metadata map[string]any `json:"metadata,omitempty"`
}

// Mutation is a unit of governed state change bound to a state type S.
//
// Validate and Simulate must leave the input state observably unchanged.
// Apply must be deterministic: for identical (state, intent, context) it
// produces identical outputs.
type Mutation[S any] interface {
	// Intent returns the declarative intent of the mutation.
	Intent() Intent

	// Context returns the execution context of the mutation.
	Context() Context

	// Validate checks preconditions against the state without side effects.
	Validate(state S) *ValidationResult

	// Simulate behaves identically to Apply but implies no persistence.
	Simulate(state S) (*Result[S], error)

	// Apply performs the state transition.
	Apply(state S) (*Result[S], error)
}

// Ops bundles the behavior of a function-backed mutation.
//
// ApplyFunc is required. SimulateFunc defaults to ApplyFunc (the Apply
// contract is pure, so the same function serves both). ValidateFunc defaults
// to an always-valid result.
type Ops[S any] struct {
	ValidateFunc func(state S) *ValidationResult
	SimulateFunc func(state S) (*Result[S], error)
	ApplyFunc    func(state S) (*Result[S], error)
}

// funcMutation is the function-backed Mutation implementation.
type funcMutation[S any] struct {
	intent Intent
	mctx   Context
	ops    Ops[S]
}

// New creates a function-backed mutation from an intent, a context, and its
// operations. Construction preconditions are enforced here, not by the
// engine: a missing operation name, an unrecognized mode, or a nil ApplyFunc
// yields an InvalidConstructionError.
func New[S any](intent Intent, mctx Context, ops Ops[S]) (Mutation[S], error) {
	if intent.Operation == "" {
		return nil, &InvalidConstructionError{Reason: "intent operation is required"}
	}
	switch mctx.Mode {
	case ModeSimulate, ModeValidate, ModeCommit:
	default:
		return nil, &InvalidConstructionError{Reason: "unrecognized mode " + string(mctx.Mode)}
	}
	if ops.ApplyFunc == nil {
		return nil, &InvalidConstructionError{Reason: "apply function is required"}
	}

	if intent.CreatedAt.IsZero() {
		intent.CreatedAt = time.Now()
	}
	if mctx.Timestamp.IsZero() {
		mctx.Timestamp = time.Now()
	}
	if ops.SimulateFunc == nil {
		ops.SimulateFunc = ops.ApplyFunc
	}
	if ops.ValidateFunc == nil {
		ops.ValidateFunc = func(S) *ValidationResult { return Valid() }
	}

	return &funcMutation[S]{intent: intent, mctx: mctx, ops: ops}, nil
}

// MustNew is like New but panics on construction errors. Intended for
// statically-known mutations in tests and examples.
func MustNew[S any](intent Intent, mctx Context, ops Ops[S]) Mutation[S] {
	m, err := New(intent, mctx, ops)
	if err != nil {
		panic(err)
	}
	return m
}

// Intent returns the declarative intent of the mutation.
func (m *funcMutation[S]) Intent() Intent { return m.intent }

// Context returns the execution context of the mutation.
func (m *funcMutation[S]) Context() Context { return m.mctx }

// Validate checks preconditions against the state.
func (m *funcMutation[S]) Validate(state S) *ValidationResult {
	return m.ops.ValidateFunc(state)
}

// Simulate runs the apply semantics without implying persistence.
func (m *funcMutation[S]) Simulate(state S) (*Result[S], error) {
	return m.ops.SimulateFunc(state)
}

// Apply performs the state transition.
func (m *funcMutation[S]) Apply(state S) (*Result[S], error) {
	return m.ops.ApplyFunc(state)
}
