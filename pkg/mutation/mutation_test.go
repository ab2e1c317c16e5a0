package mutation

import (
	"errors"
	"testing"
)

type counterState struct {
	Value int
}

func validIntent() Intent {
	return Intent{Operation: "increment", Category: "counters"}
}

func validContext() Context {
	return Context{Mode: ModeCommit, Actor: Actor{ID: "tester", Type: ActorUser}}
}

func incrementOps() Ops[counterState] {
	return Ops[counterState]{
		ApplyFunc: func(s counterState) (*Result[counterState], error) {
			next := counterState{Value: s.Value + 1}
			return Success(next, NewChangeSet(Modified("value", s.Value, next.Value))), nil
		},
	}
}

func TestNewConstructionErrors(t *testing.T) {
	tests := []struct {
		name   string
		intent Intent
		mctx   Context
		ops    Ops[counterState]
	}{
		{
			name:   "missing operation",
			intent: Intent{},
			mctx:   validContext(),
			ops:    incrementOps(),
		},
		{
			name:   "unrecognized mode",
			intent: validIntent(),
			mctx:   Context{Mode: Mode("dry-run")},
			ops:    incrementOps(),
		},
		{
			name:   "empty mode",
			intent: validIntent(),
			mctx:   Context{},
			ops:    incrementOps(),
		},
		{
			name:   "nil apply func",
			intent: validIntent(),
			mctx:   validContext(),
			ops:    Ops[counterState]{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.intent, tt.mctx, tt.ops)
			if err == nil {
				t.Fatal("expected construction error, got nil")
			}
			var constructionErr *InvalidConstructionError
			if !errors.As(err, &constructionErr) {
				t.Fatalf("expected InvalidConstructionError, got %T", err)
			}
		})
	}
}

func TestNewDefaults(t *testing.T) {
	m, err := New(validIntent(), validContext(), incrementOps())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if m.Intent().CreatedAt.IsZero() {
		t.Error("expected CreatedAt to be defaulted")
	}
	if m.Context().Timestamp.IsZero() {
		t.Error("expected Timestamp to be defaulted")
	}

	// ValidateFunc defaults to always valid.
	if v := m.Validate(counterState{}); !v.IsValid() {
		t.Errorf("expected default validation to pass, got %d errors", len(v.Errors))
	}

	// SimulateFunc defaults to ApplyFunc.
	simulated, err := m.Simulate(counterState{Value: 4})
	if err != nil {
		t.Fatalf("Simulate failed: %v", err)
	}
	if simulated.NewState.Value != 5 {
		t.Errorf("expected simulated value 5, got %d", simulated.NewState.Value)
	}
}

func TestApplyIsDeterministic(t *testing.T) {
	m := MustNew(validIntent(), validContext(), incrementOps())
	state := counterState{Value: 10}

	first, err := m.Apply(state)
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	second, err := m.Apply(state)
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	if first.NewState.Value != second.NewState.Value {
		t.Errorf("apply not deterministic: %d vs %d", first.NewState.Value, second.NewState.Value)
	}
	if state.Value != 10 {
		t.Errorf("apply mutated the input state: %d", state.Value)
	}
}

func TestMustNewPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected MustNew to panic")
		}
	}()
	MustNew(Intent{}, validContext(), incrementOps())
}

func TestResultFactories(t *testing.T) {
	t.Run("success carries state and changes", func(t *testing.T) {
		r := Success(counterState{Value: 1}, NewChangeSet(Modified("value", 0, 1)))
		if !r.Success {
			t.Error("expected success")
		}
		if r.NewState == nil || r.NewState.Value != 1 {
			t.Error("expected new state value 1")
		}
		if r.Changes.Len() != 1 {
			t.Errorf("expected 1 change, got %d", r.Changes.Len())
		}
		if r.IsBlocked() {
			t.Error("success must not be blocked")
		}
	})

	t.Run("success with nil changes gets empty set", func(t *testing.T) {
		r := Success(counterState{}, nil)
		if r.Changes == nil || r.Changes.Len() != 0 {
			t.Error("expected non-nil empty change set")
		}
	})

	t.Run("failure carries validation", func(t *testing.T) {
		v := Valid()
		v.AddError("value", "out of range", "range")
		r := Failure[counterState](v)
		if r.Success {
			t.Error("expected failure")
		}
		if r.NewState != nil {
			t.Error("failure must not carry a new state")
		}
		if r.Changes == nil {
			t.Error("failure must still carry a change set")
		}
	})

	t.Run("policy blocked exposes the decision", func(t *testing.T) {
		deny := &PolicyDecision{IsAllowed: false, PolicyName: "guard", Reason: "no"}
		r := PolicyBlocked[counterState](deny)
		if !r.IsBlocked() {
			t.Error("expected blocked result")
		}
		if got := r.BlockingDecision(); got == nil || got.PolicyName != "guard" {
			t.Errorf("expected blocking decision from guard, got %+v", got)
		}
	})
}

func TestValidationRouting(t *testing.T) {
	v := Invalid(
		Issue{Path: "a", Message: "bad", Severity: SeverityError},
		Issue{Path: "b", Message: "odd", Severity: SeverityWarning},
		Issue{Path: "c", Message: "fyi", Severity: SeverityInfo},
		Issue{Path: "d", Message: "very bad", Severity: SeverityCritical},
	)

	if len(v.Errors) != 2 {
		t.Errorf("expected 2 errors (error + critical), got %d", len(v.Errors))
	}
	if len(v.Warnings) != 1 || len(v.Infos) != 1 {
		t.Errorf("expected 1 warning and 1 info, got %d/%d", len(v.Warnings), len(v.Infos))
	}
	if v.IsValid() {
		t.Error("result with errors must be invalid")
	}
	if v.IssueCount() != 4 {
		t.Errorf("expected 4 issues, got %d", v.IssueCount())
	}

	if !Valid().IsValid() {
		t.Error("empty result must be valid")
	}
}

func TestDecisionHelpers(t *testing.T) {
	d := &PolicyDecision{
		IsAllowed:     true,
		Modifications: map[string]any{"rollout": 0.5},
		Requirements: []Requirement{
			{Type: "approval", IsFulfilled: true},
			{Type: "approval", Description: "second approver", IsFulfilled: false},
		},
	}

	if !d.HasModifications() {
		t.Error("expected modifications")
	}
	unfulfilled := d.UnfulfilledRequirements()
	if len(unfulfilled) != 1 || unfulfilled[0].Description != "second approver" {
		t.Errorf("unexpected unfulfilled requirements: %+v", unfulfilled)
	}
}
