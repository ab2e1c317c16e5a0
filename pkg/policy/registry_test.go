package policy

import (
	"context"
	"testing"

	"mercator-hq/ganymede/pkg/mutation"
)

type flagState struct {
	Flags map[string]bool
}

func named(name string, priority int) Func[flagState] {
	return Func[flagState]{PolicyName: name, PolicyPriority: priority}
}

func policyNames(policies []Policy[flagState]) []string {
	out := make([]string, len(policies))
	for i, p := range policies {
		out[i] = p.Name()
	}
	return out
}

func TestRegistryOrdersByDescendingPriority(t *testing.T) {
	r := NewRegistry[flagState](nil)
	r.Register(named("low", PriorityLow))
	r.Register(named("high", PriorityHigh))
	r.Register(named("medium", PriorityMedium))

	got := policyNames(r.Policies())
	want := []string{"high", "medium", "low"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("position %d: expected %q, got %q (order %v)", i, want[i], got[i], got)
		}
	}
}

func TestRegistryTieBreaksByRegistrationOrder(t *testing.T) {
	r := NewRegistry[flagState](nil)
	r.Register(named("first", PriorityMedium))
	r.Register(named("second", PriorityMedium))
	r.Register(named("third", PriorityMedium))

	got := policyNames(r.Policies())
	want := []string{"first", "second", "third"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("position %d: expected %q, got %q", i, want[i], got[i])
		}
	}
}

func TestRegistryReplaceKeepsPosition(t *testing.T) {
	r := NewRegistry[flagState](nil)
	r.Register(named("a", PriorityMedium))
	r.Register(named("b", PriorityMedium))

	// Replacing "a" must not move it behind "b".
	r.Register(Func[flagState]{PolicyName: "a", PolicyPriority: PriorityMedium, PolicyDescription: "updated"})

	got := policyNames(r.Policies())
	if got[0] != "a" || got[1] != "b" {
		t.Errorf("expected replaced policy to keep its slot, got %v", got)
	}
	if r.Len() != 2 {
		t.Errorf("expected 2 policies, got %d", r.Len())
	}
	if r.ByName("a").Description() != "updated" {
		t.Error("expected replacement to take effect")
	}
}

func TestRegistryUnregister(t *testing.T) {
	r := NewRegistry[flagState](nil)
	r.Register(named("a", PriorityMedium))

	if !r.Unregister("a") {
		t.Error("expected unregister to report removal")
	}
	if r.Unregister("a") {
		t.Error("expected second unregister to report nothing removed")
	}
	if r.ByName("a") != nil {
		t.Error("expected policy to be gone")
	}
}

func TestFuncNilEvaluateAllows(t *testing.T) {
	p := named("permissive", PriorityLow)
	d := p.Evaluate(context.Background(), nil, flagState{})
	if !d.IsAllowed {
		t.Error("nil evaluate func must allow")
	}
}

func TestDecisionConstructors(t *testing.T) {
	t.Run("allow", func(t *testing.T) {
		d := Allow()
		if !d.IsAllowed || d.Severity != mutation.SeverityInfo {
			t.Errorf("unexpected allow decision: %+v", d)
		}
	})

	t.Run("deny", func(t *testing.T) {
		d := Deny("after hours", "business-hours")
		if d.IsAllowed || d.PolicyName != "business-hours" || d.Severity != mutation.SeverityError {
			t.Errorf("unexpected deny decision: %+v", d)
		}
	})

	t.Run("deny critical", func(t *testing.T) {
		d := DenyCritical("data loss", "guardrail")
		if d.IsAllowed || d.Severity != mutation.SeverityCritical {
			t.Errorf("unexpected critical deny: %+v", d)
		}
	})

	t.Run("modify stays allowed", func(t *testing.T) {
		d := Modify(map[string]any{"rollout": 0.1}, "canary")
		if !d.IsAllowed || !d.HasModifications() {
			t.Errorf("unexpected modify decision: %+v", d)
		}
	})

	t.Run("approval gates on fulfillment", func(t *testing.T) {
		pending := RequireApproval(mutation.Requirement{Type: "approval", IsFulfilled: false}, "two-man")
		if pending.IsAllowed {
			t.Error("unfulfilled approval must deny")
		}
		granted := RequireApproval(mutation.Requirement{Type: "approval", IsFulfilled: true}, "two-man")
		if !granted.IsAllowed {
			t.Error("fulfilled approval must allow")
		}
	})
}
