// Package engine orchestrates the mutation pipeline: governed, audited,
// replayable state transitions over a caller-defined state type.
//
// # Architecture
//
// One execution moves through fixed phases:
//
//	Mutation + State
//	       ↓
//	Interceptor.OnBefore
//	       ↓
//	Policy evaluation (descending priority, first deny short-circuits)
//	       ↓
//	Validation (commit mode, or AlwaysValidate)
//	       ↓
//	Execution (Simulate inline | Validate synthesized | Commit via Executor)
//	       ↓
//	Interceptor.OnAfter / OnFailed / OnPolicyBlocked
//	       ↓
//	Audit (always) → History (successful commits only) → Metrics
//	       ↓
//	Result
//
// Validation failures and policy denials come back as structured results;
// timeouts, cancellations, and execution errors are audited and then
// returned as errors.
//
// # Basic Usage
//
//	eng, err := engine.New[FlagState](engine.DefaultOptions())
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	eng.RegisterPolicy(policy.Func[FlagState]{
//	    PolicyName:     "business-hours",
//	    PolicyPriority: policy.PriorityHigh,
//	    EvaluateFunc:   denyOutsideBusinessHours,
//	})
//
//	result, err := eng.ExecuteSingle(ctx, enableFeature("NewCheckout"), state)
//	if err != nil {
//	    log.Error("execution failed", "error", err)
//	}
//	if result.IsBlocked() {
//	    log.Info("blocked", "policy", result.BlockingDecision().PolicyName)
//	}
//
// # Thread Safety
//
// The engine is safe for concurrent use. Executions on the same state id
// are not serialized against each other; callers that need per-entity
// ordering must supply it externally. Registries and stores are internally
// guarded, and no component holds a lock across a call into another.
package engine
