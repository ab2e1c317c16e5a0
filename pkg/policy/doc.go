// Package policy defines named, prioritized governance rules over mutations
// and the registry that orders them.
//
// A Policy evaluates a mutation against a state and produces a single
// PolicyDecision (allow, deny, modify, or require-approval). Policies must
// be side-effect free. Higher-priority policies evaluate first; within equal
// priority, registration order decides.
//
// # Basic Usage
//
//	reg := policy.NewRegistry[FlagState](nil)
//	reg.Register(policy.Func[FlagState]{
//	    PolicyName:     "business-hours",
//	    PolicyPriority: policy.PriorityHigh,
//	    EvaluateFunc: func(ctx context.Context, m mutation.Mutation[FlagState], state FlagState) *mutation.PolicyDecision {
//	        if outsideBusinessHours(time.Now()) {
//	            return policy.Deny("outside business hours", "business-hours")
//	        }
//	        return policy.Allow()
//	    },
//	})
//
// # Thread Safety
//
// The registry is safe for concurrent use. Readers receive a snapshot; a
// registration during an evaluation is invisible to that evaluation.
package policy
