// Package mutation defines the core data model for governed state
// transitions: the Mutation contract, its declarative Intent and Context,
// the ChangeSet delta record, validation results, execution results, and
// per-execution metrics.
//
// A mutation is a value bound to a state type S that exposes three pure
// operations:
//
//   - Validate(state) - checks preconditions without side effects
//   - Simulate(state) - behaves identically to Apply but implies no persistence
//   - Apply(state)    - deterministic transition producing a Result
//
// Intent and Context are immutable for the lifetime of the mutation. A
// mutation executed in ModeSimulate never causes a history write.
//
// # Basic Usage
//
//	m := mutation.New(
//	    mutation.Intent{Operation: "enable-feature", Category: "flags"},
//	    mutation.Context{Mode: mutation.ModeCommit, Actor: actor},
//	    mutation.Ops[FlagState]{
//	        ApplyFunc: func(s FlagState) (*mutation.Result[FlagState], error) {
//	            next := s.With("NewCheckout", true)
//	            cs := mutation.NewChangeSet()
//	            cs.Add(mutation.Modified("flags.NewCheckout", false, true))
//	            return mutation.Success(next, cs), nil
//	        },
//	    },
//	)
//
// # Thread Safety
//
// Mutations are immutable and safe to share by reference. Results are owned
// by the caller after return. ChangeSets are not safe for concurrent
// mutation; the engine never mutates a ChangeSet after handing it out.
package mutation
