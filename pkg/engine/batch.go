package engine

import (
	"context"
	"time"

	"mercator-hq/ganymede/pkg/mutation"
)

// BatchResult is the outcome of executing an ordered sequence of mutations
// against an evolving state.
type BatchResult[S any] struct {
	// Results holds the per-mutation results in execution order.
	Results []*mutation.Result[S] `json:"results"`

	// Success reports whether every executed mutation succeeded.
	Success bool `json:"success"`

	// FinalState is the state after the last successful transition. When a
	// mutation fails mid-batch the preceding successes are already woven in,
	// so the final state is the current state either way.
	FinalState S `json:"final_state"`

	// Changes is the ordered concatenation of the successful per-mutation
	// change-sets.
	Changes *mutation.ChangeSet `json:"changes"`

	// SuccessCount and FailureCount account for the executed mutations.
	SuccessCount int `json:"success_count"`
	FailureCount int `json:"failure_count"`

	// TotalExecutionTime is the wall-clock duration of the whole batch.
	TotalExecutionTime time.Duration `json:"total_execution_time"`
}

// ExecuteBatch runs the mutations in order, threading the state through
// successful transitions. Failed results are appended and, unless
// StopBatchOnFirstFailure is set, the batch continues on the current state.
// Raised errors (timeout, cancellation, execution error) abort the batch
// and return alongside the partial batch result. Cancellation between
// iterations stops the batch; the in-flight execution runs to completion.
func (e *Engine[S]) ExecuteBatch(ctx context.Context, mutations []mutation.Mutation[S], state S) (*BatchResult[S], error) {
	start := time.Now()

	batch := &BatchResult[S]{
		Results:    make([]*mutation.Result[S], 0, len(mutations)),
		FinalState: state,
		Changes:    mutation.NewChangeSet(),
	}

	current := state
	for _, m := range mutations {
		if ctx.Err() != nil {
			break
		}

		result, err := e.ExecuteSingle(ctx, m, current)
		if err != nil {
			batch.FailureCount++
			batch.Success = false
			batch.FinalState = current
			batch.TotalExecutionTime = time.Since(start)
			return batch, err
		}

		batch.Results = append(batch.Results, result)
		if result.Success {
			batch.SuccessCount++
			if result.NewState != nil {
				current = *result.NewState
			}
			batch.Changes.Merge(result.Changes)
		} else {
			batch.FailureCount++
			if e.options.StopBatchOnFirstFailure {
				break
			}
		}
	}

	batch.Success = batch.FailureCount == 0
	batch.FinalState = current
	batch.TotalExecutionTime = time.Since(start)

	e.logger.Debug("batch completed",
		"executed", len(batch.Results),
		"succeeded", batch.SuccessCount,
		"failed", batch.FailureCount,
		"duration", batch.TotalExecutionTime,
	)

	return batch, nil
}
