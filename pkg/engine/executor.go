package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"mercator-hq/ganymede/pkg/mutation"
)

// ExecContext carries the per-execution bounds the executor enforces. It is
// created fresh for each commit-mode execution and discarded on return.
type ExecContext struct {
	// ExecutionID is the engine-generated id for the execution.
	ExecutionID string

	// StartedAt is when the execution's wall clock started.
	StartedAt time.Time

	// Timeout bounds the apply phase. Zero means unbounded.
	Timeout time.Duration
}

// Elapsed returns the time elapsed since the execution started.
func (c ExecContext) Elapsed() time.Duration {
	return time.Since(c.StartedAt)
}

// IsTimedOut reports whether the execution has exceeded its timeout.
func (c ExecContext) IsTimedOut() bool {
	return c.Timeout > 0 && c.Elapsed() > c.Timeout
}

// Executor applies a single mutation, translating timeout and cancellation
// into errors. It performs no policy checks, no validation, and no auditing.
type Executor[S any] struct {
	logger *slog.Logger
}

// NewExecutor creates an executor for state type S.
func NewExecutor[S any]() *Executor[S] {
	return &Executor[S]{
		logger: slog.Default().With("component", "engine.executor"),
	}
}

// Execute invokes the mutation's apply against the state. The timeout is
// checked before and after apply; apply itself runs synchronously on the
// caller's goroutine (the apply contract is pure). Cancellation errors are
// returned unwrapped; apply panics are recovered into ExecutionError.
func (x *Executor[S]) Execute(ctx context.Context, m mutation.Mutation[S], state S, ec ExecContext) (result *mutation.Result[S], err error) {
	if ec.IsTimedOut() {
		return nil, &TimeoutError{Configured: ec.Timeout, Elapsed: ec.Elapsed()}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	defer func() {
		if r := recover(); r != nil {
			x.logger.Error("mutation apply panicked",
				"execution_id", ec.ExecutionID,
				"panic", r,
			)
			result = nil
			err = NewExecutionError(ec.ExecutionID, fmt.Errorf("apply panicked: %v", r))
		}
	}()

	result, err = m.Apply(state)
	if err != nil {
		return nil, err
	}

	// A blocking apply is only observable once it returns.
	if ec.IsTimedOut() {
		return nil, &TimeoutError{Configured: ec.Timeout, Elapsed: ec.Elapsed()}
	}

	return result, nil
}
