package engine

import (
	"fmt"
	"time"
)

// TimeoutError indicates the apply phase exceeded the configured execution
// timeout. Validation and policy evaluation are not bounded by it.
type TimeoutError struct {
	// Configured is the execution timeout from the engine options.
	Configured time.Duration

	// Elapsed is the time elapsed when the timeout was observed.
	Elapsed time.Duration
}

// Error returns the error message.
func (e *TimeoutError) Error() string {
	return fmt.Sprintf("mutation apply timed out: elapsed %s exceeds configured %s",
		e.Elapsed, e.Configured)
}

// ExecutionError wraps an error raised during an execution, carrying the
// execution id so callers can correlate it with the audit ledger.
type ExecutionError struct {
	// ExecutionID is the id of the failed execution.
	ExecutionID string

	// Cause is the underlying error.
	Cause error
}

// NewExecutionError wraps cause with the execution id.
func NewExecutionError(executionID string, cause error) *ExecutionError {
	return &ExecutionError{ExecutionID: executionID, Cause: cause}
}

// Error returns the error message.
func (e *ExecutionError) Error() string {
	return fmt.Sprintf("execution %s failed: %v", e.ExecutionID, e.Cause)
}

// Unwrap returns the underlying cause.
func (e *ExecutionError) Unwrap() error {
	return e.Cause
}
