package engine

import (
	"fmt"
	"time"
)

// Options contains the engine execution options.
type Options struct {
	// AlwaysValidate runs validation even when the mode is not Commit.
	// Default: false
	AlwaysValidate bool

	// ExecutionTimeout bounds the apply phase. The executor is the only
	// component that consults it; validation and policy evaluation are not
	// bounded. Zero means unbounded.
	// Default: 0 (unbounded)
	ExecutionTimeout time.Duration

	// StopBatchOnFirstFailure makes ExecuteBatch stop at the first failed
	// result instead of continuing with the remaining mutations.
	// Default: false
	StopBatchOnFirstFailure bool
}

// DefaultOptions returns the default engine options.
func DefaultOptions() *Options {
	return &Options{
		AlwaysValidate:          false,
		ExecutionTimeout:        0,
		StopBatchOnFirstFailure: false,
	}
}

// StrictOptions returns a preset that validates on every execution
// regardless of mode.
func StrictOptions() *Options {
	return &Options{
		AlwaysValidate: true,
	}
}

// PerformanceOptions returns a preset that skips non-commit validation and
// runs without an apply timeout.
func PerformanceOptions() *Options {
	return &Options{
		AlwaysValidate:   false,
		ExecutionTimeout: 0,
	}
}

// Validate checks the options for consistency.
func (o *Options) Validate() error {
	if o.ExecutionTimeout < 0 {
		return fmt.Errorf("execution timeout must not be negative, got %s", o.ExecutionTimeout)
	}
	return nil
}
