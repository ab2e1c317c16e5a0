package cli

import "fmt"

// StoreError reports a failure to open the ledger or history store a
// command runs against.
type StoreError struct {
	Store   string // "audit" or "history"
	Message string
	Err     error
}

func (e *StoreError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s store: %s: %v", e.Store, e.Message, e.Err)
	}
	return fmt.Sprintf("%s store: %s", e.Store, e.Message)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// QueryError reports a failed store query, keeping the command and the
// state id it targeted.
type QueryError struct {
	Command string
	StateID string
	Err     error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("%s for state %s failed: %v", e.Command, e.StateID, e.Err)
}

func (e *QueryError) Unwrap() error {
	return e.Err
}

// NewStoreError creates a new StoreError. Err may be nil when the store
// itself is misconfigured rather than failing.
func NewStoreError(store, message string, err error) *StoreError {
	return &StoreError{
		Store:   store,
		Message: message,
		Err:     err,
	}
}

// NewQueryError creates a new QueryError.
func NewQueryError(command, stateID string, err error) *QueryError {
	return &QueryError{
		Command: command,
		StateID: stateID,
		Err:     err,
	}
}
