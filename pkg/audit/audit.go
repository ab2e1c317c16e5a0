package audit

import (
	"context"
	"fmt"
	"time"

	"mercator-hq/ganymede/pkg/mutation"
)

// Entry is an append-only record of one attempted mutation.
type Entry struct {
	// ExecutionID is the engine-generated id of the execution.
	ExecutionID string `json:"execution_id"`

	// StateID identifies the mutated entity, if the caller supplied one.
	StateID string `json:"state_id,omitempty"`

	// StateType is the name of the state type the mutation was bound to.
	StateType string `json:"state_type"`

	// Intent is the mutation's declarative intent.
	Intent mutation.Intent `json:"intent"`

	// Context is the mutation's execution context (mode, actor, reason).
	Context mutation.Context `json:"context"`

	// Changes records the deltas the execution produced (may be empty).
	Changes *mutation.ChangeSet `json:"changes"`

	// IsSuccess reports whether the execution succeeded.
	IsSuccess bool `json:"is_success"`

	// ErrorMessage carries the failure message, if any.
	ErrorMessage string `json:"error_message,omitempty"`

	// PolicyDecisions records the decisions that governed the execution.
	PolicyDecisions []*mutation.PolicyDecision `json:"policy_decisions,omitempty"`

	// Timestamp is when the entry was recorded.
	Timestamp time.Time `json:"timestamp"`

	// Duration is the wall-clock duration of the execution.
	Duration time.Duration `json:"duration"`

	// SourceIP is the originating IP address, if known.
	SourceIP string `json:"source_ip,omitempty"`

	// UserAgent is the originating user agent, if known.
	UserAgent string `json:"user_agent,omitempty"`

	// Metadata carries additional entry attributes.
	Metadata map[string]any `json:"metadata,omitempty"`
}

// Query selects ledger entries by state id and an optional inclusive time
// range.
type Query struct {
	// StateID selects entries by exact state id match.
	StateID string

	// From is the inclusive lower bound on Timestamp, if set.
	From *time.Time

	// To is the inclusive upper bound on Timestamp, if set.
	To *time.Time
}

// Matches reports whether the entry satisfies the query filters.
func (q Query) Matches(e *Entry) bool {
	if e.StateID != q.StateID {
		return false
	}
	if q.From != nil && e.Timestamp.Before(*q.From) {
		return false
	}
	if q.To != nil && e.Timestamp.After(*q.To) {
		return false
	}
	return true
}

// Ledger is the append-only audit store. Implementations must be safe for
// concurrent use and must never update or delete recorded entries.
type Ledger interface {
	// Record appends an entry to the ledger.
	Record(ctx context.Context, e *Entry) error

	// Query returns the entries matching the query, in insertion order.
	Query(ctx context.Context, q Query) ([]*Entry, error)

	// Close releases resources held by the ledger.
	Close() error
}

// StorageError indicates a ledger backend operation failure.
type StorageError struct {
	Backend   string
	Operation string
	Cause     error
}

// NewStorageError creates a StorageError for the given backend operation.
func NewStorageError(backend, operation string, cause error) *StorageError {
	return &StorageError{Backend: backend, Operation: operation, Cause: cause}
}

// Error returns the error message.
func (e *StorageError) Error() string {
	return fmt.Sprintf("audit storage %s: %s failed: %v", e.Backend, e.Operation, e.Cause)
}

// Unwrap returns the underlying cause.
func (e *StorageError) Unwrap() error {
	return e.Cause
}
