package history

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"mercator-hq/ganymede/pkg/mutation"
)

// ErrStateIDRequired indicates an append without a stable state id.
var ErrStateIDRequired = errors.New("stable stateId required")

// Entry is an append-only record of one successful committed mutation.
type Entry struct {
	// ExecutionID is the engine-generated id of the execution.
	ExecutionID string `json:"execution_id"`

	// Intent is the mutation's declarative intent.
	Intent mutation.Intent `json:"intent"`

	// Context is the mutation's execution context.
	Context mutation.Context `json:"context"`

	// Changes records the deltas the mutation produced.
	Changes *mutation.ChangeSet `json:"changes"`

	// SideEffects lists external effects the mutation surfaced.
	SideEffects []mutation.SideEffect `json:"side_effects,omitempty"`

	// Timestamp is when the entry was appended.
	Timestamp time.Time `json:"timestamp"`

	// ExecutionTime is the wall-clock duration of the execution.
	ExecutionTime time.Duration `json:"execution_time"`

	// StateID identifies the mutated entity. Required.
	StateID string `json:"state_id"`

	// PreviousHash links to the prior entry's hash; empty for the first
	// entry of a state.
	PreviousHash string `json:"previous_hash,omitempty"`

	// NewHash is the hash of this entry, computed on append.
	NewHash string `json:"new_hash,omitempty"`
}

// Store is the history store contract. Implementations must be safe for
// concurrent use; appended entries are never mutated.
type Store interface {
	// Append records an entry. The entry's StateID must be non-empty.
	Append(ctx context.Context, e *Entry) error

	// Get returns the full chronological history for a state id. A state
	// id with no entries yields an empty history, not an error.
	Get(ctx context.Context, stateID string) (*History, error)

	// GetRange returns the entries within [from, to] inclusive, ascending.
	GetRange(ctx context.Context, stateID string, from, to time.Time) ([]*Entry, error)

	// GetRecent returns at most n entries, descending by timestamp.
	GetRecent(ctx context.Context, stateID string, n int) ([]*Entry, error)

	// Close releases resources held by the store.
	Close() error
}

// History is the full chronological mutation log of one state id, ascending
// by timestamp.
type History struct {
	// StateID identifies the entity.
	StateID string

	// Entries are the committed mutations in chronological order.
	Entries []*Entry
}

// TimelinePoint is one change observation at a path.
type TimelinePoint struct {
	// Timestamp is when the change was committed.
	Timestamp time.Time

	// Change is the recorded delta.
	Change mutation.StateChange

	// ExecutionID is the execution that produced the change.
	ExecutionID string

	// ActorID identifies who initiated the mutation.
	ActorID string

	// Reason is the mutation context's reason, if given.
	Reason string
}

// Statistics summarizes a history.
type Statistics struct {
	// TotalMutations is the number of committed mutations.
	TotalMutations int

	// UniqueActors is the number of distinct actor ids.
	UniqueActors int

	// MutationsByCategory counts mutations per intent category.
	MutationsByCategory map[string]int

	// AverageChangesPerMutation is the mean ChangeSet size.
	AverageChangesPerMutation float64
}

// Len returns the number of entries in the history.
func (h *History) Len() int {
	return len(h.Entries)
}

// TimelineForPath returns the chronological sequence of changes recorded at
// or under the given path.
func (h *History) TimelineForPath(path string) []TimelinePoint {
	var out []TimelinePoint
	for _, e := range h.Entries {
		if e.Changes == nil {
			continue
		}
		for _, c := range e.Changes.Changes() {
			if !pathMatches(c.Path, path) {
				continue
			}
			out = append(out, TimelinePoint{
				Timestamp:   e.Timestamp,
				Change:      c,
				ExecutionID: e.ExecutionID,
				ActorID:     e.Context.Actor.ID,
				Reason:      e.Context.Reason,
			})
		}
	}
	return out
}

// Statistics computes summary statistics over the history.
func (h *History) Statistics() *Statistics {
	stats := &Statistics{
		MutationsByCategory: make(map[string]int),
	}

	actors := make(map[string]struct{})
	totalChanges := 0

	for _, e := range h.Entries {
		stats.TotalMutations++
		if e.Context.Actor.ID != "" {
			actors[e.Context.Actor.ID] = struct{}{}
		}
		if e.Intent.Category != "" {
			stats.MutationsByCategory[e.Intent.Category]++
		}
		if e.Changes != nil {
			totalChanges += e.Changes.Len()
		}
	}

	stats.UniqueActors = len(actors)
	if stats.TotalMutations > 0 {
		stats.AverageChangesPerMutation = float64(totalChanges) / float64(stats.TotalMutations)
	}

	return stats
}

// Verify walks the hash chain and returns an error at the first broken
// link. An empty history verifies trivially.
func (h *History) Verify() error {
	prev := ""
	for i, e := range h.Entries {
		if e.PreviousHash != prev {
			return fmt.Errorf("hash chain broken at entry %d (execution %s): previous hash %q, expected %q",
				i, e.ExecutionID, e.PreviousHash, prev)
		}
		if want := ChainHash(e.PreviousHash, e); e.NewHash != want {
			return fmt.Errorf("hash mismatch at entry %d (execution %s)", i, e.ExecutionID)
		}
		prev = e.NewHash
	}
	return nil
}

// Replay folds apply over the history's change-sets in chronological order
// to reconstruct a state from initial.
func Replay[S any](h *History, initial S, apply func(S, *mutation.ChangeSet) S) S {
	state := initial
	for _, e := range h.Entries {
		state = apply(state, e.Changes)
	}
	return state
}

// ReplayUntil is Replay restricted to entries with Timestamp <= until.
// When no entry qualifies, initial is returned unchanged.
func ReplayUntil[S any](h *History, initial S, until time.Time, apply func(S, *mutation.ChangeSet) S) S {
	state := initial
	for _, e := range h.Entries {
		if e.Timestamp.After(until) {
			continue
		}
		state = apply(state, e.Changes)
	}
	return state
}

// pathMatches reports whether changed is at or under the query path.
func pathMatches(changed, path string) bool {
	return changed == path || strings.HasPrefix(changed, path+".")
}

// StorageError indicates a history backend operation failure.
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
	return fmt.Sprintf("history storage %s: %s failed: %v", e.Backend, e.Operation, e.Cause)
}

// Unwrap returns the underlying cause.
func (e *StorageError) Unwrap() error {
	return e.Cause
}
