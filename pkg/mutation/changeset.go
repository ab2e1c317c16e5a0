package mutation

import "encoding/json"

// ChangeKind classifies a single state delta.
type ChangeKind string

const (
	KindModified ChangeKind = "modified"
	KindAdded    ChangeKind = "added"
	KindRemoved  ChangeKind = "removed"
	KindReplaced ChangeKind = "replaced"
	KindMoved    ChangeKind = "moved"
)

// StateChange records a single delta at a state path.
type StateChange struct {
	// Path is the dotted path of the changed value (e.g., "flags.NewCheckout").
	Path string `json:"path"`

	// Before is the value before the change, if any.
	Before any `json:"before,omitempty"`

	// After is the value after the change, if any.
	After any `json:"after,omitempty"`

	// Kind classifies the change.
	Kind ChangeKind `json:"kind"`

	// Metadata carries additional change attributes.
	Metadata map[string]any `json:"metadata,omitempty"`

	// Priority orders changes that must be replayed before others.
	Priority int `json:"priority,omitempty"`
}

// Modified returns a StateChange recording a value modification.
func Modified(path string, before, after any) StateChange {
	return StateChange{Path: path, Before: before, After: after, Kind: KindModified}
}

// Added returns a StateChange recording a value addition.
func Added(path string, after any) StateChange {
	return StateChange{Path: path, After: after, Kind: KindAdded}
}

// Removed returns a StateChange recording a value removal.
func Removed(path string, before any) StateChange {
	return StateChange{Path: path, Before: before, Kind: KindRemoved}
}

// Replaced returns a StateChange recording a wholesale replacement.
func Replaced(path string, before, after any) StateChange {
	return StateChange{Path: path, Before: before, After: after, Kind: KindReplaced}
}

// Moved returns a StateChange recording a value move. Before holds the old
// location's value, After the new one.
func Moved(path string, before, after any) StateChange {
	return StateChange{Path: path, Before: before, After: after, Kind: KindMoved}
}

// ChangeSet is an ordered record of state deltas produced by a mutation.
// Insertion order is preserved; merges append in order.
type ChangeSet struct {
	changes []StateChange
}

// NewChangeSet creates a ChangeSet from the given changes, preserving order.
func NewChangeSet(changes ...StateChange) *ChangeSet {
	cs := &ChangeSet{}
	cs.changes = append(cs.changes, changes...)
	return cs
}

// Add appends a change, preserving insertion order.
func (cs *ChangeSet) Add(change StateChange) {
	cs.changes = append(cs.changes, change)
}

// Merge appends all changes from other, preserving both orders.
func (cs *ChangeSet) Merge(other *ChangeSet) {
	if other == nil {
		return
	}
	cs.changes = append(cs.changes, other.changes...)
}

// Changes returns a copy of all changes in insertion order.
func (cs *ChangeSet) Changes() []StateChange {
	out := make([]StateChange, len(cs.changes))
	copy(out, cs.changes)
	return out
}

// GetChanges returns all changes recorded at exactly the given path, in
// insertion order.
func (cs *ChangeSet) GetChanges(path string) []StateChange {
	var out []StateChange
	for _, c := range cs.changes {
		if c.Path == path {
			out = append(out, c)
		}
	}
	return out
}

// IsChanged reports whether any change was recorded at the given path.
func (cs *ChangeSet) IsChanged(path string) bool {
	for _, c := range cs.changes {
		if c.Path == path {
			return true
		}
	}
	return false
}

// ChangedPaths returns the distinct changed paths in first-seen order.
func (cs *ChangeSet) ChangedPaths() []string {
	seen := make(map[string]struct{}, len(cs.changes))
	var out []string
	for _, c := range cs.changes {
		if _, ok := seen[c.Path]; ok {
			continue
		}
		seen[c.Path] = struct{}{}
		out = append(out, c.Path)
	}
	return out
}

// Len returns the number of recorded changes.
func (cs *ChangeSet) Len() int {
	return len(cs.changes)
}

// IsEmpty reports whether the ChangeSet records no changes.
func (cs *ChangeSet) IsEmpty() bool {
	return len(cs.changes) == 0
}

// MarshalJSON encodes the ChangeSet as a JSON array of changes.
func (cs *ChangeSet) MarshalJSON() ([]byte, error) {
	if cs.changes == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(cs.changes)
}

// UnmarshalJSON decodes a JSON array of changes.
func (cs *ChangeSet) UnmarshalJSON(data []byte) error {
	var changes []StateChange
	if err := json.Unmarshal(data, &changes); err != nil {
		return err
	}
	cs.changes = changes
	return nil
}
