package history

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryStore implements Store with an in-memory map keyed by state id.
// Append order is preserved per state; reads sort ascending by timestamp
// with append order deciding ties.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string][]*Entry
}

// NewMemoryStore creates an empty in-memory history store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string][]*Entry),
	}
}

// Append records an entry, linking it into the state's hash chain. The
// entry's StateID must be non-empty.
func (s *MemoryStore) Append(ctx context.Context, e *Entry) error {
	if e.StateID == "" {
		return ErrStateIDRequired
	}

	entryCopy := *e
	if entryCopy.Timestamp.IsZero() {
		entryCopy.Timestamp = time.Now()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	chain := s.entries[e.StateID]
	if len(chain) > 0 {
		entryCopy.PreviousHash = chain[len(chain)-1].NewHash
	} else {
		entryCopy.PreviousHash = ""
	}
	entryCopy.NewHash = ChainHash(entryCopy.PreviousHash, &entryCopy)

	s.entries[e.StateID] = append(chain, &entryCopy)

	// Surface the computed chain links to the caller's entry.
	e.PreviousHash = entryCopy.PreviousHash
	e.NewHash = entryCopy.NewHash
	e.Timestamp = entryCopy.Timestamp

	return nil
}

// Get returns the full chronological history for a state id. A missing
// state yields an empty history.
func (s *MemoryStore) Get(ctx context.Context, stateID string) (*History, error) {
	s.mu.RLock()
	chain := s.entries[stateID]
	snapshot := make([]*Entry, len(chain))
	for i, e := range chain {
		entryCopy := *e
		snapshot[i] = &entryCopy
	}
	s.mu.RUnlock()

	sort.SliceStable(snapshot, func(i, j int) bool {
		return snapshot[i].Timestamp.Before(snapshot[j].Timestamp)
	})

	return &History{StateID: stateID, Entries: snapshot}, nil
}

// GetRange returns the entries within [from, to] inclusive, ascending.
func (s *MemoryStore) GetRange(ctx context.Context, stateID string, from, to time.Time) ([]*Entry, error) {
	h, err := s.Get(ctx, stateID)
	if err != nil {
		return nil, err
	}

	var out []*Entry
	for _, e := range h.Entries {
		if e.Timestamp.Before(from) || e.Timestamp.After(to) {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

// GetRecent returns at most n entries, descending by timestamp.
func (s *MemoryStore) GetRecent(ctx context.Context, stateID string, n int) ([]*Entry, error) {
	h, err := s.Get(ctx, stateID)
	if err != nil {
		return nil, err
	}

	entries := h.Entries
	// Reverse the ascending order.
	out := make([]*Entry, 0, len(entries))
	for i := len(entries) - 1; i >= 0; i-- {
		out = append(out, entries[i])
	}
	if n < 0 {
		n = 0
	}
	if len(out) > n {
		out = out[:n]
	}
	return out, nil
}

// StateIDs returns the state ids with at least one entry.
func (s *MemoryStore) StateIDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]string, 0, len(s.entries))
	for id := range s.entries {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Close releases no resources for the memory store.
func (s *MemoryStore) Close() error {
	return nil
}
