package audit

import (
	"context"
	"sync"
)

// MemoryLedger implements Ledger with a single guarded in-memory sequence.
// Entries are kept in insertion order and never mutated after record.
type MemoryLedger struct {
	mu      sync.RWMutex
	entries []*Entry
}

// NewMemoryLedger creates an empty in-memory ledger.
func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{}
}

// Record appends an entry. The ledger stores its own copy so later caller
// mutations of the entry value are not observed.
func (l *MemoryLedger) Record(ctx context.Context, e *Entry) error {
	entryCopy := *e

	l.mu.Lock()
	defer l.mu.Unlock()

	l.entries = append(l.entries, &entryCopy)
	return nil
}

// Query returns the entries matching the query in insertion order. A state
// id with no entries yields an empty result, not an error.
func (l *MemoryLedger) Query(ctx context.Context, q Query) ([]*Entry, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var out []*Entry
	for _, e := range l.entries {
		if q.Matches(e) {
			entryCopy := *e
			out = append(out, &entryCopy)
		}
	}
	return out, nil
}

// All returns every recorded entry in insertion order.
func (l *MemoryLedger) All() []*Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]*Entry, len(l.entries))
	for i, e := range l.entries {
		entryCopy := *e
		out[i] = &entryCopy
	}
	return out
}

// Len returns the number of recorded entries.
func (l *MemoryLedger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}

// Close releases no resources for the memory ledger.
func (l *MemoryLedger) Close() error {
	return nil
}
