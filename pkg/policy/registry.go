package policy

import (
	"log/slog"
	"sort"
	"sync"
)

// Registry stores the policies for one state type and orders them for
// evaluation: descending by priority, registration order within equal
// priority. It is safe for concurrent use.
type Registry[S any] struct {
	mu      sync.RWMutex
	entries []registryEntry[S]
	seq     uint64
	logger  *slog.Logger
}

// registryEntry pairs a policy with its registration sequence number for
// deterministic tie-breaking.
type registryEntry[S any] struct {
	policy Policy[S]
	seq    uint64
}

// NewRegistry creates an empty policy registry. A nil logger falls back to
// slog.Default.
func NewRegistry[S any](logger *slog.Logger) *Registry[S] {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry[S]{
		logger: logger.With("component", "policy.registry"),
	}
}

// Register adds a policy. Registering a policy with an already-registered
// name replaces the previous registration and takes its place in the
// registration order.
func (r *Registry[S]) Register(p Policy[S]) {
	if p == nil {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for i, e := range r.entries {
		if e.policy.Name() == p.Name() {
			r.entries[i].policy = p
			r.logger.Debug("policy replaced", "policy", p.Name(), "priority", p.Priority())
			return
		}
	}

	r.seq++
	r.entries = append(r.entries, registryEntry[S]{policy: p, seq: r.seq})
	r.logger.Debug("policy registered", "policy", p.Name(), "priority", p.Priority())
}

// Unregister removes the policy with the given name. It reports whether a
// policy was removed.
func (r *Registry[S]) Unregister(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, e := range r.entries {
		if e.policy.Name() == name {
			r.entries = append(r.entries[:i], r.entries[i+1:]...)
			r.logger.Debug("policy unregistered", "policy", name)
			return true
		}
	}
	return false
}

// Policies returns a snapshot of the registered policies in evaluation
// order: descending priority, registration order within equal priority.
func (r *Registry[S]) Policies() []Policy[S] {
	r.mu.RLock()
	snapshot := make([]registryEntry[S], len(r.entries))
	copy(snapshot, r.entries)
	r.mu.RUnlock()

	sort.SliceStable(snapshot, func(i, j int) bool {
		pi, pj := snapshot[i].policy.Priority(), snapshot[j].policy.Priority()
		if pi != pj {
			return pi > pj
		}
		return snapshot[i].seq < snapshot[j].seq
	})

	out := make([]Policy[S], len(snapshot))
	for i, e := range snapshot {
		out[i] = e.policy
	}
	return out
}

// ByName returns the policy with the given name, or nil.
func (r *Registry[S]) ByName(name string) Policy[S] {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, e := range r.entries {
		if e.policy.Name() == name {
			return e.policy
		}
	}
	return nil
}

// Len returns the number of registered policies.
func (r *Registry[S]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Clear removes all policies. Intended for test harnesses; production paths
// never clear the registry.
func (r *Registry[S]) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = nil
}
