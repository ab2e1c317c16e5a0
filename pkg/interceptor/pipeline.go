package interceptor

import (
	"context"
	"log/slog"
	"sort"
	"sync"

	"mercator-hq/ganymede/pkg/mutation"
)

// Pipeline holds the registered interceptors sorted by order and dispatches
// lifecycle events to them. It is safe for concurrent use.
type Pipeline struct {
	mu      sync.RWMutex
	entries []pipelineEntry
	seq     uint64
	logger  *slog.Logger
}

// pipelineEntry pairs an interceptor with its registration sequence number
// for deterministic tie-breaking on equal order.
type pipelineEntry struct {
	interceptor Interceptor
	seq         uint64
}

// NewPipeline creates an empty interceptor pipeline. A nil logger falls back
// to slog.Default.
func NewPipeline(logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		logger: logger.With("component", "interceptor.pipeline"),
	}
}

// Register adds an interceptor and re-sorts the pipeline. Registering an
// interceptor with an already-registered name replaces the previous one.
func (p *Pipeline) Register(i Interceptor) {
	if i == nil {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	for idx, e := range p.entries {
		if e.interceptor.Name() == i.Name() {
			p.entries[idx].interceptor = i
			p.sortLocked()
			p.logger.Debug("interceptor replaced", "interceptor", i.Name(), "order", i.Order())
			return
		}
	}

	p.seq++
	p.entries = append(p.entries, pipelineEntry{interceptor: i, seq: p.seq})
	p.sortLocked()
	p.logger.Debug("interceptor registered", "interceptor", i.Name(), "order", i.Order())
}

// Unregister removes the interceptor with the given name. It reports
// whether an interceptor was removed.
func (p *Pipeline) Unregister(name string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	for i, e := range p.entries {
		if e.interceptor.Name() == name {
			p.entries = append(p.entries[:i], p.entries[i+1:]...)
			p.logger.Debug("interceptor unregistered", "interceptor", name)
			return true
		}
	}
	return false
}

// sortLocked keeps the entries sorted: ascending order, registration order
// within equal order. Callers must hold the write lock.
func (p *Pipeline) sortLocked() {
	sort.SliceStable(p.entries, func(i, j int) bool {
		oi, oj := p.entries[i].interceptor.Order(), p.entries[j].interceptor.Order()
		if oi != oj {
			return oi < oj
		}
		return p.entries[i].seq < p.entries[j].seq
	})
}

// Interceptors returns a snapshot of the registered interceptors in
// pipeline order.
func (p *Pipeline) Interceptors() []Interceptor {
	p.mu.RLock()
	defer p.mu.RUnlock()

	out := make([]Interceptor, len(p.entries))
	for i, e := range p.entries {
		out[i] = e.interceptor
	}
	return out
}

// Len returns the number of registered interceptors.
func (p *Pipeline) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.entries)
}

// participants snapshots the pipeline and filters it through ShouldRun.
func (p *Pipeline) participants(intent mutation.Intent, mctx mutation.Context) []Interceptor {
	var out []Interceptor
	for _, i := range p.Interceptors() {
		if i.ShouldRun(intent, mctx) {
			out = append(out, i)
		}
	}
	return out
}

// OnBefore dispatches the before event sequentially in pipeline order.
// The first hook error stops dispatch and propagates.
func (p *Pipeline) OnBefore(ctx context.Context, ev BeforeEvent) error {
	for _, i := range p.participants(ev.Intent, ev.Context) {
		if err := i.OnBefore(ctx, ev); err != nil {
			return err
		}
	}
	return nil
}

// OnAfter dispatches the after event sequentially in pipeline order.
func (p *Pipeline) OnAfter(ctx context.Context, ev AfterEvent) error {
	for _, i := range p.participants(ev.Intent, ev.Context) {
		if err := i.OnAfter(ctx, ev); err != nil {
			return err
		}
	}
	return nil
}

// OnFailed dispatches the failed event sequentially in pipeline order.
func (p *Pipeline) OnFailed(ctx context.Context, ev FailedEvent) error {
	for _, i := range p.participants(ev.Intent, ev.Context) {
		if err := i.OnFailed(ctx, ev); err != nil {
			return err
		}
	}
	return nil
}

// OnPolicyBlocked dispatches the blocked event sequentially in pipeline
// order.
func (p *Pipeline) OnPolicyBlocked(ctx context.Context, ev PolicyBlockedEvent) error {
	for _, i := range p.participants(ev.Intent, ev.Context) {
		if err := i.OnPolicyBlocked(ctx, ev); err != nil {
			return err
		}
	}
	return nil
}
