package history

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"mercator-hq/ganymede/pkg/mutation"
)

type flagState struct {
	Flags map[string]bool
}

func flagEntry(executionID, stateID, flag string, value bool, ts time.Time) *Entry {
	return &Entry{
		ExecutionID: executionID,
		StateID:     stateID,
		Intent:      mutation.Intent{Operation: "enable-feature", Category: "flags", CreatedAt: ts},
		Context: mutation.Context{
			Mode:      mutation.ModeCommit,
			Actor:     mutation.Actor{ID: "alice", Type: mutation.ActorUser},
			Reason:    "rollout",
			Timestamp: ts,
		},
		Changes:       mutation.NewChangeSet(mutation.Modified("flags."+flag, !value, value)),
		Timestamp:     ts,
		ExecutionTime: 2 * time.Millisecond,
	}
}

func applyFlags(s flagState, cs *mutation.ChangeSet) flagState {
	next := flagState{Flags: make(map[string]bool, len(s.Flags))}
	for k, v := range s.Flags {
		next.Flags[k] = v
	}
	for _, c := range cs.Changes() {
		name := strings.TrimPrefix(c.Path, "flags.")
		if after, ok := c.After.(bool); ok {
			next.Flags[name] = after
		}
	}
	return next
}

func TestAppendRequiresStateID(t *testing.T) {
	store := NewMemoryStore()
	err := store.Append(context.Background(), &Entry{ExecutionID: "e1"})
	if !errors.Is(err, ErrStateIDRequired) {
		t.Fatalf("expected ErrStateIDRequired, got %v", err)
	}
}

func TestAppendLinksHashChain(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	base := time.Now()

	first := flagEntry("e1", "s1", "A", true, base)
	second := flagEntry("e2", "s1", "B", true, base.Add(time.Second))

	if err := store.Append(ctx, first); err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	if err := store.Append(ctx, second); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	if first.PreviousHash != "" {
		t.Errorf("first entry must have empty previous hash, got %q", first.PreviousHash)
	}
	if first.NewHash == "" {
		t.Error("first entry must receive a hash")
	}
	if second.PreviousHash != first.NewHash {
		t.Error("second entry must link to the first entry's hash")
	}

	h, err := store.Get(ctx, "s1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if err := h.Verify(); err != nil {
		t.Errorf("chain verification failed: %v", err)
	}
}

func TestVerifyDetectsTampering(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	base := time.Now()

	store.Append(ctx, flagEntry("e1", "s1", "A", true, base))
	store.Append(ctx, flagEntry("e2", "s1", "B", true, base.Add(time.Second)))

	h, _ := store.Get(ctx, "s1")
	h.Entries[0].Changes = mutation.NewChangeSet(mutation.Modified("flags.A", true, false))

	if h.Verify() == nil {
		t.Error("expected tampered history to fail verification")
	}
}

func TestGetReturnsChronologicalOrder(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	base := time.Now()

	// Appended out of timestamp order on purpose.
	store.Append(ctx, flagEntry("e2", "s1", "B", true, base.Add(time.Second)))
	store.Append(ctx, flagEntry("e1", "s1", "A", true, base))

	h, err := store.Get(ctx, "s1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if h.Entries[0].ExecutionID != "e1" || h.Entries[1].ExecutionID != "e2" {
		t.Errorf("expected ascending timestamp order, got %q,%q",
			h.Entries[0].ExecutionID, h.Entries[1].ExecutionID)
	}
}

func TestGetMissingStateYieldsEmptyHistory(t *testing.T) {
	store := NewMemoryStore()
	h, err := store.Get(context.Background(), "missing")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if h.Len() != 0 {
		t.Errorf("expected empty history, got %d entries", h.Len())
	}
	if h.StateID != "missing" {
		t.Errorf("expected state id to be echoed, got %q", h.StateID)
	}
}

func TestGetRangeInclusiveBounds(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	base := time.Date(2026, 8, 24, 10, 0, 0, 0, time.UTC)

	for i, id := range []string{"e1", "e2", "e3"} {
		store.Append(ctx, flagEntry(id, "s1", "A", true, base.Add(time.Duration(i)*time.Hour)))
	}

	got, err := store.GetRange(ctx, "s1", base, base.Add(2*time.Hour))
	if err != nil {
		t.Fatalf("GetRange failed: %v", err)
	}
	if len(got) != 3 {
		t.Errorf("inclusive bounds must include endpoints, got %d", len(got))
	}

	got, err = store.GetRange(ctx, "s1", base.Add(time.Hour), base.Add(time.Hour))
	if err != nil {
		t.Fatalf("GetRange failed: %v", err)
	}
	if len(got) != 1 || got[0].ExecutionID != "e2" {
		t.Errorf("unexpected single-point range result: %+v", got)
	}
}

func TestGetRecentDescending(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	base := time.Now()

	for i, id := range []string{"e1", "e2", "e3"} {
		store.Append(ctx, flagEntry(id, "s1", "A", true, base.Add(time.Duration(i)*time.Second)))
	}

	got, err := store.GetRecent(ctx, "s1", 2)
	if err != nil {
		t.Fatalf("GetRecent failed: %v", err)
	}
	if len(got) != 2 || got[0].ExecutionID != "e3" || got[1].ExecutionID != "e2" {
		t.Errorf("expected e3,e2, got %+v", got)
	}
}

func TestGetRecentNonPositiveLimit(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	base := time.Now()

	for i, id := range []string{"e1", "e2"} {
		store.Append(ctx, flagEntry(id, "s1", "A", true, base.Add(time.Duration(i)*time.Second)))
	}

	for _, n := range []int{0, -1} {
		got, err := store.GetRecent(ctx, "s1", n)
		if err != nil {
			t.Fatalf("GetRecent(%d) failed: %v", n, err)
		}
		if len(got) != 0 {
			t.Errorf("GetRecent(%d) returned %d entries, want none", n, len(got))
		}
	}
}

func TestReplayReconstructsState(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	t1 := time.Date(2026, 8, 24, 10, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Hour)
	t3 := t2.Add(time.Hour)

	store.Append(ctx, flagEntry("e1", "s1", "A", true, t1))
	store.Append(ctx, flagEntry("e2", "s1", "B", true, t2))
	store.Append(ctx, flagEntry("e3", "s1", "A", false, t3))

	h, _ := store.Get(ctx, "s1")
	initial := flagState{Flags: map[string]bool{}}

	t.Run("full replay", func(t *testing.T) {
		got := Replay(h, initial, applyFlags)
		if got.Flags["A"] != false || got.Flags["B"] != true {
			t.Errorf("unexpected replayed state: %+v", got.Flags)
		}
	})

	t.Run("replay until t2", func(t *testing.T) {
		got := ReplayUntil(h, initial, t2, applyFlags)
		if got.Flags["A"] != true || got.Flags["B"] != true {
			t.Errorf("unexpected state at t2: %+v", got.Flags)
		}
	})

	t.Run("replay until before first entry", func(t *testing.T) {
		got := ReplayUntil(h, initial, t1.Add(-time.Minute), applyFlags)
		if len(got.Flags) != 0 {
			t.Errorf("expected initial state unchanged, got %+v", got.Flags)
		}
	})
}

func TestTimelineForPath(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	base := time.Now()

	store.Append(ctx, flagEntry("e1", "s1", "X", true, base))
	store.Append(ctx, flagEntry("e2", "s1", "Y", true, base.Add(time.Second)))
	store.Append(ctx, flagEntry("e3", "s1", "X", false, base.Add(2*time.Second)))

	h, _ := store.Get(ctx, "s1")

	points := h.TimelineForPath("flags.X")
	if len(points) != 2 {
		t.Fatalf("expected 2 timeline points for flags.X, got %d", len(points))
	}
	if points[0].ExecutionID != "e1" || points[1].ExecutionID != "e3" {
		t.Errorf("expected chronological subsequence e1,e3, got %q,%q",
			points[0].ExecutionID, points[1].ExecutionID)
	}
	if points[0].ActorID != "alice" || points[0].Reason != "rollout" {
		t.Errorf("expected actor and reason on timeline points: %+v", points[0])
	}

	// Prefix matching covers nested paths, not shared prefixes.
	if got := h.TimelineForPath("flags"); len(got) != 3 {
		t.Errorf("expected parent path to match all changes, got %d", len(got))
	}
	if got := h.TimelineForPath("flags.Xtra"); len(got) != 0 {
		t.Errorf("expected no matches for a sibling prefix, got %d", len(got))
	}
}

func TestHistoryStatistics(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	base := time.Now()

	e1 := flagEntry("e1", "s1", "A", true, base)
	e2 := flagEntry("e2", "s1", "B", true, base.Add(time.Second))
	e2.Context.Actor.ID = "bob"
	e3 := flagEntry("e3", "s1", "C", true, base.Add(2*time.Second))
	e3.Intent.Category = "billing"

	store.Append(ctx, e1)
	store.Append(ctx, e2)
	store.Append(ctx, e3)

	h, _ := store.Get(ctx, "s1")
	stats := h.Statistics()

	if stats.TotalMutations != 3 {
		t.Errorf("expected 3 mutations, got %d", stats.TotalMutations)
	}
	if stats.UniqueActors != 2 {
		t.Errorf("expected 2 unique actors, got %d", stats.UniqueActors)
	}
	if stats.MutationsByCategory["flags"] != 2 || stats.MutationsByCategory["billing"] != 1 {
		t.Errorf("unexpected category counts: %v", stats.MutationsByCategory)
	}
	if stats.AverageChangesPerMutation != 1.0 {
		t.Errorf("expected average 1.0 change per mutation, got %f", stats.AverageChangesPerMutation)
	}
}
