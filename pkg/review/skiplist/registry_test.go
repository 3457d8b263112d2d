package skiplist

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"

	"florence-hq/vesta/pkg/kvstore"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	r, err := New(kvstore.NewMemoryStore(), discardLogger())
	if err != nil {
		t.Fatalf("failed to create registry: %v", err)
	}
	return r
}

// countingStore counts SetStringSet calls on top of a real store.
type countingStore struct {
	kvstore.Store
	mu   sync.Mutex
	sets int
}

func (c *countingStore) SetStringSet(ctx context.Context, key string, vals []string) error {
	c.mu.Lock()
	c.sets++
	c.mu.Unlock()
	return c.Store.SetStringSet(ctx, key, vals)
}

func (c *countingStore) setCalls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sets
}

// failingStore errors on every operation.
type failingStore struct{ kvstore.Store }

func (failingStore) GetStringSet(context.Context, string) ([]string, error) {
	return nil, errors.New("store down")
}
func (failingStore) SetStringSet(context.Context, string, []string) error {
	return errors.New("store down")
}

func TestRegistry_MarkAndCheck(t *testing.T) {
	r := newTestRegistry(t)

	if r.IsSkipped("eng-1") {
		t.Fatal("expected unknown engagement to not be skipped")
	}
	if err := r.MarkSkipped(context.Background(), "eng-1"); err != nil {
		t.Fatalf("failed to mark skip: %v", err)
	}
	if !r.IsSkipped("eng-1") {
		t.Fatal("expected engagement to be skipped after marking")
	}
	if r.IsSkipped("eng-2") {
		t.Fatal("expected unrelated engagement to not be skipped")
	}
}

func TestRegistry_MarkIsIdempotent(t *testing.T) {
	cs := &countingStore{Store: kvstore.NewMemoryStore()}
	r, err := New(cs, discardLogger())
	if err != nil {
		t.Fatalf("failed to create registry: %v", err)
	}

	for i := 0; i < 3; i++ {
		if err := r.MarkSkipped(context.Background(), "eng-1"); err != nil {
			t.Fatalf("mark %d failed: %v", i, err)
		}
	}

	if got := r.Len(); got != 1 {
		t.Errorf("expected 1 entry, got %d", got)
	}
	if got := cs.setCalls(); got != 1 {
		t.Errorf("expected a single store write for repeated marks, got %d", got)
	}
}

func TestRegistry_RejectsEmptyID(t *testing.T) {
	r := newTestRegistry(t)
	if err := r.MarkSkipped(context.Background(), ""); err == nil {
		t.Fatal("expected error for empty engagement ID")
	}
}

func TestRegistry_PersistsAcrossInstances(t *testing.T) {
	store := kvstore.NewMemoryStore()

	r1, err := New(store, discardLogger())
	if err != nil {
		t.Fatalf("failed to create registry: %v", err)
	}
	for _, id := range []string{"eng-3", "eng-1", "eng-2"} {
		if err := r1.MarkSkipped(context.Background(), id); err != nil {
			t.Fatalf("failed to mark %s: %v", id, err)
		}
	}

	r2, err := New(store, discardLogger())
	if err != nil {
		t.Fatalf("failed to create second registry: %v", err)
	}
	if !r2.IsSkipped("eng-2") {
		t.Fatal("expected skip to survive a restart")
	}
	got := r2.Entries()
	want := []string{"eng-1", "eng-2", "eng-3"}
	if len(got) != len(want) {
		t.Fatalf("expected %d entries, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("entry %d: expected %q, got %q", i, want[i], got[i])
		}
	}
}

func TestRegistry_EntriesReturnsCopy(t *testing.T) {
	r := newTestRegistry(t)
	if err := r.MarkSkipped(context.Background(), "eng-1"); err != nil {
		t.Fatalf("failed to mark skip: %v", err)
	}

	entries := r.Entries()
	entries[0] = "mutated"

	if !r.IsSkipped("eng-1") || r.IsSkipped("mutated") {
		t.Fatal("expected registry to be isolated from mutations of returned slice")
	}
}

func TestRegistry_Clear(t *testing.T) {
	store := kvstore.NewMemoryStore()
	r, err := New(store, discardLogger())
	if err != nil {
		t.Fatalf("failed to create registry: %v", err)
	}

	if err := r.MarkSkipped(context.Background(), "eng-1"); err != nil {
		t.Fatalf("failed to mark skip: %v", err)
	}
	if err := r.Clear(context.Background()); err != nil {
		t.Fatalf("failed to clear registry: %v", err)
	}

	if r.Len() != 0 || r.IsSkipped("eng-1") {
		t.Fatal("expected empty registry after clear")
	}
	vals, err := store.GetStringSet(context.Background(), DefaultStorageKey)
	if err != nil {
		t.Fatalf("failed to read store: %v", err)
	}
	if vals != nil {
		t.Fatalf("expected persisted set removed, got %v", vals)
	}
}

func TestRegistry_PersistenceFailureKeepsMemory(t *testing.T) {
	r, err := New(failingStore{}, discardLogger())
	if err != nil {
		t.Fatalf("expected construction to succeed despite failing store, got %v", err)
	}

	if err := r.MarkSkipped(context.Background(), "eng-1"); err != nil {
		t.Fatalf("expected mark to succeed despite failing store, got %v", err)
	}
	if !r.IsSkipped("eng-1") {
		t.Fatal("expected in-memory entry despite persistence failure")
	}
}

func TestRegistry_ConcurrentAccess(t *testing.T) {
	r := newTestRegistry(t)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(2)
		go func(n int) {
			defer wg.Done()
			id := fmt.Sprintf("eng-%d", n)
			if err := r.MarkSkipped(context.Background(), id); err != nil {
				t.Errorf("failed to mark %s: %v", id, err)
			}
		}(i)
		go func(n int) {
			defer wg.Done()
			r.IsSkipped(fmt.Sprintf("eng-%d", n))
		}(i)
	}
	wg.Wait()

	if got := r.Len(); got != 16 {
		t.Fatalf("expected 16 entries, got %d", got)
	}
}

func BenchmarkRegistryIsSkipped(b *testing.B) {
	r, err := New(kvstore.NewMemoryStore(), discardLogger())
	if err != nil {
		b.Fatalf("failed to create registry: %v", err)
	}
	for i := 0; i < 1000; i++ {
		if err := r.MarkSkipped(context.Background(), fmt.Sprintf("eng-%d", i)); err != nil {
			b.Fatalf("failed to seed: %v", err)
		}
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		r.IsSkipped("eng-500")
	}
}
