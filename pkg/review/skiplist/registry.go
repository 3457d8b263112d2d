package skiplist

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"florence-hq/vesta/pkg/kvstore"
)

// DefaultStorageKey is the storage key under which the skip set is
// persisted.
const DefaultStorageKey = "review.skipped"

// Registry is the set of skipped engagement IDs. Membership checks are
// served from memory; mutations write through to the backing store.
type Registry struct {
	mu      sync.RWMutex
	store   kvstore.Store
	logger  *slog.Logger
	key     string
	entries map[string]struct{}
}

// New creates a registry backed by the given store. A nil store falls back
// to an in-memory store, which makes skips process-local. Previously
// persisted entries are loaded immediately; a load failure is logged and
// treated as an empty set.
func New(store kvstore.Store, logger *slog.Logger) (*Registry, error) {
	if store == nil {
		store = kvstore.NewMemoryStore()
	}
	if logger == nil {
		logger = slog.Default()
	}

	r := &Registry{
		store:   store,
		logger:  logger.With("component", "review.skiplist"),
		key:     DefaultStorageKey,
		entries: make(map[string]struct{}),
	}

	vals, err := store.GetStringSet(context.Background(), r.key)
	if err != nil {
		r.logger.Error("failed to load skip set, starting empty",
			"key", r.key,
			"error", err)
	} else {
		for _, v := range vals {
			r.entries[v] = struct{}{}
		}
	}

	return r, nil
}

// MarkSkipped records that the user dismissed the prompt for the given
// engagement. Marking an already-skipped engagement is a no-op and does
// not touch the store. A persistence failure is logged and the in-memory
// entry stands.
func (r *Registry) MarkSkipped(ctx context.Context, engagementID string) error {
	if engagementID == "" {
		return fmt.Errorf("engagement ID cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.entries[engagementID]; ok {
		return nil
	}
	r.entries[engagementID] = struct{}{}

	if err := r.store.SetStringSet(ctx, r.key, r.entriesLocked()); err != nil {
		r.logger.Error("failed to persist skip set, continuing with in-memory entry",
			"key", r.key,
			"engagement_id", engagementID,
			"error", err)
	}
	return nil
}

// IsSkipped reports whether the given engagement has been skipped.
func (r *Registry) IsSkipped(engagementID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.entries[engagementID]
	return ok
}

// Entries returns the skipped engagement IDs in lexicographic order.
func (r *Registry) Entries() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.entriesLocked()
}

// Len returns the number of skipped engagements.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Clear removes every entry, in memory and in the store. Intended for
// tests and operator tooling.
func (r *Registry) Clear(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries = make(map[string]struct{})
	if err := r.store.Delete(ctx, r.key); err != nil {
		return fmt.Errorf("failed to clear skip set: %w", err)
	}
	return nil
}

// entriesLocked returns a sorted snapshot. Callers must hold r.mu.
func (r *Registry) entriesLocked() []string {
	out := make([]string, 0, len(r.entries))
	for id := range r.entries {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
