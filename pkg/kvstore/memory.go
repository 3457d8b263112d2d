package kvstore

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// MemoryStore implements Store using in-memory storage.
// This is the default store and provides fast access with no persistence.
// All data is lost when the process exits.
//
// MemoryStore is thread-safe and supports concurrent access using sync.RWMutex.
type MemoryStore struct {
	// entries maps key to its typed value.
	entries map[string]memoryEntry

	// mu protects access to the entries map.
	mu sync.RWMutex
}

// memoryEntry holds one typed value. Only the field matching kind is valid.
type memoryEntry struct {
	kind valueKind
	t    time.Time
	set  []string
	b    bool
}

// NewMemoryStore creates a new in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
	}
}

// GetTime retrieves the timestamp stored under key.
func (m *MemoryStore) GetTime(ctx context.Context, key string) (time.Time, error) {
	if key == "" {
		return time.Time{}, fmt.Errorf("key cannot be empty")
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	entry, exists := m.entries[key]
	if !exists {
		return time.Time{}, nil
	}
	if entry.kind != kindTime {
		return time.Time{}, fmt.Errorf("key %q holds %s, want %s", key, entry.kind, kindTime)
	}

	return entry.t, nil
}

// SetTime persists a timestamp under key.
func (m *MemoryStore) SetTime(ctx context.Context, key string, t time.Time) error {
	if key == "" {
		return fmt.Errorf("key cannot be empty")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[key] = memoryEntry{kind: kindTime, t: t}
	return nil
}

// GetStringSet retrieves the string set stored under key.
func (m *MemoryStore) GetStringSet(ctx context.Context, key string) ([]string, error) {
	if key == "" {
		return nil, fmt.Errorf("key cannot be empty")
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	entry, exists := m.entries[key]
	if !exists {
		return nil, nil
	}
	if entry.kind != kindSet {
		return nil, fmt.Errorf("key %q holds %s, want %s", key, entry.kind, kindSet)
	}

	// Return a copy so callers cannot alias the stored slice.
	out := make([]string, len(entry.set))
	copy(out, entry.set)
	return out, nil
}

// SetStringSet persists a string set under key.
func (m *MemoryStore) SetStringSet(ctx context.Context, key string, vals []string) error {
	if key == "" {
		return fmt.Errorf("key cannot be empty")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[key] = memoryEntry{kind: kindSet, set: dedupe(vals)}
	return nil
}

// GetBool retrieves the boolean stored under key.
func (m *MemoryStore) GetBool(ctx context.Context, key string) (bool, error) {
	if key == "" {
		return false, fmt.Errorf("key cannot be empty")
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	entry, exists := m.entries[key]
	if !exists {
		return false, nil
	}
	if entry.kind != kindBool {
		return false, fmt.Errorf("key %q holds %s, want %s", key, entry.kind, kindBool)
	}

	return entry.b, nil
}

// SetBool persists a boolean under key.
func (m *MemoryStore) SetBool(ctx context.Context, key string, v bool) error {
	if key == "" {
		return fmt.Errorf("key cannot be empty")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[key] = memoryEntry{kind: kindBool, b: v}
	return nil
}

// Delete removes the value stored under key.
func (m *MemoryStore) Delete(ctx context.Context, key string) error {
	if key == "" {
		return fmt.Errorf("key cannot be empty")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.entries, key)
	return nil
}

// Close releases any resources held by the store.
func (m *MemoryStore) Close() error {
	return nil
}

// Size returns the current number of stored keys.
// This is useful for monitoring and testing.
func (m *MemoryStore) Size() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}
