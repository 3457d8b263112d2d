package kvstore

import (
	"context"
	"time"
)

// Store defines the interface for engine state persistence.
// Implementations must be thread-safe and support concurrent access.
//
// Missing keys are not errors: the getters return the zero value of their
// kind (zero time, nil slice, false). Reading a key that holds a different
// kind of value returns an error.
type Store interface {
	// GetTime retrieves the timestamp stored under key.
	// Returns the zero time if the key is unset. Returns error on system failure.
	GetTime(ctx context.Context, key string) (time.Time, error)

	// SetTime persists a timestamp under key, replacing any previous value.
	SetTime(ctx context.Context, key string, t time.Time) error

	// GetStringSet retrieves the string set stored under key.
	// Returns nil if the key is unset. Element order is unspecified.
	GetStringSet(ctx context.Context, key string) ([]string, error)

	// SetStringSet persists a string set under key, replacing any previous value.
	// The stored set contains each distinct element once.
	SetStringSet(ctx context.Context, key string, vals []string) error

	// GetBool retrieves the boolean stored under key.
	// Returns false if the key is unset.
	GetBool(ctx context.Context, key string) (bool, error)

	// SetBool persists a boolean under key, replacing any previous value.
	SetBool(ctx context.Context, key string, v bool) error

	// Delete removes the value stored under key. No-op if the key is unset.
	Delete(ctx context.Context, key string) error

	// Close releases any resources held by the store.
	// The store should not be used after calling Close.
	Close() error
}

// valueKind tags the type of value a key holds.
type valueKind string

const (
	kindTime valueKind = "time"
	kindSet  valueKind = "set"
	kindBool valueKind = "bool"
)

// timeLayout is the wire format for persisted timestamps.
// RFC 3339 with nanoseconds round-trips time.Time values exactly enough
// for gate comparisons and stays human-readable in every backend.
const timeLayout = time.RFC3339Nano

// dedupe returns vals with duplicates removed, preserving first-seen order.
// Stores persist sets, so duplicate elements collapse at the boundary.
func dedupe(vals []string) []string {
	if len(vals) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(vals))
	out := make([]string, 0, len(vals))
	for _, v := range vals {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
