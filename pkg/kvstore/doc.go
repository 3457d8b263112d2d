// Package kvstore provides persistence backends for engine state.
//
// # Overview
//
// The kvstore package defines the typed key-value interface the review
// engine persists its durable state through (last prompt timestamp,
// skipped-engagement set, debug flags) and provides multiple
// implementations:
//
//   - Memory: Fast in-memory storage (default, no persistence)
//   - File: Single JSON document, rewritten atomically on each write
//   - SQLite: Lightweight file-based persistence with WAL snapshots
//   - Postgres: Production-grade persistence for shared deployments
//   - Redis: Low-latency shared persistence
//
// # Usage
//
//	// Create in-memory store (default)
//	store := kvstore.NewMemoryStore()
//
//	// Record a timestamp
//	err := store.SetTime(ctx, "review.last_prompt_at", time.Now())
//
//	// Read it back; missing keys yield the zero value, not an error
//	at, err := store.GetTime(ctx, "review.last_prompt_at")
//	if at.IsZero() {
//	    // never set
//	}
//
// # Value Kinds
//
// Each key holds exactly one kind of value (time, string set, or bool).
// Writing a key with a different kind replaces the previous value; reading
// a key with the wrong kind is an error. Missing keys are never errors:
// reads return the kind's zero value.
//
// # Thread Safety
//
// All store implementations are thread-safe and support concurrent access
// from multiple goroutines. Locking is handled internally by each backend.
package kvstore
