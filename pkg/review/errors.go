package review

import (
	"errors"
	"fmt"
)

// Common review errors that can be checked with errors.Is().
var (
	// ErrFetchFailed is returned when an identity, engagement or assignment
	// fetch fails or times out.
	ErrFetchFailed = errors.New("engagement fetch failed")

	// ErrPersistenceFailed is returned when reading or writing durable gate
	// or skip state fails.
	ErrPersistenceFailed = errors.New("state persistence failed")

	// ErrInvariantViolated is returned when the engine detects a programming
	// error such as an unknown role.
	ErrInvariantViolated = errors.New("invariant violated")
)

// FetchError wraps a failure to load data from a provider. Fetch errors are
// transient: the engine suppresses the cycle and tries again on the next
// trigger, it never retries within a cycle.
type FetchError struct {
	// Resource names what was being fetched ("identity", "engagements",
	// "assignments").
	Resource string

	// Err is the underlying provider error.
	Err error
}

// Error implements the error interface.
func (e *FetchError) Error() string {
	return fmt.Sprintf("failed to fetch %s: %v", e.Resource, e.Err)
}

// Unwrap returns the underlying error.
func (e *FetchError) Unwrap() error {
	return e.Err
}

// Is implements error matching for errors.Is().
func (e *FetchError) Is(target error) bool {
	return target == ErrFetchFailed
}

// PersistenceError wraps a failure to read or write durable state. The
// in-memory value always stands; the durable copy catches up on the next
// successful write.
type PersistenceError struct {
	// Op describes the failed operation.
	Op string

	// Err is the underlying storage error.
	Err error
}

// Error implements the error interface.
func (e *PersistenceError) Error() string {
	return fmt.Sprintf("failed to %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// Is implements error matching for errors.Is().
func (e *PersistenceError) Is(target error) bool {
	return target == ErrPersistenceFailed
}

// InvariantError reports a programming error inside the engine. In strict
// mode these panic; otherwise they are logged and the cycle is suppressed.
type InvariantError struct {
	// Detail describes the violated invariant.
	Detail string
}

// Error implements the error interface.
func (e *InvariantError) Error() string {
	return fmt.Sprintf("invariant violated: %s", e.Detail)
}

// Is implements error matching for errors.Is().
func (e *InvariantError) Is(target error) bool {
	return target == ErrInvariantViolated
}
