package enginetest

import (
	"context"
	"sync"
	"time"
)

// Clock is a manual time source for driving the engine's injected clock.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

// NewClock creates a clock frozen at start.
func NewClock(start time.Time) *Clock {
	return &Clock{now: start}
}

// Now returns the current frozen time.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d.
func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// Set moves the clock to t.
func (c *Clock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

// Identity is a review.IdentityProvider with a settable user and failure.
type Identity struct {
	mu     sync.Mutex
	userID string
	err    error
}

// NewIdentity creates an identity provider returning userID.
func NewIdentity(userID string) *Identity {
	return &Identity{userID: userID}
}

// SetUserID changes the returned user ID. Empty means signed out.
func (i *Identity) SetUserID(userID string) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.userID = userID
}

// Fail makes CurrentUserID return err. Nil restores success.
func (i *Identity) Fail(err error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.err = err
}

// CurrentUserID implements review.IdentityProvider.
func (i *Identity) CurrentUserID(context.Context) (string, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.err != nil {
		return "", i.err
	}
	return i.userID, nil
}
