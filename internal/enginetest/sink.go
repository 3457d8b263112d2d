package enginetest

import (
	"context"
	"sync"

	"florence-hq/vesta/pkg/review"
)

// Sink is a review.PresentationSink that records every candidate it
// receives.
type Sink struct {
	mu        sync.Mutex
	presented []review.Candidate
	err       error
}

// NewSink creates an empty sink.
func NewSink() *Sink {
	return &Sink{}
}

// Fail makes Present return err while still recording the candidate. Nil
// restores success.
func (s *Sink) Fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

// Present implements review.PresentationSink.
func (s *Sink) Present(_ context.Context, c review.Candidate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.presented = append(s.presented, c)
	return s.err
}

// Presented returns a copy of all recorded candidates in order.
func (s *Sink) Presented() []review.Candidate {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]review.Candidate(nil), s.presented...)
}

// Count returns the number of recorded candidates.
func (s *Sink) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.presented)
}

// Last returns the most recent candidate, if any.
func (s *Sink) Last() (review.Candidate, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.presented) == 0 {
		return review.Candidate{}, false
	}
	return s.presented[len(s.presented)-1], true
}
