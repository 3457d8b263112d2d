package enginetest

import (
	"context"
	"sync"
	"time"

	"florence-hq/vesta/pkg/review/eligibility"
)

// Store is a scriptable review.EngagementStore. Fixtures are set up front;
// individual fetches can be made to fail or stall.
type Store struct {
	mu          sync.Mutex
	engagements []eligibility.Engagement
	records     []eligibility.AssignmentRecord

	initiatorErr   error
	participantErr error
	assignmentsErr error
	delay          time.Duration

	initiatorCalls   int
	participantCalls int
	assignmentCalls  int
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{}
}

// SetEngagements replaces the engagement fixtures.
func (s *Store) SetEngagements(engs ...eligibility.Engagement) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.engagements = append([]eligibility.Engagement(nil), engs...)
}

// SetAssignments replaces the assignment record fixtures. Order is
// preserved: it is the provider priority order.
func (s *Store) SetAssignments(recs ...eligibility.AssignmentRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append([]eligibility.AssignmentRecord(nil), recs...)
}

// FailInitiator makes FetchForInitiator return err. Nil restores success.
func (s *Store) FailInitiator(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.initiatorErr = err
}

// FailParticipant makes FetchForParticipant return err. Nil restores
// success.
func (s *Store) FailParticipant(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.participantErr = err
}

// FailAssignments makes FetchAssignmentRecords return err. Nil restores
// success.
func (s *Store) FailAssignments(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.assignmentsErr = err
}

// SetDelay makes every fetch stall for d before returning, honoring
// context cancellation. For timeout tests.
func (s *Store) SetDelay(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delay = d
}

// Calls returns the per-method fetch counts.
func (s *Store) Calls() (initiator, participant, assignments int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.initiatorCalls, s.participantCalls, s.assignmentCalls
}

// FetchForInitiator implements review.EngagementStore.
func (s *Store) FetchForInitiator(ctx context.Context) ([]eligibility.Engagement, error) {
	s.mu.Lock()
	s.initiatorCalls++
	err := s.initiatorErr
	engs := append([]eligibility.Engagement(nil), s.engagements...)
	s.mu.Unlock()

	if werr := s.wait(ctx); werr != nil {
		return nil, werr
	}
	if err != nil {
		return nil, err
	}
	return engs, nil
}

// FetchForParticipant implements review.EngagementStore.
func (s *Store) FetchForParticipant(ctx context.Context, _ string) ([]eligibility.Engagement, error) {
	s.mu.Lock()
	s.participantCalls++
	err := s.participantErr
	engs := append([]eligibility.Engagement(nil), s.engagements...)
	s.mu.Unlock()

	if werr := s.wait(ctx); werr != nil {
		return nil, werr
	}
	if err != nil {
		return nil, err
	}
	return engs, nil
}

// FetchAssignmentRecords implements review.EngagementStore.
func (s *Store) FetchAssignmentRecords(ctx context.Context, _ string) ([]eligibility.AssignmentRecord, error) {
	s.mu.Lock()
	s.assignmentCalls++
	err := s.assignmentsErr
	recs := append([]eligibility.AssignmentRecord(nil), s.records...)
	s.mu.Unlock()

	if werr := s.wait(ctx); werr != nil {
		return nil, werr
	}
	if err != nil {
		return nil, err
	}
	return recs, nil
}

func (s *Store) wait(ctx context.Context) error {
	s.mu.Lock()
	d := s.delay
	s.mu.Unlock()
	if d <= 0 {
		return nil
	}
	select {
	case <-time.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
