package engagement

import (
	"context"
	"sync"

	"florence-hq/vesta/pkg/review/eligibility"
)

// MemoryStore is an in-memory EngagementStore seeded with fixtures. All
// reads return copies, so callers can mutate results freely.
type MemoryStore struct {
	mu          sync.RWMutex
	initiator   []eligibility.Engagement
	participant map[string][]eligibility.Engagement
	assignments map[string][]eligibility.AssignmentRecord
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		participant: make(map[string][]eligibility.Engagement),
		assignments: make(map[string][]eligibility.AssignmentRecord),
	}
}

// SeedInitiator replaces the local user's requested engagements.
func (s *MemoryStore) SeedInitiator(engs ...eligibility.Engagement) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.initiator = append([]eligibility.Engagement(nil), engs...)
}

// SeedParticipant replaces the engagements the given user is assigned to.
func (s *MemoryStore) SeedParticipant(userID string, engs ...eligibility.Engagement) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.participant[userID] = append([]eligibility.Engagement(nil), engs...)
}

// SeedAssignments replaces the given user's assignment records. Seed order
// is provider priority order.
func (s *MemoryStore) SeedAssignments(userID string, recs ...eligibility.AssignmentRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.assignments[userID] = append([]eligibility.AssignmentRecord(nil), recs...)
}

// FetchForInitiator implements review.EngagementStore.
func (s *MemoryStore) FetchForInitiator(context.Context) ([]eligibility.Engagement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]eligibility.Engagement(nil), s.initiator...), nil
}

// FetchForParticipant implements review.EngagementStore.
func (s *MemoryStore) FetchForParticipant(_ context.Context, userID string) ([]eligibility.Engagement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]eligibility.Engagement(nil), s.participant[userID]...), nil
}

// FetchAssignmentRecords implements review.EngagementStore.
func (s *MemoryStore) FetchAssignmentRecords(_ context.Context, userID string) ([]eligibility.AssignmentRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]eligibility.AssignmentRecord(nil), s.assignments[userID]...), nil
}
