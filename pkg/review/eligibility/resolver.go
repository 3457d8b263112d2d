package eligibility

// SelectForInitiator picks the engagement an initiator should be asked to
// review: the completed, unreviewed engagement with the earliest completion
// time. Equal completion times break to the lexicographically smallest ID so
// the choice is stable regardless of input order.
//
// Returns nil when no engagement is eligible.
func SelectForInitiator(engagements []Engagement) *Candidate {
	var best *Engagement

	for i := range engagements {
		e := &engagements[i]
		if !e.Completed || e.ReviewedAt != nil {
			continue
		}
		if best == nil || earlier(e, best) {
			best = e
		}
	}

	if best == nil {
		return nil
	}
	return &Candidate{EngagementID: best.ID, Engagement: *best}
}

// earlier reports whether a should be preferred over b for the initiator:
// strictly earlier completion, or equal completion and smaller ID.
func earlier(a, b *Engagement) bool {
	if a.EndsAt.Before(b.EndsAt) {
		return true
	}
	if a.EndsAt.Equal(b.EndsAt) {
		return a.ID < b.ID
	}
	return false
}

// SelectForParticipant picks the engagement a participant should be asked to
// review. Assignment records are walked in the order the provider supplied
// them; the first record that is unreviewed and whose engagement is present
// and completed wins. Records referencing engagements missing from the list
// are skipped.
//
// Returns nil when no assignment is eligible.
func SelectForParticipant(engagements []Engagement, records []AssignmentRecord) *Candidate {
	if len(records) == 0 {
		return nil
	}

	byID := make(map[string]*Engagement, len(engagements))
	for i := range engagements {
		byID[engagements[i].ID] = &engagements[i]
	}

	for _, r := range records {
		if r.ReviewedAt != nil {
			continue
		}
		e, ok := byID[r.EngagementID]
		if !ok || !e.Completed {
			continue
		}
		return &Candidate{EngagementID: e.ID, Engagement: *e}
	}

	return nil
}
