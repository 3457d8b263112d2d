package eligibility

import "time"

// Engagement is the engine's read-only view of one unit of completed (or
// in-flight) activity, fetched from an external store. The review marker is
// role-specific: the same underlying engagement carries separate markers for
// the initiator's review and each participant's review, and providers return
// the marker matching the role they were queried for.
type Engagement struct {
	// ID uniquely identifies the engagement.
	ID string

	// StartsAt is when the engagement began.
	StartsAt time.Time

	// EndsAt is when the engagement completed. Only meaningful when
	// Completed is true.
	EndsAt time.Time

	// Completed reports whether the engagement ran to completion.
	Completed bool

	// ReviewedAt is when the querying role submitted its review,
	// or nil if it has not.
	ReviewedAt *time.Time
}

// AssignmentRecord links a participant to an engagement they carried out.
// Records arrive in provider order; that order encodes upstream priority
// and selection honors it rather than imposing its own.
type AssignmentRecord struct {
	// EngagementID references the engagement this assignment belongs to.
	EngagementID string

	// ParticipantID identifies the assigned participant.
	ParticipantID string

	// ReviewedAt is when the participant submitted their review,
	// or nil if they have not.
	ReviewedAt *time.Time
}

// Candidate is the outcome of a selection: the one engagement to offer for
// review. Candidates are ephemeral; they live for a single decision cycle
// and are never persisted.
type Candidate struct {
	// EngagementID identifies the selected engagement.
	EngagementID string

	// Engagement is a copy of the selected engagement.
	Engagement Engagement
}
