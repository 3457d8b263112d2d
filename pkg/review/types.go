package review

import (
	"context"
	"time"

	"florence-hq/vesta/pkg/review/eligibility"
	"florence-hq/vesta/pkg/review/gate"
)

// Role identifies which side of an engagement the current user is on. The
// role decides which collections are fetched and which selection rule runs.
type Role string

const (
	// RoleInitiator is the user who requested the engagement and reviews
	// the provider.
	RoleInitiator Role = "initiator"

	// RoleParticipant is the provider assigned to the engagement and
	// reviews the initiator.
	RoleParticipant Role = "participant"
)

// Valid reports whether the role is one of the known values.
func (r Role) Valid() bool {
	return r == RoleInitiator || r == RoleParticipant
}

// PresentingContext carries opaque presentation hints (screen name, locale,
// entry point) from the caller through to the sink. The engine never
// inspects it.
type PresentingContext map[string]string

// Candidate is the engagement selected for a review prompt, handed to the
// PresentationSink after the cycle commits.
type Candidate struct {
	// EngagementID identifies the engagement to review.
	EngagementID string `json:"engagement_id"`

	// Role is the role the deciding user holds on this engagement.
	Role Role `json:"role"`

	// Engagement is a copy of the selected engagement.
	Engagement eligibility.Engagement `json:"engagement"`

	// Context is the caller-supplied presenting context, passed through
	// untouched.
	Context PresentingContext `json:"context,omitempty"`
}

// EngagementStore provides the engagement history the engine selects from.
// Implementations must tolerate cancellation via the context; the engine
// bounds every call with its fetch timeout.
//
// Order matters for participants: FetchAssignmentRecords must return records
// in provider priority order, because the first unreviewed record wins.
type EngagementStore interface {
	// FetchForInitiator returns the current user's requested engagements.
	FetchForInitiator(ctx context.Context) ([]eligibility.Engagement, error)

	// FetchForParticipant returns the engagements the given user is
	// assigned to.
	FetchForParticipant(ctx context.Context, userID string) ([]eligibility.Engagement, error)

	// FetchAssignmentRecords returns the given user's assignment records in
	// provider priority order.
	FetchAssignmentRecords(ctx context.Context, userID string) ([]eligibility.AssignmentRecord, error)
}

// IdentityProvider resolves the user on whose behalf prompts are decided.
type IdentityProvider interface {
	// CurrentUserID returns the active user's ID. An empty ID means no one
	// is signed in and the cycle is suppressed.
	CurrentUserID(ctx context.Context) (string, error)
}

// StaticIdentity is an IdentityProvider that always returns a fixed user
// ID. Host applications with a single ambient user can wire their ID
// directly; tests and the daemon use it for fixtures.
type StaticIdentity string

// CurrentUserID implements IdentityProvider.
func (s StaticIdentity) CurrentUserID(context.Context) (string, error) {
	return string(s), nil
}

// PresentationSink receives the committed candidate and surfaces the prompt
// to the user. By the time Present is called the prompt already counts as
// shown: a sink error is logged and counted but cannot roll the decision
// back.
type PresentationSink interface {
	Present(ctx context.Context, c Candidate) error
}

// Phase is the engine's position in the decision cycle.
type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhaseGating     Phase = "gating"
	PhaseFetching   Phase = "fetching"
	PhaseResolving  Phase = "resolving"
	PhaseFiltering  Phase = "filtering"
	PhaseCommitting Phase = "committing"
	PhasePresenting Phase = "presenting"
)

// SuppressReason explains why a decision cycle ended without a prompt.
type SuppressReason string

const (
	// SuppressDebounced: the call arrived within the debounce interval.
	SuppressDebounced SuppressReason = "debounced"
	// SuppressCooldown: the last prompt is more recent than the cooldown.
	SuppressCooldown SuppressReason = "cooldown"
	// SuppressLifetime: a prompt was already shown this process lifetime.
	SuppressLifetime SuppressReason = "lifetime"
	// SuppressNoIdentity: no user is signed in.
	SuppressNoIdentity SuppressReason = "no_identity"
	// SuppressFetchError: an identity, engagement or assignment fetch
	// failed or timed out.
	SuppressFetchError SuppressReason = "fetch_error"
	// SuppressNoCandidate: no engagement is eligible for review.
	SuppressNoCandidate SuppressReason = "no_candidate"
	// SuppressSkipped: the selected engagement was previously dismissed.
	SuppressSkipped SuppressReason = "skipped"
	// SuppressInvariant: a programming error aborted the cycle.
	SuppressInvariant SuppressReason = "invariant"
)

// State is a point-in-time snapshot of the engine for admin surfaces and
// operator tooling.
type State struct {
	// Phase is the engine's current position in the decision cycle; "idle"
	// between cycles.
	Phase Phase `json:"phase"`

	// Gate is the admission gate's state.
	Gate gate.State `json:"gate"`

	// SkippedCount is the number of engagements in the skip registry.
	SkippedCount int `json:"skipped_count"`

	// CapturedAt is the wall-clock time the snapshot was taken.
	CapturedAt time.Time `json:"captured_at"`
}
