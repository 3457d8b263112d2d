// Package review decides whether to interrupt the user with a review
// prompt.
//
// # Overview
//
// The review package implements prompt eligibility and throttling for a
// marketplace of care engagements. Given a trigger ("the user just reached
// a natural pause, should we ask for a review?"), it answers yes at most
// once per process lifetime and per cooldown window, for exactly one
// eligible engagement, and it degrades to "no prompt" on any failure. It
// combines:
//
//   - Temporal gating (debounce, lifetime latch, cooldown, debug bypass)
//   - A persistent skip registry for engagements the user declined
//   - Role-dependent candidate selection over fetched histories
//   - Partial-failure tolerance (fetch errors suppress, never crash)
//
// # Architecture
//
// The package is organized into sub-packages:
//
//   - gate: debounce, lifetime and cooldown admission control
//   - skiplist: persistent set of dismissed engagements
//   - eligibility: pure candidate selection rules
//
// The Engine in this package runs the decision cycle across them:
// Gating, Fetching, Resolving, Filtering, Committing, Presenting. Durable
// state lives behind kvstore.Store; engagement history comes from the
// host's EngagementStore.
//
// # Usage
//
//	eng, err := review.New(nil, store, engagements, sink,
//	    review.WithIdentity(review.StaticIdentity("user-1")))
//	if err != nil {
//	    return err
//	}
//	defer eng.Close()
//
//	// At a natural pause in the host UI:
//	if eng.Decide(ctx, review.RoleInitiator, review.PresentingContext{"screen": "trip-summary"}) {
//	    // the sink received exactly one candidate
//	}
//
//	// When the user dismisses the prompt:
//	eng.MarkSkipped(ctx, candidate.EngagementID)
//
// # Decision Outcomes
//
// Decide returns a bare bool. Suppressions are observable through logs and
// the florence_review_suppressions_total metric, labeled with the reason
// (debounced, cooldown, lifetime, no_identity, fetch_error, no_candidate,
// skipped, invariant).
//
// # Thread Safety
//
// Decide cycles are serialized under one mutex, so two concurrent calls can
// never both present. State accessors and skip operations use the gate's
// and registry's own locks and never block behind an in-flight fetch.
package review
