// Package eligibility provides candidate selection for review prompts.
//
// # Overview
//
// The eligibility package decides which single engagement, if any, should be
// offered for review, given a role's view of the engagement data:
//
//   - Initiator: the account owner who scheduled the engagements; the oldest
//     completed, unreviewed engagement wins
//   - Participant: the person assigned to carry engagements out; the first
//     unreviewed assignment in provider order wins
//
// # Usage
//
//	candidate := eligibility.SelectForInitiator(engagements)
//	if candidate == nil {
//	    // nothing eligible
//	}
//
// # Determinism
//
// Both selectors are pure functions: no I/O, no clock reads, no mutation of
// their inputs. Given the same inputs they always return the same candidate,
// which makes every temporal and ordering property directly unit-testable.
package eligibility
