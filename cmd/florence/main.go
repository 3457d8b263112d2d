// Florence Vesta is a review-prompt eligibility and throttling daemon.
//
// Given "should we interrupt the user to ask for feedback?" triggers, it
// decides whether exactly one completed engagement should be surfaced for
// review right now, providing:
//   - Multi-level temporal gating (debounce, per-run latch, multi-day cooldown)
//   - Persistent deduplication through a user-dismissal registry
//   - Role-dependent candidate selection (initiator vs. participant)
//   - Graceful degradation when engagement fetches fail
//
// Usage:
//
//	# Start daemon with default configuration
//	florence run
//
//	# Start with custom configuration file
//	florence run --config /path/to/florence.yaml
//
//	# Show version information
//	florence version
//
//	# Validate a configuration file
//	florence validate --config florence.yaml
//
//	# Inspect or clear persisted gate state
//	florence state show
//	florence state clear --yes
//
//	# Manage the skip registry
//	florence skip add care-session-42
//	florence skip list --format json
//
// For complete documentation, see: https://github.com/florence-hq/vesta
package main

func main() {
	Execute()
}
