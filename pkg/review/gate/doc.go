// Package gate provides the temporal admission control for review prompts.
//
// # Overview
//
// The gate enforces three independent guards, checked in order:
//
//   - Debounce: a sub-second re-entrancy guard; calls arriving closer
//     together than the debounce interval are refused, and every call,
//     refused or not, re-arms the guard
//   - Lifetime latch: at most one prompt per process lifetime, cleared only
//     by an explicit lifecycle reset
//   - Cooldown: a multi-day minimum interval between successful prompts,
//     persisted so it survives process restarts
//
// Debug bypass disables the lifetime and cooldown checks but never the
// debounce: even debug builds must not stack prompts from a burst of
// triggers.
//
// # Usage
//
//	g, err := gate.New(nil, store, logger)
//	verdict := g.Admit(time.Now())
//	if !verdict.Admitted {
//	    // verdict.Reason says which guard refused
//	}
//	// after a candidate is finally selected:
//	g.RecordPrompt(ctx, time.Now())
//
// # Thread Safety
//
// All methods are safe for concurrent use. The debounce check-and-update is
// atomic: of two calls racing inside the debounce window, exactly one can
// be admitted.
package gate
