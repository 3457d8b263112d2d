// Package skiplist tracks engagements whose review prompt the user has
// dismissed.
//
// # Overview
//
// A skipped engagement is permanently excluded from prompting. Entries
// never expire and there is no automatic pruning: "asked and declined"
// stays true for the life of the record, and an engagement that ages out
// of the candidate window stops being selected anyway. The registry keeps
// the full set in memory and writes changes through to a kvstore.Store so
// skips survive restarts.
//
// # Usage
//
//	reg, err := skiplist.New(store, logger)
//	reg.MarkSkipped(ctx, "eng-5412")
//	if reg.IsSkipped("eng-5412") {
//	    // suppress the prompt
//	}
//
// # Thread Safety
//
// All methods are safe for concurrent use. Reads take a shared lock and
// never touch the store.
package skiplist
