// Package engagement provides reference implementations of the engine's
// EngagementStore for development, testing and the bundled daemon.
//
// # Overview
//
// Production hosts adapt their own session APIs to review.EngagementStore;
// these stores exist so the engine can run end to end without one:
//
//   - MemoryStore: seedable fixtures, defensive copies, no persistence
//   - SQLiteStore: file-backed history with engagements and assignments
//     tables, assignment order preserved via an explicit priority column
//
// Assignment order is load-bearing: participants are prompted for the
// first unreviewed assignment in priority order, so both stores return
// records exactly as seeded.
package engagement
