// Package enginetest provides scriptable test doubles for the review
// engine: an engagement store with error and latency injection, a
// recording sink, a failable identity provider and a manual clock.
package enginetest
