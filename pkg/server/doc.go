// Package server hosts the review engine behind a local admin HTTP surface.
//
// The server is how operators and host processes drive a running daemon:
// trigger decision cycles, manage the skip registry, inspect gate state and
// scrape metrics. It binds to a loopback address by default and carries no
// authentication; deployments that expose it further out put their own
// proxy in front.
//
// # Basic Usage
//
//	srv := server.NewServer(&cfg.Server, cfg.Telemetry.Metrics.Path, engine, checker, logger)
//	if err := srv.Start(ctx); err != nil {
//	    return err
//	}
//
// Start blocks until ctx is cancelled, then drains in-flight requests within
// the configured shutdown timeout.
//
// # Routes
//
//   - GET  /healthz           - liveness probe
//   - GET  /readyz            - readiness probe (component checks)
//   - GET  /metrics           - Prometheus exposition (path configurable)
//   - POST /v1/decide         - run a decision cycle, returns {"presented": bool}
//   - POST /v1/skips          - add a skip entry
//   - GET  /v1/skips          - list skip entries
//   - GET  /v1/skips/{id}     - check one engagement
//   - POST /v1/lifetime/reset - clear the lifetime latch
//   - GET  /v1/state          - gate state snapshot
//   - POST /v1/state/clear    - wipe persisted state (requires server.allow_clear)
//
// # Middleware Chain
//
// Requests pass through, outermost first:
//  1. Recovery: turns panics into 500 responses
//  2. Logging: one structured line per request
//  3. RequestID: correlates responses and log lines
package server
