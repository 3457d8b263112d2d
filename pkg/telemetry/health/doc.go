// Package health implements liveness and readiness probes.
//
// # Overview
//
// The health package provides a small registry of named component probes
// and the HTTP handlers that expose them, suitable for Kubernetes probe
// configuration or a local supervisor.
//
// # Endpoints
//
//   - /healthz: liveness probe, answers 200 while the process runs
//   - /readyz: readiness probe, runs every registered component probe
//
// # Usage
//
//	checker := health.New(5 * time.Second)
//
//	checker.RegisterCheck("storage", func(ctx context.Context) error {
//	    _, err := store.GetTime(ctx, "review.last_prompt_at")
//	    if err != nil && !errors.Is(err, kvstore.ErrKeyNotFound) {
//	        return err
//	    }
//	    return nil
//	})
//
//	mux.HandleFunc("/healthz", checker.LivenessHandler())
//	mux.HandleFunc("/readyz", checker.ReadinessHandler())
//
// # Liveness vs Readiness
//
// Liveness says the process is alive; it never runs probes, so a wedged
// storage backend cannot get the process restarted. Readiness says the
// process can do useful work: every registered probe runs concurrently,
// each under the checker's timeout, and any failure degrades the overall
// status to a 503 response.
//
// # Example Response
//
// Readiness response (/readyz):
//
//	{
//	    "status": "ready",
//	    "checks": {
//	        "storage": {"status": "ok", "duration_ms": 0.4},
//	        "engagements": {"status": "ok", "duration_ms": 1.1}
//	    },
//	    "timestamp": "2026-08-25T10:30:00Z"
//	}
package health
