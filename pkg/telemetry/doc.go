// Package telemetry groups the observability building blocks.
//
// # Components
//
//   - logging: structured slog loggers with runtime level control
//   - metrics: the Prometheus scrape endpoint
//   - health: liveness and readiness probes
//
// # Usage
//
//	logger, levelVar, err := logging.New(logging.Config{
//	    Level:  cfg.Telemetry.Logging.Level,
//	    Format: cfg.Telemetry.Logging.Format,
//	})
//
//	checker := health.New(5 * time.Second)
//	checker.RegisterCheck("storage", storageProbe)
//
//	mux.HandleFunc("/healthz", checker.LivenessHandler())
//	mux.HandleFunc("/readyz", checker.ReadinessHandler())
//	mux.Handle(cfg.Telemetry.Metrics.Path, metrics.Handler())
package telemetry
