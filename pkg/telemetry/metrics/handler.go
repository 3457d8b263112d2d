package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handler returns the HTTP handler for the Prometheus metrics endpoint.
//
// It serves everything registered with the default registry, which is where
// the engine packages register their metrics, in the standard exposition
// format. Mount it at the path from TelemetryConfig (typically "/metrics").
//
// Example:
//
//	mux.Handle("/metrics", metrics.Handler())
func Handler() http.Handler {
	return promhttp.HandlerFor(
		prometheus.DefaultGatherer,
		promhttp.HandlerOpts{
			// OpenMetrics encoding is preferred over the legacy text format
			EnableOpenMetrics: true,

			ErrorHandling: promhttp.ContinueOnError,
		},
	)
}

// HandlerFor returns an HTTP handler serving a specific gatherer. Tests use
// it to scrape an isolated registry instead of the process-wide one.
func HandlerFor(g prometheus.Gatherer, opts promhttp.HandlerOpts) http.Handler {
	return promhttp.HandlerFor(g, opts)
}
