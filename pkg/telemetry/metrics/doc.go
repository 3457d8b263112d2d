// Package metrics exposes the Prometheus scrape endpoint.
//
// # Overview
//
// Metric families live next to the code they instrument: the review engine
// registers its counters and histograms through promauto against the default
// registry. This package only serves that registry over HTTP.
//
// # Usage
//
//	mux := http.NewServeMux()
//	mux.Handle("/metrics", metrics.Handler())
//
// # Prometheus Endpoint
//
// Metrics appear in the standard exposition format:
//
//	# HELP florence_review_decisions_total Review prompt decisions by outcome.
//	# TYPE florence_review_decisions_total counter
//	florence_review_decisions_total{presented="false",reason="debounced"} 12
package metrics
