package review

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus collectors for the review engine. Registered once on the
// default registry at package init so every engine instance in a process
// shares them.
var (
	decisionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "florence_review_decisions_total",
			Help: "Total number of completed decision cycles by outcome",
		},
		[]string{"role", "outcome"},
	)

	suppressionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "florence_review_suppressions_total",
			Help: "Total number of suppressed decision cycles by reason",
		},
		[]string{"role", "reason"},
	)

	decisionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "florence_review_decision_duration_seconds",
			Help:    "Duration of decision cycles in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 15), // 1ms to ~16s
		},
		[]string{"role"},
	)

	presentationErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "florence_review_presentation_errors_total",
			Help: "Total number of sink failures after the prompt was committed",
		},
		[]string{"role"},
	)

	skiplistSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "florence_review_skiplist_size",
			Help: "Current number of engagements in the skip registry",
		},
	)
)

const (
	outcomePresented  = "presented"
	outcomeSuppressed = "suppressed"
)
