// Package metrics declares the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome label values
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomeBusy    = "busy"
)

var (
	GenerationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "audit_generations_total",
			Help: "Total number of audit generations by outcome",
		},
		[]string{"outcome"},
	)

	GenerationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "audit_generation_duration_seconds",
			Help:    "Duration of the model call for an audit in seconds",
			Buckets: []float64{1, 5, 10, 20, 30, 60, 90, 120, 180, 300},
		},
		[]string{"provider"},
	)

	GenerationsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "audit_generations_active",
			Help: "Number of audit generations in flight",
		},
	)

	ExportsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "audit_exports_total",
			Help: "Total number of report exports by format and outcome",
		},
		[]string{"format", "outcome"},
	)

	ExportDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "audit_export_duration_seconds",
			Help: "Duration of report export in seconds",
		},
		[]string{"format"},
	)

	SanitizedBytes = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "audit_sanitized_fragment_bytes",
			Help:    "Size of the sanitized report fragment",
			Buckets: prometheus.ExponentialBuckets(1024, 2, 10),
		},
	)

	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "audit_http_requests_total",
			Help: "Total HTTP requests by route pattern and status code",
		},
		[]string{"route", "method", "status"},
	)
)
