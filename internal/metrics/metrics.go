// Package metrics defines the Prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "flowtrack",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		},
		[]string{"method", "route", "status"},
	)

	LedgerAdjustments = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "flowtrack",
			Subsystem: "ledger",
			Name:      "adjustments_total",
		},
		[]string{"type", "outcome"},
	)

	ReportCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "flowtrack",
			Name:      "report_cache_total",
		},
		[]string{"result"},
	)
)

// Report cache results.
const (
	CacheHit  = "hit"
	CacheMiss = "miss"
)

// Ledger adjustment outcomes.
const (
	OutcomeApplied      = "applied"
	OutcomeReversed     = "reversed"
	OutcomeInsufficient = "insufficient"
	OutcomeNotFound     = "not_found"
	OutcomeError        = "error"
)

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
