// Package metrics defines the Prometheus metric collectors used across the
// filtering pipeline and exposes an HTTP handler for scraping.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus collectors for the service.
type Metrics struct {
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	FilterRequestsTotal *prometheus.CounterVec
	FilterStageDuration *prometheus.HistogramVec
	ListsAssessedTotal  prometheus.Counter
	InvariantViolations *prometheus.CounterVec
	OptCacheHitsTotal   prometheus.Counter
	OptCacheMissesTotal prometheus.Counter
	CircuitBreakerState *prometheus.GaugeVec
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests by method, path, and status.",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds.",
				Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
			},
			[]string{"method", "path"},
		),
		HTTPRequestsInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed.",
			},
		),
		FilterRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "filter_requests_total",
				Help: "Total Filtering@k requests by metric, pruner, and status.",
			},
			[]string{"metric", "pruner", "status"},
		),
		FilterStageDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "filter_stage_duration_seconds",
				Help:    "Wall-clock cost of each composition stage (prune, exact).",
				Buckets: []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
			},
			[]string{"stage"},
		),
		ListsAssessedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "lists_assessed_total",
				Help: "Total relevance lists processed by the benchmark driver.",
			},
		),
		InvariantViolations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "invariant_violations_total",
				Help: "Total solution-checker invariant violations by strategy.",
			},
			[]string{"strategy"},
		),
		OptCacheHitsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "optcache_hits_total",
				Help: "Total OPT memoization cache hits.",
			},
		),
		OptCacheMissesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "optcache_misses_total",
				Help: "Total OPT memoization cache misses.",
			},
		),
		CircuitBreakerState: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "circuit_breaker_state",
				Help: "Circuit breaker state (0=closed, 1=open, 2=half-open).",
			},
			[]string{"name"},
		),
	}

	prometheus.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.HTTPRequestsInFlight,
		m.FilterRequestsTotal,
		m.FilterStageDuration,
		m.ListsAssessedTotal,
		m.InvariantViolations,
		m.OptCacheHitsTotal,
		m.OptCacheMissesTotal,
		m.CircuitBreakerState,
	)

	return m
}

// Handler returns the Prometheus scrape HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
