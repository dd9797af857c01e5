// Package metrics defines the Prometheus metric collectors used by the index
// builder and the query service, and exposes an HTTP handler for scraping.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus collectors for the system.
type Metrics struct {
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge
	DocsIndexedTotal     prometheus.Counter
	WordsIndexedTotal    prometheus.Counter
	LeafFilesWritten     *prometheus.CounterVec
	LeafSplitsTotal      *prometheus.CounterVec
	LookupDuration       *prometheus.HistogramVec
	ResolveDuration      *prometheus.HistogramVec
	ResolveResultCount   prometheus.Histogram
	CacheHitsTotal       prometheus.Counter
	CacheMissesTotal     prometheus.Counter
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
		DocsIndexedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "docs_indexed_total",
				Help: "Total documents added to the content index tree.",
			},
		),
		WordsIndexedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "words_indexed_total",
				Help: "Total distinct words added to the name index tree.",
			},
		),
		LeafFilesWritten: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "index_leaf_files_written_total",
				Help: "Leaf files persisted per index tree.",
			},
			[]string{"tree"},
		),
		LeafSplitsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "index_leaf_splits_total",
				Help: "Leaf-to-internal node splits per index tree.",
			},
			[]string{"tree"},
		),
		LookupDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "index_lookup_duration_seconds",
				Help:    "Single-key index lookup latency in seconds.",
				Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
			},
			[]string{"tree"},
		),
		ResolveDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "resolve_duration_seconds",
				Help:    "Claim resolution latency in seconds.",
				Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
			},
			[]string{"cache_status"},
		),
		ResolveResultCount: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "resolve_result_count",
				Help:    "Document names returned per resolved claim.",
				Buckets: []float64{0, 1, 2, 5, 10, 25, 50},
			},
		),
		CacheHitsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "cache_hits_total",
				Help: "Total number of resolve cache hits.",
			},
		),
		CacheMissesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "cache_misses_total",
				Help: "Total number of resolve cache misses.",
			},
		),
	}

	prometheus.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.HTTPRequestsInFlight,
		m.DocsIndexedTotal,
		m.WordsIndexedTotal,
		m.LeafFilesWritten,
		m.LeafSplitsTotal,
		m.LookupDuration,
		m.ResolveDuration,
		m.ResolveResultCount,
		m.CacheHitsTotal,
		m.CacheMissesTotal,
	)

	return m
}

// Handler returns the Prometheus scrape HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
