// Package metrics exposes Prometheus counters for report activity.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Fetch outcomes.
const (
	OutcomeCacheHit    = "cache_hit"
	OutcomeQueried     = "queried"
	OutcomeUnavailable = "unavailable"
	OutcomeError       = "error"
)

// Metrics groups the collectors used by the report service and exporter.
type Metrics struct {
	registry *prometheus.Registry

	Fetches       *prometheus.CounterVec
	QueryDuration prometheus.Histogram
	RowsReturned  prometheus.Counter
	Exports       prometheus.Counter
	CacheEntries  prometheus.Gauge
}

// New registers all collectors on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		Fetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "certificados_fetches_total",
			Help: "Certificate fetches by outcome.",
		}, []string{"outcome"}),
		QueryDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "certificados_query_duration_seconds",
			Help:    "Time spent running the certificate view query.",
			Buckets: prometheus.DefBuckets,
		}),
		RowsReturned: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "certificados_rows_returned_total",
			Help: "Rows returned by the certificate view query.",
		}),
		Exports: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "certificados_exports_total",
			Help: "Spreadsheets generated.",
		}),
		CacheEntries: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "certificados_cache_entries",
			Help: "Date ranges currently held in the result cache.",
		}),
	}
	m.registry.MustRegister(
		m.Fetches,
		m.QueryDuration,
		m.RowsReturned,
		m.Exports,
		m.CacheEntries,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
