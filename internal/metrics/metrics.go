// Package metrics exposes Prometheus collectors for the watchlist service.
package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Title outcomes recorded per external identifier during a sync.
const (
	OutcomeStored     = "stored"
	OutcomeUnresolved = "unresolved"
	OutcomeUnusable   = "unusable"
)

var (
	httpRequestsTotal          *prometheus.CounterVec
	httpRequestDurationSeconds *prometheus.HistogramVec
	syncRunsTotal              *prometheus.CounterVec
	syncTitlesTotal            *prometheus.CounterVec
	catalogRows                prometheus.Gauge

	once sync.Once
)

// Init initializes the Prometheus metrics collectors.
// It is safe to call this function multiple times.
func Init() {
	once.Do(func() {
		httpRequestsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests, labeled by method and code.",
			},
			[]string{"method", "code"},
		)

		httpRequestDurationSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Histogram of HTTP request latencies, labeled by method and route.",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 15, 60},
			},
			[]string{"method", "route"},
		)

		syncRunsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "watchrec_sync_runs_total",
				Help: "Total number of sync runs, labeled by status.",
			},
			[]string{"status"},
		)

		syncTitlesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "watchrec_sync_titles_total",
				Help: "Titles processed by sync runs, labeled by outcome.",
			},
			[]string{"outcome"},
		)

		catalogRows = promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "watchrec_catalog_rows",
				Help: "Rows read by the most recent recommendations request.",
			},
		)
	})
}

// Handler returns an http.Handler for exposing Prometheus metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveHTTPRequest increments the HTTP request metrics.
func ObserveHTTPRequest(method, route string, code int, duration time.Duration) {
	Init()
	httpRequestsTotal.WithLabelValues(method, strconv.Itoa(code)).Inc()
	httpRequestDurationSeconds.WithLabelValues(method, route).Observe(duration.Seconds())
}

// ObserveSyncRun increments the sync run counter for the given status.
func ObserveSyncRun(status string) {
	Init()
	syncRunsTotal.WithLabelValues(status).Inc()
}

// ObserveTitle records the outcome of one title within a sync run.
func ObserveTitle(outcome string) {
	Init()
	syncTitlesTotal.WithLabelValues(outcome).Inc()
}

// SetCatalogRows records the table size seen by the last full scan.
func SetCatalogRows(n int) {
	Init()
	catalogRows.Set(float64(n))
}
