package steam

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles Prometheus collectors for the Steam client.
type Metrics struct {
	Registry             *prometheus.Registry
	RequestsTotal        *prometheus.CounterVec
	RequestDuration      *prometheus.HistogramVec
	CatalogEntries       prometheus.Gauge
	DetailsResolvedTotal prometheus.Counter
	ErrorsTotal          *prometheus.CounterVec
}

// NewMetrics constructs and registers all metrics on a dedicated registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	requests := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "steam_requests_total",
			Help: "Total HTTP requests issued to the Steam API.",
		},
		[]string{"endpoint"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "steam_request_duration_seconds",
			Help:    "HTTP request latency for Steam API requests.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)
	catalogEntries := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "steam_catalog_entries",
			Help: "Number of entries in the last fetched app catalog.",
		},
	)
	resolved := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "steam_details_resolved_total",
			Help: "Total number of app details decoded successfully.",
		},
	)
	errorsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "steam_errors_total",
			Help: "Total number of client errors by type.",
		},
		[]string{"error_type"},
	)

	registry.MustRegister(requests, requestDuration, catalogEntries, resolved, errorsTotal)

	return &Metrics{
		Registry:             registry,
		RequestsTotal:        requests,
		RequestDuration:      requestDuration,
		CatalogEntries:       catalogEntries,
		DetailsResolvedTotal: resolved,
		ErrorsTotal:          errorsTotal,
	}
}

// IncRequest increments the requests total counter.
func (m *Metrics) IncRequest(endpoint string) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(endpoint).Inc()
}

// ObserveDuration records an HTTP request duration.
func (m *Metrics) ObserveDuration(endpoint string, d time.Duration) {
	if m == nil {
		return
	}
	m.RequestDuration.WithLabelValues(endpoint).Observe(d.Seconds())
}

// SetCatalogSize records the size of the last fetched catalog.
func (m *Metrics) SetCatalogSize(n int) {
	if m == nil {
		return
	}
	m.CatalogEntries.Set(float64(n))
}

// IncResolved increments the resolved details counter.
func (m *Metrics) IncResolved() {
	if m == nil {
		return
	}
	m.DetailsResolvedTotal.Inc()
}

// IncError increments the errors counter for a type label.
func (m *Metrics) IncError(errorType string) {
	if m == nil {
		return
	}
	m.ErrorsTotal.WithLabelValues(errorType).Inc()
}
