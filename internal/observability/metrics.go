// Package observability exposes Prometheus collectors for the HTTP server and
// the dataset sources.
package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"txdash/internal/dataset"
)

const namespace = "txdash"

var _ dataset.FetchObserver = (*Metrics)(nil)

// Metrics owns a private registry so that tests and multiple servers in one
// process do not collide on the global one.
type Metrics struct {
	registry *prometheus.Registry

	httpRequests    *prometheus.CounterVec
	httpDuration    *prometheus.HistogramVec
	fetchTotal      *prometheus.CounterVec
	fetchDuration   *prometheus.HistogramVec
	fetchRecords    *prometheus.GaugeVec
	rateLimited     prometheus.Counter
	validationFails *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		httpRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route, method and status code",
		}, []string{"route", "method", "code"}),
		httpDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 14), // 1ms to ~8s
		}, []string{"route"}),
		fetchTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dataset_fetch_total",
			Help:      "Dataset fetches by source and result",
		}, []string{"source", "result"}),
		fetchDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "dataset_fetch_duration_seconds",
			Help:      "Dataset fetch latency in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 12), // 5ms to ~10s
		}, []string{"source"}),
		fetchRecords: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "dataset_records",
			Help:      "Number of records returned by the last successful fetch",
		}, []string{"source"}),
		rateLimited: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limited_total",
			Help:      "Requests rejected by the rate limiter",
		}),
		validationFails: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "validation_failures_total",
			Help:      "Requests rejected for invalid query parameters, by field",
		}, []string{"field"}),
	}
}

// ObserveFetch implements dataset.FetchObserver.
func (m *Metrics) ObserveFetch(source string, took time.Duration, records int, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.fetchTotal.WithLabelValues(source, result).Inc()
	m.fetchDuration.WithLabelValues(source).Observe(took.Seconds())
	if err == nil {
		m.fetchRecords.WithLabelValues(source).Set(float64(records))
	}
}

// ObserveRequest records one finished HTTP request.
func (m *Metrics) ObserveRequest(route, method string, code int, took time.Duration) {
	m.httpRequests.WithLabelValues(route, method, strconv.Itoa(code)).Inc()
	m.httpDuration.WithLabelValues(route).Observe(took.Seconds())
}

// RateLimited counts one rejected request.
func (m *Metrics) RateLimited() {
	m.rateLimited.Inc()
}

// ValidationFailed counts one rejected request for field.
func (m *Metrics) ValidationFailed(field string) {
	m.validationFails.WithLabelValues(field).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
