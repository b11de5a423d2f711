// Package metrics registers the Prometheus instruments for the HTTP
// surface and provides the middleware that populates them.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	Requests *prometheus.CounterVec
	Duration *prometheus.HistogramVec
}

// New creates and registers the metrics on the given registerer.
// main passes prometheus.DefaultRegisterer; tests pass a fresh
// prometheus.NewRegistry so repeated registration cannot collide.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		Requests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "student_portal_http_requests_total",
			Help: "Total HTTP requests served, by route pattern and status code.",
		}, []string{"method", "path", "status"}),

		Duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "student_portal_http_request_duration_seconds",
			Help:    "HTTP request latency, by route pattern.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path"}),
	}
}

// statusRecorder captures the status code written by the wrapped
// handler. WriteHeader may never be called (implicit 200), so it
// starts at StatusOK.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// Instrument wraps a handler, labelling observations with the route
// PATTERN (e.g. "/api/students/{id}"), never the concrete URL — ids in
// label values would blow up the cardinality.
func (m *Metrics) Instrument(pattern string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		next(rec, r)

		m.Requests.WithLabelValues(
			r.Method, pattern, strconv.Itoa(rec.status),
		).Inc()
		m.Duration.WithLabelValues(r.Method, pattern).
			Observe(time.Since(start).Seconds())
	}
}
