package backend

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type metrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// newMetrics registers the backend collectors. A nil registerer disables them.
func newMetrics(registerer prometheus.Registerer) *metrics {
	if registerer == nil {
		return nil
	}
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "companyhub_backend_requests_total",
		Help: "Backend API calls partitioned by method and response status.",
	}, []string{"method", "status"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "companyhub_backend_request_duration_seconds",
		Help:    "Latency of backend API calls.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method"})
	registerer.MustRegister(requests, duration)
	return &metrics{requests: requests, duration: duration}
}

func (m *metrics) observe(method, status string, start time.Time) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(method, status).Inc()
	m.duration.WithLabelValues(method).Observe(time.Since(start).Seconds())
}
