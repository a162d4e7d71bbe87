// Package jobmetrics instruments the asynq handlers in jobs/.
package jobmetrics

import (
	"errors"
	"sync"
	"time"

	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
)

// Run outcomes used as the status label.
const (
	StatusSuccess = "success"
	StatusFailure = "failure"
	StatusSkipped = "skipped"
)

// Metrics holds the worker's collectors.
type Metrics struct {
	runs     *prometheus.CounterVec
	failures *prometheus.CounterVec
	duration *prometheus.HistogramVec
	lowStock *prometheus.CounterVec
}

var (
	sharedOnce    sync.Once
	sharedMetrics *Metrics
)

// NewMetrics registers the job collectors on reg. A nil reg shares one set
// registered on the Prometheus default registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg != nil {
		return register(reg)
	}
	sharedOnce.Do(func() { sharedMetrics = register(prometheus.DefaultRegisterer) })
	return sharedMetrics
}

func register(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "companyhub_jobs_total",
			Help: "Job runs by task and outcome (success, failure, skipped).",
		}, []string{"job", "status"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "companyhub_jobs_failures_total",
			Help: "Job runs that returned an error, including runs abandoned without retry.",
		}, []string{"job"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "companyhub_job_duration_seconds",
			Help:    "Job run duration.",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		}, []string{"job"}),
		lowStock: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "companyhub_low_stock_alerts_total",
			Help: "Low-stock items seen by the scan, by warehouse and outcome (raised, duplicate).",
		}, []string{"warehouse", "outcome"}),
	}
	reg.MustRegister(m.runs, m.failures, m.duration, m.lowStock)
	return m
}

// Run times one job execution.
type Run struct {
	m     *Metrics
	job   string
	start time.Time
}

// Track starts timing job.
func (m *Metrics) Track(job string) *Run {
	return &Run{m: m, job: job, start: time.Now()}
}

// End records the run and passes err through. Errors wrapping
// asynq.SkipRetry count as skipped.
func (r *Run) End(err error) error {
	if r == nil || r.m == nil {
		return err
	}
	status := StatusSuccess
	switch {
	case err == nil:
	case errors.Is(err, asynq.SkipRetry):
		status = StatusSkipped
	default:
		status = StatusFailure
	}
	if err != nil {
		r.m.failures.WithLabelValues(r.job).Inc()
	}
	r.m.runs.WithLabelValues(r.job, status).Inc()
	r.m.duration.WithLabelValues(r.job).Observe(time.Since(r.start).Seconds())
	return err
}

// LowStock records one warehouse pass of the low-stock scan.
func (m *Metrics) LowStock(warehouse string, raised, duplicate int) {
	if m == nil {
		return
	}
	if warehouse == "" {
		warehouse = "unknown"
	}
	if raised > 0 {
		m.lowStock.WithLabelValues(warehouse, "raised").Add(float64(raised))
	}
	if duplicate > 0 {
		m.lowStock.WithLabelValues(warehouse, "duplicate").Add(float64(duplicate))
	}
}
