// Package metrics counts station activity with Prometheus collectors. The CLI
// is short-lived, so metrics are flushed to a node_exporter textfile instead
// of being served.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "attendance"

// Metrics holds the station collectors. A nil *Metrics records nothing.
type Metrics struct {
	registry *prometheus.Registry

	enrollments      *prometheus.CounterVec
	verifications    *prometheus.CounterVec
	events           *prometheus.CounterVec
	captureRetries   *prometheus.CounterVec
	compareFailures  prometheus.Counter
	operationSeconds *prometheus.HistogramVec
}

// New creates the collectors on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		enrollments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "enrollments_total",
			Help:      "Enrollment attempts by outcome.",
		}, []string{"status"}),
		verifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "verifications_total",
			Help:      "Verification attempts by outcome.",
		}, []string{"status"}),
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_total",
			Help:      "Recorded attendance events by kind.",
		}, []string{"kind"}),
		captureRetries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "capture_retries_total",
			Help:      "Transient sensor reads that were retried, by reason.",
		}, []string{"reason"}),
		compareFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "compare_failures_total",
			Help:      "Template comparisons that failed and were treated as non-matching.",
		}),
		operationSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "operation_duration_seconds",
			Help:      "Duration of station operations including time spent waiting for a finger.",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 30, 60},
		}, []string{"operation", "result"}),
	}

	m.registry.MustRegister(
		m.enrollments,
		m.verifications,
		m.events,
		m.captureRetries,
		m.compareFailures,
		m.operationSeconds,
	)
	return m
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) Enrollment(status string) {
	if m == nil {
		return
	}
	m.enrollments.WithLabelValues(status).Inc()
}

func (m *Metrics) Verification(status string) {
	if m == nil {
		return
	}
	m.verifications.WithLabelValues(status).Inc()
}

func (m *Metrics) Event(kind string) {
	if m == nil {
		return
	}
	m.events.WithLabelValues(kind).Inc()
}

func (m *Metrics) CaptureRetry(reason string) {
	if m == nil {
		return
	}
	m.captureRetries.WithLabelValues(reason).Inc()
}

func (m *Metrics) CompareFailure() {
	if m == nil {
		return
	}
	m.compareFailures.Inc()
}

// ObserveOperation records how long an operation took; err selects the result label.
func (m *Metrics) ObserveOperation(operation string, started time.Time, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.operationSeconds.WithLabelValues(operation, result).Observe(time.Since(started).Seconds())
}

// WriteTextfile writes all metrics to path in the text exposition format.
// The file is replaced atomically.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil || path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
