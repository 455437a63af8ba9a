// Package metrics provides custom Prometheus metrics for the capture pipeline components.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// CaptureMetrics contains all Prometheus metrics related to the capture pipeline.
type CaptureMetrics struct {
	Captures        *prometheus.CounterVec
	CaptureErrors   prometheus.Counter
	CaptureDuration prometheus.Histogram
	OutputBytes     prometheus.Histogram
	registry        *prometheus.Registry
}

// NewCaptureMetrics creates a new instance of CaptureMetrics.
// It requires a Prometheus registry to register the metrics.
// It returns an error if metric registration fails.
func NewCaptureMetrics(registry *prometheus.Registry) (*CaptureMetrics, error) {
	m := &CaptureMetrics{registry: registry}
	if err := m.initMetrics(); err != nil {
		return nil, fmt.Errorf("failed to initialize Capture metrics: %w", err)
	}
	if err := registry.Register(m); err != nil {
		return nil, fmt.Errorf("failed to register Capture metrics: %w", err)
	}
	return m, nil
}

// initMetrics initializes all metrics for CaptureMetrics.
func (m *CaptureMetrics) initMetrics() error {
	m.Captures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "capture_frames_total",
		Help: "Total number of frames captured, labeled by resolution tier.",
	}, []string{"tier"})

	m.CaptureErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "capture_errors_total",
		Help: "Total number of failed capture attempts.",
	})

	m.CaptureDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "capture_duration_seconds",
		Help:    "Duration of the scale-and-encode step in seconds.",
		Buckets: prometheus.ExponentialBuckets(0.01, 2, 10),
	})

	m.OutputBytes = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "capture_output_bytes",
		Help:    "Size of encoded capture artifacts in bytes.",
		Buckets: prometheus.ExponentialBuckets(1024, 4, 8),
	})

	return nil
}

// IncrementCaptures increases the capture counter for the given tier by one.
func (m *CaptureMetrics) IncrementCaptures(tier string) {
	m.Captures.WithLabelValues(tier).Inc()
}

// IncrementCaptureErrors increases the capture error counter by one.
func (m *CaptureMetrics) IncrementCaptureErrors() {
	m.CaptureErrors.Inc()
}

// ObserveCaptureDuration records the duration of a capture operation.
func (m *CaptureMetrics) ObserveCaptureDuration(seconds float64) {
	m.CaptureDuration.Observe(seconds)
}

// ObserveOutputBytes records the size of an encoded artifact.
func (m *CaptureMetrics) ObserveOutputBytes(size float64) {
	m.OutputBytes.Observe(size)
}

// Describe implements the prometheus.Collector interface.
func (m *CaptureMetrics) Describe(ch chan<- *prometheus.Desc) {
	m.Captures.Describe(ch)
	m.CaptureErrors.Describe(ch)
	m.CaptureDuration.Describe(ch)
	m.OutputBytes.Describe(ch)
}

// Collect implements the prometheus.Collector interface.
func (m *CaptureMetrics) Collect(ch chan<- prometheus.Metric) {
	m.Captures.Collect(ch)
	m.CaptureErrors.Collect(ch)
	m.CaptureDuration.Collect(ch)
	m.OutputBytes.Collect(ch)
}
