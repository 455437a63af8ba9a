package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// ThumbnailMetrics contains all Prometheus metrics related to thumbnail derivation.
type ThumbnailMetrics struct {
	Derivations      prometheus.Counter
	DerivationErrors prometheus.Counter
	BatchRuns        prometheus.Counter
	DeriveDuration   prometheus.Histogram
	registry         *prometheus.Registry
}

// NewThumbnailMetrics creates a new instance of ThumbnailMetrics.
// It returns an error if metric registration fails.
func NewThumbnailMetrics(registry *prometheus.Registry) (*ThumbnailMetrics, error) {
	m := &ThumbnailMetrics{registry: registry}
	if err := m.initMetrics(); err != nil {
		return nil, fmt.Errorf("failed to initialize Thumbnail metrics: %w", err)
	}
	if err := registry.Register(m); err != nil {
		return nil, fmt.Errorf("failed to register Thumbnail metrics: %w", err)
	}
	return m, nil
}

// initMetrics initializes all metrics for ThumbnailMetrics.
func (m *ThumbnailMetrics) initMetrics() error {
	m.Derivations = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "thumbnail_derivations_total",
		Help: "Total number of thumbnails derived.",
	})

	m.DerivationErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "thumbnail_derivation_errors_total",
		Help: "Total number of failed thumbnail derivations.",
	})

	m.BatchRuns = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "thumbnail_batch_runs_total",
		Help: "Total number of batch backfill runs.",
	})

	m.DeriveDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "thumbnail_derive_duration_seconds",
		Help:    "Duration of single thumbnail derivations in seconds.",
		Buckets: prometheus.ExponentialBuckets(0.005, 2, 10),
	})

	return nil
}

// IncrementDerivations increases the derivation counter by one.
func (m *ThumbnailMetrics) IncrementDerivations() {
	m.Derivations.Inc()
}

// IncrementDerivationErrors increases the derivation error counter by one.
func (m *ThumbnailMetrics) IncrementDerivationErrors() {
	m.DerivationErrors.Inc()
}

// IncrementBatchRuns increases the batch run counter by one.
func (m *ThumbnailMetrics) IncrementBatchRuns() {
	m.BatchRuns.Inc()
}

// ObserveDeriveDuration records the duration of a thumbnail derivation.
func (m *ThumbnailMetrics) ObserveDeriveDuration(seconds float64) {
	m.DeriveDuration.Observe(seconds)
}

// Describe implements the prometheus.Collector interface.
func (m *ThumbnailMetrics) Describe(ch chan<- *prometheus.Desc) {
	m.Derivations.Describe(ch)
	m.DerivationErrors.Describe(ch)
	m.BatchRuns.Describe(ch)
	m.DeriveDuration.Describe(ch)
}

// Collect implements the prometheus.Collector interface.
func (m *ThumbnailMetrics) Collect(ch chan<- prometheus.Metric) {
	m.Derivations.Collect(ch)
	m.DerivationErrors.Collect(ch)
	m.BatchRuns.Collect(ch)
	m.DeriveDuration.Collect(ch)
}
