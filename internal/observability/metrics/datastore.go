package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// DatastoreMetrics contains all Prometheus metrics related to photo persistence.
type DatastoreMetrics struct {
	Operations        *prometheus.CounterVec
	OperationErrors   *prometheus.CounterVec
	OperationDuration prometheus.Histogram
	StoredPhotos      prometheus.Gauge
	registry          *prometheus.Registry
}

// NewDatastoreMetrics creates a new instance of DatastoreMetrics.
// It returns an error if metric registration fails.
func NewDatastoreMetrics(registry *prometheus.Registry) (*DatastoreMetrics, error) {
	m := &DatastoreMetrics{registry: registry}
	if err := m.initMetrics(); err != nil {
		return nil, fmt.Errorf("failed to initialize Datastore metrics: %w", err)
	}
	if err := registry.Register(m); err != nil {
		return nil, fmt.Errorf("failed to register Datastore metrics: %w", err)
	}
	return m, nil
}

// initMetrics initializes all metrics for DatastoreMetrics.
func (m *DatastoreMetrics) initMetrics() error {
	m.Operations = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "datastore_operations_total",
		Help: "Total number of datastore operations, labeled by operation.",
	}, []string{"operation"})

	m.OperationErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "datastore_operation_errors_total",
		Help: "Total number of failed datastore operations, labeled by operation.",
	}, []string{"operation"})

	m.OperationDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "datastore_operation_duration_seconds",
		Help:    "Duration of datastore operations in seconds.",
		Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
	})

	m.StoredPhotos = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "datastore_stored_photos",
		Help: "Current number of photos in the store.",
	})

	return nil
}

// IncrementOperation increases the operation counter for the given operation by one.
func (m *DatastoreMetrics) IncrementOperation(operation string) {
	m.Operations.WithLabelValues(operation).Inc()
}

// IncrementOperationError increases the error counter for the given operation by one.
func (m *DatastoreMetrics) IncrementOperationError(operation string) {
	m.OperationErrors.WithLabelValues(operation).Inc()
}

// ObserveOperationDuration records the duration of a datastore operation.
func (m *DatastoreMetrics) ObserveOperationDuration(seconds float64) {
	m.OperationDuration.Observe(seconds)
}

// SetStoredPhotos updates the stored photo count gauge.
func (m *DatastoreMetrics) SetStoredPhotos(count float64) {
	m.StoredPhotos.Set(count)
}

// Describe implements the prometheus.Collector interface.
func (m *DatastoreMetrics) Describe(ch chan<- *prometheus.Desc) {
	m.Operations.Describe(ch)
	m.OperationErrors.Describe(ch)
	m.OperationDuration.Describe(ch)
	m.StoredPhotos.Describe(ch)
}

// Collect implements the prometheus.Collector interface.
func (m *DatastoreMetrics) Collect(ch chan<- prometheus.Metric) {
	m.Operations.Collect(ch)
	m.OperationErrors.Collect(ch)
	m.OperationDuration.Collect(ch)
	m.StoredPhotos.Collect(ch)
}
