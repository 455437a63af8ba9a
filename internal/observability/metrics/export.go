package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// ExportMetrics contains all Prometheus metrics related to the export sink chain.
type ExportMetrics struct {
	Exports      *prometheus.CounterVec
	ExportErrors prometheus.Counter
	Cancelled    prometheus.Counter
	registry     *prometheus.Registry
}

// NewExportMetrics creates a new instance of ExportMetrics.
// It returns an error if metric registration fails.
func NewExportMetrics(registry *prometheus.Registry) (*ExportMetrics, error) {
	m := &ExportMetrics{registry: registry}
	if err := m.initMetrics(); err != nil {
		return nil, fmt.Errorf("failed to initialize Export metrics: %w", err)
	}
	if err := registry.Register(m); err != nil {
		return nil, fmt.Errorf("failed to register Export metrics: %w", err)
	}
	return m, nil
}

// initMetrics initializes all metrics for ExportMetrics.
func (m *ExportMetrics) initMetrics() error {
	m.Exports = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "export_deliveries_total",
		Help: "Total number of successful exports, labeled by delivery method.",
	}, []string{"method"})

	m.ExportErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "export_errors_total",
		Help: "Total number of failed export attempts.",
	})

	m.Cancelled = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "export_cancelled_total",
		Help: "Total number of exports cancelled by the user.",
	})

	return nil
}

// IncrementExports increases the export counter for the given method by one.
func (m *ExportMetrics) IncrementExports(method string) {
	m.Exports.WithLabelValues(method).Inc()
}

// IncrementExportErrors increases the export error counter by one.
func (m *ExportMetrics) IncrementExportErrors() {
	m.ExportErrors.Inc()
}

// IncrementCancelled increases the cancelled export counter by one.
func (m *ExportMetrics) IncrementCancelled() {
	m.Cancelled.Inc()
}

// Describe implements the prometheus.Collector interface.
func (m *ExportMetrics) Describe(ch chan<- *prometheus.Desc) {
	m.Exports.Describe(ch)
	m.ExportErrors.Describe(ch)
	m.Cancelled.Describe(ch)
}

// Collect implements the prometheus.Collector interface.
func (m *ExportMetrics) Collect(ch chan<- prometheus.Metric) {
	m.Exports.Collect(ch)
	m.ExportErrors.Collect(ch)
	m.Cancelled.Collect(ch)
}
