// Package observability provides metrics collectors for the capture pipeline.
package observability

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/silentcam/silentcam-go/internal/observability/metrics"
)

// Metrics holds all the metric collectors for the application.
type Metrics struct {
	registry  *prometheus.Registry
	Capture   *metrics.CaptureMetrics
	Thumbnail *metrics.ThumbnailMetrics
	Datastore *metrics.DatastoreMetrics
	Export    *metrics.ExportMetrics
}

// NewMetrics creates a new instance of Metrics, initializing all metric collectors.
// It returns an error if any metric collector fails to initialize.
func NewMetrics() (*Metrics, error) {
	registry := prometheus.NewRegistry()

	captureMetrics, err := metrics.NewCaptureMetrics(registry)
	if err != nil {
		return nil, fmt.Errorf("failed to create Capture metrics: %w", err)
	}

	thumbnailMetrics, err := metrics.NewThumbnailMetrics(registry)
	if err != nil {
		return nil, fmt.Errorf("failed to create Thumbnail metrics: %w", err)
	}

	datastoreMetrics, err := metrics.NewDatastoreMetrics(registry)
	if err != nil {
		return nil, fmt.Errorf("failed to create Datastore metrics: %w", err)
	}

	exportMetrics, err := metrics.NewExportMetrics(registry)
	if err != nil {
		return nil, fmt.Errorf("failed to create Export metrics: %w", err)
	}

	return &Metrics{
		registry:  registry,
		Capture:   captureMetrics,
		Thumbnail: thumbnailMetrics,
		Datastore: datastoreMetrics,
		Export:    exportMetrics,
	}, nil
}

// Registry returns the prometheus registry holding all collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
