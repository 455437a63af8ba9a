// Package export delivers captured photos to the outside world through an
// ordered chain of sinks.
package export

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/silentcam/silentcam-go/internal/capture"
	"github.com/silentcam/silentcam-go/internal/errors"
	"github.com/silentcam/silentcam-go/internal/logging"
	"github.com/silentcam/silentcam-go/internal/observability/metrics"
)

// Method identifies how a photo left the system.
type Method string

const (
	// MethodShare delivers through a platform share handler.
	MethodShare Method = "share"
	// MethodDownload writes the photo into the download directory.
	MethodDownload Method = "download"
)

// ErrCancelled reports that the user aborted the delivery. Cancellation stops
// the chain: no further sink is tried.
var ErrCancelled = errors.NewStd("export cancelled by user")

// Result describes the outcome of a delivery attempt.
type Result struct {
	Success bool
	Method  Method
	Message string
}

// Sink is a single delivery strategy.
type Sink interface {
	// Available reports whether this sink can deliver right now. Capability
	// probing happens here, not in the capture pipeline.
	Available() bool
	Method() Method
	Deliver(ctx context.Context, artifact *capture.Artifact, filename string) (Result, error)
}

// Chain tries sinks in order until one delivers.
type Chain struct {
	sinks   []Sink
	metrics *metrics.ExportMetrics
	logger  *slog.Logger
}

// NewChain builds a chain from the given sinks. Order matters: earlier sinks
// are preferred delivery methods.
func NewChain(sinks ...Sink) *Chain {
	logger := logging.ForService("export")
	if logger == nil {
		logger = slog.Default().With("service", "export")
	}
	return &Chain{sinks: sinks, logger: logger}
}

// SetMetrics attaches metric collectors to the chain. Safe to leave unset.
func (c *Chain) SetMetrics(m *metrics.ExportMetrics) {
	c.metrics = m
}

// DefaultFilename names an exported photo after its capture id.
func DefaultFilename(id int64, format capture.Format) string {
	return fmt.Sprintf("silent_photo_%d.%s", id, format.Extension())
}

// Deliver hands the artifact to the first available sink. An unavailable sink
// is skipped; a failing sink falls through to the next one. Cancellation is
// the exception: a cancelled delivery returns immediately without trying
// further sinks, since the user said no to this photo, not to this sink.
func (c *Chain) Deliver(ctx context.Context, artifact *capture.Artifact, filename string) (Result, error) {
	var lastErr error

	for _, sink := range c.sinks {
		if !sink.Available() {
			continue
		}

		result, err := sink.Deliver(ctx, artifact, filename)
		if err == nil {
			if c.metrics != nil {
				c.metrics.IncrementExports(string(result.Method))
			}
			c.logger.Info("photo exported",
				"method", result.Method,
				"filename", filename,
				"bytes", artifact.Size())
			return result, nil
		}

		if errors.Is(err, ErrCancelled) || errors.Is(err, context.Canceled) {
			if c.metrics != nil {
				c.metrics.IncrementCancelled()
			}
			c.logger.Info("export cancelled", "method", sink.Method(), "filename", filename)
			return Result{Success: false, Method: sink.Method(), Message: "cancelled"},
				errors.New(ErrCancelled).
					Component("export").
					Category(errors.CategoryCancellation).
					Build()
		}

		c.logger.Warn("export sink failed, trying next",
			"method", sink.Method(),
			"filename", filename,
			"error", err)
		lastErr = err
	}

	if c.metrics != nil {
		c.metrics.IncrementExportErrors()
	}
	if lastErr == nil {
		lastErr = errors.NewStd("no export sink available")
	}
	return Result{Success: false, Message: "export failed"},
		errors.New(fmt.Errorf("delivering %s: %w", filename, lastErr)).
			Component("export").
			Category(errors.CategoryExport).
			FileContext(filename, int64(artifact.Size())).
			Build()
}

// ShareHandler is the platform hook behind a ShareSink. It reports whether
// sharing succeeded; returning ErrCancelled marks a user abort.
type ShareHandler func(ctx context.Context, artifact *capture.Artifact, filename string) error

// ShareSink wraps a pluggable platform share handler. With no handler
// configured it reports unavailable and the chain moves on.
type ShareSink struct {
	mu      sync.RWMutex
	handler ShareHandler
}

// NewShareSink creates a share sink with an optional handler.
func NewShareSink(handler ShareHandler) *ShareSink {
	return &ShareSink{handler: handler}
}

// SetHandler installs or clears the platform share handler.
func (s *ShareSink) SetHandler(handler ShareHandler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handler = handler
}

// Available reports whether a share handler is configured.
func (s *ShareSink) Available() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.handler != nil
}

// Method returns MethodShare.
func (s *ShareSink) Method() Method { return MethodShare }

// Deliver invokes the share handler.
func (s *ShareSink) Deliver(ctx context.Context, artifact *capture.Artifact, filename string) (Result, error) {
	s.mu.RLock()
	handler := s.handler
	s.mu.RUnlock()

	if handler == nil {
		return Result{}, errors.NewStd("no share handler configured")
	}
	if err := handler(ctx, artifact, filename); err != nil {
		return Result{}, err
	}
	return Result{Success: true, Method: MethodShare, Message: "shared"}, nil
}
