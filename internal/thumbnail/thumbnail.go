// Package thumbnail derives small preview images from stored photos.
package thumbnail

import (
	"context"
	"image"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/disintegration/gift"
	"golang.org/x/sync/errgroup"

	"github.com/silentcam/silentcam-go/internal/capture"
	"github.com/silentcam/silentcam-go/internal/datastore"
	"github.com/silentcam/silentcam-go/internal/errors"
	"github.com/silentcam/silentcam-go/internal/logging"
	"github.com/silentcam/silentcam-go/internal/observability/metrics"
)

const (
	// DefaultMaxWidth bounds thumbnail width when no explicit size is configured.
	DefaultMaxWidth = 200
	// DefaultMaxHeight bounds thumbnail height when no explicit size is configured.
	DefaultMaxHeight = 200
	// DefaultQuality is the JPEG encoder quality for thumbnails.
	DefaultQuality = 0.7

	// deriveConcurrency limits concurrent derivations during batch backfill.
	deriveConcurrency = 5
)

var (
	thumbnailMetrics *metrics.ThumbnailMetrics
	metricsMutex     sync.RWMutex

	serviceLogger *slog.Logger
	loggerOnce    sync.Once
)

// SetMetrics attaches metric collectors to the package. Safe to leave unset.
func SetMetrics(m *metrics.ThumbnailMetrics) {
	metricsMutex.Lock()
	defer metricsMutex.Unlock()
	thumbnailMetrics = m
}

func getMetrics() *metrics.ThumbnailMetrics {
	metricsMutex.RLock()
	defer metricsMutex.RUnlock()
	return thumbnailMetrics
}

func getLogger() *slog.Logger {
	loggerOnce.Do(func() {
		serviceLogger = logging.ForService("thumbnail")
		if serviceLogger == nil {
			serviceLogger = slog.Default().With("service", "thumbnail")
		}
	})
	return serviceLogger
}

// fitBox scales (width, height) to fit within (maxW, maxH) preserving aspect
// ratio. Landscape images bind to width first, portrait and square images to
// height first; when the derived dimension still exceeds its bound the result
// is re-derived from that bound, so both w <= maxW and h <= maxH always hold.
// Results round to the nearest pixel and never drop below 1.
func fitBox(width, height, maxW, maxH int) (int, int) {
	aspect := float64(width) / float64(height)

	var w, h float64
	if width > height {
		w = math.Min(float64(maxW), float64(width))
		h = w / aspect
		if h > float64(maxH) {
			h = float64(maxH)
			w = h * aspect
		}
	} else {
		h = math.Min(float64(maxH), float64(height))
		w = h * aspect
		if w > float64(maxW) {
			w = float64(maxW)
			h = w / aspect
		}
	}

	outW := int(math.Round(w))
	outH := int(math.Round(h))
	if outW < 1 {
		outW = 1
	}
	if outH < 1 {
		outH = 1
	}
	return outW, outH
}

// Derive decodes the given image bytes and produces a JPEG preview fitting
// within maxW x maxH. Failures are reported so callers can fall back to the
// full image; a thumbnail is never required for display.
func Derive(imageData []byte, maxW, maxH int, quality float64) (*capture.Artifact, error) {
	start := time.Now()

	if maxW <= 0 {
		maxW = DefaultMaxWidth
	}
	if maxH <= 0 {
		maxH = DefaultMaxHeight
	}
	if quality <= 0 || quality > 1 {
		quality = DefaultQuality
	}

	src, err := capture.DecodeImage(imageData)
	if err != nil {
		if m := getMetrics(); m != nil {
			m.IncrementDerivationErrors()
		}
		return nil, errors.New(err).
			Component("thumbnail").
			Category(errors.CategoryThumbnail).
			Build()
	}

	b := src.Bounds()
	w, h := fitBox(b.Dx(), b.Dy(), maxW, maxH)

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	g := gift.New(gift.Resize(w, h, gift.LanczosResampling))
	g.Draw(dst, src)

	artifact, err := capture.EncodeImage(dst, capture.FormatJPEG, quality)
	if err != nil {
		if m := getMetrics(); m != nil {
			m.IncrementDerivationErrors()
		}
		return nil, errors.New(err).
			Component("thumbnail").
			Category(errors.CategoryThumbnail).
			Build()
	}

	if m := getMetrics(); m != nil {
		m.IncrementDerivations()
		m.ObserveDeriveDuration(time.Since(start).Seconds())
	}
	return artifact, nil
}

// DeriveMissing fills in thumbnails for records that lack one, limiting to 5
// concurrent derivations. The returned slice preserves the input order. A
// record whose derivation fails is returned unchanged; one bad image must not
// sink the whole batch.
func DeriveMissing(ctx context.Context, records []datastore.Photo) []datastore.Photo {
	out := make([]datastore.Photo, len(records))
	copy(out, records)

	if m := getMetrics(); m != nil {
		m.IncrementBatchRuns()
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(deriveConcurrency)

	for i := range out {
		if out[i].HasThumbnail() {
			continue
		}
		i := i
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return nil
			}
			artifact, err := Derive(out[i].Image, DefaultMaxWidth, DefaultMaxHeight, DefaultQuality)
			if err != nil {
				getLogger().Warn("thumbnail derivation failed",
					"photo_id", out[i].ID,
					"error", err)
				return nil
			}
			out[i].Thumbnail = artifact.Data
			return nil
		})
	}

	// Workers never return errors; Wait only fences the goroutines.
	_ = g.Wait()
	return out
}
