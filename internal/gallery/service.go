// Package gallery is the orchestration layer between the camera session, the
// capture pipeline, the photo store and the export chain. UI collaborators
// talk to this package only.
package gallery

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/silentcam/silentcam-go/internal/capture"
	"github.com/silentcam/silentcam-go/internal/conf"
	"github.com/silentcam/silentcam-go/internal/datastore"
	"github.com/silentcam/silentcam-go/internal/errors"
	"github.com/silentcam/silentcam-go/internal/export"
	"github.com/silentcam/silentcam-go/internal/frame"
	"github.com/silentcam/silentcam-go/internal/logging"
	"github.com/silentcam/silentcam-go/internal/observability"
	"github.com/silentcam/silentcam-go/internal/thumbnail"
)

// SaveStatus is the persistence state shown to the user after a capture.
type SaveStatus string

const (
	StatusIdle   SaveStatus = "idle"
	StatusSaving SaveStatus = "saving"
	StatusSaved  SaveStatus = "saved"
	StatusError  SaveStatus = "error"
)

// statusResetDelay is how long saved/error stays visible before the status
// falls back to idle.
const statusResetDelay = 3 * time.Second

// Service composes the session, pipeline, store and export chain into the
// operations the UI needs. The in-memory photo list is the source of truth
// for display and is patched explicitly after each mutation; consumers never
// subscribe to store changes.
type Service struct {
	settings *conf.Settings
	session  *frame.Session
	store    datastore.Interface
	exporter *export.Chain
	metrics  *observability.Metrics
	logger   *slog.Logger

	mu          sync.Mutex
	photos      []datastore.Photo // newest first, mirrors store order
	listLoaded  bool
	lastID      int64
	saveStatus  SaveStatus
	statusTimer *time.Timer

	thumbCache *gocache.Cache
}

// New creates a gallery service. The store must already be open; metrics may
// be nil.
func New(settings *conf.Settings, session *frame.Session, store datastore.Interface, exporter *export.Chain, metrics *observability.Metrics) *Service {
	logger := logging.ForService("gallery")
	if logger == nil {
		logger = slog.Default().With("service", "gallery")
	}
	return &Service{
		settings:   settings,
		session:    session,
		store:      store,
		exporter:   exporter,
		metrics:    metrics,
		logger:     logger,
		saveStatus: StatusIdle,
		thumbCache: gocache.New(5*time.Minute, 10*time.Minute),
	}
}

// Close stops the status reset timer. The store and session are owned by the
// caller and stay open.
func (s *Service) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.statusTimer != nil {
		s.statusTimer.Stop()
		s.statusTimer = nil
	}
}

// SaveStatus returns the current persistence status.
func (s *Service) SaveStatus() SaveStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveStatus
}

// setStatusLocked updates the save status and schedules the fallback to idle
// for terminal states. Callers hold s.mu.
func (s *Service) setStatusLocked(status SaveStatus) {
	s.saveStatus = status
	if s.statusTimer != nil {
		s.statusTimer.Stop()
		s.statusTimer = nil
	}
	if status == StatusSaved || status == StatusError {
		s.statusTimer = time.AfterFunc(statusResetDelay, func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			s.saveStatus = StatusIdle
		})
	}
}

// nextIDLocked derives a photo id from the capture time. Two captures inside
// the same millisecond get consecutive ids so the store's uniqueness holds.
// Callers hold s.mu.
func (s *Service) nextIDLocked(capturedAt time.Time) int64 {
	id := capturedAt.UnixMilli()
	if id <= s.lastID {
		id = s.lastID + 1
	}
	s.lastID = id
	return id
}

// Capture grabs the current frame, runs it through the tier's pipeline,
// derives a thumbnail and persists the result. A failed thumbnail derivation
// leaves the photo without one; a failed save keeps the photo in the
// in-memory list and reports the error, so the user does not lose the shot.
func (s *Service) Capture(ctx context.Context, tier capture.Tier, opts capture.Options) (*datastore.Photo, error) {
	start := time.Now()

	f, err := s.session.Grab(ctx)
	if err != nil {
		if s.metrics != nil {
			s.metrics.Capture.IncrementCaptureErrors()
		}
		return nil, err
	}

	artifact, err := capture.Capture(f, tier, opts)
	if err != nil {
		if s.metrics != nil {
			s.metrics.Capture.IncrementCaptureErrors()
		}
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.Capture.IncrementCaptures(string(tier))
		s.metrics.Capture.ObserveCaptureDuration(time.Since(start).Seconds())
		s.metrics.Capture.ObserveOutputBytes(float64(artifact.Size()))
	}

	policy := tier.PolicyFor(opts.PixelRatio, f.Width)

	photo := &datastore.Photo{
		Image:        artifact.Data,
		CapturedAt:   f.CapturedAt,
		Width:        artifact.Width,
		Height:       artifact.Height,
		Multiplier:   policy.Multiplier,
		SourceWidth:  f.Width,
		SourceHeight: f.Height,
		Format:       string(artifact.Format),
	}

	// Thumbnail failure is tolerated: the record ships without one and the
	// lazy backfill picks it up later.
	thumb, thumbErr := thumbnail.Derive(artifact.Data,
		s.settings.Thumbnail.MaxWidth, s.settings.Thumbnail.MaxHeight, s.settings.Thumbnail.Quality)
	if thumbErr != nil {
		s.logger.Warn("thumbnail derivation failed, storing without", "error", thumbErr)
	} else {
		photo.Thumbnail = thumb.Data
	}

	s.mu.Lock()
	photo.ID = s.nextIDLocked(f.CapturedAt)
	s.photos = append([]datastore.Photo{*photo}, s.photos...)
	s.listLoaded = true
	s.setStatusLocked(StatusSaving)
	s.mu.Unlock()

	if err := s.store.Save(photo); err != nil {
		s.mu.Lock()
		s.setStatusLocked(StatusError)
		s.mu.Unlock()
		s.logger.Error("photo save failed, kept in memory only", "photo_id", photo.ID, "error", err)
		return photo, err
	}

	s.mu.Lock()
	s.setStatusLocked(StatusSaved)
	s.mu.Unlock()

	s.logger.Info("photo captured",
		"photo_id", photo.ID,
		"tier", string(tier),
		"dimensions", fmt.Sprintf("%dx%d", photo.Width, photo.Height),
		"bytes", len(photo.Image))
	return photo, nil
}

// ListPhotos returns the photos newest first. The first call loads the list
// from the store; later calls serve the patched in-memory copy.
func (s *Service) ListPhotos(ctx context.Context) ([]datastore.Photo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	if s.listLoaded {
		out := make([]datastore.Photo, len(s.photos))
		copy(out, s.photos)
		s.mu.Unlock()
		return out, nil
	}
	s.mu.Unlock()

	photos, err := s.store.GetAll()
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.photos = photos
	s.listLoaded = true
	out := make([]datastore.Photo, len(photos))
	copy(out, photos)
	s.mu.Unlock()
	return out, nil
}

// GetPhoto returns the stored photo with the given id, or nil when absent.
func (s *Service) GetPhoto(ctx context.Context, id int64) (*datastore.Photo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.store.Get(id)
}

// DeletePhoto removes the photo from the store and patches the in-memory
// list. Deleting an unknown id is a no-op.
func (s *Service) DeletePhoto(ctx context.Context, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := s.store.Delete(id); err != nil {
		return err
	}

	s.mu.Lock()
	for i := range s.photos {
		if s.photos[i].ID == id {
			s.photos = append(s.photos[:i], s.photos[i+1:]...)
			break
		}
	}
	s.mu.Unlock()

	s.thumbCache.Delete(cacheKey(id))
	return nil
}

// UpdatePhoto replaces the stored record and patches the in-memory list.
func (s *Service) UpdatePhoto(ctx context.Context, photo *datastore.Photo) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := s.store.Replace(photo); err != nil {
		return err
	}

	s.patchList(*photo)
	s.thumbCache.Delete(cacheKey(photo.ID))
	return nil
}

// Reencode runs the edit-mode pipeline on a stored photo and replaces the
// record in place, recording the edit settings. The photo id is stable across
// edits.
func (s *Service) Reencode(ctx context.Context, id int64, resolutionPercent int, format capture.Format, quality int) (*datastore.Photo, error) {
	photo, err := s.GetPhoto(ctx, id)
	if err != nil {
		return nil, err
	}
	if photo == nil {
		return nil, errors.Newf("photo %d not found", id).
			Component("gallery").
			Category(errors.CategoryNotFound).
			Build()
	}

	artifact, err := capture.Reencode(photo.Image, resolutionPercent, format, quality)
	if err != nil {
		return nil, err
	}

	edited := *photo
	edited.Image = artifact.Data
	edited.Width = artifact.Width
	edited.Height = artifact.Height
	edited.Format = string(artifact.Format)
	edited.Edited = true
	edited.EditResolution = resolutionPercent
	edited.EditQuality = quality
	edited.EditFormat = string(artifact.Format)

	// The old thumbnail no longer matches the edited image.
	thumb, thumbErr := thumbnail.Derive(artifact.Data,
		s.settings.Thumbnail.MaxWidth, s.settings.Thumbnail.MaxHeight, s.settings.Thumbnail.Quality)
	if thumbErr != nil {
		s.logger.Warn("thumbnail derivation failed after edit", "photo_id", id, "error", thumbErr)
		edited.Thumbnail = nil
	} else {
		edited.Thumbnail = thumb.Data
	}

	if err := s.UpdatePhoto(ctx, &edited); err != nil {
		return nil, err
	}

	s.logger.Info("photo re-encoded",
		"photo_id", id,
		"resolution_pct", resolutionPercent,
		"format", string(format),
		"quality", quality)
	return &edited, nil
}

// ExportPhoto delivers a stored photo through the export chain under its
// default filename.
func (s *Service) ExportPhoto(ctx context.Context, id int64) (export.Result, error) {
	photo, err := s.GetPhoto(ctx, id)
	if err != nil {
		return export.Result{}, err
	}
	if photo == nil {
		return export.Result{}, errors.Newf("photo %d not found", id).
			Component("gallery").
			Category(errors.CategoryNotFound).
			Build()
	}

	format, err := capture.ParseFormat(photo.Format)
	if err != nil {
		format = capture.FormatPNG
	}

	artifact := &capture.Artifact{
		Data:   photo.Image,
		Width:  photo.Width,
		Height: photo.Height,
		Format: format,
	}
	return s.exporter.Deliver(ctx, artifact, export.DefaultFilename(photo.ID, format))
}

// EnsureThumbnails backfills missing thumbnails across the whole gallery and
// persists them. Records whose derivation fails stay untouched. Returns the
// number of thumbnails filled in.
func (s *Service) EnsureThumbnails(ctx context.Context) (int, error) {
	photos, err := s.ListPhotos(ctx)
	if err != nil {
		return 0, err
	}

	filled := thumbnail.DeriveMissing(ctx, photos)

	var updated int
	for i := range filled {
		if photos[i].HasThumbnail() || !filled[i].HasThumbnail() {
			continue
		}
		if err := s.store.Replace(&filled[i]); err != nil {
			s.logger.Warn("persisting backfilled thumbnail failed",
				"photo_id", filled[i].ID, "error", err)
			continue
		}
		s.patchList(filled[i])
		updated++
	}

	if updated > 0 {
		s.logger.Info("thumbnails backfilled", "count", updated)
	}
	return updated, nil
}

// patchList swaps the record with the same id in the in-memory list.
func (s *Service) patchList(photo datastore.Photo) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.photos {
		if s.photos[i].ID == photo.ID {
			s.photos[i] = photo
			return
		}
	}
}

func cacheKey(id int64) string {
	return fmt.Sprintf("thumb:%d", id)
}

// DisplayImage returns the bytes to render for a photo: the thumbnail when
// present, the full image otherwise. Results are memoized per photo id.
func (s *Service) DisplayImage(ctx context.Context, id int64) ([]byte, error) {
	if cached, ok := s.thumbCache.Get(cacheKey(id)); ok {
		return cached.([]byte), nil
	}

	photo, err := s.GetPhoto(ctx, id)
	if err != nil {
		return nil, err
	}
	if photo == nil {
		return nil, errors.Newf("photo %d not found", id).
			Component("gallery").
			Category(errors.CategoryNotFound).
			Build()
	}

	data := photo.DisplayImage()
	s.thumbCache.Set(cacheKey(id), data, gocache.DefaultExpiration)
	return data, nil
}
