package gallery

import (
	"bytes"
	"context"
	"image"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/silentcam/silentcam-go/internal/capture"
	"github.com/silentcam/silentcam-go/internal/conf"
	"github.com/silentcam/silentcam-go/internal/datastore"
	"github.com/silentcam/silentcam-go/internal/errors"
	"github.com/silentcam/silentcam-go/internal/export"
	"github.com/silentcam/silentcam-go/internal/frame"
)

func testSettings(t *testing.T) *conf.Settings {
	t.Helper()
	settings := &conf.Settings{}
	settings.Thumbnail.MaxWidth = 200
	settings.Thumbnail.MaxHeight = 200
	settings.Thumbnail.Quality = 0.7
	settings.Output.SQLite.Enabled = true
	settings.Output.SQLite.Path = filepath.Join(t.TempDir(), "photos.db")
	settings.Output.Export.Path = filepath.Join(t.TempDir(), "downloads")
	return settings
}

// newTestService wires a full service over a synthetic camera and a real
// SQLite store in a temp directory.
func newTestService(t *testing.T) (*Service, *conf.Settings) {
	t.Helper()

	settings := testSettings(t)

	store := datastore.New(settings)
	require.NotNil(t, store)
	require.NoError(t, store.Open())
	t.Cleanup(func() { assert.NoError(t, store.Close()) })

	session := frame.NewSession(frame.NewPatternSource(), frame.FacingEnvironment, 1.0)
	require.NoError(t, session.Start(context.Background()))
	t.Cleanup(session.Stop)

	chain := export.NewChain(export.NewDownloadSink(settings.Output.Export.Path))

	svc := New(settings, session, store, chain, nil)
	t.Cleanup(svc.Close)
	return svc, settings
}

func TestCaptureHighTierEndToEnd(t *testing.T) {
	t.Parallel()
	svc, _ := newTestService(t)
	ctx := context.Background()

	photo, err := svc.Capture(ctx, capture.TierHigh, capture.Options{PixelRatio: 1.0})
	require.NoError(t, err)
	require.NotNil(t, photo)

	// Pattern frames are 640x480; the high tier multiplies by 1.5 at density 1.
	assert.Equal(t, 960, photo.Width)
	assert.Equal(t, 720, photo.Height)
	assert.Equal(t, "png", photo.Format)
	assert.Equal(t, 1.5, photo.Multiplier)
	assert.Equal(t, 640, photo.SourceWidth)
	assert.Equal(t, 480, photo.SourceHeight)
	assert.True(t, photo.HasThumbnail())

	// The stored artifact really is a 960x720 PNG.
	cfg, format, err := image.DecodeConfig(bytes.NewReader(photo.Image))
	require.NoError(t, err)
	assert.Equal(t, "png", format)
	assert.Equal(t, 960, cfg.Width)
	assert.Equal(t, 720, cfg.Height)

	// Persisted under the same id.
	stored, err := svc.GetPhoto(ctx, photo.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, photo.Image, stored.Image)

	assert.Equal(t, StatusSaved, svc.SaveStatus())
}

func TestCaptureIDsAreUniqueAndIncreasing(t *testing.T) {
	t.Parallel()
	svc, _ := newTestService(t)
	ctx := context.Background()

	var prev int64
	for i := 0; i < 5; i++ {
		photo, err := svc.Capture(ctx, capture.TierNormal, capture.Options{PixelRatio: 1.0})
		require.NoError(t, err)
		assert.Greater(t, photo.ID, prev, "ids must strictly increase even within one millisecond")
		prev = photo.ID
	}
}

// failingSaveStore wraps a real store but refuses Save.
type failingSaveStore struct {
	datastore.Interface
}

func (f *failingSaveStore) Save(*datastore.Photo) error {
	return errors.NewStd("disk on fire")
}

func TestCaptureKeepsPhotoWhenSaveFails(t *testing.T) {
	t.Parallel()
	settings := testSettings(t)

	store := datastore.New(settings)
	require.NoError(t, store.Open())
	t.Cleanup(func() { assert.NoError(t, store.Close()) })

	session := frame.NewSession(frame.NewPatternSource(), frame.FacingEnvironment, 1.0)
	require.NoError(t, session.Start(context.Background()))
	t.Cleanup(session.Stop)

	svc := New(settings, session, &failingSaveStore{Interface: store}, export.NewChain(), nil)
	t.Cleanup(svc.Close)

	photo, err := svc.Capture(context.Background(), capture.TierNormal, capture.Options{})
	require.Error(t, err)
	require.NotNil(t, photo, "the shot must survive a persistence failure")
	assert.Equal(t, StatusError, svc.SaveStatus())

	// Still listed in memory even though the store rejected it.
	photos, listErr := svc.ListPhotos(context.Background())
	require.NoError(t, listErr)
	require.Len(t, photos, 1)
	assert.Equal(t, photo.ID, photos[0].ID)
}

func TestListPhotosNewestFirstAndPatchedByDelete(t *testing.T) {
	t.Parallel()
	svc, _ := newTestService(t)
	ctx := context.Background()

	first, err := svc.Capture(ctx, capture.TierNormal, capture.Options{})
	require.NoError(t, err)
	second, err := svc.Capture(ctx, capture.TierNormal, capture.Options{})
	require.NoError(t, err)

	photos, err := svc.ListPhotos(ctx)
	require.NoError(t, err)
	require.Len(t, photos, 2)
	assert.Equal(t, second.ID, photos[0].ID)
	assert.Equal(t, first.ID, photos[1].ID)

	require.NoError(t, svc.DeletePhoto(ctx, second.ID))

	photos, err = svc.ListPhotos(ctx)
	require.NoError(t, err)
	require.Len(t, photos, 1)
	assert.Equal(t, first.ID, photos[0].ID)

	// Gone from the store too.
	gone, err := svc.GetPhoto(ctx, second.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)
}

func TestReencodeReplacesInPlace(t *testing.T) {
	t.Parallel()
	svc, _ := newTestService(t)
	ctx := context.Background()

	photo, err := svc.Capture(ctx, capture.TierHigh, capture.Options{PixelRatio: 1.0})
	require.NoError(t, err)

	edited, err := svc.Reencode(ctx, photo.ID, 50, capture.FormatJPEG, 80)
	require.NoError(t, err)
	assert.Equal(t, photo.ID, edited.ID, "edits keep the capture id")
	assert.Equal(t, 480, edited.Width)
	assert.Equal(t, 360, edited.Height)
	assert.Equal(t, "jpeg", edited.Format)
	assert.True(t, edited.Edited)
	assert.Equal(t, 50, edited.EditResolution)
	assert.Equal(t, 80, edited.EditQuality)
	assert.Equal(t, "jpeg", edited.EditFormat)

	// One record in the store, carrying the edited bytes.
	stored, err := svc.GetPhoto(ctx, photo.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, edited.Image, stored.Image)

	photos, err := svc.ListPhotos(ctx)
	require.NoError(t, err)
	require.Len(t, photos, 1)
	assert.True(t, photos[0].Edited)
}

func TestReencodeUnknownPhoto(t *testing.T) {
	t.Parallel()
	svc, _ := newTestService(t)

	_, err := svc.Reencode(context.Background(), 424242, 50, capture.FormatJPEG, 80)
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryNotFound))
}

func TestReencodeValidationErrors(t *testing.T) {
	t.Parallel()
	svc, _ := newTestService(t)
	ctx := context.Background()

	photo, err := svc.Capture(ctx, capture.TierNormal, capture.Options{})
	require.NoError(t, err)

	_, err = svc.Reencode(ctx, photo.ID, 5, capture.FormatJPEG, 80)
	assert.Error(t, err, "resolution below 10 percent must be rejected")

	_, err = svc.Reencode(ctx, photo.ID, 50, capture.FormatJPEG, 5)
	assert.Error(t, err, "quality below 10 must be rejected")
}

func TestExportPhotoWritesDownload(t *testing.T) {
	t.Parallel()
	svc, settings := newTestService(t)
	ctx := context.Background()

	photo, err := svc.Capture(ctx, capture.TierHigh, capture.Options{})
	require.NoError(t, err)

	result, err := svc.ExportPhoto(ctx, photo.ID)
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, export.MethodDownload, result.Method)

	path := filepath.Join(settings.Output.Export.Path, export.DefaultFilename(photo.ID, capture.FormatPNG))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, photo.Image, data)
}

func TestExportUnknownPhoto(t *testing.T) {
	t.Parallel()
	svc, _ := newTestService(t)

	_, err := svc.ExportPhoto(context.Background(), 999)
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryNotFound))
}

func TestEnsureThumbnailsBackfills(t *testing.T) {
	t.Parallel()
	settings := testSettings(t)

	store := datastore.New(settings)
	require.NoError(t, store.Open())
	t.Cleanup(func() { assert.NoError(t, store.Close()) })

	// Seed records without thumbnails, as an older schema would have left them.
	src := frame.NewPatternSource()
	stream, err := src.Acquire(context.Background(), frame.Constraints{MaxWidth: 320, MaxHeight: 240})
	require.NoError(t, err)
	for i := int64(1); i <= 3; i++ {
		f, err := stream.Grab(context.Background())
		require.NoError(t, err)
		artifact, err := capture.Capture(f, capture.TierNormal, capture.Options{})
		require.NoError(t, err)
		require.NoError(t, store.Save(&datastore.Photo{
			ID:         i,
			Image:      artifact.Data,
			CapturedAt: time.Now().Add(time.Duration(i) * time.Millisecond),
			Width:      artifact.Width,
			Height:     artifact.Height,
			Format:     string(artifact.Format),
		}))
	}

	svc := New(settings, nil, store, export.NewChain(), nil)
	t.Cleanup(svc.Close)

	updated, err := svc.EnsureThumbnails(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, updated)

	photos, err := svc.ListPhotos(context.Background())
	require.NoError(t, err)
	for _, p := range photos {
		assert.True(t, p.HasThumbnail(), "photo %d still missing thumbnail", p.ID)
	}

	// Second run has nothing left to do.
	updated, err = svc.EnsureThumbnails(context.Background())
	require.NoError(t, err)
	assert.Zero(t, updated)
}

func TestStorageUsage(t *testing.T) {
	t.Parallel()
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Capture(ctx, capture.TierNormal, capture.Options{})
	require.NoError(t, err)

	info, err := svc.StorageUsage(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), info.PhotoCount)
	assert.Positive(t, info.StoredBytes)
}

func TestDisplayImagePrefersThumbnail(t *testing.T) {
	t.Parallel()
	svc, _ := newTestService(t)
	ctx := context.Background()

	photo, err := svc.Capture(ctx, capture.TierNormal, capture.Options{})
	require.NoError(t, err)
	require.True(t, photo.HasThumbnail())

	data, err := svc.DisplayImage(ctx, photo.ID)
	require.NoError(t, err)
	assert.Equal(t, photo.Thumbnail, data)

	// Second read is served from the memo cache.
	again, err := svc.DisplayImage(ctx, photo.ID)
	require.NoError(t, err)
	assert.Equal(t, data, again)
}
