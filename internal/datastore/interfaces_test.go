package datastore

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/silentcam/silentcam-go/internal/conf"
	"github.com/silentcam/silentcam-go/internal/errors"
)

// newTestStore opens a fresh SQLite store backed by a temp directory.
func newTestStore(t *testing.T) Interface {
	t.Helper()

	settings := &conf.Settings{}
	settings.Output.SQLite.Enabled = true
	settings.Output.SQLite.Path = filepath.Join(t.TempDir(), "photos.db")

	store := New(settings)
	require.NotNil(t, store, "expected a store for enabled SQLite output")
	require.NoError(t, store.Open())
	t.Cleanup(func() {
		assert.NoError(t, store.Close())
	})
	return store
}

func testPhoto(id int64, capturedAt time.Time) *Photo {
	return &Photo{
		ID:           id,
		Image:        []byte("full-image-bytes"),
		CapturedAt:   capturedAt,
		Width:        1920,
		Height:       1080,
		Multiplier:   1.5,
		SourceWidth:  1280,
		SourceHeight: 720,
		Format:       "png",
	}
}

func TestSaveAndGetRoundTrip(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)

	capturedAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, store.Save(testPhoto(1001, capturedAt)))

	got, err := store.Get(1001)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, int64(1001), got.ID)
	assert.Equal(t, []byte("full-image-bytes"), got.Image)
	assert.Equal(t, 1920, got.Width)
	assert.Equal(t, "png", got.Format)
	assert.False(t, got.HasThumbnail())
}

func TestSaveDuplicateIDFails(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)

	now := time.Now().UTC()
	first := testPhoto(42, now)
	require.NoError(t, store.Save(first))

	second := testPhoto(42, now.Add(time.Second))
	second.Image = []byte("other-bytes")
	err := store.Save(second)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDuplicateID))

	// The original record is untouched.
	got, err := store.Get(42)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, []byte("full-image-bytes"), got.Image)
}

func TestGetAbsentReturnsNilNil(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)

	got, err := store.Get(999999)
	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestGetAllNewestFirst(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)

	base := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	// Insert out of chronological order on purpose.
	require.NoError(t, store.Save(testPhoto(2, base.Add(2*time.Minute))))
	require.NoError(t, store.Save(testPhoto(1, base.Add(1*time.Minute))))
	require.NoError(t, store.Save(testPhoto(3, base.Add(3*time.Minute))))

	photos, err := store.GetAll()
	require.NoError(t, err)
	require.Len(t, photos, 3)

	assert.Equal(t, int64(3), photos[0].ID)
	assert.Equal(t, int64(2), photos[1].ID)
	assert.Equal(t, int64(1), photos[2].ID)
	for i := 1; i < len(photos); i++ {
		assert.False(t, photos[i].CapturedAt.After(photos[i-1].CapturedAt),
			"photos[%d] is newer than photos[%d]", i, i-1)
	}
}

func TestDeleteThenGetAbsent(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)

	require.NoError(t, store.Save(testPhoto(7, time.Now().UTC())))
	require.NoError(t, store.Delete(7))

	got, err := store.Get(7)
	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestDeleteAbsentIsNoop(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)

	assert.NoError(t, store.Delete(123456))
}

func TestReplaceSwapsRecordKeepingID(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)

	capturedAt := time.Date(2025, 7, 4, 9, 30, 0, 0, time.UTC)
	require.NoError(t, store.Save(testPhoto(55, capturedAt)))

	edited := testPhoto(55, capturedAt)
	edited.Image = []byte("edited-bytes")
	edited.Width = 960
	edited.Height = 540
	edited.Edited = true
	edited.EditResolution = 50
	edited.EditQuality = 80
	edited.EditFormat = "jpeg"
	require.NoError(t, store.Replace(edited))

	got, err := store.Get(55)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, []byte("edited-bytes"), got.Image)
	assert.Equal(t, 960, got.Width)
	assert.True(t, got.Edited)
	assert.Equal(t, 50, got.EditResolution)
	assert.Equal(t, "jpeg", got.EditFormat)

	// Replace must not produce a second record.
	photos, err := store.GetAll()
	require.NoError(t, err)
	assert.Len(t, photos, 1)
}

func TestReplaceAbsentIDInserts(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)

	photo := testPhoto(88, time.Now().UTC())
	require.NoError(t, store.Replace(photo))

	got, err := store.Get(88)
	require.NoError(t, err)
	require.NotNil(t, got)
}

func TestUsageCountsRecordsAndBytes(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)

	count, bytes, err := store.Usage()
	require.NoError(t, err)
	assert.Zero(t, count)
	assert.Zero(t, bytes)

	a := testPhoto(1, time.Now().UTC())
	a.Image = []byte("aaaa")
	b := testPhoto(2, time.Now().UTC())
	b.Image = []byte("bbbbbb")
	b.Thumbnail = []byte("tt")
	require.NoError(t, store.Save(a))
	require.NoError(t, store.Save(b))

	count, bytes, err = store.Usage()
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
	assert.Equal(t, int64(4+6+2), bytes)
}

func TestNewReturnsNilWhenDisabled(t *testing.T) {
	t.Parallel()

	settings := &conf.Settings{}
	settings.Output.SQLite.Enabled = false
	assert.Nil(t, New(settings))
}

func TestOpenRejectsMissingPath(t *testing.T) {
	t.Parallel()

	settings := &conf.Settings{}
	settings.Output.SQLite.Enabled = true
	store := &SQLiteStore{Settings: settings}
	assert.Error(t, store.Open())
}
