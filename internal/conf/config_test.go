package conf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validSettings() *Settings {
	s := &Settings{}
	s.Camera.Facing = "environment"
	s.Camera.PixelRatio = 2.0
	s.Capture.Tier = "normal"
	s.Thumbnail.MaxWidth = 200
	s.Thumbnail.MaxHeight = 200
	s.Thumbnail.Quality = 0.7
	return s
}

func TestValidateSettings(t *testing.T) {
	t.Parallel()

	require.NoError(t, ValidateSettings(validSettings()))
}

func TestValidateSettingsRejectsBadTier(t *testing.T) {
	t.Parallel()

	s := validSettings()
	s.Capture.Tier = "maximum"
	assert.Error(t, ValidateSettings(s))
}

func TestValidateSettingsRejectsBadFacing(t *testing.T) {
	t.Parallel()

	s := validSettings()
	s.Camera.Facing = "sideways"
	assert.Error(t, ValidateSettings(s))
}

func TestValidateSettingsDefaultsPixelRatio(t *testing.T) {
	t.Parallel()

	s := validSettings()
	s.Camera.PixelRatio = 0
	require.NoError(t, ValidateSettings(s))
	assert.Equal(t, 1.0, s.Camera.PixelRatio)
}

func TestValidateSettingsRejectsBadThumbnailQuality(t *testing.T) {
	t.Parallel()

	s := validSettings()
	s.Thumbnail.Quality = 1.5
	assert.Error(t, ValidateSettings(s))
}
