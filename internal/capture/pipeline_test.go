package capture

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/silentcam/silentcam-go/internal/errors"
	"github.com/silentcam/silentcam-go/internal/frame"
)

func testFrame(w, h int) *frame.Frame {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255})
		}
	}
	return frame.NewFrame(img)
}

func TestPolicyFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		tier       Tier
		pixelRatio float64
		frameWidth int
		multiplier float64
		format     Format
	}{
		{"normal at density 1", TierNormal, 1, 640, 1, FormatJPEG},
		{"normal at density 2", TierNormal, 2, 640, 1.5, FormatJPEG},
		{"normal floors at 1", TierNormal, 0.5, 640, 1, FormatJPEG},
		{"high at density 1", TierHigh, 1, 640, 1.5, FormatPNG},
		{"high at density 2", TierHigh, 2, 640, 2.4, FormatPNG},
		{"ultra at density 1", TierUltra, 1, 640, 2, FormatPNG},
		{"ultra caps at 3", TierUltra, 4, 640, 3, FormatPNG},
		{"ultra clamps to 4096 wide", TierUltra, 2, 4000, 4096.0 / 4000, FormatPNG},
		{"unknown density defaults to 1", TierHigh, 0, 640, 1.5, FormatPNG},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			p := tt.tier.PolicyFor(tt.pixelRatio, tt.frameWidth)
			assert.InDelta(t, tt.multiplier, p.Multiplier, 1e-9)
			assert.Equal(t, tt.format, p.Format)
		})
	}
}

func TestCaptureHighTier(t *testing.T) {
	t.Parallel()

	f := testFrame(100, 80)
	artifact, err := Capture(f, TierHigh, Options{PixelRatio: 1})
	require.NoError(t, err)

	assert.Equal(t, 150, artifact.Width)
	assert.Equal(t, 120, artifact.Height)
	assert.Equal(t, FormatPNG, artifact.Format)

	cfg, format, err := image.DecodeConfig(bytes.NewReader(artifact.Data))
	require.NoError(t, err)
	assert.Equal(t, "png", format)
	assert.Equal(t, 150, cfg.Width)
	assert.Equal(t, 120, cfg.Height)
}

func TestCaptureTierAreaMonotonicity(t *testing.T) {
	t.Parallel()

	f := testFrame(120, 90)
	opts := Options{PixelRatio: 1}

	normal, err := Capture(f, TierNormal, opts)
	require.NoError(t, err)
	high, err := Capture(f, TierHigh, opts)
	require.NoError(t, err)
	ultra, err := Capture(f, TierUltra, opts)
	require.NoError(t, err)

	area := func(a *Artifact) int { return a.Width * a.Height }
	assert.GreaterOrEqual(t, area(high), area(normal))
	assert.GreaterOrEqual(t, area(ultra), area(high))
}

func TestCaptureDoesNotMutateSourceFrame(t *testing.T) {
	t.Parallel()

	f := testFrame(50, 50)
	src := f.Image.(*image.RGBA)
	before := make([]uint8, len(src.Pix))
	copy(before, src.Pix)

	_, err := Capture(f, TierNormal, Options{PixelRatio: 1, Sharpen: true})
	require.NoError(t, err)

	assert.Equal(t, before, src.Pix)
}

func TestCaptureZeroDimensionFrame(t *testing.T) {
	t.Parallel()

	f := frame.NewFrame(image.NewRGBA(image.Rect(0, 0, 0, 0)))
	_, err := Capture(f, TierNormal, Options{PixelRatio: 1})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrFrameNotReady))
	assert.True(t, errors.IsCategory(err, errors.CategoryCapture))
}

func TestCaptureNilFrame(t *testing.T) {
	t.Parallel()

	_, err := Capture(nil, TierNormal, Options{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrFrameNotReady))
}

func TestReencode(t *testing.T) {
	t.Parallel()

	// 800x600 JPEG source
	src := image.NewRGBA(image.Rect(0, 0, 800, 600))
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, src, &jpeg.Options{Quality: 95}))

	artifact, err := Reencode(buf.Bytes(), 50, FormatJPEG, 80)
	require.NoError(t, err)

	assert.Equal(t, 400, artifact.Width)
	assert.Equal(t, 300, artifact.Height)
	assert.Equal(t, FormatJPEG, artifact.Format)

	cfg, format, err := image.DecodeConfig(bytes.NewReader(artifact.Data))
	require.NoError(t, err)
	assert.Equal(t, "jpeg", format)
	assert.Equal(t, 400, cfg.Width)
	assert.Equal(t, 300, cfg.Height)
}

func TestReencodeUpscale(t *testing.T) {
	t.Parallel()

	artifact, err := EncodeImage(image.NewRGBA(image.Rect(0, 0, 100, 50)), FormatPNG, 1)
	require.NoError(t, err)

	out, err := Reencode(artifact.Data, 200, FormatPNG, 100)
	require.NoError(t, err)
	assert.Equal(t, 200, out.Width)
	assert.Equal(t, 100, out.Height)
}

func TestReencodeValidation(t *testing.T) {
	t.Parallel()

	artifact, err := EncodeImage(image.NewRGBA(image.Rect(0, 0, 10, 10)), FormatPNG, 1)
	require.NoError(t, err)

	_, err = Reencode(artifact.Data, 5, FormatJPEG, 80)
	assert.True(t, errors.IsCategory(err, errors.CategoryValidation))

	_, err = Reencode(artifact.Data, 250, FormatJPEG, 80)
	assert.True(t, errors.IsCategory(err, errors.CategoryValidation))

	_, err = Reencode(artifact.Data, 100, FormatJPEG, 5)
	assert.True(t, errors.IsCategory(err, errors.CategoryValidation))
}

func TestReencodeGarbageInput(t *testing.T) {
	t.Parallel()

	_, err := Reencode([]byte("not an image"), 100, FormatPNG, 100)
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryImageDecode))
}

func TestParseTier(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"normal", "high", "ultra"} {
		tier, err := ParseTier(name)
		require.NoError(t, err)
		assert.Equal(t, Tier(name), tier)
	}

	_, err := ParseTier("extreme")
	assert.True(t, errors.IsCategory(err, errors.CategoryValidation))
}

func TestParseFormat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want Format
	}{
		{"png", FormatPNG},
		{"lossless", FormatPNG},
		{"jpeg", FormatJPEG},
		{"jpg", FormatJPEG},
		{"lossy", FormatJPEG},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}

	_, err := ParseFormat("webp")
	assert.Error(t, err)
}
