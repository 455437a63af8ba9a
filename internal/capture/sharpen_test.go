package capture

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
)

func flatImage(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func TestSharpenFlatImageUnchanged(t *testing.T) {
	t.Parallel()

	// The Laplacian of a constant image is zero everywhere.
	img := flatImage(8, 8, color.RGBA{R: 100, G: 150, B: 200, A: 255})
	want := make([]uint8, len(img.Pix))
	copy(want, img.Pix)

	sharpen(img)
	assert.Equal(t, want, img.Pix)
}

func TestSharpenAmplifiesImpulse(t *testing.T) {
	t.Parallel()

	img := flatImage(5, 5, color.RGBA{R: 100, G: 100, B: 100, A: 255})
	img.SetRGBA(2, 2, color.RGBA{R: 150, G: 100, B: 100, A: 255})

	sharpen(img)

	// center + 0.1*(4*150 - 4*100) = 150 + 20
	got := img.RGBAAt(2, 2)
	assert.Equal(t, uint8(170), got.R)
	// Neighbors of the impulse dip: 100 + 0.1*(400 - 150 - 3*100) = 95
	assert.Equal(t, uint8(95), img.RGBAAt(1, 2).R)
	// Untouched channels stay flat
	assert.Equal(t, uint8(100), got.G)
	assert.Equal(t, uint8(100), got.B)
}

func TestSharpenLeavesBorderUntouched(t *testing.T) {
	t.Parallel()

	img := flatImage(6, 6, color.RGBA{R: 50, G: 50, B: 50, A: 255})
	// Bright pixel adjacent to the border
	img.SetRGBA(1, 1, color.RGBA{R: 250, G: 250, B: 250, A: 255})

	sharpen(img)

	b := img.Bounds()
	for x := b.Min.X; x < b.Max.X; x++ {
		assert.Equal(t, uint8(50), img.RGBAAt(x, 0).R, "top border row changed at x=%d", x)
		assert.Equal(t, uint8(50), img.RGBAAt(x, b.Max.Y-1).R, "bottom border row changed at x=%d", x)
	}
	for y := b.Min.Y; y < b.Max.Y; y++ {
		assert.Equal(t, uint8(50), img.RGBAAt(0, y).R, "left border column changed at y=%d", y)
		assert.Equal(t, uint8(50), img.RGBAAt(b.Max.X-1, y).R, "right border column changed at y=%d", y)
	}
}

func TestSharpenPreservesAlpha(t *testing.T) {
	t.Parallel()

	img := flatImage(5, 5, color.RGBA{R: 10, G: 20, B: 30, A: 200})
	img.SetRGBA(2, 2, color.RGBA{R: 240, G: 20, B: 30, A: 200})

	sharpen(img)

	for y := 0; y < 5; y++ {
		for x := 0; x < 5; x++ {
			assert.Equal(t, uint8(200), img.RGBAAt(x, y).A)
		}
	}
}

func TestSharpenClampsChannelRange(t *testing.T) {
	t.Parallel()

	img := flatImage(5, 5, color.RGBA{R: 0, G: 255, B: 128, A: 255})
	img.SetRGBA(2, 2, color.RGBA{R: 255, G: 0, B: 128, A: 255})

	sharpen(img)

	// Center red channel would exceed 255 without clamping; neighbor green
	// would go negative.
	assert.Equal(t, uint8(255), img.RGBAAt(2, 2).R)
	assert.Equal(t, uint8(0), img.RGBAAt(2, 2).G)
}

func TestSharpenTinyImageNoop(t *testing.T) {
	t.Parallel()

	img := flatImage(2, 2, color.RGBA{R: 9, G: 9, B: 9, A: 255})
	want := make([]uint8, len(img.Pix))
	copy(want, img.Pix)

	sharpen(img)
	assert.Equal(t, want, img.Pix)
}
