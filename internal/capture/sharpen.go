package capture

import "image"

// sharpenAmount is the weight of the Laplacian term in the unsharp mask.
const sharpenAmount = 0.1

// sharpen applies a discrete Laplacian unsharp mask to the interior pixels of
// img, in place. The 1-pixel border and the alpha channel are left untouched.
// Neighbor values are read from an unmodified copy of the source pixels.
func sharpen(img *image.RGBA) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w < 3 || h < 3 {
		return
	}

	src := make([]uint8, len(img.Pix))
	copy(src, img.Pix)
	stride := img.Stride

	for y := 1; y < h-1; y++ {
		rowOff := y * stride
		for x := 1; x < w-1; x++ {
			off := rowOff + x*4
			for c := 0; c < 3; c++ {
				center := float64(src[off+c])
				top := float64(src[off-stride+c])
				bottom := float64(src[off+stride+c])
				left := float64(src[off-4+c])
				right := float64(src[off+4+c])

				enhanced := center + sharpenAmount*(4*center-top-bottom-left-right)
				img.Pix[off+c] = clampChannel(enhanced)
			}
		}
	}
}

func clampChannel(v float64) uint8 {
	switch {
	case v < 0:
		return 0
	case v > 255:
		return 255
	default:
		return uint8(v + 0.5)
	}
}
