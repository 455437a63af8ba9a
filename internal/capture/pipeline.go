package capture

import (
	"image"
	"math"

	"github.com/disintegration/gift"

	"github.com/silentcam/silentcam-go/internal/errors"
	"github.com/silentcam/silentcam-go/internal/frame"
)

// Tier is a named resolution/quality policy for captures.
type Tier string

const (
	TierNormal Tier = "normal"
	TierHigh   Tier = "high"
	TierUltra  Tier = "ultra"
)

// maxOutputWidth is the hard cap on output width for the ultra tier.
const maxOutputWidth = 4096

// ErrFrameNotReady reports that the video source had no usable frame at capture time.
var ErrFrameNotReady = errors.NewStd("frame source not ready")

// ParseTier converts a user-facing tier name into a Tier.
func ParseTier(name string) (Tier, error) {
	switch Tier(name) {
	case TierNormal, TierHigh, TierUltra:
		return Tier(name), nil
	default:
		return "", errors.Newf("unknown resolution tier: %q", name).
			Component("capture").
			Category(errors.CategoryValidation).
			Build()
	}
}

// Policy is the resolved capture policy for one tier on one device.
type Policy struct {
	Multiplier float64
	Format     Format
	Quality    float64
}

// PolicyFor resolves the tier against the device pixel density and the frame's
// native width. Density defaults to 1 when unknown. The ultra tier clamps the
// multiplier so the output never exceeds maxOutputWidth pixels wide.
func (t Tier) PolicyFor(pixelRatio float64, frameWidth int) Policy {
	d := pixelRatio
	if d <= 0 {
		d = 1
	}

	switch t {
	case TierHigh:
		return Policy{
			Multiplier: math.Max(1.5, 1.2*d),
			Format:     FormatPNG,
			Quality:    0.98, // ignored for lossless
		}
	case TierUltra:
		m := math.Min(3, 2*d)
		if frameWidth > 0 && float64(frameWidth)*m > maxOutputWidth {
			m = maxOutputWidth / float64(frameWidth)
		}
		return Policy{
			Multiplier: m,
			Format:     FormatPNG,
			Quality:    1.0,
		}
	default: // TierNormal
		return Policy{
			Multiplier: math.Max(1, 0.75*d),
			Format:     FormatJPEG,
			Quality:    0.92,
		}
	}
}

// Options are the caller-supplied knobs for a single capture.
type Options struct {
	PixelRatio float64 // device pixel density, 1.0 if unknown
	Sharpen    bool    // apply the sharpening pass
}

// Capture converts a live video frame into an encoded artifact under the
// tier's policy. The source frame is never mutated.
func Capture(f *frame.Frame, tier Tier, opts Options) (*Artifact, error) {
	if f == nil || f.Width <= 0 || f.Height <= 0 {
		return nil, errors.New(ErrFrameNotReady).
			Component("capture").
			Category(errors.CategoryCapture).
			Build()
	}

	policy := tier.PolicyFor(opts.PixelRatio, f.Width)

	outW := int(math.Round(float64(f.Width) * policy.Multiplier))
	outH := int(math.Round(float64(f.Height) * policy.Multiplier))

	dst := resample(f.Image, outW, outH)
	if opts.Sharpen {
		sharpen(dst)
	}

	return EncodeImage(dst, policy.Format, policy.Quality)
}

// Reencode is the reduced edit-mode pipeline: decode a stored image, scale it
// by resolutionPercent/100 and encode to the target format. The quality value
// (10-100) maps linearly onto the encoder's quality factor. No sharpening.
func Reencode(data []byte, resolutionPercent int, format Format, quality int) (*Artifact, error) {
	if resolutionPercent < 10 || resolutionPercent > 200 {
		return nil, errors.Newf("resolution percent out of range: %d", resolutionPercent).
			Component("capture").
			Category(errors.CategoryValidation).
			Build()
	}
	if format == FormatJPEG && (quality < 10 || quality > 100) {
		return nil, errors.Newf("quality out of range: %d", quality).
			Component("capture").
			Category(errors.CategoryValidation).
			Build()
	}

	img, err := DecodeImage(data)
	if err != nil {
		return nil, err
	}

	b := img.Bounds()
	scale := float64(resolutionPercent) / 100
	outW := int(float64(b.Dx()) * scale)
	outH := int(float64(b.Dy()) * scale)
	if outW < 1 {
		outW = 1
	}
	if outH < 1 {
		outH = 1
	}

	dst := resample(img, outW, outH)

	return EncodeImage(dst, format, float64(quality)/100)
}

// resample draws src scaled into a fresh surface using smooth resampling.
func resample(src image.Image, width, height int) *image.RGBA {
	g := gift.New(gift.Resize(width, height, gift.LanczosResampling))
	dst := image.NewRGBA(g.Bounds(src.Bounds()))
	g.Draw(dst, src)
	return dst
}
