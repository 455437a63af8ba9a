// Package capture implements the photo capture and re-encoding pipeline.
package capture

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"math"

	"github.com/silentcam/silentcam-go/internal/errors"
)

// Format identifies the encoding of an artifact.
type Format string

const (
	// FormatPNG is the lossless encoding.
	FormatPNG Format = "png"
	// FormatJPEG is the lossy encoding.
	FormatJPEG Format = "jpeg"
)

// ParseFormat converts a user-facing format name into a Format.
func ParseFormat(name string) (Format, error) {
	switch name {
	case "png", "lossless":
		return FormatPNG, nil
	case "jpeg", "jpg", "lossy":
		return FormatJPEG, nil
	default:
		return "", errors.Newf("unknown image format: %q", name).
			Component("capture").
			Category(errors.CategoryValidation).
			Build()
	}
}

// Extension returns the file extension for the format, without the dot.
func (f Format) Extension() string {
	if f == FormatJPEG {
		return "jpg"
	}
	return string(f)
}

// MIMEType returns the MIME type for the format.
func (f Format) MIMEType() string {
	return "image/" + string(f)
}

// Artifact is an encoded image together with its dimensions and format.
type Artifact struct {
	Data   []byte
	Width  int
	Height int
	Format Format
}

// Size returns the encoded size in bytes.
func (a *Artifact) Size() int {
	return len(a.Data)
}

// Decode decodes the artifact back into a pixel image.
func (a *Artifact) Decode() (image.Image, error) {
	return DecodeImage(a.Data)
}

// DecodeImage decodes encoded image bytes into a pixel image.
func DecodeImage(data []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, errors.New(fmt.Errorf("failed to decode image: %w", err)).
			Component("capture").
			Category(errors.CategoryImageDecode).
			Context("data_bytes", len(data)).
			Build()
	}
	return img, nil
}

// EncodeImage encodes a pixel image using the given format. The quality factor
// (0.0-1.0) applies to lossy encodings only and is ignored for PNG.
func EncodeImage(img image.Image, format Format, quality float64) (*Artifact, error) {
	var buf bytes.Buffer
	var err error

	switch format {
	case FormatPNG:
		err = png.Encode(&buf, img)
	case FormatJPEG:
		q := int(math.Round(quality * 100))
		if q < 1 {
			q = 1
		} else if q > 100 {
			q = 100
		}
		err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: q})
	default:
		return nil, errors.Newf("unknown image format: %q", format).
			Component("capture").
			Category(errors.CategoryValidation).
			Build()
	}

	if err != nil {
		return nil, errors.New(fmt.Errorf("failed to encode image: %w", err)).
			Component("capture").
			Category(errors.CategoryImageEncode).
			ImageContext(img.Bounds().Dx(), img.Bounds().Dy(), string(format)).
			Build()
	}

	b := img.Bounds()
	return &Artifact{
		Data:   buf.Bytes(),
		Width:  b.Dx(),
		Height: b.Dy(),
		Format: format,
	}, nil
}
