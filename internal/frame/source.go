// Package frame models camera acquisition: frame sources, streams and the
// session that owns the live stream.
package frame

import (
	"context"
	"image"
	"time"
)

// Facing identifies which camera a stream comes from.
type Facing string

const (
	FacingEnvironment Facing = "environment"
	FacingUser        Facing = "user"
)

// Other returns the opposite facing direction.
func (f Facing) Other() Facing {
	if f == FacingEnvironment {
		return FacingUser
	}
	return FacingEnvironment
}

// Constraints describe what a caller asks of a stream. Zero bounds mean the
// source's native resolution.
type Constraints struct {
	Facing    Facing
	MaxWidth  int
	MaxHeight int
}

// Frame is a single decoded video frame with known pixel dimensions.
type Frame struct {
	Image      image.Image
	Width      int
	Height     int
	CapturedAt time.Time
}

// NewFrame wraps a decoded image into a Frame stamped with the current time.
func NewFrame(img image.Image) *Frame {
	b := img.Bounds()
	return &Frame{
		Image:      img,
		Width:      b.Dx(),
		Height:     b.Dy(),
		CapturedAt: time.Now(),
	}
}

// Stream is a live feed of frames from one camera.
type Stream interface {
	// Grab returns the current frame. It may suspend while the source decodes.
	Grab(ctx context.Context) (*Frame, error)
	// Facing reports which camera the stream comes from.
	Facing() Facing
	// Stop releases the stream. A stopped stream cannot be restarted.
	Stop()
}

// Source acquires streams under constraints. Implementations back the session
// with a real device, a directory of images, or a synthetic pattern.
type Source interface {
	Acquire(ctx context.Context, c Constraints) (Stream, error)
}
