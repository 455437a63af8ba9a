package frame

import (
	"context"
	"image"
	"image/color"
	"sync"
)

// Default pattern dimensions when no constraints are given.
const (
	defaultPatternWidth  = 640
	defaultPatternHeight = 480
)

// PatternSource generates synthetic gradient frames. Used by tests and as the
// CLI fallback when no frame directory is configured.
type PatternSource struct{}

// NewPatternSource creates a synthetic frame source.
func NewPatternSource() *PatternSource {
	return &PatternSource{}
}

// Acquire returns a stream of generated frames sized to the constraints, or
// to the default pattern size when the constraints carry no bounds.
func (s *PatternSource) Acquire(ctx context.Context, c Constraints) (Stream, error) {
	w, h := c.MaxWidth, c.MaxHeight
	if w <= 0 || h <= 0 {
		w, h = defaultPatternWidth, defaultPatternHeight
	}
	return &patternStream{width: w, height: h, facing: c.Facing}, nil
}

type patternStream struct {
	width  int
	height int
	facing Facing

	mu     sync.Mutex
	seq    uint8
	closed bool
}

// Grab generates a gradient frame. The gradient shifts each call so
// successive frames differ.
func (p *patternStream) Grab(ctx context.Context) (*Frame, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil, ErrCameraUnavailable
	}
	shift := p.seq
	p.seq++
	p.mu.Unlock()

	img := image.NewRGBA(image.Rect(0, 0, p.width, p.height))
	for y := 0; y < p.height; y++ {
		for x := 0; x < p.width; x++ {
			img.SetRGBA(x, y, color.RGBA{
				R: uint8(x) + shift,
				G: uint8(y),
				B: uint8(x+y) - shift,
				A: 255,
			})
		}
	}

	return NewFrame(img), nil
}

func (p *patternStream) Facing() Facing {
	return p.facing
}

func (p *patternStream) Stop() {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()
}
