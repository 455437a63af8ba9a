package frame

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/silentcam/silentcam-go/internal/errors"
	"github.com/silentcam/silentcam-go/internal/logging"
)

// ErrCameraUnavailable reports that no stream could be acquired after trying
// both facing directions and the degraded constraint tiers.
var ErrCameraUnavailable = errors.NewStd("camera unavailable")

// Degraded constraint tiers tried after native-resolution acquisition fails.
var degradedTiers = []struct {
	maxWidth  int
	maxHeight int
}{
	{1280, 720},
	{640, 480},
}

// acquisitionStrategies returns the ordered list of constraints the session
// tries: preferred facing first, then the other facing, then both again at
// each degraded tier. The order is fixed policy, not nested fallback.
func acquisitionStrategies(preferred Facing) []Constraints {
	strategies := []Constraints{
		{Facing: preferred},
		{Facing: preferred.Other()},
	}
	for _, tier := range degradedTiers {
		strategies = append(strategies,
			Constraints{Facing: preferred, MaxWidth: tier.maxWidth, MaxHeight: tier.maxHeight},
			Constraints{Facing: preferred.Other(), MaxWidth: tier.maxWidth, MaxHeight: tier.maxHeight},
		)
	}
	return strategies
}

// Session is the explicit context object owning the live camera state: the
// singleton stream, the facing mode and the device pixel density. The pure
// pipeline functions never read it; only the orchestrating caller does.
type Session struct {
	id         string
	source     Source
	preferred  Facing
	pixelRatio float64

	mu     sync.Mutex
	stream Stream

	logger *slog.Logger
}

// NewSession creates a session over the given source. No stream is acquired
// until Start is called.
func NewSession(source Source, preferred Facing, pixelRatio float64) *Session {
	if pixelRatio <= 0 {
		pixelRatio = 1
	}
	id := uuid.New().String()
	return &Session{
		id:         id,
		source:     source,
		preferred:  preferred,
		pixelRatio: pixelRatio,
		logger:     logging.ForService("camera-session"),
	}
}

// ID returns the session's correlation id.
func (s *Session) ID() string {
	return s.id
}

// PixelRatio returns the device pixel density read at session start.
func (s *Session) PixelRatio() float64 {
	return s.pixelRatio
}

// Start acquires a stream by walking the strategy list in order. Exhausting
// every strategy yields ErrCameraUnavailable; the session does not retry.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stream != nil {
		return nil
	}

	stream, err := s.acquireLocked(ctx, acquisitionStrategies(s.preferred))
	if err != nil {
		return err
	}
	s.stream = stream
	return nil
}

func (s *Session) acquireLocked(ctx context.Context, strategies []Constraints) (Stream, error) {
	var lastErr error
	for _, c := range strategies {
		stream, err := s.source.Acquire(ctx, c)
		if err == nil {
			if s.logger != nil {
				s.logger.Debug("camera stream acquired",
					"session_id", s.id,
					"facing", string(c.Facing),
					"max_width", c.MaxWidth,
					"max_height", c.MaxHeight)
			}
			return stream, nil
		}
		lastErr = err
		if s.logger != nil {
			s.logger.Debug("acquisition strategy failed",
				"session_id", s.id,
				"facing", string(c.Facing),
				"error", err)
		}
	}

	return nil, errors.New(errors.Join(ErrCameraUnavailable, lastErr)).
		Component("frame").
		Category(errors.CategoryCamera).
		Context("session_id", s.id).
		Build()
}

// Grab returns the current frame from the live stream.
func (s *Session) Grab(ctx context.Context) (*Frame, error) {
	s.mu.Lock()
	stream := s.stream
	s.mu.Unlock()

	if stream == nil {
		return nil, errors.New(ErrCameraUnavailable).
			Component("frame").
			Category(errors.CategoryCamera).
			Context("session_id", s.id).
			Build()
	}
	return stream.Grab(ctx)
}

// Facing reports the facing of the live stream, or the preferred facing when
// no stream is held.
func (s *Session) Facing() Facing {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stream != nil {
		return s.stream.Facing()
	}
	return s.preferred
}

// SwitchFacing stops the current stream before requesting one for the other
// facing. The session never holds two streams concurrently.
func (s *Session) SwitchFacing(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	target := s.preferred.Other()
	if s.stream != nil {
		target = s.stream.Facing().Other()
		s.stream.Stop()
		s.stream = nil
	}

	stream, err := s.acquireLocked(ctx, acquisitionStrategies(target))
	if err != nil {
		return err
	}
	s.stream = stream
	return nil
}

// Stop releases the live stream, if any.
func (s *Session) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stream != nil {
		s.stream.Stop()
		s.stream = nil
	}
}
