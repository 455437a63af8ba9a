package frame

import (
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/silentcam/silentcam-go/internal/errors"
)

// DirSource serves frames decoded from the image files in a directory. It
// stands in for a camera device in the CLI and in tests, serving any facing.
type DirSource struct {
	path string
}

// NewDirSource creates a source over the given directory.
func NewDirSource(path string) *DirSource {
	return &DirSource{path: path}
}

// Acquire lists the directory's image files and returns a stream cycling
// through them in name order.
func (s *DirSource) Acquire(ctx context.Context, c Constraints) (Stream, error) {
	entries, err := os.ReadDir(s.path)
	if err != nil {
		return nil, errors.New(fmt.Errorf("failed to read frame directory: %w", err)).
			Component("frame").
			Category(errors.CategoryFileIO).
			Build()
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".png", ".jpg", ".jpeg":
			files = append(files, filepath.Join(s.path, entry.Name()))
		}
	}
	sort.Strings(files)

	if len(files) == 0 {
		return nil, errors.Newf("no image files in %s", s.path).
			Component("frame").
			Category(errors.CategoryCamera).
			Build()
	}

	return &dirStream{files: files, facing: c.Facing}, nil
}

type dirStream struct {
	files  []string
	facing Facing

	mu     sync.Mutex
	next   int
	closed bool
}

// Grab decodes the next file in the cycle.
func (d *dirStream) Grab(ctx context.Context) (*Frame, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil, errors.New(ErrCameraUnavailable).
			Component("frame").
			Category(errors.CategoryCamera).
			Build()
	}
	path := d.files[d.next]
	d.next = (d.next + 1) % len(d.files)
	d.mu.Unlock()

	f, err := os.Open(path)
	if err != nil {
		return nil, errors.New(fmt.Errorf("failed to open frame file: %w", err)).
			Component("frame").
			Category(errors.CategoryFileIO).
			Build()
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, errors.New(fmt.Errorf("failed to decode frame file %s: %w", filepath.Base(path), err)).
			Component("frame").
			Category(errors.CategoryImageDecode).
			Build()
	}

	return NewFrame(img), nil
}

func (d *dirStream) Facing() Facing {
	return d.facing
}

func (d *dirStream) Stop() {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()
}
