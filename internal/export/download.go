package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/silentcam/silentcam-go/internal/capture"
	"github.com/silentcam/silentcam-go/internal/errors"
)

// DownloadSink writes exported photos into a local directory, the equivalent
// of a browser download folder.
type DownloadSink struct {
	dir string
}

// NewDownloadSink creates a sink writing into dir. The directory is created
// lazily on first delivery.
func NewDownloadSink(dir string) *DownloadSink {
	return &DownloadSink{dir: dir}
}

// Available reports whether a target directory is configured.
func (d *DownloadSink) Available() bool {
	return d.dir != ""
}

// Method returns MethodDownload.
func (d *DownloadSink) Method() Method { return MethodDownload }

// Deliver writes the artifact to <dir>/<filename>.
func (d *DownloadSink) Deliver(ctx context.Context, artifact *capture.Artifact, filename string) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	if err := os.MkdirAll(d.dir, 0o755); err != nil {
		return Result{}, errors.New(fmt.Errorf("creating download directory: %w", err)).
			Component("export").
			Category(errors.CategoryFileIO).
			Context("dir", d.dir).
			Build()
	}

	path := filepath.Join(d.dir, filepath.Base(filename))
	if err := os.WriteFile(path, artifact.Data, 0o644); err != nil {
		return Result{}, errors.New(fmt.Errorf("writing download file: %w", err)).
			Component("export").
			Category(errors.CategoryFileIO).
			FileContext(path, int64(artifact.Size())).
			Build()
	}

	return Result{Success: true, Method: MethodDownload, Message: path}, nil
}
