// Package datastore provides logging infrastructure for photo store operations
package datastore

import (
	"log/slog"
	"sync"

	"github.com/silentcam/silentcam-go/internal/logging"
)

var (
	datastoreLogger *slog.Logger
	loggerOnce      sync.Once
)

// getLogger returns the package logger, initializing it lazily. Falls back to
// the default slog logger when the logging system has not been initialized.
func getLogger() *slog.Logger {
	loggerOnce.Do(func() {
		datastoreLogger = logging.ForService("datastore")
		if datastoreLogger == nil {
			datastoreLogger = slog.Default().With("service", "datastore")
		}
	})
	return datastoreLogger
}
