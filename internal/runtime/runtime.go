// Package runtime wires the application components together for the CLI.
package runtime

import (
	"context"
	"fmt"

	"github.com/silentcam/silentcam-go/internal/conf"
	"github.com/silentcam/silentcam-go/internal/datastore"
	"github.com/silentcam/silentcam-go/internal/export"
	"github.com/silentcam/silentcam-go/internal/frame"
	"github.com/silentcam/silentcam-go/internal/gallery"
	"github.com/silentcam/silentcam-go/internal/observability"
	"github.com/silentcam/silentcam-go/internal/thumbnail"
)

// Build assembles a gallery service from the settings: frame source, camera
// session, photo store, export chain and metrics. The returned shutdown
// function releases everything in reverse order.
func Build(ctx context.Context, settings *conf.Settings, startSession bool) (*gallery.Service, func(), error) {
	metrics, err := observability.NewMetrics()
	if err != nil {
		return nil, nil, fmt.Errorf("initializing metrics: %w", err)
	}
	thumbnail.SetMetrics(metrics.Thumbnail)

	store := datastore.New(settings)
	if store == nil {
		return nil, nil, fmt.Errorf("no datastore configured, enable sqlite output")
	}
	if err := store.Open(); err != nil {
		return nil, nil, err
	}
	if ds, ok := store.(*datastore.SQLiteStore); ok {
		ds.SetMetrics(metrics.Datastore)
	}

	var source frame.Source
	if settings.Camera.Source != "" {
		source = frame.NewDirSource(settings.Camera.Source)
	} else {
		source = frame.NewPatternSource()
	}

	session := frame.NewSession(source, frame.Facing(settings.Camera.Facing), settings.Camera.PixelRatio)
	if startSession {
		if err := session.Start(ctx); err != nil {
			_ = store.Close()
			return nil, nil, err
		}
	}

	chain := export.NewChain(
		export.NewShareSink(nil),
		export.NewDownloadSink(settings.Output.Export.Path),
	)
	chain.SetMetrics(metrics.Export)

	svc := gallery.New(settings, session, store, chain, metrics)

	shutdown := func() {
		svc.Close()
		session.Stop()
		_ = store.Close()
	}
	return svc, shutdown, nil
}
