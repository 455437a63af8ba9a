package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/silentcam/silentcam-go/cmd"
	"github.com/silentcam/silentcam-go/internal/conf"
	"github.com/silentcam/silentcam-go/internal/logging"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	settings, err := conf.Load()
	if err != nil {
		return fmt.Errorf("error loading settings: %w", err)
	}

	logging.Init()
	if settings.Main.Log.Enabled {
		fileLogger, closeLogger, err := logging.NewFileLogger(settings.Main.Log.Path, "silentcam", slog.LevelInfo)
		if err != nil {
			log.Printf("Failed to set up file logging: %v", err)
		} else {
			slog.SetDefault(fileLogger)
			defer func() {
				if err := closeLogger(); err != nil {
					log.Printf("Failed to close log file: %v", err)
				}
			}()
		}
	}

	// Ctrl-C cancels the context passed down to the subcommands.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := cmd.RootCommand(settings)
	return rootCmd.ExecuteContext(ctx)
}
