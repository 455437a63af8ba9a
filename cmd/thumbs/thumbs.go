package thumbs

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/silentcam/silentcam-go/internal/conf"
	"github.com/silentcam/silentcam-go/internal/runtime"
)

// Command creates the thumbs command.
func Command(settings *conf.Settings) *cobra.Command {
	return &cobra.Command{
		Use:   "thumbs",
		Short: "Backfill missing thumbnails",
		Long:  "Derive and persist thumbnails for stored photos that lack one.",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, shutdown, err := runtime.Build(cmd.Context(), settings, false)
			if err != nil {
				return err
			}
			defer shutdown()

			updated, err := svc.EnsureThumbnails(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Printf("backfilled %d thumbnails\n", updated)
			return nil
		},
	}
}
