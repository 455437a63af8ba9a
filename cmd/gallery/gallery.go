package gallery

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/silentcam/silentcam-go/internal/capture"
	"github.com/silentcam/silentcam-go/internal/conf"
	"github.com/silentcam/silentcam-go/internal/runtime"
)

var (
	resolutionPct int
	quality       int
	formatName    string
)

// Command creates the gallery command with its subcommands.
func Command(settings *conf.Settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gallery",
		Short: "Browse and edit stored photos",
	}

	cmd.AddCommand(listCommand(settings))
	cmd.AddCommand(deleteCommand(settings))
	cmd.AddCommand(editCommand(settings))

	return cmd
}

func listCommand(settings *conf.Settings) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored photos, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, shutdown, err := runtime.Build(cmd.Context(), settings, false)
			if err != nil {
				return err
			}
			defer shutdown()

			photos, err := svc.ListPhotos(cmd.Context())
			if err != nil {
				return err
			}
			if len(photos) == 0 {
				fmt.Println("no photos stored")
				return nil
			}

			for _, p := range photos {
				thumb := "missing"
				if p.HasThumbnail() {
					thumb = "yes"
				}
				edited := ""
				if p.Edited {
					edited = fmt.Sprintf(" edited(%d%% q%d %s)", p.EditResolution, p.EditQuality, p.EditFormat)
				}
				fmt.Printf("%d  %s  %dx%d %s  thumbnail=%s%s\n",
					p.ID, p.CapturedAt.Format("2006-01-02 15:04:05"),
					p.Width, p.Height, p.Format, thumb, edited)
			}
			return nil
		},
	}
}

func deleteCommand(settings *conf.Settings) *cobra.Command {
	return &cobra.Command{
		Use:   "delete [id]",
		Short: "Delete a stored photo",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid photo id %q: %w", args[0], err)
			}

			svc, shutdown, err := runtime.Build(cmd.Context(), settings, false)
			if err != nil {
				return err
			}
			defer shutdown()

			if err := svc.DeletePhoto(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Printf("deleted photo %d\n", id)
			return nil
		},
	}
}

func editCommand(settings *conf.Settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edit [id]",
		Short: "Re-encode a stored photo with new resolution, format and quality",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid photo id %q: %w", args[0], err)
			}
			format, err := capture.ParseFormat(formatName)
			if err != nil {
				return err
			}

			svc, shutdown, err := runtime.Build(cmd.Context(), settings, false)
			if err != nil {
				return err
			}
			defer shutdown()

			photo, err := svc.Reencode(cmd.Context(), id, resolutionPct, format, quality)
			if err != nil {
				return err
			}
			fmt.Printf("re-encoded photo %d to %dx%d %s (%d bytes)\n",
				photo.ID, photo.Width, photo.Height, photo.Format, len(photo.Image))
			return nil
		},
	}

	cmd.Flags().IntVarP(&resolutionPct, "resolution", "r", 100, "Output resolution percent (10-200)")
	cmd.Flags().IntVarP(&quality, "quality", "q", 90, "Encoder quality (10-100, lossy only)")
	cmd.Flags().StringVarP(&formatName, "format", "f", "jpeg", "Output format (png/jpeg)")

	return cmd
}
