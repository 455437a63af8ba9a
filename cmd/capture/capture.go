package capture

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/silentcam/silentcam-go/internal/capture"
	"github.com/silentcam/silentcam-go/internal/conf"
	"github.com/silentcam/silentcam-go/internal/runtime"
)

var count int

// Command creates the capture command.
func Command(settings *conf.Settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "capture",
		Short: "Capture photos from the camera source",
		Long:  "Grab frames from the configured source, run them through the capture pipeline and store the results.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCapture(cmd, settings)
		},
	}

	if err := setupFlags(cmd, settings); err != nil {
		cobra.CheckErr(err)
	}

	return cmd
}

func setupFlags(cmd *cobra.Command, settings *conf.Settings) error {
	cmd.Flags().StringVarP(&settings.Capture.Tier, "tier", "t", viper.GetString("capture.tier"), "Resolution tier (normal/high/ultra)")
	cmd.Flags().BoolVar(&settings.Capture.Sharpen, "sharpen", viper.GetBool("capture.sharpen"), "Apply the sharpening pass")
	cmd.Flags().IntVarP(&count, "count", "n", 1, "Number of photos to capture")

	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return fmt.Errorf("error binding flags: %v", err)
	}
	return nil
}

func runCapture(cmd *cobra.Command, settings *conf.Settings) error {
	tier, err := capture.ParseTier(settings.Capture.Tier)
	if err != nil {
		return err
	}
	if count < 1 {
		return fmt.Errorf("count must be positive, got %d", count)
	}

	svc, shutdown, err := runtime.Build(cmd.Context(), settings, true)
	if err != nil {
		return err
	}
	defer shutdown()

	opts := capture.Options{
		PixelRatio: settings.Camera.PixelRatio,
		Sharpen:    settings.Capture.Sharpen,
	}

	for i := 0; i < count; i++ {
		photo, err := svc.Capture(cmd.Context(), tier, opts)
		if err != nil {
			return err
		}
		fmt.Printf("captured photo %d (%dx%d %s, %d bytes)\n",
			photo.ID, photo.Width, photo.Height, photo.Format, len(photo.Image))
	}

	return nil
}
