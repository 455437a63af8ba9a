package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	capturecmd "github.com/silentcam/silentcam-go/cmd/capture"
	exportcmd "github.com/silentcam/silentcam-go/cmd/export"
	gallerycmd "github.com/silentcam/silentcam-go/cmd/gallery"
	thumbscmd "github.com/silentcam/silentcam-go/cmd/thumbs"
	usagecmd "github.com/silentcam/silentcam-go/cmd/usage"
	"github.com/silentcam/silentcam-go/internal/conf"
	"github.com/silentcam/silentcam-go/internal/runtime"
)

// RootCommand creates and returns the root command
func RootCommand(settings *conf.Settings) *cobra.Command {
	build := runtime.BuildContext()
	rootCmd := &cobra.Command{
		Use:     "silentcam",
		Short:   "SilentCam CLI",
		Long:    "Capture, browse, re-encode and export photos from a camera source.",
		Version: fmt.Sprintf("%s (built %s)", build.Version, build.BuildDate),
	}

	// Set up the global flags for the root command.
	if err := setupFlags(rootCmd, settings); err != nil {
		cobra.CheckErr(err)
	}

	subcommands := []*cobra.Command{
		capturecmd.Command(settings),
		gallerycmd.Command(settings),
		exportcmd.Command(settings),
		thumbscmd.Command(settings),
		usagecmd.Command(settings),
	}
	rootCmd.AddCommand(subcommands...)

	return rootCmd
}

// setupFlags defines flags that are global to the command line interface
func setupFlags(rootCmd *cobra.Command, settings *conf.Settings) error {
	rootCmd.PersistentFlags().BoolVarP(&settings.Debug, "debug", "d", viper.GetBool("debug"), "Enable debug output")
	rootCmd.PersistentFlags().StringVar(&settings.Camera.Source, "source", viper.GetString("camera.source"), "Directory of images to use as the frame source (synthetic pattern when empty)")
	rootCmd.PersistentFlags().StringVar(&settings.Camera.Facing, "facing", viper.GetString("camera.facing"), "Preferred camera facing (environment/user)")
	rootCmd.PersistentFlags().Float64Var(&settings.Camera.PixelRatio, "pixelratio", viper.GetFloat64("camera.pixelratio"), "Device pixel density")
	rootCmd.PersistentFlags().StringVar(&settings.Output.SQLite.Path, "db", viper.GetString("output.sqlite.path"), "Path to the photo database")

	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		return fmt.Errorf("error binding flags: %v", err)
	}

	return nil
}
