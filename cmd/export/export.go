package export

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/silentcam/silentcam-go/internal/conf"
	"github.com/silentcam/silentcam-go/internal/runtime"
)

var exportAll bool

// Command creates the export command.
func Command(settings *conf.Settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export [id]",
		Short: "Export stored photos through the sink chain",
		Long:  "Deliver a stored photo (or every photo with --all) through the configured export sinks.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd, settings, args)
		},
	}

	if err := setupFlags(cmd, settings); err != nil {
		cobra.CheckErr(err)
	}

	return cmd
}

func setupFlags(cmd *cobra.Command, settings *conf.Settings) error {
	cmd.Flags().StringVarP(&settings.Output.Export.Path, "path", "p", viper.GetString("output.export.path"), "Directory the download sink writes into")
	cmd.Flags().BoolVar(&exportAll, "all", false, "Export every stored photo")

	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return fmt.Errorf("error binding flags: %v", err)
	}
	return nil
}

func runExport(cmd *cobra.Command, settings *conf.Settings, args []string) error {
	if !exportAll && len(args) == 0 {
		return fmt.Errorf("provide a photo id or --all")
	}

	svc, shutdown, err := runtime.Build(cmd.Context(), settings, false)
	if err != nil {
		return err
	}
	defer shutdown()

	if exportAll {
		photos, err := svc.ListPhotos(cmd.Context())
		if err != nil {
			return err
		}
		for _, p := range photos {
			result, err := svc.ExportPhoto(cmd.Context(), p.ID)
			if err != nil {
				return err
			}
			fmt.Printf("exported photo %d via %s: %s\n", p.ID, result.Method, result.Message)
		}
		return nil
	}

	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid photo id %q: %w", args[0], err)
	}

	result, err := svc.ExportPhoto(cmd.Context(), id)
	if err != nil {
		return err
	}
	fmt.Printf("exported photo %d via %s: %s\n", id, result.Method, result.Message)
	return nil
}
