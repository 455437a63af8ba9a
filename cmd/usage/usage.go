package usage

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/silentcam/silentcam-go/internal/conf"
	"github.com/silentcam/silentcam-go/internal/runtime"
)

// Command creates the usage command.
func Command(settings *conf.Settings) *cobra.Command {
	return &cobra.Command{
		Use:   "usage",
		Short: "Report gallery storage usage",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, shutdown, err := runtime.Build(cmd.Context(), settings, false)
			if err != nil {
				return err
			}
			defer shutdown()

			info, err := svc.StorageUsage(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Printf("photos stored: %d\n", info.PhotoCount)
			fmt.Printf("photo bytes:   %s\n", humanBytes(uint64(info.StoredBytes)))
			if info.DiskTotal > 0 {
				fmt.Printf("disk free:     %s of %s (%.1f%% used)\n",
					humanBytes(info.DiskFree), humanBytes(info.DiskTotal), info.DiskUsedPercent)
			}
			return nil
		},
	}
}

func humanBytes(n uint64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := uint64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
