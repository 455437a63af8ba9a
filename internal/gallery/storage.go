package gallery

import (
	"context"
	"path/filepath"

	"github.com/shirou/gopsutil/v3/disk"
)

// StorageInfo reports how much space the gallery occupies and how much the
// hosting volume has left.
type StorageInfo struct {
	PhotoCount  int64
	StoredBytes int64

	DiskTotal       uint64
	DiskFree        uint64
	DiskUsedPercent float64
}

// StorageUsage combines the store's own accounting with the disk usage of the
// volume holding the database. Disk figures are zero when the volume cannot
// be inspected; the photo accounting still stands.
func (s *Service) StorageUsage(ctx context.Context) (*StorageInfo, error) {
	count, bytes, err := s.store.Usage()
	if err != nil {
		return nil, err
	}

	info := &StorageInfo{
		PhotoCount:  count,
		StoredBytes: bytes,
	}

	path := "/"
	if s.settings != nil && s.settings.Output.SQLite.Path != "" {
		path = filepath.Dir(s.settings.Output.SQLite.Path)
	}

	usage, diskErr := disk.UsageWithContext(ctx, path)
	if diskErr != nil {
		s.logger.Warn("disk usage probe failed", "path", path, "error", diskErr)
		return info, nil
	}

	info.DiskTotal = usage.Total
	info.DiskFree = usage.Free
	info.DiskUsedPercent = usage.UsedPercent
	return info, nil
}
