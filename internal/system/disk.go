// Package system reports filesystem capacity so downloads do not fill the
// disk unnoticed.
package system

import (
	"fmt"
	"syscall"
)

// AvailableSpace returns the free bytes on the filesystem holding path.
func AvailableSpace(path string) (uint64, error) {
	var stat syscall.Statfs_t
	if err := syscall.Statfs(path, &stat); err != nil {
		return 0, fmt.Errorf("statfs %s: %w", path, err)
	}
	return stat.Bavail * uint64(stat.Bsize), nil
}

// LowSpace reports whether the filesystem holding path is above the given
// usage percentage.
func LowSpace(path string, thresholdPercent float64) (bool, error) {
	var stat syscall.Statfs_t
	if err := syscall.Statfs(path, &stat); err != nil {
		return false, fmt.Errorf("statfs %s: %w", path, err)
	}
	total := stat.Blocks * uint64(stat.Bsize)
	if total == 0 {
		return false, nil
	}
	used := total - stat.Bfree*uint64(stat.Bsize)
	return float64(used)/float64(total)*100 >= thresholdPercent, nil
}
