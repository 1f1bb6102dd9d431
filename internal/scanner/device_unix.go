//go:build !windows

package scanner

import (
	"os"
	"syscall"
)

// deviceID returns the filesystem device number backing info, so the
// scanner can refuse to cross into another mounted volume (§1 non-goal:
// never follow symlinks into other volumes; §4.1: never cross device).
func deviceID(info os.FileInfo) uint64 {
	sys, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return 0
	}
	return uint64(sys.Dev)
}
