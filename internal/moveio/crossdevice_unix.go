//go:build !windows

package moveio

import (
	"errors"
	"syscall"
)

// isCrossDevice reports whether err is the "invalid cross-device link"
// failure os.Rename returns when source and destination are on different
// filesystems, the case the executor contract falls back to copy+unlink for.
func isCrossDevice(err error) bool {
	return errors.Is(err, syscall.EXDEV)
}
