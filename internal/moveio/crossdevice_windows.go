//go:build windows

package moveio

import (
	"errors"
	"syscall"
)

// ERROR_NOT_SAME_DEVICE is Windows' equivalent of EXDEV, returned by
// MoveFile when source and destination straddle volumes.
const errorNotSameDevice = syscall.Errno(17)

func isCrossDevice(err error) bool {
	return errors.Is(err, errorNotSameDevice)
}
