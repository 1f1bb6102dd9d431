//go:build linux

package scanmodel

import (
	"os"
	"syscall"

	"golang.org/x/sys/unix"
)

// platformStat fills in the uid/gid/ctime fields Linux exposes via stat(2).
// The classic stat buffer has no birth time, so BirthtimeMs starts as a
// mirror of CtimeMs and is replaced by the statx(2) birth time when the
// filesystem reports one; an unavailable birth time degrades gracefully
// rather than failing.
func platformStat(path string, info os.FileInfo, snap *StatSnapshot) {
	sys, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return
	}
	snap.Uid = sys.Uid
	snap.Gid = sys.Gid
	snap.CtimeMs = unix.TimespecToNsec(unix.Timespec(sys.Ctim)) / int64(1e6)
	snap.BirthtimeMs = snap.CtimeMs

	var stx unix.Statx_t
	if err := unix.Statx(unix.AT_FDCWD, path, unix.AT_SYMLINK_NOFOLLOW|unix.AT_STATX_SYNC_AS_STAT, unix.STATX_BTIME, &stx); err == nil && stx.Mask&unix.STATX_BTIME != 0 {
		snap.BirthtimeMs = stx.Btime.Sec*1000 + int64(stx.Btime.Nsec)/1e6
	}
}
