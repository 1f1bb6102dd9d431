//go:build darwin

package scanmodel

import (
	"os"
	"syscall"
)

// platformStat fills in uid/gid/ctime/birthtime using the BSD stat buffer,
// which (unlike Linux) carries a genuine creation time.
func platformStat(path string, info os.FileInfo, snap *StatSnapshot) {
	sys, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return
	}
	snap.Uid = sys.Uid
	snap.Gid = sys.Gid
	snap.CtimeMs = sys.Ctimespec.Sec*1000 + sys.Ctimespec.Nsec/1e6
	snap.BirthtimeMs = sys.Birthtimespec.Sec*1000 + sys.Birthtimespec.Nsec/1e6
}
