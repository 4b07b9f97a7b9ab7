//go:build unix

package dedup

import (
	"os"
	"syscall"

	"github.com/ivoronin/hashdog/internal/model"
)

// fillPlatformStat populates dev/ino/nlink from info's raw syscall stat,
// used to detect files already hardlinked to each other before Apply
// chooses which path in a duplicate group becomes the surviving source.
func fillPlatformStat(fi *model.FileInfo, info os.FileInfo) {
	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return
	}
	fi.Dev = uint64(stat.Dev) //nolint:unconvert // platform-dependent type
	fi.Ino = stat.Ino
	fi.Nlink = uint32(stat.Nlink)
}
