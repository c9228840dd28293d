//go:build linux

package engine

import (
	"fmt"
	"os"
	"time"

	"golang.org/x/sys/unix"
)

// creationTime returns the file's birth time via statx(2). Filesystems
// that do not record btime fall back to mtime.
func creationTime(path string) (time.Time, error) {
	var stx unix.Statx_t
	err := unix.Statx(unix.AT_FDCWD, path, 0, unix.STATX_BTIME, &stx)
	if err == nil && stx.Mask&unix.STATX_BTIME != 0 &&
		(stx.Btime.Sec != 0 || stx.Btime.Nsec != 0) {
		return time.Unix(stx.Btime.Sec, int64(stx.Btime.Nsec)), nil
	}

	info, serr := os.Stat(path)
	if serr != nil {
		return time.Time{}, fmt.Errorf("stat %s: %w", path, serr)
	}
	return info.ModTime(), nil
}
