//go:build darwin

package engine

import (
	"fmt"
	"os"
	"syscall"
	"time"
)

// creationTime returns the file's birth time from Birthtimespec.
func creationTime(path string) (time.Time, error) {
	info, err := os.Stat(path)
	if err != nil {
		return time.Time{}, fmt.Errorf("stat %s: %w", path, err)
	}
	if stat, ok := info.Sys().(*syscall.Stat_t); ok {
		return time.Unix(stat.Birthtimespec.Sec, stat.Birthtimespec.Nsec), nil
	}
	return info.ModTime(), nil
}
