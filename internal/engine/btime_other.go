//go:build !linux && !darwin

package engine

import (
	"fmt"
	"os"
	"time"
)

// creationTime approximates the birth time with mtime on platforms that
// do not expose one.
func creationTime(path string) (time.Time, error) {
	info, err := os.Stat(path)
	if err != nil {
		return time.Time{}, fmt.Errorf("stat %s: %w", path, err)
	}
	return info.ModTime(), nil
}
