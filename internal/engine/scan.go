package engine

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
)

// discover walks root and returns every regular file whose name ends with
// suffix, in directory-walk order. Any walk error is fatal: without a
// complete candidate list there is no batch to isolate failures within.
func discover(root, suffix string) ([]string, error) {
	var candidates []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if strings.HasSuffix(d.Name(), suffix) {
			candidates = append(candidates, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", root, err)
	}
	return candidates, nil
}
