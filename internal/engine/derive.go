package engine

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DefaultDateToken is the placeholder segment in target templates that is
// replaced with the source file's creation date.
const DefaultDateToken = "data_str"

// dateLayout formats creation dates as 8-digit YYYYMMDD in local time.
const dateLayout = "20060102"

// Deriver computes destination paths for ingested files.
//
// The destination directory is the target root, extended with the source
// file's subtree starting at the first preserve-directory match, with every
// path segment equal to DateToken replaced by the file's creation date.
// Given identical inputs (including the file's creation timestamp) the
// derivation is deterministic, so the copy and verify phases arrive at the
// same destination.
type Deriver struct {
	SourceRoot   string
	TargetRoot   string   // template; may contain DateToken as a segment
	PreserveDirs []string // priority-ordered
	DateToken    string   // defaults to DefaultDateToken when empty
}

// Derive computes the destination directory and file path for sourcePath
// and ensures the directory exists (idempotent).
func (d Deriver) Derive(sourcePath string) (dir, file string, err error) {
	dir, err = d.deriveDir(sourcePath)
	if err != nil {
		return "", "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", "", fmt.Errorf("create destination dir %s: %w", dir, err)
	}
	return dir, filepath.Join(dir, filepath.Base(sourcePath)), nil
}

func (d Deriver) deriveDir(sourcePath string) (string, error) {
	relDir, err := filepath.Rel(d.SourceRoot, filepath.Dir(sourcePath))
	if err != nil {
		return "", fmt.Errorf("relative path for %s: %w", sourcePath, err)
	}

	segments := splitSegments(relDir)

	dir := d.TargetRoot
	if idx, ok := d.preserveAnchor(segments); ok {
		dir = filepath.Join(append([]string{d.TargetRoot}, segments[idx:]...)...)
	}

	created, err := creationTime(sourcePath)
	if err != nil {
		return "", err
	}

	return d.substituteDate(dir, created.Format(dateLayout)), nil
}

// preserveAnchor returns the segment index of the first preserve-directory
// match. List order wins over path depth: the first name in PreserveDirs
// that appears anywhere among the segments anchors the subtree.
func (d Deriver) preserveAnchor(segments []string) (int, bool) {
	for _, name := range d.PreserveDirs {
		for i, seg := range segments {
			if seg == name {
				return i, true
			}
		}
	}
	return 0, false
}

// substituteDate replaces every path segment equal to the date token.
// Matching whole segments only keeps incidental substrings intact.
func (d Deriver) substituteDate(dir, date string) string {
	token := d.DateToken
	if token == "" {
		token = DefaultDateToken
	}
	segs := strings.Split(dir, string(filepath.Separator))
	for i, seg := range segs {
		if seg == token {
			segs[i] = date
		}
	}
	return strings.Join(segs, string(filepath.Separator))
}

func splitSegments(rel string) []string {
	if rel == "" || rel == "." {
		return nil
	}
	return strings.Split(rel, string(filepath.Separator))
}
