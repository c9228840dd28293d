package engine

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// createCardTree populates root with a typical memory-card layout:
//
//	DCIM/100MEDIA/img1.JPG
//	DCIM/100MEDIA/clip1.MP4
//	DCIM/PANORAMA/pano1.JPG
//	DCIM/PANORAMA/inner/pano2.JPG
//	MISC/thumbs.db
func createCardTree(t *testing.T, root string) {
	t.Helper()

	files := map[string]string{
		filepath.Join("DCIM", "100MEDIA", "img1.JPG"):          "image one",
		filepath.Join("DCIM", "100MEDIA", "clip1.MP4"):         "movie data",
		filepath.Join("DCIM", "PANORAMA", "pano1.JPG"):         "panorama one",
		filepath.Join("DCIM", "PANORAMA", "inner", "pano2.JPG"): "panorama two",
		filepath.Join("MISC", "thumbs.db"):                     "junk",
	}
	for rel, content := range files {
		writeFile(t, filepath.Join(root, rel), content)
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// dateOf returns the YYYYMMDD creation date the deriver will use for path.
// Tests cannot control filesystem birth times, so expectations are computed
// from the same source the deriver reads.
func dateOf(t *testing.T, path string) string {
	t.Helper()
	created, err := creationTime(path)
	require.NoError(t, err)
	return created.Format(dateLayout)
}

// expectedDest computes the destination path the deriver should produce.
func expectedDest(t *testing.T, d Deriver, srcPath string) string {
	t.Helper()
	dir, err := d.deriveDir(srcPath)
	require.NoError(t, err)
	return filepath.Join(dir, filepath.Base(srcPath))
}

// pastTime is an arbitrary fixed mtime used to check time preservation.
var pastTime = time.Date(2024, 3, 1, 10, 30, 0, 0, time.Local)
