package platform

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func copyViaPlatform(t *testing.T, src, dst string, size int64) CopyResult {
	t.Helper()

	dstFd, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	require.NoError(t, err)
	defer dstFd.Close()

	result, err := CopyFile(CopyFileParams{
		DstFd:   dstFd,
		SrcPath: src,
		SrcSize: size,
	})
	require.NoError(t, err)
	return result
}

func TestCopyFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.bin")
	dst := filepath.Join(dir, "dst.bin")

	data := bytes.Repeat([]byte("0123456789abcdef"), 4096) // 64 KiB
	require.NoError(t, os.WriteFile(src, data, 0o644))

	result := copyViaPlatform(t, src, dst, int64(len(data)))
	assert.Equal(t, int64(len(data)), result.BytesWritten)

	got, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, data, got)
}

func TestCopyFileEmpty(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "empty")
	dst := filepath.Join(dir, "empty.out")

	require.NoError(t, os.WriteFile(src, nil, 0o644))

	result := copyViaPlatform(t, src, dst, 0)
	assert.Equal(t, int64(0), result.BytesWritten)

	info, err := os.Stat(dst)
	require.NoError(t, err)
	assert.Equal(t, int64(0), info.Size())
}

func TestCopyReadWrite(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.txt")
	dst := filepath.Join(dir, "dst.txt")

	data := []byte("read write path")
	require.NoError(t, os.WriteFile(src, data, 0o644))

	dstFd, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	require.NoError(t, err)
	defer dstFd.Close()

	result, err := copyReadWrite(CopyFileParams{
		DstFd:   dstFd,
		SrcPath: src,
		SrcSize: int64(len(data)),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(len(data)), result.BytesWritten)
	assert.Equal(t, ReadWrite, result.Method)

	got, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, data, got)
}

func TestCopyFileMissingSource(t *testing.T) {
	dir := t.TempDir()
	dst := filepath.Join(dir, "dst")

	dstFd, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	require.NoError(t, err)
	defer dstFd.Close()

	_, err = CopyFile(CopyFileParams{
		DstFd:   dstFd,
		SrcPath: filepath.Join(dir, "nope"),
		SrcSize: 10,
	})
	assert.Error(t, err)
}

func TestCopyMethodString(t *testing.T) {
	assert.Equal(t, "read_write", ReadWrite.String())
	assert.Equal(t, "copy_file_range", CopyFileRange.String())
	assert.Equal(t, "sendfile", Sendfile.String())
	assert.Equal(t, "clonefile", Clonefile.String())
	assert.Equal(t, "unknown", CopyMethod(99).String())
}
