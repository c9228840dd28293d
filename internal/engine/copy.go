package engine

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/yuhaow/offload/internal/event"
	"github.com/yuhaow/offload/internal/platform"
)

// copyCandidate derives the destination for one candidate and copies it.
// Every error is recorded on the result; nothing aborts the batch.
func (e *ingestion) copyCandidate(srcPath string) {
	dir, dstPath, err := e.deriver.Derive(srcPath)
	if err != nil {
		e.fail(srcPath, err)
		return
	}

	// One destination, one writer per run. A later candidate flattening
	// onto an already-claimed destination is skipped, matching the
	// sequential copy-first/skip-later outcome.
	if _, loaded := e.claimed.LoadOrStore(dstPath, struct{}{}); loaded {
		e.skip(srcPath)
		return
	}

	if _, err := os.Lstat(dstPath); err == nil && !e.req.Overwrite {
		e.skip(srcPath)
		return
	}

	size, err := e.copyFile(srcPath, dir, dstPath)
	if err != nil {
		e.fail(srcPath, err)
		return
	}

	e.result.addCopied(srcPath)
	e.req.Stats.AddFilesCopied(1)
	e.req.Stats.AddBytesCopied(size)
	e.emit(event.Event{Type: event.FileCopied, Path: srcPath, Size: size})
}

// copyFile writes srcPath to a temporary file in dir and atomically renames
// it to dstPath, so an interrupted run never leaves a truncated file at a
// final destination. The source's modification time is carried over.
func (e *ingestion) copyFile(srcPath, dir, dstPath string) (int64, error) {
	info, err := os.Stat(srcPath)
	if err != nil {
		return 0, fmt.Errorf("stat %s: %w", srcPath, err)
	}

	tmpName := fmt.Sprintf(".%s.%s%s", filepath.Base(dstPath), uuid.New().String()[:8], tmpSuffix)
	tmpPath := filepath.Join(dir, tmpName)

	registerTmp(tmpPath)
	defer func() {
		deregisterTmp(tmpPath)
		_ = os.Remove(tmpPath) // no-op if rename succeeded
	}()

	tmpFd, err := os.OpenFile(tmpPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, info.Mode().Perm())
	if err != nil {
		return 0, fmt.Errorf("create tmp %s: %w", tmpPath, err)
	}

	var written int64
	if info.Size() > 0 {
		result, cerr := platform.CopyFile(platform.CopyFileParams{
			DstFd:   tmpFd,
			SrcPath: srcPath,
			SrcSize: info.Size(),
		})
		if cerr != nil {
			tmpFd.Close()
			return 0, fmt.Errorf("copy data %s: %w", srcPath, cerr)
		}
		written = result.BytesWritten
	}

	if err := tmpFd.Close(); err != nil {
		return 0, fmt.Errorf("close tmp %s: %w", tmpPath, err)
	}

	if err := os.Rename(tmpPath, dstPath); err != nil {
		return 0, fmt.Errorf("rename %s -> %s: %w", tmpPath, dstPath, err)
	}

	if err := os.Chtimes(dstPath, info.ModTime(), info.ModTime()); err != nil {
		return written, fmt.Errorf("set mtime %s: %w", dstPath, err)
	}

	return written, nil
}

func (e *ingestion) skip(path string) {
	e.result.addSkipped(path)
	e.req.Stats.AddFilesSkipped(1)
	e.emit(event.Event{Type: event.FileSkipped, Path: path})
}

func (e *ingestion) fail(path string, err error) {
	e.result.addFailed(path, err)
	e.req.Stats.AddFilesFailed(1)
	e.emit(event.Event{Type: event.FileFailed, Path: path, Error: err})
}
