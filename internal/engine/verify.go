package engine

import (
	"fmt"
	"os"

	"github.com/yuhaow/offload/internal/event"
)

// verifyCopy re-derives the destination for a copied source and compares
// digests on both sides. A digest inequality is an integrity finding, not
// an error: the copy landed structurally but the content diverged, which
// demands operator attention rather than a retry.
func (e *ingestion) verifyCopy(srcPath string) {
	_, dstPath, err := e.deriver.Derive(srcPath)
	if err != nil {
		e.verifyFail(srcPath, err)
		return
	}

	if _, err := os.Lstat(dstPath); err != nil {
		if os.IsNotExist(err) {
			e.verifyFail(srcPath, fmt.Errorf("%s: destination not found", dstPath))
		} else {
			e.verifyFail(srcPath, err)
		}
		return
	}

	srcHash, err := HashFile(srcPath, e.req.Algorithm)
	if err != nil {
		e.verifyFail(srcPath, err)
		return
	}
	dstHash, err := HashFile(dstPath, e.req.Algorithm)
	if err != nil {
		e.verifyFail(srcPath, err)
		return
	}

	if srcHash != dstHash {
		e.result.addMismatch(srcPath)
		e.req.Stats.AddFilesMismatched(1)
		e.emit(event.Event{Type: event.HashMismatch, Path: srcPath})
		return
	}

	e.req.Stats.AddFilesVerified(1)
	e.emit(event.Event{Type: event.VerifyOK, Path: srcPath})
}

func (e *ingestion) verifyFail(path string, err error) {
	wrapped := fmt.Errorf("verify: %w", err)
	e.result.addFailed(path, wrapped)
	e.req.Stats.AddFilesFailed(1)
	e.emit(event.Event{Type: event.VerifyFailed, Path: path, Error: wrapped})
}
