package report

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/yuhaow/offload/internal/engine"
)

// Reporter consumes the structured outcome of one ingestion job.
type Reporter interface {
	Report(device, suffix string, result *engine.Result)
}

// LogReporter writes run outcomes through a slog.Logger: one summary
// record per job, one error record per failure, one warning per hash
// mismatch.
type LogReporter struct {
	logger *slog.Logger
}

// NewLogReporter creates a Reporter backed by logger.
func NewLogReporter(logger *slog.Logger) *LogReporter {
	return &LogReporter{logger: logger}
}

func (r *LogReporter) Report(device, suffix string, result *engine.Result) {
	r.logger.Info("ingestion complete",
		"device", device,
		"suffix", suffix,
		"total", result.TotalFiles,
		"copied", len(result.Copied),
		"skipped", len(result.Skipped),
		"failed", len(result.Failed),
		"mismatched", len(result.HashMismatch),
	)

	for _, f := range result.Failed {
		r.logger.Error("copy failed",
			"device", device,
			"path", f.Path,
			"error", f.Reason,
		)
	}

	for _, p := range result.HashMismatch {
		r.logger.Warn("hash mismatch",
			"device", device,
			"path", p,
		)
	}
}

// OpenLogFile opens today's log file in dir (<dir>/YYYY-MM-DD.log) in
// append mode, creating the directory as needed.
func OpenLogFile(dir string) (*os.File, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create log dir %s: %w", dir, err)
	}
	name := time.Now().Format("2006-01-02") + ".log"
	f, err := os.OpenFile(filepath.Join(dir, name), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return f, nil
}
