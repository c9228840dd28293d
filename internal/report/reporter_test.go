package report_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yuhaow/offload/internal/engine"
	"github.com/yuhaow/offload/internal/report"
)

func jsonRecords(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var records []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var rec map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &rec))
		records = append(records, rec)
	}
	return records
}

func TestLogReporterSummary(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))

	r := report.NewLogReporter(logger)
	r.Report("nikon_z50", ".NEF", &engine.Result{
		TotalFiles: 5,
		Copied:     []string{"/card/a.NEF", "/card/b.NEF", "/card/c.NEF"},
		Skipped:    []string{"/card/d.NEF"},
		Failed:     []engine.Failure{{Path: "/card/e.NEF", Reason: "permission denied"}},
	})

	records := jsonRecords(t, &buf)
	require.Len(t, records, 2)

	summary := records[0]
	assert.Equal(t, "nikon_z50", summary["device"])
	assert.Equal(t, ".NEF", summary["suffix"])
	assert.Equal(t, float64(5), summary["total"])
	assert.Equal(t, float64(3), summary["copied"])
	assert.Equal(t, float64(1), summary["skipped"])
	assert.Equal(t, float64(1), summary["failed"])
	assert.Equal(t, float64(0), summary["mismatched"])

	failure := records[1]
	assert.Equal(t, "ERROR", failure["level"])
	assert.Equal(t, "/card/e.NEF", failure["path"])
	assert.Equal(t, "permission denied", failure["error"])
}

func TestLogReporterMismatchWarns(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))

	r := report.NewLogReporter(logger)
	r.Report("dji_pocket3", ".MP4", &engine.Result{
		TotalFiles:   1,
		Copied:       []string{"/card/v.MP4"},
		HashMismatch: []string{"/card/v.MP4"},
	})

	records := jsonRecords(t, &buf)
	require.Len(t, records, 2)
	assert.Equal(t, "WARN", records[1]["level"])
	assert.Equal(t, "/card/v.MP4", records[1]["path"])
}

func TestOpenLogFileDated(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logging")

	f, err := report.OpenLogFile(dir)
	require.NoError(t, err)
	defer f.Close()

	want := filepath.Join(dir, time.Now().Format("2006-01-02")+".log")
	assert.Equal(t, want, f.Name())

	_, err = os.Stat(want)
	assert.NoError(t, err)
}

func TestOpenLogFileAppends(t *testing.T) {
	dir := t.TempDir()

	f1, err := report.OpenLogFile(dir)
	require.NoError(t, err)
	_, err = f1.WriteString("first\n")
	require.NoError(t, err)
	require.NoError(t, f1.Close())

	f2, err := report.OpenLogFile(dir)
	require.NoError(t, err)
	_, err = f2.WriteString("second\n")
	require.NoError(t, err)
	require.NoError(t, f2.Close())

	data, err := os.ReadFile(f2.Name())
	require.NoError(t, err)
	assert.Equal(t, "first\nsecond\n", string(data))
}
