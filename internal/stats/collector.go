package stats

import (
	"fmt"
	"sync/atomic"
	"time"
)

// Collector tracks ingestion statistics using lock-free atomic counters.
// A single Collector may be shared by several jobs in one invocation.
type Collector struct {
	candidates      atomic.Int64
	filesCopied     atomic.Int64
	filesSkipped    atomic.Int64
	filesFailed     atomic.Int64
	filesVerified   atomic.Int64
	filesMismatched atomic.Int64
	bytesCopied     atomic.Int64
	startTime       time.Time
}

// NewCollector creates a Collector with startTime set to now.
func NewCollector() *Collector {
	return &Collector{startTime: time.Now()}
}

func (c *Collector) AddCandidates(n int64)      { c.candidates.Add(n) }
func (c *Collector) AddFilesCopied(n int64)     { c.filesCopied.Add(n) }
func (c *Collector) AddFilesSkipped(n int64)    { c.filesSkipped.Add(n) }
func (c *Collector) AddFilesFailed(n int64)     { c.filesFailed.Add(n) }
func (c *Collector) AddFilesVerified(n int64)   { c.filesVerified.Add(n) }
func (c *Collector) AddFilesMismatched(n int64) { c.filesMismatched.Add(n) }
func (c *Collector) AddBytesCopied(n int64)     { c.bytesCopied.Add(n) }

// Snapshot is a point-in-time read of all counters.
type Snapshot struct {
	Candidates      int64
	FilesCopied     int64
	FilesSkipped    int64
	FilesFailed     int64
	FilesVerified   int64
	FilesMismatched int64
	BytesCopied     int64
	Elapsed         time.Duration
}

// Snapshot returns a consistent point-in-time read of all counters.
func (c *Collector) Snapshot() Snapshot {
	return Snapshot{
		Candidates:      c.candidates.Load(),
		FilesCopied:     c.filesCopied.Load(),
		FilesSkipped:    c.filesSkipped.Load(),
		FilesFailed:     c.filesFailed.Load(),
		FilesVerified:   c.filesVerified.Load(),
		FilesMismatched: c.filesMismatched.Load(),
		BytesCopied:     c.bytesCopied.Load(),
		Elapsed:         time.Since(c.startTime),
	}
}

func (s Snapshot) String() string {
	return fmt.Sprintf(
		"candidates=%d copied=%d skipped=%d failed=%d verified=%d mismatched=%d bytes=%s",
		s.Candidates, s.FilesCopied, s.FilesSkipped, s.FilesFailed,
		s.FilesVerified, s.FilesMismatched, FormatBytes(s.BytesCopied),
	)
}

// FormatBytes returns a human-readable byte count.
func FormatBytes(b int64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	div, exp := int64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(b)/float64(div), "KMGTPE"[exp])
}
