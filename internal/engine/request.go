package engine

import (
	"sync"

	"github.com/yuhaow/offload/internal/event"
	"github.com/yuhaow/offload/internal/stats"
)

// Request describes one ingestion job.
type Request struct {
	SourceRoot   string
	TargetRoot   string   // template; may contain the date token as a segment
	PreserveDirs []string // priority-ordered subtree anchors
	Suffix       string   // literal, case-sensitive filename suffix
	Overwrite    bool
	Algorithm    Algorithm // defaults to DefaultAlgorithm
	DateToken    string    // defaults to DefaultDateToken
	Workers      int       // defaults to min(NumCPU, 8)
	DryRun       bool      // discover only, no copies

	// Events receives optional progress events; sends are non-blocking.
	Events chan<- event.Event
	// Stats receives counter updates; a fresh collector is used when nil.
	Stats *stats.Collector
}

// Failure pairs a source path with the error that excluded it from the run.
type Failure struct {
	Path   string
	Reason string
}

// Result is the outcome of one ingestion run.
//
// After the copy phase every candidate appears in exactly one of Copied,
// Skipped, or Failed. The verify phase only adds to Failed and
// HashMismatch. Membership, not order, is the contract: workers append
// concurrently within a phase.
type Result struct {
	TotalFiles   int
	Copied       []string
	Skipped      []string
	Failed       []Failure
	HashMismatch []string

	mu sync.Mutex
}

func (r *Result) addCopied(path string) {
	r.mu.Lock()
	r.Copied = append(r.Copied, path)
	r.mu.Unlock()
}

func (r *Result) addSkipped(path string) {
	r.mu.Lock()
	r.Skipped = append(r.Skipped, path)
	r.mu.Unlock()
}

func (r *Result) addFailed(path string, err error) {
	r.mu.Lock()
	r.Failed = append(r.Failed, Failure{Path: path, Reason: err.Error()})
	r.mu.Unlock()
}

func (r *Result) addMismatch(path string) {
	r.mu.Lock()
	r.HashMismatch = append(r.HashMismatch, path)
	r.mu.Unlock()
}

// Clean reports whether the run completed with no failures and no
// integrity mismatches.
func (r *Result) Clean() bool {
	return len(r.Failed) == 0 && len(r.HashMismatch) == 0
}
