package engine

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/yuhaow/offload/internal/event"
	"github.com/yuhaow/offload/internal/stats"
)

// Run executes one ingestion job: discover candidates under the source
// root, copy each to its derived destination, then verify every copy by
// digest. Per-file errors are absorbed into the Result; only request
// validation and discovery errors propagate.
func Run(ctx context.Context, req Request) (*Result, error) {
	info, err := os.Stat(req.SourceRoot)
	if err != nil {
		return nil, fmt.Errorf("source root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("source root %s is not a directory", req.SourceRoot)
	}
	if req.TargetRoot == "" {
		return nil, errors.New("target root is required")
	}
	if req.Algorithm == "" {
		req.Algorithm = DefaultAlgorithm
	}
	if _, err := req.Algorithm.newHash(); err != nil {
		return nil, err
	}
	if req.Workers <= 0 {
		req.Workers = min(runtime.NumCPU(), 8)
	}
	if req.Stats == nil {
		req.Stats = stats.NewCollector()
	}

	ing := &ingestion{
		req: req,
		deriver: Deriver{
			SourceRoot:   req.SourceRoot,
			TargetRoot:   req.TargetRoot,
			PreserveDirs: req.PreserveDirs,
			DateToken:    req.DateToken,
		},
		result: &Result{},
	}
	defer CleanupTmpFiles()

	ing.emit(event.Event{Type: event.ScanStarted})
	candidates, err := discover(req.SourceRoot, req.Suffix)
	if err != nil {
		return nil, err
	}
	ing.result.TotalFiles = len(candidates)
	req.Stats.AddCandidates(int64(len(candidates)))
	ing.emit(event.Event{Type: event.ScanComplete, Total: int64(len(candidates))})

	if req.DryRun {
		return ing.result, nil
	}

	// The copy phase must fully complete before verification starts:
	// phase 3 iterates over phase 2's output, not the candidate list.
	ing.runPhase(ctx, candidates, ing.copyCandidate)

	ing.emit(event.Event{Type: event.VerifyStarted})
	copied := append([]string(nil), ing.result.Copied...)
	ing.runPhase(ctx, copied, ing.verifyCopy)

	if err := ctx.Err(); err != nil {
		return ing.result, err
	}
	return ing.result, nil
}

// ingestion carries the per-run state shared by phase workers.
type ingestion struct {
	req     Request
	deriver Deriver
	result  *Result
	claimed sync.Map // destination path -> struct{}
}

// runPhase fans paths out to a bounded worker pool and blocks until all
// are processed. fn must isolate its own failures; a worker never aborts
// its siblings.
func (e *ingestion) runPhase(ctx context.Context, paths []string, fn func(string)) {
	tasks := make(chan string, e.req.Workers)
	var wg sync.WaitGroup
	for range e.req.Workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range tasks {
				select {
				case <-ctx.Done():
					return
				default:
				}
				fn(path)
			}
		}()
	}

	for _, p := range paths {
		select {
		case <-ctx.Done():
		case tasks <- p:
		}
	}
	close(tasks)
	wg.Wait()
}

func (e *ingestion) emit(ev event.Event) {
	if e.req.Events == nil {
		return
	}
	ev.Timestamp = time.Now()
	select {
	case e.req.Events <- ev:
	default:
	}
}
