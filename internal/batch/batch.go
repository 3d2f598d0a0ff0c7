// Package batch fans files out to a fixed pool of workers
package batch

import (
	"context"
	"errors"
	"runtime"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/linuxmatters/voicelift/internal/processor"
)

// ErrNotStarted marks files the batch was cancelled before reaching
var ErrNotStarted = errors.New("cancelled before processing")

// ProcessFunc processes one file. It must honour ctx between stages.
type ProcessFunc func(ctx context.Context, index int, path string) (*processor.ProcessingResult, error)

// FileResult is the outcome for one input file
type FileResult struct {
	Index    int
	Path     string
	Result   *processor.ProcessingResult // nil on failure
	Err      error
	Started  time.Time
	Finished time.Time
}

// Summary counts the outcomes of a batch
type Summary struct {
	Succeeded int
	Failed    int
	Cancelled int
}

// Runner processes files concurrently. Results are reported in completion
// order through OnDone and returned in input order by Run.
type Runner struct {
	Jobs    int // worker count; <= 0 means runtime.NumCPU()
	Process ProcessFunc

	// OnStart and OnDone are called from worker goroutines and may be nil
	OnStart func(index int, path string)
	OnDone  func(FileResult)

	Log logrus.FieldLogger
}

// Workers returns the number of goroutines Run starts for n files
func (r *Runner) Workers(n int) int {
	jobs := r.Jobs
	if jobs <= 0 {
		jobs = runtime.NumCPU()
	}
	return max(1, min(jobs, n))
}

// Run processes every file and waits for all workers. A failing file never
// stops the others. Once ctx is cancelled no new file is started and the
// remaining ones are reported with ErrNotStarted.
func (r *Runner) Run(ctx context.Context, files []string) []FileResult {
	results := make([]FileResult, len(files))
	if len(files) == 0 {
		return results
	}

	log := r.Log
	if log == nil {
		log = logrus.StandardLogger()
	}

	jobs := make(chan int)
	var wg sync.WaitGroup

	for w := 0; w < r.Workers(len(files)); w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = r.runOne(ctx, log, i, files[i])
				if r.OnDone != nil {
					r.OnDone(results[i])
				}
			}
		}()
	}

	next := 0
feed:
	for ; next < len(files); next++ {
		select {
		case <-ctx.Done():
			break feed
		case jobs <- next:
		}
	}
	close(jobs)
	wg.Wait()

	for i := next; i < len(files); i++ {
		results[i] = FileResult{Index: i, Path: files[i], Err: ErrNotStarted}
		if r.OnDone != nil {
			r.OnDone(results[i])
		}
	}
	return results
}

func (r *Runner) runOne(ctx context.Context, log logrus.FieldLogger, index int, path string) FileResult {
	fr := FileResult{Index: index, Path: path, Started: time.Now()}

	if err := ctx.Err(); err != nil {
		fr.Err = ErrNotStarted
		fr.Finished = fr.Started
		return fr
	}
	if r.OnStart != nil {
		r.OnStart(index, path)
	}

	entry := log.WithFields(logrus.Fields{"file": path, "index": index})
	entry.Debug("processing started")

	fr.Result, fr.Err = r.Process(ctx, index, path)
	fr.Finished = time.Now()

	if fr.Err != nil {
		entry.WithError(fr.Err).Warn("processing failed")
	} else {
		entry.WithField("elapsed", fr.Finished.Sub(fr.Started)).Debug("processing complete")
	}
	return fr
}

// Summarise counts successes, failures and files never started
func Summarise(results []FileResult) Summary {
	var s Summary
	for _, r := range results {
		switch {
		case r.Err == nil:
			s.Succeeded++
		case errors.Is(r.Err, ErrNotStarted), errors.Is(r.Err, context.Canceled):
			s.Cancelled++
		default:
			s.Failed++
		}
	}
	return s
}
