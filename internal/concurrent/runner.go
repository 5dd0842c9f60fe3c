// Package concurrent runs a worker over a slice of items with bounded
// parallelism.
package concurrent

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// WorkerFunc processes one item. A nil error with ok=false drops the item
// from the results without counting it as a failure.
type WorkerFunc[T any, R any] func(ctx context.Context, item T) (result R, ok bool, err error)

// RunnerConfig configures the concurrent runner
type RunnerConfig struct {
	MaxConcurrency int    // 0 means unlimited concurrency
	Name           string // Logger name for per-item failures
}

// Runner encapsulates concurrent processing with a throttle and wait group
type Runner[T any, R any] struct {
	config RunnerConfig
	log    *zap.Logger
}

// NewRunner creates a new concurrent runner with the given configuration
func NewRunner[T any, R any](config RunnerConfig, log *zap.Logger) *Runner[T, R] {
	if config.Name == "" {
		config.Name = "runner"
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Runner[T, R]{config: config, log: log.Named(config.Name)}
}

// RunResult contains the results of a concurrent run
type RunResult[R any] struct {
	Results []R
	Errors  []error
}

// Run executes worker for each item. Results keep the order of items, with
// dropped and failed items removed. Once ctx is done no new items start.
func (r *Runner[T, R]) Run(ctx context.Context, items []T, worker WorkerFunc[T, R]) RunResult[R] {
	if len(items) == 0 {
		return RunResult[R]{Results: []R{}, Errors: []error{}}
	}

	type slot struct {
		result R
		ok     bool
		err    error
	}
	slots := make([]slot, len(items))

	var throttle chan struct{}
	if r.config.MaxConcurrency > 0 {
		throttle = make(chan struct{}, r.config.MaxConcurrency)
	}

	var wg sync.WaitGroup
	for i, item := range items {
		if err := ctx.Err(); err != nil {
			slots[i].err = err
			continue
		}
		if throttle != nil {
			select {
			case throttle <- struct{}{}:
			case <-ctx.Done():
				slots[i].err = ctx.Err()
				continue
			}
		}

		wg.Add(1)
		go func(i int, item T) {
			defer wg.Done()
			if throttle != nil {
				defer func() { <-throttle }()
			}
			res, ok, err := worker(ctx, item)
			slots[i] = slot{result: res, ok: ok, err: err}
		}(i, item)
	}
	wg.Wait()

	out := RunResult[R]{Results: []R{}, Errors: []error{}}
	for i, s := range slots {
		if s.err != nil {
			r.log.Warn("item failed", zap.Int("index", i), zap.Error(s.err))
			out.Errors = append(out.Errors, s.err)
			continue
		}
		if s.ok {
			out.Results = append(out.Results, s.result)
		}
	}
	return out
}

// RunChunked runs items in consecutive chunks of size, waiting for each
// chunk before starting the next. Within a chunk all items run at once.
func (r *Runner[T, R]) RunChunked(ctx context.Context, items []T, size int, worker WorkerFunc[T, R]) RunResult[R] {
	if size <= 0 || size >= len(items) {
		return r.Run(ctx, items, worker)
	}
	out := RunResult[R]{Results: []R{}, Errors: []error{}}
	for start := 0; start < len(items); start += size {
		end := start + size
		if end > len(items) {
			end = len(items)
		}
		part := r.Run(ctx, items[start:end], worker)
		out.Results = append(out.Results, part.Results...)
		out.Errors = append(out.Errors, part.Errors...)
		r.log.Debug("chunk done", zap.Int("from", start), zap.Int("to", end), zap.Int("kept", len(part.Results)))
	}
	return out
}
