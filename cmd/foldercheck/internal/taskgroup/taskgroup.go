// Package taskgroup runs independent units of work on a bounded pool.
package taskgroup

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// DefaultWorkers is the pool size used when none is configured.
func DefaultWorkers() int {
	return runtime.NumCPU()
}

// Run submits every item up front and calls fn for each on at most workers
// goroutines (DefaultWorkers when workers <= 0). It blocks until every unit
// has reported. Results are returned in completion order, which is racy;
// callers that need determinism must sort.
//
// onDone, if set, is called on the calling goroutine after each completion
// with the number of completed units and the total.
//
// The first error cancels the context passed to units that have not started
// yet; they are skipped and Run returns that error with no results.
func Run[T, R any](ctx context.Context, workers int, items []T, fn func(context.Context, T) (R, error), onDone func(done, total int)) ([]R, error) {
	if workers <= 0 {
		workers = DefaultWorkers()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	completed := make(chan R, len(items))
	waited := make(chan error, 1)

	go func() {
		for _, item := range items {
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				r, err := fn(gctx, item)
				if err != nil {
					return err
				}
				completed <- r
				return nil
			})
		}
		waited <- g.Wait()
		close(completed)
	}()

	results := make([]R, 0, len(items))
	for r := range completed {
		results = append(results, r)
		if onDone != nil {
			onDone(len(results), len(items))
		}
	}

	if err := <-waited; err != nil {
		return nil, err
	}
	return results, nil
}
