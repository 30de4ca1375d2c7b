// Package workpool implements parallel_for: an embarrassingly-parallel
// range dispatcher for optional multi-threaded per-brick-row fills
// (§5). Built on golang.org/x/sync/errgroup rather than a hand-rolled
// mutex-guarded counter — errgroup already cancels the group's context
// on the first worker error, giving the "first exception aborts the
// others, re-raised on the calling thread after join" semantics the
// design calls for.
package workpool

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Fn is one unit of work: thread index plus the item pulled off the
// shared range. Implementations must be re-entrant with respect to
// threadIdx — there is no ordering guarantee between items.
type Fn func(ctx context.Context, threadIdx int, item int) error

// ParallelFor dispatches fn(threadIdx, item) for item in [0,n) across
// workers workers (0 selects runtime.NumCPU(), floored at 1). The first
// error returned by any worker cancels the remaining workers' context
// and is returned to the caller once every worker has stopped.
func ParallelFor(ctx context.Context, n int, workers int, fn Fn) error {
	if n <= 0 {
		return nil
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > n {
		workers = n
	}
	if workers < 1 {
		workers = 1
	}

	g, gctx := errgroup.WithContext(ctx)
	next := make(chan int)

	g.Go(func() error {
		defer close(next)
		for i := 0; i < n; i++ {
			select {
			case next <- i:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
		return nil
	})

	for w := 0; w < workers; w++ {
		threadIdx := w
		g.Go(func() error {
			for {
				select {
				case item, ok := <-next:
					if !ok {
						return nil
					}
					if err := fn(gctx, threadIdx, item); err != nil {
						return err
					}
				case <-gctx.Done():
					return gctx.Err()
				}
			}
		})
	}

	return g.Wait()
}
