package search

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// WorkerPool bounds how many goroutines a strategy may use. It is created by
// the caller and shared by every search it hands it to.
type WorkerPool struct {
	workers int
}

// NewWorkerPool returns a pool of the given size. A size of zero or less uses
// GOMAXPROCS.
func NewWorkerPool(workers int) *WorkerPool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &WorkerPool{workers: workers}
}

// Workers returns the pool size.
func (p *WorkerPool) Workers() int {
	if p == nil {
		return 1
	}
	return p.workers
}

// Each calls fn for every index in [0, n) and waits for all calls to return.
// A nil pool runs the calls in order on the calling goroutine. The first
// error cancels the context passed to the remaining calls.
func (p *WorkerPool) Each(ctx context.Context, n int, fn func(ctx context.Context, i int) error) error {
	if p == nil || p.workers == 1 || n <= 1 {
		for i := 0; i < n; i++ {
			if err := fn(ctx, i); err != nil {
				return err
			}
		}
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)
	for i := 0; i < n; i++ {
		g.Go(func() error {
			return fn(gctx, i)
		})
	}
	return g.Wait()
}
