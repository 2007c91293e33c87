package parallel

import (
	"context"
	"runtime"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

// WorkerPool runs indexed tasks on a fixed number of goroutines.
//
// Workers pull the next index from a shared atomic counter, so slow tasks do
// not hold up the queue behind them. The first task error cancels the
// remaining work; cancellation is checked between tasks, never inside one.
//
// Thread safety: WorkerPool is stateless between calls and safe for
// concurrent use.
type WorkerPool struct {
	// workers is the number of worker goroutines per call.
	workers int
}

// NewWorkerPool creates a pool with the specified number of workers.
// If workers is 0 or negative, GOMAXPROCS is used.
func NewWorkerPool(workers int) *WorkerPool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &WorkerPool{workers: workers}
}

// Workers returns the number of workers in the pool.
func (p *WorkerPool) Workers() int {
	return p.workers
}

// ForEach calls fn for every index in [0, n) and waits for all workers.
//
// It returns the first error returned by fn, or ctx.Err() if ctx is
// cancelled before every index has completed. A cancellation that arrives
// after the last task finished is not an error. fn receives a context that
// is cancelled as soon as any task fails.
func (p *WorkerPool) ForEach(ctx context.Context, n int, fn func(ctx context.Context, i int) error) error {
	if n <= 0 {
		return ctx.Err()
	}

	g, gctx := errgroup.WithContext(ctx)
	var next, completed atomic.Int64

	for range min(p.workers, n) {
		g.Go(func() error {
			for {
				// Stop signal is polled between tasks.
				if err := gctx.Err(); err != nil {
					return err
				}
				i := int(next.Add(1) - 1)
				if i >= n {
					return nil
				}
				if err := fn(gctx, i); err != nil {
					return err
				}
				completed.Add(1)
			}
		})
	}

	err := g.Wait()
	if completed.Load() == int64(n) {
		return nil
	}
	if err != nil {
		return err
	}
	return ctx.Err()
}
