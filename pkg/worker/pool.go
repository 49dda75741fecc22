// Package worker runs blocking cluster fetches on a bounded set of slots so
// a burst of tool calls cannot open unbounded concurrent API requests.
package worker

import (
	"context"
	"fmt"

	"golang.org/x/sync/semaphore"

	"github.com/pat-nel87/k8s-assess-mcp/pkg/metrics"
)

// Pool bounds concurrent jobs.
type Pool struct {
	size int64
	sem  *semaphore.Weighted
}

// New creates a pool with size slots. Sizes below one are raised to one.
func New(size int) *Pool {
	if size < 1 {
		size = 1
	}
	return &Pool{size: int64(size), sem: semaphore.NewWeighted(int64(size))}
}

// Size returns the number of slots.
func (p *Pool) Size() int { return int(p.size) }

// Do runs fn on its own goroutine once a slot is free and waits for it.
// A panic in fn is returned as an error. If ctx ends first, Do returns the
// context error and the job keeps its slot until fn returns.
func (p *Pool) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return fmt.Errorf("waiting for worker: %w", err)
	}
	metrics.WorkerJobsInFlight.Inc()

	done := make(chan error, 1)
	go func() {
		defer p.sem.Release(1)
		defer metrics.WorkerJobsInFlight.Dec()
		done <- Guard(func() error { return fn(ctx) })()
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Guard wraps fn so that a panic is returned as an error. Jobs that start
// goroutines of their own, such as errgroup fetches, wrap each of them.
func Guard(fn func() error) func() error {
	return func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("panic: %v", r)
			}
		}()
		return fn()
	}
}
