// Package worker provides the background runtime handle used for downloads
// and other off-loop work. There is no global runtime; the pool is created
// by the host and passed to whoever needs it.
package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sync/semaphore"

	"github.com/ytget/ytfetch/pkg/logster"
)

// Pool limits
const (
	MinLimit     = 1
	DefaultLimit = 2
)

// ErrPoolClosed is reported to jobs submitted after Close
var ErrPoolClosed = errors.New("worker pool closed")

// Pool runs jobs in goroutines bound to a cancellable root context
type Pool struct {
	ctx    context.Context
	cancel context.CancelFunc
	sem    *semaphore.Weighted
	limit  int
	logger logster.Logger

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

// New creates a pool whose limited jobs run at most limit at a time
func New(limit int, logger logster.Logger) *Pool {
	if limit < MinLimit {
		limit = MinLimit
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Pool{
		ctx:    ctx,
		cancel: cancel,
		sem:    semaphore.NewWeighted(int64(limit)),
		limit:  limit,
		logger: logger.WithField("component", "worker"),
	}
}

// Context returns the root context. It is cancelled by Close.
func (p *Pool) Context() context.Context {
	return p.ctx
}

// Limit returns the number of limited jobs allowed to run at once
func (p *Pool) Limit() int {
	return p.limit
}

// Go runs job in a new goroutine without waiting for a slot. It never blocks
// and returns false if the pool is closed.
func (p *Pool) Go(job func(ctx context.Context)) bool {
	if !p.add() {
		return false
	}
	go func() {
		defer p.wg.Done()
		defer p.recoverPanic()
		job(p.ctx)
	}()
	return true
}

// GoLimited runs job once a slot is free. The caller never blocks: waiting
// happens inside the new goroutine. If ctx is cancelled or the pool closes
// before a slot frees up, aborted is called with the reason instead of job.
func (p *Pool) GoLimited(ctx context.Context, job func(ctx context.Context), aborted func(err error)) bool {
	if !p.add() {
		if aborted != nil {
			aborted(ErrPoolClosed)
		}
		return false
	}
	go func() {
		defer p.wg.Done()
		defer p.recoverPanic()

		if err := p.sem.Acquire(ctx, 1); err != nil {
			if aborted != nil {
				aborted(err)
			}
			return
		}
		defer p.sem.Release(1)

		if err := ctx.Err(); err != nil {
			if aborted != nil {
				aborted(err)
			}
			return
		}
		job(ctx)
	}()
	return true
}

// Close cancels the root context and rejects new jobs. Running jobs are
// expected to observe the cancellation.
func (p *Pool) Close() {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()
	p.cancel()
}

// Wait blocks until every job returned or ctx is done
func (p *Pool) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("waiting for workers: %w", ctx.Err())
	}
}

// Shutdown closes the pool and waits for running jobs
func (p *Pool) Shutdown(ctx context.Context) error {
	p.Close()
	return p.Wait(ctx)
}

func (p *Pool) add() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return false
	}
	p.wg.Add(1)
	return true
}

func (p *Pool) recoverPanic() {
	if r := recover(); r != nil {
		p.logger.Errorf("worker panic: %v", r)
	}
}
