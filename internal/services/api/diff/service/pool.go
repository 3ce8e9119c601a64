package service

import (
	"context"
	"runtime"
	"sync/atomic"

	perr "wta/internal/platform/errors"

	"golang.org/x/sync/semaphore"
)

// Pool bounds how many comparator runs execute at once
type Pool struct {
	sem     *semaphore.Weighted
	size    int
	running atomic.Int64
}

// NewPool returns a pool with n slots, n <= 0 means runtime.NumCPU()
func NewPool(n int) *Pool {
	if n <= 0 {
		n = runtime.NumCPU()
	}
	return &Pool{sem: semaphore.NewWeighted(int64(n)), size: n}
}

// Size is the slot count
func (p *Pool) Size() int { return p.size }

// Running reports how many functions currently hold a slot
func (p *Pool) Running() int { return int(p.running.Load()) }

// Do waits for a slot and runs fn on the calling goroutine
// a panic in fn is recovered into a Panic error
func (p *Pool) Do(ctx context.Context, fn func() error) (err error) {
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	p.running.Add(1)
	defer func() {
		p.running.Add(-1)
		p.sem.Release(1)
	}()
	defer func() {
		if rec := recover(); rec != nil {
			err = perr.PanicErrf("comparator panic: %v", rec)
		}
	}()
	return fn()
}
