package worker

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Pool runs fire-and-forget tasks and waits for them on shutdown.
type Pool struct {
	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
	log    *zap.Logger
}

func NewPool(log *zap.Logger) *Pool {
	ctx, cancel := context.WithCancel(context.Background())
	return &Pool{ctx: ctx, cancel: cancel, log: log}
}

// Submit runs task until it returns or the pool shuts down.
func (p *Pool) Submit(task func(ctx context.Context)) {
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		task(p.ctx)
	}()
}

// SubmitWithTimeout is Submit with the task's context also bounded by
// timeout.
func (p *Pool) SubmitWithTimeout(timeout time.Duration, task func(ctx context.Context)) {
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		ctx, cancel := context.WithTimeout(p.ctx, timeout)
		defer cancel()
		task(ctx)
	}()
}

// Wait blocks until every submitted task has returned.
func (p *Pool) Wait() {
	p.wg.Wait()
}

// Shutdown cancels running tasks and waits up to timeout for them to
// return. It reports whether all tasks finished in time.
func (p *Pool) Shutdown(timeout time.Duration) bool {
	p.log.Info("worker pool shutting down")
	p.cancel()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return true
	case <-time.After(timeout):
		p.log.Warn("worker pool shutdown timed out", zap.Duration("timeout", timeout))
		return false
	}
}
