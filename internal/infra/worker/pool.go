// File: internal/infra/worker/pool.go
package worker

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"

	"github.com/rs/zerolog"
)

// Task is a unit of background work. It receives the pool's base context,
// not the context of whoever submitted it.
type Task func(ctx context.Context) error

var (
	ErrPoolClosed  = errors.New("worker pool is closed")
	ErrPoolStopped = errors.New("worker pool stopped before tasks finished")
)

// Pool runs submitted tasks in the background with at most n of them
// executing at once. Submit never blocks and never drops a task: tasks wait
// for a slot instead.
type Pool struct {
	mu     sync.Mutex
	wg     sync.WaitGroup
	sem    chan struct{}
	base   context.Context
	cancel context.CancelFunc
	closed bool
	logger *zerolog.Logger
}

func NewPool(workers int, logger *zerolog.Logger) *Pool {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	l := logger.With().Str("component", "worker_pool").Logger()
	return &Pool{
		sem:    make(chan struct{}, workers),
		base:   context.Background(),
		cancel: func() {},
		logger: &l,
	}
}

// Start sets the base context tasks run under. Calling it is optional; it
// must happen before the first Submit.
func (p *Pool) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.base, p.cancel = context.WithCancel(ctx)
}

// Submit schedules task and returns immediately.
func (p *Pool) Submit(task Task) error {
	if task == nil {
		return errors.New("nil task")
	}
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return ErrPoolClosed
	}
	p.wg.Add(1)
	base := p.base
	p.mu.Unlock()

	go p.run(base, task)
	return nil
}

func (p *Pool) run(ctx context.Context, task Task) {
	defer p.wg.Done()

	select {
	case p.sem <- struct{}{}:
	case <-ctx.Done():
		p.logger.Warn().Err(ctx.Err()).Msg("task abandoned before start")
		return
	}
	defer func() { <-p.sem }()

	defer func() {
		if r := recover(); r != nil {
			p.logger.Error().Str("panic", fmt.Sprint(r)).Msg("task panicked")
		}
	}()

	if err := task(ctx); err != nil {
		p.logger.Error().Err(err).Msg("task error")
	}
}

// Stop refuses new tasks and waits for queued and running ones. When ctx
// expires first, the base context is cancelled and Stop returns
// ErrPoolStopped at once without waiting for tasks to observe it.
func (p *Pool) Stop(ctx context.Context) error {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.cancel()
		return nil
	case <-ctx.Done():
		p.cancel()
		return ErrPoolStopped
	}
}
