// Package runner drives a fixed pool of workers over a frontier.
package runner

import (
	"context"
	"sync"

	"golang.org/x/time/rate"

	"github.com/will-x86/wordhound/frontier"
	"github.com/will-x86/wordhound/logger"
)

// Processor handles one task to a terminal outcome. The returned error is
// logged and never retried.
type Processor interface {
	Process(ctx context.Context, task frontier.Task) error
}

// Pool runs a fixed number of workers until the frontier drains or the
// context is cancelled. Pool size never changes during a run.
type Pool struct {
	workers       int
	limiter       *rate.Limiter
	progressEvery int
	logger        logger.Logger
}

type PoolOption func(*Pool)

// WithRateLimit caps task starts per second across all workers. Zero or
// negative disables the cap.
func WithRateLimit(requestsPerSecond int) PoolOption {
	return func(p *Pool) {
		if requestsPerSecond > 0 {
			p.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), 1)
		}
	}
}

// WithProgressEvery logs a progress line after every n processed tasks.
// Best effort under concurrency.
func WithProgressEvery(n int) PoolOption {
	return func(p *Pool) {
		if n > 0 {
			p.progressEvery = n
		}
	}
}

func WithLogger(log logger.Logger) PoolOption {
	return func(p *Pool) {
		if log != nil {
			p.logger = log
		}
	}
}

func NewPool(workers int, opts ...PoolOption) *Pool {
	if workers < 1 {
		workers = 20
	}

	p := &Pool{
		workers: workers,
		logger:  logger.NewStdLogger(),
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Run blocks until every admitted task has been processed or ctx is
// cancelled. An idle frontier returns immediately. On cancellation queued
// tasks are dropped and workers wind down after their current task.
func (p *Pool) Run(ctx context.Context, proc Processor, front *frontier.Frontier) error {
	front.StopIfIdle()

	watcherDone := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			p.logger.Debug("Context cancelled, stopping frontier")
			front.Stop()
		case <-watcherDone:
		}
	}()

	var wg sync.WaitGroup
	for i := 0; i < p.workers; i++ {
		wg.Add(1)
		go p.work(ctx, i, proc, front, &wg)
	}
	wg.Wait()
	close(watcherDone)

	p.logger.Debug("All workers finished")
	return ctx.Err()
}

func (p *Pool) work(ctx context.Context, workerID int, proc Processor, front *frontier.Frontier, wg *sync.WaitGroup) {
	defer wg.Done()

	for {
		task, ok := front.Next()
		if !ok {
			p.logger.Debug("Worker %d: No more work", workerID)
			return
		}

		if p.limiter != nil {
			if err := p.limiter.Wait(ctx); err != nil {
				p.logger.Debug("Worker %d: Rate limiter cancelled: %v", workerID, err)
				return
			}
		}

		p.logger.Debug("Worker %d: Processing %s (active: %d)", workerID, task.URL, front.Active())
		err := proc.Process(ctx, task)
		front.Done()
		if err != nil {
			p.logger.Error("Worker %d: Failed to process %s: %v", workerID, task.URL, err)
		}

		p.progress(front)
	}
}

// progress logs processed/added after every progressEvery tasks, guarding
// the percentage against an empty frontier.
func (p *Pool) progress(front *frontier.Frontier) {
	if p.progressEvery <= 0 {
		return
	}
	done := front.Processed()
	if done%int64(p.progressEvery) != 0 {
		return
	}
	added := front.Added()
	if added == 0 {
		return
	}
	p.logger.Info("Progress: %d/%d processed (%.0f%%), %d active",
		done, added, float64(done)/float64(added)*100, front.Active())
}
