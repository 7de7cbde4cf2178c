// Package frontier maintains the crawl frontier: a claim set that admits
// each URL at most once plus an unbounded FIFO of tasks feeding the
// workers.
package frontier

import (
	"sync"
	"sync/atomic"
)

// Task is one claimed URL awaiting processing.
type Task struct {
	URL string
}

// Frontier is safe for concurrent use. Add never blocks; Next blocks until
// a task arrives or the frontier stops. The frontier stops itself exactly
// once, when every admitted task has been processed.
type Frontier struct {
	mu      sync.Mutex
	wake    *sync.Cond
	claimed map[string]struct{}
	backlog []Task
	active  int // queued + in flight
	stopped bool

	added     atomic.Int64
	processed atomic.Int64
}

// New returns a Frontier with crawled pre-claimed; those URLs are skipped
// if rediscovered.
func New(crawled ...string) *Frontier {
	f := &Frontier{claimed: make(map[string]struct{}, len(crawled))}
	f.wake = sync.NewCond(&f.mu)
	for _, u := range crawled {
		f.claimed[u] = struct{}{}
	}
	return f
}

// Add claims url and queues a task for it in one critical section. It
// reports false without side effects when the URL was claimed before or
// the frontier has stopped.
func (f *Frontier) Add(url string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.stopped {
		return false
	}
	if _, ok := f.claimed[url]; ok {
		return false
	}

	f.claimed[url] = struct{}{}
	f.backlog = append(f.backlog, Task{URL: url})
	f.active++
	f.added.Add(1)
	f.wake.Signal()
	return true
}

// Claimed reports whether url was ever admitted or pre-seeded as crawled.
func (f *Frontier) Claimed(url string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	_, ok := f.claimed[url]
	return ok
}

// Next blocks until a task is available. ok is false once the frontier has
// stopped.
func (f *Frontier) Next() (task Task, ok bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for !f.stopped && len(f.backlog) == 0 {
		f.wake.Wait()
	}
	if f.stopped {
		return Task{}, false
	}

	task = f.backlog[0]
	f.backlog = f.backlog[1:]
	return task, true
}

// Done records one completed task. When nothing is queued or in flight the
// frontier stops and every blocked Next returns.
func (f *Frontier) Done() {
	f.processed.Add(1)

	f.mu.Lock()
	defer f.mu.Unlock()

	f.active--
	if f.active == 0 && !f.stopped {
		f.stopped = true
		f.wake.Broadcast()
	}
}

// StopIfIdle stops an empty frontier so workers never block on a run with
// nothing to do. It reports whether it stopped the frontier.
func (f *Frontier) StopIfIdle() bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.active == 0 && !f.stopped {
		f.stopped = true
		f.wake.Broadcast()
		return true
	}
	return false
}

// Stop discards queued tasks and releases blocked consumers. Claims are
// kept so late adds stay rejected. Idempotent.
func (f *Frontier) Stop() {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.stopped {
		return
	}
	f.stopped = true
	f.backlog = nil
	f.wake.Broadcast()
}

// Stopped reports whether the frontier still accepts URLs.
func (f *Frontier) Stopped() bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.stopped
}

// Added returns how many URLs were admitted over the frontier lifetime.
func (f *Frontier) Added() int64 {
	return f.added.Load()
}

// Processed returns how many tasks have completed.
func (f *Frontier) Processed() int64 {
	return f.processed.Load()
}

// Active returns the number of tasks queued or in flight.
func (f *Frontier) Active() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.active
}
