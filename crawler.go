package wordhound

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/will-x86/wordhound/dictionary"
	"github.com/will-x86/wordhound/frontier"
	"github.com/will-x86/wordhound/links"
	"github.com/will-x86/wordhound/logger"
	"github.com/will-x86/wordhound/runner"
)

type runState int32

const (
	stateNew runState = iota
	stateReady
	stateRunning
	stateDone
)

// Stats is a point-in-time snapshot of frontier progress.
type Stats struct {
	Added     int64
	Processed int64
	Active    int
}

// Crawler coordinates the frontier, the worker pool and the shared fetch
// engine for a single run.
type Crawler struct {
	opts  Options
	runID string
	log   logger.Logger

	front *frontier.Frontier
	pool  *runner.Pool
	proc  *processor

	state     atomic.Int32
	finished  atomic.Bool
	runDone   chan struct{}
	drainOnce sync.Once
	closeOnce sync.Once
	closeErr  error
}

// New builds a Crawler. The fetcher is shared across all workers and
// released by Close.
func New(opts Options) (*Crawler, error) {
	if opts.Fetcher == nil {
		return nil, errors.New("fetcher is required")
	}
	if len(opts.Dictionary) == 0 {
		return nil, errors.New("dictionary is empty")
	}
	opts = opts.withDefaults()

	domains := make(map[string]struct{}, len(opts.InterestingDomains))
	for _, d := range opts.InterestingDomains {
		d = strings.ToLower(strings.TrimSpace(d))
		if d != "" {
			domains[d] = struct{}{}
		}
	}

	crawled := make([]string, 0, len(opts.SeedCrawled))
	for _, raw := range opts.SeedCrawled {
		if l := links.Classify(raw); l.Crawlable {
			crawled = append(crawled, l.URL)
		} else {
			crawled = append(crawled, raw)
		}
	}
	front := frontier.New(crawled...)

	shooter, _ := opts.Fetcher.(Screenshotter)
	if opts.Screenshots && shooter == nil {
		opts.Logger.Warn("Screenshots requested but fetcher cannot capture, disabling")
	}
	if !opts.Screenshots {
		shooter = nil
	}

	c := &Crawler{
		opts:    opts,
		runID:   uuid.NewString(),
		log:     opts.Logger,
		front:   front,
		runDone: make(chan struct{}),
	}
	c.proc = &processor{
		fetcher: opts.Fetcher,
		shooter: shooter,
		dict:    dictionary.New(opts.Dictionary, opts.MinWordLength),
		domains: domains,
		front:   front,
		sink:    opts.Sink,
		logger:  opts.Logger,
		timeout: opts.RequestTimeout,
		shotDir: opts.ScreenshotDir,
	}
	c.pool = runner.NewPool(opts.Concurrency,
		runner.WithLogger(opts.Logger),
		runner.WithRateLimit(opts.RateLimit),
		runner.WithProgressEvery(opts.LogEvery),
	)
	return c, nil
}

// Init prepares shared resources: it starts the fetch engine when the
// engine wants starting and creates the screenshot directory. Idempotent;
// Run calls it when the caller has not.
func (c *Crawler) Init(ctx context.Context) error {
	if runState(c.state.Load()) != stateNew {
		return nil
	}
	if s, ok := c.opts.Fetcher.(Starter); ok {
		if err := s.Start(ctx); err != nil {
			return fmt.Errorf("failed to start fetcher: %w", err)
		}
	}
	if c.proc.shooter != nil {
		if err := os.MkdirAll(c.opts.ScreenshotDir, 0755); err != nil {
			return fmt.Errorf("failed to create screenshot dir: %w", err)
		}
	}
	c.state.Store(int32(stateReady))
	return nil
}

// Seed queues a start URL. Non-crawlable seeds are rejected; a duplicate
// seed emits an already_crawled result and is otherwise a no-op.
func (c *Crawler) Seed(rawURL string) error {
	l := links.Classify(rawURL)
	if !l.Crawlable {
		return fmt.Errorf("seed %q is not crawlable", rawURL)
	}
	if c.front.Add(l.URL) {
		c.log.Debug("Seeded %s", l.URL)
		return nil
	}
	if c.front.Stopped() {
		return ErrStopped
	}
	c.proc.emit(&Result{URL: l.URL, Status: StatusAlreadyCrawled})
	return nil
}

// Run drives the crawl to exhaustion: workers pull from the frontier until
// nothing is queued or in flight. Run returns after every worker has
// exited; the OnDrain callback fires exactly once per run.
func (c *Crawler) Run(ctx context.Context) error {
	if err := c.Init(ctx); err != nil {
		return err
	}
	if !c.state.CompareAndSwap(int32(stateReady), int32(stateRunning)) {
		return ErrAlreadyStarted
	}
	defer close(c.runDone)

	c.log.Info("Run %s: %d workers, %d words, %d interesting domains",
		c.runID, c.opts.Concurrency, c.proc.dict.Len(), len(c.proc.domains))
	start := time.Now()

	g, gctx := errgroup.WithContext(ctx)
	poolDone := make(chan struct{})
	g.Go(func() error {
		defer close(poolDone)
		return c.pool.Run(gctx, c.proc, c.front)
	})
	g.Go(func() error {
		ticker := time.NewTicker(5 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-poolDone:
				return nil
			case <-gctx.Done():
				return nil
			case <-ticker.C:
				st := c.Stats()
				c.log.Debug("Run %s: %d/%d processed, %d active", c.runID, st.Processed, st.Added, st.Active)
			}
		}
	})
	err := g.Wait()

	c.state.Store(int32(stateDone))
	c.finished.Store(true)
	st := c.Stats()
	c.log.Info("Run %s: finished in %s (%d processed, %d added)",
		c.runID, time.Since(start).Round(time.Millisecond), st.Processed, st.Added)
	c.drainOnce.Do(func() {
		if c.opts.OnDrain != nil {
			c.opts.OnDrain()
		}
	})
	return err
}

// Finished reports whether the run has completed.
func (c *Crawler) Finished() bool {
	return c.finished.Load()
}

// Stats returns the current frontier counters.
func (c *Crawler) Stats() Stats {
	return Stats{
		Added:     c.front.Added(),
		Processed: c.front.Processed(),
		Active:    c.front.Active(),
	}
}

// RunID identifies this run in logs and reports.
func (c *Crawler) RunID() string {
	return c.runID
}

// Close stops the frontier, waits for a running Run to return and releases
// the fetch engine. Safe to call more than once.
func (c *Crawler) Close() error {
	c.closeOnce.Do(func() {
		c.front.Stop()
		if runState(c.state.Load()) == stateRunning {
			<-c.runDone
		}
		c.closeErr = c.opts.Fetcher.Close()
	})
	return c.closeErr
}
