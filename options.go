package wordhound

import (
	"os"
	"time"

	"github.com/will-x86/wordhound/logger"
)

const (
	DefaultConcurrency    = 20
	DefaultRequestTimeout = 10 * time.Second
	DefaultMinWordLength  = 3
	DefaultLogEvery       = 100
	DefaultScreenshotDir  = "screenshots"
)

// Options configures a Crawler. Fetcher and Dictionary are required,
// everything else has a usable default.
type Options struct {
	// Fetcher retrieves pages. Shared by every worker.
	Fetcher Fetcher

	// Dictionary holds the words to hunt for. Matching is
	// case-insensitive.
	Dictionary []string

	// InterestingDomains are the hostnames the crawler may expand into.
	// Links anywhere else are reported but never followed.
	InterestingDomains []string

	// SeedCrawled marks URLs as already crawled so they are skipped if
	// rediscovered.
	SeedCrawled []string

	// Sink receives every result. Defaults to JSON lines on stdout.
	Sink Sink

	Logger logger.Logger

	// Concurrency is the fixed number of workers. Defaults to 20.
	Concurrency int

	// RequestTimeout bounds a single fetch. Defaults to 10s.
	RequestTimeout time.Duration

	// MinWordLength skips shorter tokens during matching. Defaults to 3.
	MinWordLength int

	// LogEvery emits a progress line after that many processed URLs.
	// Defaults to 100; set negative to disable.
	LogEvery int

	// RateLimit caps fetches per second across all workers. 0 disables.
	RateLimit int

	// Screenshots captures pages whose text matched. The fetcher must
	// implement Screenshotter.
	Screenshots bool

	// ScreenshotDir is where captures land. Defaults to "screenshots".
	ScreenshotDir string

	// OnDrain runs exactly once when the run finishes.
	OnDrain func()
}

func (o Options) withDefaults() Options {
	if o.Sink == nil {
		o.Sink = NewJSONSink(os.Stdout)
	}
	if o.Logger == nil {
		o.Logger = logger.NewStdLogger()
	}
	if o.Concurrency <= 0 {
		o.Concurrency = DefaultConcurrency
	}
	if o.RequestTimeout <= 0 {
		o.RequestTimeout = DefaultRequestTimeout
	}
	if o.MinWordLength <= 0 {
		o.MinWordLength = DefaultMinWordLength
	}
	switch {
	case o.LogEvery == 0:
		o.LogEvery = DefaultLogEvery
	case o.LogEvery < 0:
		o.LogEvery = 0
	}
	if o.ScreenshotDir == "" {
		o.ScreenshotDir = DefaultScreenshotDir
	}
	return o
}
