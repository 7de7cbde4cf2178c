package fetchers

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"sync"

	"github.com/chromedp/chromedp"

	"github.com/will-x86/wordhound"
	"github.com/will-x86/wordhound/logger"
)

type ChromeOptions struct {
	Logger logger.Logger
	// Headful shows the browser window; headless is the default.
	Headful   bool
	UserAgent string
	// ScreenshotQuality runs from 1 to 100. Defaults to 90.
	ScreenshotQuality int
}

// ChromeFetcher renders pages in one shared headless Chrome so script-built
// content and client-side links are visible. Every Fetch runs in its own
// tab; the browser is launched once and serves all workers.
type ChromeFetcher struct {
	opts   ChromeOptions
	logger logger.Logger

	startOnce     sync.Once
	startErr      error
	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc
}

// NewChromeFetcher returns an unstarted fetcher. The browser launches on
// Start, or lazily on the first Fetch.
func NewChromeFetcher(opts ChromeOptions) *ChromeFetcher {
	if opts.Logger == nil {
		opts.Logger = logger.NewStdLogger()
	}
	if opts.ScreenshotQuality <= 0 || opts.ScreenshotQuality > 100 {
		opts.ScreenshotQuality = 90
	}
	return &ChromeFetcher{opts: opts, logger: opts.Logger}
}

// Start launches the browser exactly once, even under concurrent callers.
// ctx parents the browser process, so it should live for the whole crawl;
// cancelling it tears the browser down.
func (f *ChromeFetcher) Start(ctx context.Context) error {
	f.startOnce.Do(func() {
		allocOpts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
		if f.opts.Headful {
			allocOpts = append(allocOpts, chromedp.Flag("headless", false))
		}
		if f.opts.UserAgent != "" {
			allocOpts = append(allocOpts, chromedp.UserAgent(f.opts.UserAgent))
		}

		allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, allocOpts...)
		browserCtx, browserCancel := chromedp.NewContext(allocCtx)

		// Run with no actions spawns the browser, so a missing binary
		// fails here instead of on some worker mid-crawl.
		if err := chromedp.Run(browserCtx); err != nil {
			browserCancel()
			allocCancel()
			f.startErr = fmt.Errorf("failed to launch browser: %w", err)
			return
		}

		f.allocCancel = allocCancel
		f.browserCtx = browserCtx
		f.browserCancel = browserCancel
		f.logger.Debug("Browser started")
	})
	return f.startErr
}

// Fetch renders u in a new tab and extracts text and links from the final
// DOM.
func (f *ChromeFetcher) Fetch(ctx context.Context, u *url.URL) (*wordhound.Page, error) {
	if err := f.Start(ctx); err != nil {
		return nil, err
	}
	f.logger.Debug("Rendering: %s", u.String())

	tabCtx, cancel := f.newTab(ctx)
	defer cancel()

	var html string
	err := chromedp.Run(tabCtx,
		chromedp.Navigate(u.String()),
		chromedp.WaitReady("body"),
		chromedp.OuterHTML("html", &html),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to render %s: %w", u, err)
	}
	return ParsePage(u, strings.NewReader(html))
}

// Capture writes a full-page screenshot of u to path.
func (f *ChromeFetcher) Capture(ctx context.Context, u *url.URL, path string) error {
	if err := f.Start(ctx); err != nil {
		return err
	}

	tabCtx, cancel := f.newTab(ctx)
	defer cancel()

	var shot []byte
	err := chromedp.Run(tabCtx,
		chromedp.Navigate(u.String()),
		chromedp.WaitReady("body"),
		chromedp.FullScreenshot(&shot, f.opts.ScreenshotQuality),
	)
	if err != nil {
		return fmt.Errorf("failed to capture %s: %w", u, err)
	}
	return os.WriteFile(path, shot, 0644)
}

// newTab opens a tab in the shared browser, bounded by the deadline on ctx
// when there is one.
func (f *ChromeFetcher) newTab(ctx context.Context) (context.Context, context.CancelFunc) {
	tabCtx, tabCancel := chromedp.NewContext(f.browserCtx)
	deadline, ok := ctx.Deadline()
	if !ok {
		return tabCtx, tabCancel
	}
	dctx, dcancel := context.WithDeadline(tabCtx, deadline)
	return dctx, func() {
		dcancel()
		tabCancel()
	}
}

// Close shuts the browser down. Safe before Start and more than once; a
// closed fetcher stays closed.
func (f *ChromeFetcher) Close() error {
	f.startOnce.Do(func() {
		f.startErr = errors.New("fetcher closed")
	})
	if f.browserCancel != nil {
		f.browserCancel()
	}
	if f.allocCancel != nil {
		f.allocCancel()
	}
	return nil
}
