// Package wordhound implements a focused crawler: starting from seed URLs
// it fetches and renders pages, matches the visible text against a
// dictionary of target words and follows links only into domains marked as
// interesting. Every crawled URL produces exactly one result.
package wordhound

import (
	"context"
	"net/url"
)

// Page is the rendered form of a fetched document: the visible text plus
// every link observed on the page, resolved against the page URL.
type Page struct {
	Text  string
	Links []string
}

// Fetcher retrieves and renders a single page. One Fetcher is shared by
// every worker, so implementations must be safe for concurrent use.
type Fetcher interface {
	Fetch(ctx context.Context, u *url.URL) (*Page, error)
	Close() error
}

// Starter is implemented by fetchers with heavyweight shared state (a
// browser process) that should come up once, before workers race to fetch.
type Starter interface {
	Start(ctx context.Context) error
}

// Screenshotter is implemented by fetchers that can capture a full-page
// screenshot of a URL into a file.
type Screenshotter interface {
	Capture(ctx context.Context, u *url.URL, path string) error
}

// Sink receives each result exactly once, called directly from worker
// goroutines. Implementations must be safe for concurrent use.
type Sink func(*Result)
