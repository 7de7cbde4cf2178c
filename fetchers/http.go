package fetchers

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/net/html/charset"

	"github.com/will-x86/wordhound"
	"github.com/will-x86/wordhound/logger"
)

const defaultUserAgent = "wordhound/1.0"

type HTTPOptions struct {
	Logger       logger.Logger
	Timeout      time.Duration
	UserAgent    string
	MaxRedirects int
	// MaxBodySize caps how many bytes of a response body are read.
	// Defaults to 10 MiB.
	MaxBodySize int64
}

// HTTPFetcher fetches pages with a plain HTTP client. It only sees served
// HTML; script-built content needs the Chrome fetcher.
type HTTPFetcher struct {
	client    *http.Client
	userAgent string
	maxBody   int64
	logger    logger.Logger
}

func NewHTTPFetcher(opts HTTPOptions) *HTTPFetcher {
	if opts.Logger == nil {
		opts.Logger = logger.NewStdLogger()
	}
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.MaxRedirects == 0 {
		opts.MaxRedirects = 10
	}
	if opts.UserAgent == "" {
		opts.UserAgent = defaultUserAgent
	}
	if opts.MaxBodySize <= 0 {
		opts.MaxBodySize = 10 << 20
	}

	client := &http.Client{
		Timeout: opts.Timeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= opts.MaxRedirects {
				return fmt.Errorf("stopped after %d redirects", opts.MaxRedirects)
			}
			return nil
		},
	}

	return &HTTPFetcher{
		client:    client,
		userAgent: opts.UserAgent,
		maxBody:   opts.MaxBodySize,
		logger:    opts.Logger,
	}
}

// Fetch retrieves u and parses the response. Non-2xx statuses come back as
// a StatusError so the caller can classify them.
func (f *HTTPFetcher) Fetch(ctx context.Context, u *url.URL) (*wordhound.Page, error) {
	f.logger.Debug("Fetching: %s", u.String())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to get %s: %w", u, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &wordhound.StatusError{URL: u.String(), Code: resp.StatusCode}
	}

	body := io.LimitReader(resp.Body, f.maxBody)
	r, err := charset.NewReader(body, resp.Header.Get("Content-Type"))
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", u, err)
	}
	return ParsePage(u, r)
}

// Close releases idle connections.
func (f *HTTPFetcher) Close() error {
	f.client.CloseIdleConnections()
	return nil
}
