package wordhound

import (
	"context"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/will-x86/wordhound/dictionary"
	"github.com/will-x86/wordhound/frontier"
	"github.com/will-x86/wordhound/links"
	"github.com/will-x86/wordhound/logger"
)

// processor turns one claimed URL into exactly one terminal result. It is
// shared by all workers and holds no per-task state.
type processor struct {
	fetcher Fetcher
	shooter Screenshotter // nil when screenshots are off
	dict    *dictionary.Dictionary
	domains map[string]struct{}
	front   *frontier.Frontier
	sink    Sink
	logger  logger.Logger
	timeout time.Duration
	shotDir string
}

// Process fetches, matches and expands a single URL. Every path emits one
// result; the returned error is informational, the task is terminal either
// way.
func (p *processor) Process(ctx context.Context, task frontier.Task) error {
	if !p.front.Claimed(task.URL) {
		p.emit(&Result{URL: task.URL, Status: StatusAlreadyCrawled})
		return nil
	}

	u, err := url.Parse(task.URL)
	if err != nil {
		p.emit(&Result{URL: task.URL, Status: StatusFailed, ErrorKind: ErrorKindNetwork, Detail: err.Error()})
		return err
	}

	fctx, cancel := context.WithTimeout(ctx, p.timeout)
	page, err := p.fetcher.Fetch(fctx, u)
	cancel()
	if err != nil {
		p.emit(&Result{URL: task.URL, Status: StatusFailed, ErrorKind: KindOf(err), Detail: err.Error()})
		return err
	}

	matches := p.dict.Match(page.Text)
	seen := p.expand(page.Links)

	if len(matches) == 0 {
		p.emit(&Result{URL: task.URL, Status: StatusNotFound})
		return nil
	}

	res := &Result{URL: task.URL, Status: StatusFound, Matches: matches, Links: seen}
	if p.shooter != nil {
		res.Screenshot = p.capture(ctx, u)
	}
	p.emit(res)
	return nil
}

// expand reports every unique link on the page and feeds crawlable ones in
// interesting domains back to the frontier. Crawlable links dedup on their
// normalized form, the rest on their raw form.
func (p *processor) expand(hrefs []string) []string {
	seen := make(map[string]struct{}, len(hrefs))
	out := make([]string, 0, len(hrefs))
	for _, href := range hrefs {
		l := links.Classify(href)
		key := l.Raw
		if l.Crawlable {
			key = l.URL
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, key)

		if !l.Crawlable {
			continue
		}
		if _, ok := p.domains[l.Host]; !ok {
			continue
		}
		if p.front.Add(l.URL) {
			p.logger.Debug("Enqueued %s", l.URL)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// capture screenshots u next to the other captures and returns the file
// path, or "" when the capture failed. Failures never change the result.
func (p *processor) capture(ctx context.Context, u *url.URL) string {
	path := filepath.Join(p.shotDir, screenshotName(u.String(), time.Now()))
	sctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	if err := p.shooter.Capture(sctx, u, path); err != nil {
		p.logger.Warn("Failed to capture %s: %v", u, err)
		return ""
	}
	return path
}

func (p *processor) emit(res *Result) {
	res.ID = uuid.NewString()
	res.At = time.Now()
	p.sink(res)
}

var screenshotReplacer = strings.NewReplacer(":", "_", "/", "_", ".", "_")

// screenshotName flattens a URL into a filesystem-safe capture name with a
// timestamp suffix.
func screenshotName(rawURL string, at time.Time) string {
	return screenshotReplacer.Replace(rawURL) + "_" + at.Format("2006-01-02_150405") + ".png"
}
