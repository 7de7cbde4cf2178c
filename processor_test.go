package wordhound

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"reflect"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/will-x86/wordhound/dictionary"
	"github.com/will-x86/wordhound/frontier"
	"github.com/will-x86/wordhound/logger"
)

type fakeFetcher struct {
	pages      map[string]*Page
	errs       map[string]error
	delays     map[string]time.Duration
	fetchCount int32
	mu         sync.Mutex
	fetched    []string
}

func (f *fakeFetcher) Fetch(ctx context.Context, u *url.URL) (*Page, error) {
	atomic.AddInt32(&f.fetchCount, 1)

	f.mu.Lock()
	f.fetched = append(f.fetched, u.String())
	f.mu.Unlock()

	if d, ok := f.delays[u.String()]; ok {
		select {
		case <-time.After(d):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err, ok := f.errs[u.String()]; ok {
		return nil, err
	}
	if page, ok := f.pages[u.String()]; ok {
		return page, nil
	}
	return &Page{}, nil
}

func (f *fakeFetcher) Close() error { return nil }

func (f *fakeFetcher) fetchedURLs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.fetched...)
}

type fakeShooter struct {
	fakeFetcher
	captureErr error
	captured   []string
}

func (s *fakeShooter) Capture(ctx context.Context, u *url.URL, path string) error {
	s.mu.Lock()
	s.captured = append(s.captured, path)
	s.mu.Unlock()
	return s.captureErr
}

type sinkRecorder struct {
	mu      sync.Mutex
	results []*Result
}

func (r *sinkRecorder) sink(res *Result) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *res
	r.results = append(r.results, &cp)
}

func (r *sinkRecorder) all() []*Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*Result(nil), r.results...)
}

func (r *sinkRecorder) byURL(u string) *Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, res := range r.results {
		if res.URL == u {
			return res
		}
	}
	return nil
}

func (r *sinkRecorder) countStatus(s Status) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, res := range r.results {
		if res.Status == s {
			n++
		}
	}
	return n
}

func newTestProcessor(fetcher Fetcher, shooter Screenshotter, words, domains []string, front *frontier.Frontier, rec *sinkRecorder) *processor {
	dm := make(map[string]struct{}, len(domains))
	for _, d := range domains {
		dm[d] = struct{}{}
	}
	return &processor{
		fetcher: fetcher,
		shooter: shooter,
		dict:    dictionary.New(words, DefaultMinWordLength),
		domains: dm,
		front:   front,
		sink:    rec.sink,
		logger:  logger.NewNopLogger(),
		timeout: time.Second,
	}
}

func claim(t *testing.T, front *frontier.Frontier, u string) frontier.Task {
	t.Helper()
	if !front.Add(u) {
		t.Fatalf("Add(%s) = false, want true", u)
	}
	task, ok := front.Next()
	if !ok {
		t.Fatal("Next() ok = false, want true")
	}
	return task
}

func TestProcessor_Process(t *testing.T) {
	seed := "https://site.test/one"

	t.Run("match emits found with links", func(t *testing.T) {
		fetcher := &fakeFetcher{pages: map[string]*Page{
			seed: {
				Text: "the wanted word appears",
				Links: []string{
					"https://site.test/two",
					"https://other.test/x",
					"mailto:admin@site.test",
				},
			},
		}}
		front := frontier.New()
		rec := &sinkRecorder{}
		p := newTestProcessor(fetcher, nil, []string{"wanted"}, []string{"site.test"}, front, rec)

		if err := p.Process(context.Background(), claim(t, front, seed)); err != nil {
			t.Fatalf("Process() error: %v", err)
		}

		res := rec.byURL(seed)
		if res == nil {
			t.Fatal("no result emitted")
		}
		if res.Status != StatusFound {
			t.Fatalf("Status = %s, want %s", res.Status, StatusFound)
		}
		if !reflect.DeepEqual(res.Matches, []string{"wanted"}) {
			t.Errorf("Matches = %v, want [wanted]", res.Matches)
		}
		wantLinks := []string{"https://site.test/two", "https://other.test/x", "mailto:admin@site.test"}
		if !reflect.DeepEqual(res.Links, wantLinks) {
			t.Errorf("Links = %v, want %v", res.Links, wantLinks)
		}
		if res.ID == "" || res.At.IsZero() {
			t.Error("result should carry an ID and a timestamp")
		}
	})

	t.Run("expands only into interesting domains", func(t *testing.T) {
		fetcher := &fakeFetcher{pages: map[string]*Page{
			seed: {Links: []string{
				"https://site.test/two",
				"https://other.test/x",
				"/relative",
			}},
		}}
		front := frontier.New()
		rec := &sinkRecorder{}
		p := newTestProcessor(fetcher, nil, []string{"wanted"}, []string{"site.test"}, front, rec)

		if err := p.Process(context.Background(), claim(t, front, seed)); err != nil {
			t.Fatalf("Process() error: %v", err)
		}

		if !front.Claimed("https://site.test/two") {
			t.Error("interesting link should be enqueued")
		}
		if front.Claimed("https://other.test/x") {
			t.Error("uninteresting link should not be enqueued")
		}
		if front.Added() != 2 {
			t.Errorf("Added() = %d, want 2 (seed + one child)", front.Added())
		}
	})

	t.Run("expansion happens without a match", func(t *testing.T) {
		fetcher := &fakeFetcher{pages: map[string]*Page{
			seed: {Text: "no target here", Links: []string{"https://site.test/two"}},
		}}
		front := frontier.New()
		rec := &sinkRecorder{}
		p := newTestProcessor(fetcher, nil, []string{"wanted"}, []string{"site.test"}, front, rec)

		if err := p.Process(context.Background(), claim(t, front, seed)); err != nil {
			t.Fatalf("Process() error: %v", err)
		}

		res := rec.byURL(seed)
		if res.Status != StatusNotFound {
			t.Errorf("Status = %s, want %s", res.Status, StatusNotFound)
		}
		if res.Links != nil {
			t.Errorf("Links = %v, want nil for %s", res.Links, StatusNotFound)
		}
		if !front.Claimed("https://site.test/two") {
			t.Error("link should be enqueued even without a match")
		}
	})

	t.Run("duplicate links reported once", func(t *testing.T) {
		fetcher := &fakeFetcher{pages: map[string]*Page{
			seed: {
				Text: "wanted",
				Links: []string{
					"https://site.test/two",
					"HTTPS://Site.test/two#frag",
					"mailto:a@site.test",
					"mailto:a@site.test",
				},
			},
		}}
		front := frontier.New()
		rec := &sinkRecorder{}
		p := newTestProcessor(fetcher, nil, []string{"wanted"}, []string{"site.test"}, front, rec)

		if err := p.Process(context.Background(), claim(t, front, seed)); err != nil {
			t.Fatalf("Process() error: %v", err)
		}

		want := []string{"https://site.test/two", "mailto:a@site.test"}
		if got := rec.byURL(seed).Links; !reflect.DeepEqual(got, want) {
			t.Errorf("Links = %v, want %v", got, want)
		}
	})

	t.Run("slow fetch fails as timeout", func(t *testing.T) {
		fetcher := &fakeFetcher{delays: map[string]time.Duration{seed: 200 * time.Millisecond}}
		front := frontier.New()
		rec := &sinkRecorder{}
		p := newTestProcessor(fetcher, nil, []string{"wanted"}, nil, front, rec)
		p.timeout = 20 * time.Millisecond

		if err := p.Process(context.Background(), claim(t, front, seed)); err == nil {
			t.Fatal("Process() error = nil, want timeout")
		}

		res := rec.byURL(seed)
		if res.Status != StatusFailed {
			t.Fatalf("Status = %s, want %s", res.Status, StatusFailed)
		}
		if res.ErrorKind != ErrorKindTimeout {
			t.Errorf("ErrorKind = %s, want %s", res.ErrorKind, ErrorKindTimeout)
		}
		if res.Detail == "" {
			t.Error("Detail should carry the error text")
		}
	})

	t.Run("status error fails as protocol", func(t *testing.T) {
		fetcher := &fakeFetcher{errs: map[string]error{
			seed: fmt.Errorf("failed to get %s: %w", seed, &StatusError{URL: seed, Code: 404}),
		}}
		front := frontier.New()
		rec := &sinkRecorder{}
		p := newTestProcessor(fetcher, nil, []string{"wanted"}, nil, front, rec)

		if err := p.Process(context.Background(), claim(t, front, seed)); err == nil {
			t.Fatal("Process() error = nil, want status error")
		}

		if got := rec.byURL(seed).ErrorKind; got != ErrorKindProtocol {
			t.Errorf("ErrorKind = %s, want %s", got, ErrorKindProtocol)
		}
	})

	t.Run("connection error fails as network", func(t *testing.T) {
		fetcher := &fakeFetcher{errs: map[string]error{
			seed: errors.New("connection refused"),
		}}
		front := frontier.New()
		rec := &sinkRecorder{}
		p := newTestProcessor(fetcher, nil, []string{"wanted"}, nil, front, rec)

		if err := p.Process(context.Background(), claim(t, front, seed)); err == nil {
			t.Fatal("Process() error = nil, want network error")
		}

		if got := rec.byURL(seed).ErrorKind; got != ErrorKindNetwork {
			t.Errorf("ErrorKind = %s, want %s", got, ErrorKindNetwork)
		}
	})

	t.Run("unclaimed task emits already_crawled without fetching", func(t *testing.T) {
		fetcher := &fakeFetcher{}
		front := frontier.New()
		rec := &sinkRecorder{}
		p := newTestProcessor(fetcher, nil, []string{"wanted"}, nil, front, rec)

		task := frontier.Task{URL: "https://site.test/never-claimed"}
		if err := p.Process(context.Background(), task); err != nil {
			t.Fatalf("Process() error: %v", err)
		}

		if got := rec.byURL(task.URL).Status; got != StatusAlreadyCrawled {
			t.Errorf("Status = %s, want %s", got, StatusAlreadyCrawled)
		}
		if atomic.LoadInt32(&fetcher.fetchCount) != 0 {
			t.Errorf("fetchCount = %d, want 0", fetcher.fetchCount)
		}
	})

	t.Run("capture failure keeps the found result", func(t *testing.T) {
		shooter := &fakeShooter{
			fakeFetcher: fakeFetcher{pages: map[string]*Page{seed: {Text: "wanted"}}},
			captureErr:  errors.New("no browser"),
		}
		front := frontier.New()
		rec := &sinkRecorder{}
		p := newTestProcessor(shooter, shooter, []string{"wanted"}, nil, front, rec)
		p.shotDir = t.TempDir()

		if err := p.Process(context.Background(), claim(t, front, seed)); err != nil {
			t.Fatalf("Process() error: %v", err)
		}

		res := rec.byURL(seed)
		if res.Status != StatusFound {
			t.Errorf("Status = %s, want %s", res.Status, StatusFound)
		}
		if res.Screenshot != "" {
			t.Errorf("Screenshot = %q, want empty after capture failure", res.Screenshot)
		}
		if len(shooter.captured) != 1 {
			t.Errorf("capture attempts = %d, want 1", len(shooter.captured))
		}
	})

	t.Run("capture path lands in the screenshot dir", func(t *testing.T) {
		shooter := &fakeShooter{
			fakeFetcher: fakeFetcher{pages: map[string]*Page{seed: {Text: "wanted"}}},
		}
		front := frontier.New()
		rec := &sinkRecorder{}
		p := newTestProcessor(shooter, shooter, []string{"wanted"}, nil, front, rec)
		p.shotDir = t.TempDir()

		if err := p.Process(context.Background(), claim(t, front, seed)); err != nil {
			t.Fatalf("Process() error: %v", err)
		}

		res := rec.byURL(seed)
		if res.Screenshot == "" {
			t.Fatal("Screenshot path is empty")
		}
		if filepath.Dir(res.Screenshot) != p.shotDir {
			t.Errorf("Screenshot dir = %s, want %s", filepath.Dir(res.Screenshot), p.shotDir)
		}
		if !strings.HasSuffix(res.Screenshot, ".png") {
			t.Errorf("Screenshot = %s, want .png suffix", res.Screenshot)
		}
	})

	t.Run("no screenshots without a shooter", func(t *testing.T) {
		fetcher := &fakeFetcher{pages: map[string]*Page{seed: {Text: "wanted"}}}
		front := frontier.New()
		rec := &sinkRecorder{}
		p := newTestProcessor(fetcher, nil, []string{"wanted"}, nil, front, rec)

		if err := p.Process(context.Background(), claim(t, front, seed)); err != nil {
			t.Fatalf("Process() error: %v", err)
		}

		if got := rec.byURL(seed).Screenshot; got != "" {
			t.Errorf("Screenshot = %q, want empty", got)
		}
	})
}

func TestScreenshotName(t *testing.T) {
	at := time.Date(2026, 1, 2, 15, 4, 5, 0, time.UTC)
	got := screenshotName("https://example.com/a.b", at)
	want := "https___example_com_a_b_2026-01-02_150405.png"
	if got != want {
		t.Errorf("screenshotName() = %q, want %q", got, want)
	}
}
