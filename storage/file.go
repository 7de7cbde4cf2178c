package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/will-x86/wordhound"
)

// FileStore writes one JSON file per result into a directory, so a run's
// directory reads like a crawl log. Names derive from the sanitized URL
// plus the first ID segment to keep them unique.
type FileStore struct {
	dir string
	mu  sync.RWMutex
}

func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) Save(res *wordhound.Result) error {
	data, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	path := filepath.Join(s.dir, resultFilename(res))
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write result: %w", err)
	}
	return nil
}

// resultFilename keeps the URL readable in the name while staying inside
// the 255 byte limit; the ID segment disambiguates.
func resultFilename(res *wordhound.Result) string {
	id := res.ID
	if i := strings.IndexByte(id, '-'); i > 0 {
		id = id[:i]
	}
	if id == "" {
		id = "result"
	}
	pad := len(id) + len("-.json")
	return sanitize(res.URL, pad, "url") + "-" + id + ".json"
}

func (s *FileStore) Results() ([]*wordhound.Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read store directory: %w", err)
	}

	var out []*wordhound.Result
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.dir, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("failed to read result: %w", err)
		}
		var res wordhound.Result
		if err := json.Unmarshal(data, &res); err != nil {
			return nil, fmt.Errorf("failed to unmarshal %s: %w", e.Name(), err)
		}
		out = append(out, &res)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].At.Before(out[j].At) })
	return out, nil
}

func (s *FileStore) Stats() (map[string]int, error) {
	results, err := s.Results()
	if err != nil {
		return nil, err
	}

	stats := make(map[string]int)
	for _, r := range results {
		stats[string(r.Status)]++
	}
	return stats, nil
}

func (s *FileStore) Close() error {
	return nil
}
