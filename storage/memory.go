package storage

import (
	"sync"

	"github.com/will-x86/wordhound"
)

// MemoryStore keeps results in memory. Used by tests and report-only runs.
type MemoryStore struct {
	mu      sync.RWMutex
	results []*wordhound.Result
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Save(res *wordhound.Result) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *res
	s.results = append(s.results, &cp)
	return nil
}

func (s *MemoryStore) Results() ([]*wordhound.Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*wordhound.Result, len(s.results))
	copy(out, s.results)
	return out, nil
}

func (s *MemoryStore) Stats() (map[string]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := make(map[string]int)
	for _, r := range s.results {
		stats[string(r.Status)]++
	}
	return stats, nil
}

func (s *MemoryStore) Close() error {
	return nil
}
