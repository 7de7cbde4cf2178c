// Package storage persists crawl results for later inspection and
// reporting.
package storage

import "github.com/will-x86/wordhound"

// Store keeps every result of a run. Workers save results as they finish,
// so implementations must be safe for concurrent use.
type Store interface {
	Save(res *wordhound.Result) error
	// Results returns everything saved, oldest first.
	Results() ([]*wordhound.Result, error)
	// Stats counts results per status.
	Stats() (map[string]int, error)
	Close() error
}
