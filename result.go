package wordhound

import (
	"encoding/json"
	"io"
	"sync"
	"time"
)

// Status is the terminal outcome of one crawled URL.
type Status string

const (
	StatusFound          Status = "found"
	StatusNotFound       Status = "not_found"
	StatusAlreadyCrawled Status = "already_crawled"
	StatusFailed         Status = "failed"
)

// ErrorKind classifies a failed fetch.
type ErrorKind string

const (
	ErrorKindTimeout  ErrorKind = "fetch_timeout"
	ErrorKindNetwork  ErrorKind = "fetch_network"
	ErrorKindProtocol ErrorKind = "fetch_protocol"
)

// Result is the outcome for a single URL. Matches, Links and Screenshot
// are only set for StatusFound; ErrorKind and Detail only for
// StatusFailed.
type Result struct {
	ID         string    `json:"id"`
	URL        string    `json:"url"`
	Status     Status    `json:"status"`
	Matches    []string  `json:"matches,omitempty"`
	Links      []string  `json:"links,omitempty"`
	ErrorKind  ErrorKind `json:"error_kind,omitempty"`
	Detail     string    `json:"detail,omitempty"`
	Screenshot string    `json:"screenshot,omitempty"`
	At         time.Time `json:"at"`
}

// NewJSONSink returns a sink that writes one JSON object per line to w.
// Writes are serialized so results from concurrent workers never
// interleave.
func NewJSONSink(w io.Writer) Sink {
	var mu sync.Mutex
	enc := json.NewEncoder(w)
	return func(res *Result) {
		mu.Lock()
		defer mu.Unlock()
		_ = enc.Encode(res)
	}
}
