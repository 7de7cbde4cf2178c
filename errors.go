package wordhound

import (
	"context"
	"errors"
	"fmt"
	"net"
)

var (
	// ErrAlreadyStarted is returned by Run after the first call; a Crawler
	// drives a single run to exhaustion.
	ErrAlreadyStarted = errors.New("crawl already started")

	// ErrStopped is returned by Seed once the frontier no longer accepts
	// URLs.
	ErrStopped = errors.New("crawler is stopped")
)

// StatusError reports a response with a non-success HTTP status.
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s returned status %d", e.URL, e.Code)
}

// KindOf maps a fetch error to its ErrorKind: exceeded deadlines and
// net.Error timeouts are timeouts, non-success statuses are protocol
// errors, everything else is a network error. Wrapped chains are
// unwrapped.
func KindOf(err error) ErrorKind {
	var se *StatusError
	var ne net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return ErrorKindTimeout
	case errors.As(err, &ne) && ne.Timeout():
		return ErrorKindTimeout
	case errors.As(err, &se):
		return ErrorKindProtocol
	default:
		return ErrorKindNetwork
	}
}
