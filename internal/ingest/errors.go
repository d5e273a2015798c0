package ingest

import (
	"context"
	"errors"
	"fmt"
)

// NetworkError is a transport failure or a non-success response.
type NetworkError struct {
	URL        string
	StatusCode int // 0 when no response was received
	Err        error
}

func (e *NetworkError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: unexpected status code: %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// ParseError is a feed body that could not be read as CSV.
type ParseError struct {
	Line int // 0 when the failure is not tied to a line
	Err  error
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("parse csv (line %d): %v", e.Line, e.Err)
	}
	return fmt.Sprintf("parse csv: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// TimeoutError is a fetch that did not complete before its deadline.
type TimeoutError struct {
	URL string
	Err error
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("fetch %s: timed out: %v", e.URL, e.Err)
}

func (e *TimeoutError) Unwrap() error { return e.Err }

// Error kinds reported by Kind.
const (
	KindNetwork = "network"
	KindParse   = "parse"
	KindTimeout = "timeout"
	KindUnknown = "unknown"
)

// Kind classifies an ingestion error for logging.
func Kind(err error) string {
	var te *TimeoutError
	var ne *NetworkError
	var pe *ParseError
	switch {
	case errors.As(err, &te):
		return KindTimeout
	case errors.As(err, &pe):
		return KindParse
	case errors.As(err, &ne):
		return KindNetwork
	default:
		return KindUnknown
	}
}

// isTimeout reports whether err came from an expired deadline, either the
// caller's context or the HTTP client's own timeout.
func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var t interface{ Timeout() bool }
	return errors.As(err, &t) && t.Timeout()
}

// classifyFetchError maps a raw fetch failure onto the ingestion taxonomy.
func classifyFetchError(url string, err error) error {
	if isTimeout(err) {
		return &TimeoutError{URL: url, Err: err}
	}
	var ne *NetworkError
	if errors.As(err, &ne) {
		return err
	}
	return &NetworkError{URL: url, Err: err}
}
