package ingest

import (
	"context"
	"io"
	"time"
)

// Row is one loosely-typed CSV row keyed by header name.
// Columns missing from a short row are absent from the map.
type Row map[string]string

// FetchedDocument represents the raw result of a fetch operation.
type FetchedDocument struct {
	URL         string
	StatusCode  int
	ContentType string
	Body        io.ReadCloser
	FetchedAt   time.Time
	Headers     map[string][]string
}

// Fetcher retrieves raw content from a URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*FetchedDocument, error)
}

// Feed IDs used in the registry.
const (
	FeedEvents       = "events"
	FeedApplications = "applications"
)

// Fetcher kinds selectable per feed.
const (
	FetcherHTTP  = "http"
	FetcherColly = "colly"
)

// EventColumns are the recognised columns of the events feed, in record order.
var EventColumns = []string{
	"title", "date", "time", "place", "target",
	"category", "capacity", "deadline", "description", "apply_url",
}

// ApplicationColumns are the recognised columns of the applications feed.
var ApplicationColumns = []string{
	"event_title", "student_name", "school", "grade", "class", "status",
}
