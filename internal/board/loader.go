package board

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/david/volunteer-board/internal/ingest"
	"github.com/david/volunteer-board/internal/models"
)

// Feed is one CSV source the loader reads.
type Feed struct {
	ID      string
	URL     string
	Fetcher ingest.Fetcher
	Timeout time.Duration

	// Optional applies to the applications feed: its failure is logged
	// without failing the load. An events failure always fails it.
	Optional bool
}

// LoadResult summarises one load.
type LoadResult struct {
	Events            int           `json:"events"`
	Applications      int           `json:"applications"`
	EventsError       string        `json:"events_error,omitempty"`
	ApplicationsError string        `json:"applications_error,omitempty"`
	Duration          time.Duration `json:"duration_ns"`
}

// Loader fetches the feeds and publishes them into State. Concurrent calls to
// Load share a single in-flight load.
type Loader struct {
	State        *State
	Events       Feed
	Applications *Feed // nil when no applications feed is configured
	Logger       *zap.Logger

	group singleflight.Group
	now   func() time.Time
}

// NewLoader creates a loader that publishes into state.
func NewLoader(state *State, events Feed, applications *Feed, logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{
		State:        state,
		Events:       events,
		Applications: applications,
		Logger:       logger,
		now:          time.Now,
	}
}

// NewLoaderFromRegistry wires the registry's events and applications feeds.
func NewLoaderFromRegistry(state *State, reg *ingest.Registry, logger *zap.Logger) (*Loader, error) {
	eventsCfg, ok := reg.Feed(ingest.FeedEvents)
	if !ok {
		return nil, fmt.Errorf("feeds registry has no %q feed", ingest.FeedEvents)
	}
	events := feedFromConfig(eventsCfg, logger)

	var apps *Feed
	if appsCfg, ok := reg.Feed(ingest.FeedApplications); ok {
		f := feedFromConfig(appsCfg, logger)
		apps = &f
	}

	return NewLoader(state, events, apps, logger), nil
}

func feedFromConfig(cfg ingest.FeedConfig, logger *zap.Logger) Feed {
	fetcher := ingest.NewFetcher(cfg)
	if cf, ok := fetcher.(*ingest.CollyFetcher); ok && logger != nil {
		cf.Logger = logger.With(zap.String("feed", cfg.ID))
	}
	return Feed{
		ID:       cfg.ID,
		URL:      cfg.URL,
		Fetcher:  fetcher,
		Timeout:  cfg.Fetch.Timeout(),
		Optional: cfg.Optional,
	}
}

// Load fetches events, then applications, and publishes both. It returns an
// error when the events feed fails or a non-optional applications feed fails.
// Events that loaded stay published either way.
func (l *Loader) Load(ctx context.Context) (LoadResult, error) {
	v, err, shared := l.group.Do("load", func() (interface{}, error) {
		return l.load(ctx)
	})
	if shared {
		l.Logger.Debug("joined in-flight load")
	}
	res, _ := v.(LoadResult)
	return res, err
}

func (l *Loader) load(ctx context.Context) (LoadResult, error) {
	start := l.now()
	l.State.beginLoad()
	defer l.State.endLoad()

	var res LoadResult
	var loadErr error

	events, err := l.loadEvents(ctx)
	if err != nil {
		l.State.failEvents(err)
		l.Logger.Error("events feed load failed",
			zap.String("feed", l.Events.ID),
			zap.String("url", ingest.RedactURL(l.Events.URL)),
			zap.String("error_kind", ingest.Kind(err)),
			zap.Error(err))
		res.EventsError = err.Error()
		loadErr = fmt.Errorf("load events: %w", err)
	} else {
		l.State.publishEvents(events, l.now())
		res.Events = len(events)
		l.Logger.Info("events feed loaded", zap.Int("events", len(events)))
	}

	if l.Applications != nil {
		apps, err := l.loadApplications(ctx)
		if err != nil {
			l.State.failApplications(err)
			fields := []zap.Field{
				zap.String("feed", l.Applications.ID),
				zap.String("url", ingest.RedactURL(l.Applications.URL)),
				zap.String("error_kind", ingest.Kind(err)),
				zap.Error(err),
			}
			if l.Applications.Optional {
				l.Logger.Warn("applications feed load failed", fields...)
			} else {
				l.Logger.Error("applications feed load failed", fields...)
				if loadErr == nil {
					loadErr = fmt.Errorf("load applications: %w", err)
				}
			}
			res.ApplicationsError = err.Error()
		} else {
			l.State.publishApplications(apps)
			res.Applications = len(apps)
			l.Logger.Info("applications feed loaded", zap.Int("applications", len(apps)))
		}
	}

	res.Duration = l.now().Sub(start)
	return res, loadErr
}

func (l *Loader) loadEvents(ctx context.Context) ([]models.EventRecord, error) {
	rows, err := fetchFeed(ctx, l.Events)
	if err != nil {
		return nil, err
	}
	l.warnMissingColumns(l.Events, rows, ingest.EventColumns)
	return ingest.NormalizeEvents(rows), nil
}

func (l *Loader) loadApplications(ctx context.Context) ([]models.ApplicationRecord, error) {
	rows, err := fetchFeed(ctx, *l.Applications)
	if err != nil {
		return nil, err
	}
	l.warnMissingColumns(*l.Applications, rows, ingest.ApplicationColumns)
	return ingest.NormalizeApplications(rows), nil
}

// warnMissingColumns logs recognised columns the feed does not carry. Their
// fields load as empty strings.
func (l *Loader) warnMissingColumns(feed Feed, rows []ingest.Row, columns []string) {
	if missing := ingest.MissingColumns(rows, columns); len(missing) > 0 {
		l.Logger.Warn("feed is missing columns",
			zap.String("feed", feed.ID),
			zap.Strings("missing_columns", missing))
	}
}

// fetchFeed runs one fetch under the feed's own deadline.
func fetchFeed(ctx context.Context, feed Feed) ([]ingest.Row, error) {
	timeout := feed.Timeout
	if timeout <= 0 {
		timeout = ingest.FetchConfig{}.Timeout()
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	return ingest.FetchCSV(ctx, feed.Fetcher, feed.URL)
}
