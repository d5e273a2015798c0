package ingest

import (
	"embed"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed config/feeds.yaml
var feedsYAML embed.FS

const defaultUserAgent = "volunteer-board/1.0 (+feed fetcher)"

// Registry holds the configuration for all CSV feeds.
type Registry struct {
	Feeds []FeedConfig `yaml:"feeds"`
}

// FetchConfig defines HTTP fetching configuration for a feed.
type FetchConfig struct {
	TimeoutSeconds       int     `yaml:"timeout_seconds,omitempty"`  // Default: 20
	MaxRetries           int     `yaml:"max_retries,omitempty"`      // Default: 2, negative disables retries
	RetryBackoffMS       int     `yaml:"retry_backoff_ms,omitempty"` // Default: 500
	RateLimitRPS         float64 `yaml:"rate_limit_rps,omitempty"`   // Requests per second, default: 2.0
	AcceptLanguage       string  `yaml:"accept_language,omitempty"`
	UserAgent            string  `yaml:"user_agent,omitempty"`
	AllowPrivateNetworks bool    `yaml:"allow_private_networks,omitempty"`
}

// FeedConfig defines a single CSV feed.
type FeedConfig struct {
	ID       string      `yaml:"id"`
	Name     string      `yaml:"name"`
	URL      string      `yaml:"url"`
	Fetcher  string      `yaml:"fetcher,omitempty"` // "http" (default) or "colly"
	Optional bool        `yaml:"optional,omitempty"`
	Fetch    FetchConfig `yaml:"fetch,omitempty"`
}

func (c FetchConfig) withDefaults() FetchConfig {
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = 20
	}
	if c.MaxRetries == 0 {
		c.MaxRetries = 2
	}
	if c.RetryBackoffMS <= 0 {
		c.RetryBackoffMS = 500
	}
	if c.RateLimitRPS <= 0 {
		c.RateLimitRPS = 2.0
	}
	if c.AcceptLanguage == "" {
		c.AcceptLanguage = "en-US,en;q=0.8"
	}
	if c.UserAgent == "" {
		c.UserAgent = defaultUserAgent
	}
	return c
}

// Timeout is the per-fetch deadline.
func (c FetchConfig) Timeout() time.Duration {
	return time.Duration(c.withDefaults().TimeoutSeconds) * time.Second
}

func (c FetchConfig) retries() int {
	if c.MaxRetries < 0 {
		return 0
	}
	return c.MaxRetries
}

func (c FetchConfig) retryBackoff() time.Duration {
	return time.Duration(c.RetryBackoffMS) * time.Millisecond
}

// LoadRegistry reads the feeds registry. A non-empty path overrides the
// embedded feeds.yaml. Environment variables (e.g. ${EVENTS_CSV_URL}) are
// expanded before parsing.
func LoadRegistry(path string) (*Registry, error) {
	var data []byte
	var err error
	if path != "" {
		data, err = os.ReadFile(path)
	} else {
		data, err = feedsYAML.ReadFile("config/feeds.yaml")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read feeds registry: %w", err)
	}

	return ParseRegistry(data)
}

// ParseRegistry parses registry YAML after expanding environment variables.
func ParseRegistry(data []byte) (*Registry, error) {
	expanded := os.ExpandEnv(string(data))

	var reg Registry
	if err := yaml.Unmarshal([]byte(expanded), &reg); err != nil {
		return nil, fmt.Errorf("failed to parse feeds registry: %w", err)
	}

	seen := make(map[string]bool, len(reg.Feeds))
	for _, feed := range reg.Feeds {
		if feed.ID == "" {
			return nil, fmt.Errorf("feed without id in registry")
		}
		if seen[feed.ID] {
			return nil, fmt.Errorf("duplicate feed id %q in registry", feed.ID)
		}
		seen[feed.ID] = true

		switch feed.Fetcher {
		case "", FetcherHTTP, FetcherColly:
		default:
			return nil, fmt.Errorf("feed %q: unknown fetcher %q", feed.ID, feed.Fetcher)
		}
	}

	return &reg, nil
}

// Feed returns the feed with the given ID.
func (r *Registry) Feed(id string) (FeedConfig, bool) {
	for _, feed := range r.Feeds {
		if feed.ID == id {
			return feed, true
		}
	}
	return FeedConfig{}, false
}

// NewFetcher builds the fetcher a feed is configured for.
func NewFetcher(feed FeedConfig) Fetcher {
	if feed.Fetcher == FetcherColly {
		return CollyFetcherWithConfig(feed.Fetch)
	}
	return NewHTTPFetcher(feed.Fetch)
}
