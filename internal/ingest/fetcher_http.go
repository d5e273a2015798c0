package ingest

import (
	"context"
	"fmt"
	"math/rand"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// HTTPFetcher downloads feeds with per-host rate limiting, retries with
// exponential backoff and, unless disabled, a guard against private addresses.
type HTTPFetcher struct {
	Client *http.Client
	Config FetchConfig

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// NewHTTPFetcher creates a fetcher for cfg, filling unset fields with defaults.
func NewHTTPFetcher(cfg FetchConfig) *HTTPFetcher {
	cfg = cfg.withDefaults()

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.DialContext = guardedDial
	redirects := guardedRedirects
	if cfg.AllowPrivateNetworks {
		transport.DialContext = newDialer().DialContext
		redirects = plainRedirects
	}

	return &HTTPFetcher{
		Client: &http.Client{
			Timeout:       cfg.Timeout(),
			Transport:     transport,
			CheckRedirect: redirects,
		},
		Config:   cfg,
		limiters: make(map[string]*rate.Limiter),
	}
}

func (f *HTTPFetcher) limiter(host string) *rate.Limiter {
	f.mu.Lock()
	defer f.mu.Unlock()

	l, ok := f.limiters[host]
	if !ok {
		l = rate.NewLimiter(rate.Limit(f.Config.RateLimitRPS), 1)
		f.limiters[host] = l
	}
	return l
}

// retryableStatus lists the responses worth another attempt.
func retryableStatus(code int) bool {
	switch code {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}

// backoff is the wait before attempt n (n >= 1): base * 2^(n-1) plus up to 20% jitter.
func (f *HTTPFetcher) backoff(n int) time.Duration {
	d := f.Config.retryBackoff() << uint(n-1)
	return d + time.Duration(rand.Int63n(int64(d)/5+1))
}

// Fetch implements the Fetcher interface with rate limiting and retries.
// A non-2xx final response is returned as *NetworkError carrying the status.
func (f *HTTPFetcher) Fetch(ctx context.Context, rawURL string) (*FetchedDocument, error) {
	host, err := getDomain(rawURL)
	if err != nil {
		return nil, &NetworkError{URL: rawURL, Err: fmt.Errorf("invalid URL: %w", err)}
	}
	if err := f.limiter(host).Wait(ctx); err != nil {
		return nil, &NetworkError{URL: rawURL, Err: err}
	}

	var lastErr error
	for n := 0; n <= f.Config.retries(); n++ {
		if n > 0 {
			timer := time.NewTimer(f.backoff(n))
			select {
			case <-ctx.Done():
				timer.Stop()
				return nil, &NetworkError{URL: rawURL, Err: ctx.Err()}
			case <-timer.C:
			}
		}

		doc, retry, err := f.attempt(ctx, rawURL)
		if err == nil {
			return doc, nil
		}
		lastErr = err
		if !retry || ctx.Err() != nil {
			break
		}
	}
	return nil, lastErr
}

// attempt performs one request. retry reports whether a failure is transient.
func (f *HTTPFetcher) attempt(ctx context.Context, rawURL string) (doc *FetchedDocument, retry bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, false, &NetworkError{URL: rawURL, Err: fmt.Errorf("failed to create request: %w", err)}
	}
	req.Header.Set("User-Agent", f.Config.UserAgent)
	req.Header.Set("Accept", "text/csv,text/plain;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", f.Config.AcceptLanguage)
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, isTimeout(err), &NetworkError{URL: rawURL, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, retryableStatus(resp.StatusCode), &NetworkError{URL: rawURL, StatusCode: resp.StatusCode}
	}

	return &FetchedDocument{
		URL:         rawURL,
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        resp.Body,
		FetchedAt:   time.Now(),
		Headers:     resp.Header,
	}, false, nil
}
