// Package feeds pulls phishing URL entries from the public feed endpoints.
// Each feed speaks its own transport (plain text, CSV, JSON); all of them
// reduce to a slice of raw URL strings for corpus insertion
package feeds

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// Default endpoints; overridable through config for tests and mirrors
const (
	DefaultOpenPhishURL   = "https://raw.githubusercontent.com/openphish/public_feed/refs/heads/main/feed.txt"
	DefaultURLhausTextURL = "https://urlhaus.abuse.ch/downloads/text_online/"
	DefaultURLhausCSVURL  = "https://urlhaus.abuse.ch/downloads/csv_online/"
	DefaultPhishTankURL   = "https://data.phishtank.com/data/online-valid.json"
)

const (
	defaultTimeout = 30 * time.Second
	defaultUA      = "fishguard-refresh"
)

// Feed extracts URL entries from one external source
type Feed interface {
	Name() string
	Fetch(ctx context.Context) ([]string, error)
}

// Fetcher fetches a reader for a feed URL
type Fetcher interface {
	Get(ctx context.Context, url string) (io.ReadCloser, error)
}

// HTTPFetcher fetches feed payloads over HTTP. A shared politeness limiter
// keeps refresh cycles from hammering the feed hosts
type HTTPFetcher struct {
	Client  *http.Client
	Limiter *rate.Limiter
	UA      string
}

// NewHTTPFetcher creates a fetcher with the given timeout and one request
// per second politeness
func NewHTTPFetcher(timeout time.Duration) *HTTPFetcher {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &HTTPFetcher{
		Client:  &http.Client{Timeout: timeout},
		Limiter: rate.NewLimiter(rate.Every(time.Second), 2),
		UA:      defaultUA,
	}
}

// Get returns the response body for url; the caller closes it
func (f *HTTPFetcher) Get(ctx context.Context, url string) (io.ReadCloser, error) {
	if f.Limiter != nil {
		if err := f.Limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	if f.UA != "" {
		req.Header.Set("User-Agent", f.UA)
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		closeErr := resp.Body.Close()
		if closeErr != nil {
			return nil, fmt.Errorf(
				"feeds: unexpected status %d for %s; error closing body: %v",
				resp.StatusCode, url, closeErr,
			)
		}
		return nil, fmt.Errorf("feeds: unexpected status %d for %s", resp.StatusCode, url)
	}
	return resp.Body, nil
}
