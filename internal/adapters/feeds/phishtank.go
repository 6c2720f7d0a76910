package feeds

import (
	"context"
	"encoding/json"
	"fmt"
)

// JSONFeed reads the PhishTank verified dump: a JSON array of records,
// counting only entries flagged both verified and currently online
type JSONFeed struct {
	url     string
	fetcher Fetcher
}

// NewPhishTank builds the PhishTank JSON feed
func NewPhishTank(f Fetcher, url string) *JSONFeed {
	if url == "" {
		url = DefaultPhishTankURL
	}
	return &JSONFeed{url: url, fetcher: f}
}

// Name implements Feed
func (j *JSONFeed) Name() string { return "phishtank" }

type phishTankEntry struct {
	URL      string `json:"url"`
	Verified string `json:"verified"`
	Online   string `json:"online"`
}

// Fetch implements Feed
func (j *JSONFeed) Fetch(ctx context.Context) ([]string, error) {
	body, err := j.fetcher.Get(ctx, j.url)
	if err != nil {
		return nil, fmt.Errorf("phishtank: %w", err)
	}
	defer body.Close()

	var entries []phishTankEntry
	if err := json.NewDecoder(body).Decode(&entries); err != nil {
		return nil, fmt.Errorf("phishtank: decode: %w", err)
	}

	var urls []string
	for _, e := range entries {
		if e.URL != "" && e.Verified == "yes" && e.Online == "yes" {
			urls = append(urls, e.URL)
		}
	}
	return urls, nil
}
