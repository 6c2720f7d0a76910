package feeds

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// maxLineBytes guards against pathological feed lines
const maxLineBytes = 64 * 1024

// TextFeed reads a newline-separated URL list, skipping blank lines and
// # comments. OpenPhish and the URLhaus text dump both use this shape
type TextFeed struct {
	name    string
	url     string
	fetcher Fetcher
}

// NewOpenPhish builds the OpenPhish text feed
func NewOpenPhish(f Fetcher, url string) *TextFeed {
	if url == "" {
		url = DefaultOpenPhishURL
	}
	return &TextFeed{name: "openphish", url: url, fetcher: f}
}

// NewURLhausText builds the URLhaus plain-text feed
func NewURLhausText(f Fetcher, url string) *TextFeed {
	if url == "" {
		url = DefaultURLhausTextURL
	}
	return &TextFeed{name: "urlhaus_text", url: url, fetcher: f}
}

// Name implements Feed
func (t *TextFeed) Name() string { return t.name }

// Fetch implements Feed
func (t *TextFeed) Fetch(ctx context.Context) ([]string, error) {
	body, err := t.fetcher.Get(ctx, t.url)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", t.name, err)
	}
	defer body.Close()

	sc := bufio.NewScanner(body)
	sc.Buffer(make([]byte, 4096), maxLineBytes)

	var urls []string
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		urls = append(urls, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("%s: read: %w", t.name, err)
	}
	return urls, nil
}
