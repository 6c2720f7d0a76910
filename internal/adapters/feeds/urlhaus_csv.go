package feeds

import (
	"bufio"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// csvHeaderLines is the fixed comment banner URLhaus prepends to its CSV dump
const csvHeaderLines = 9

// urlColumn is the zero-based position of the URL field
const urlColumn = 2

// CSVFeed reads the URLhaus CSV dump: quoted fields, URL in the third
// column, entries kept only when they carry an http(s) scheme
type CSVFeed struct {
	url     string
	fetcher Fetcher
}

// NewURLhausCSV builds the URLhaus CSV feed
func NewURLhausCSV(f Fetcher, url string) *CSVFeed {
	if url == "" {
		url = DefaultURLhausCSVURL
	}
	return &CSVFeed{url: url, fetcher: f}
}

// Name implements Feed
func (c *CSVFeed) Name() string { return "urlhaus_csv" }

// Fetch implements Feed
func (c *CSVFeed) Fetch(ctx context.Context) ([]string, error) {
	body, err := c.fetcher.Get(ctx, c.url)
	if err != nil {
		return nil, fmt.Errorf("urlhaus_csv: %w", err)
	}
	defer body.Close()

	br := bufio.NewReader(body)
	for i := 0; i < csvHeaderLines; i++ {
		if _, err := br.ReadString('\n'); err != nil {
			if errors.Is(err, io.EOF) {
				return nil, nil
			}
			return nil, fmt.Errorf("urlhaus_csv: skip header: %w", err)
		}
	}

	r := csv.NewReader(br)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	var urls []string
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			// a single garbled row never sinks the whole feed
			continue
		}
		if len(rec) <= urlColumn {
			continue
		}
		u := strings.TrimSpace(rec[urlColumn])
		if strings.HasPrefix(u, "http") {
			urls = append(urls, u)
		}
	}
	return urls, nil
}
