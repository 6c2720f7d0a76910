// Package domain defines the ingestion service types and ports
package domain

import "time"

// FeedResult records one feed's contribution to a refresh cycle
type FeedResult struct {
	Name string `json:"name"`
	URLs int    `json:"urls"`
	Err  string `json:"error,omitempty"`
}

// Report summarizes one completed refresh cycle. A cycle with every feed
// failed still publishes (an empty corpus beats a stale one only when no
// snapshot exists; callers decide)
type Report struct {
	Feeds     []FeedResult  `json:"feeds"`
	URLs      int           `json:"urls"`
	Domains   int           `json:"domains"`
	StartedAt time.Time     `json:"startedAt"`
	Took      time.Duration `json:"took"`
}
