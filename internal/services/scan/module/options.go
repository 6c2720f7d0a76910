package module

import (
	"time"

	"fishguard/internal/platform/config"
)

// Options configures the scan module
type Options struct {
	CacheTTL  time.Duration
	CacheMax  int
	ReadyPoll time.Duration
	ReadyWait time.Duration

	RefreshEvery    time.Duration
	SnapshotMaxAge  time.Duration
	SnapshotMinURLs int

	FeedTimeout    time.Duration
	OpenPhishURL   string
	URLhausTextURL string
	URLhausCSVURL  string
	PhishTankURL   string

	ReputationTimeout time.Duration
	PhishTankAPIURL   string
	SafeBrowsingURL   string
}

// FromConfig reads options from config.Conf
func FromConfig(cfg config.Conf) Options {
	eng := cfg.Prefix("ENGINE_")
	feed := cfg.Prefix("FEED_")
	rep := cfg.Prefix("REPUTATION_")
	return Options{
		CacheTTL:  eng.MayDuration("CACHE_TTL", time.Hour),
		CacheMax:  eng.MayInt("CACHE_MAX", 100),
		ReadyPoll: eng.MayDuration("READY_POLL", 500*time.Millisecond),
		ReadyWait: eng.MayDuration("READY_WAIT", 10*time.Second),

		RefreshEvery:    eng.MayDuration("REFRESH_EVERY", 6*time.Hour),
		SnapshotMaxAge:  eng.MayDuration("SNAPSHOT_MAX_AGE", 6*time.Hour),
		SnapshotMinURLs: eng.MayInt("SNAPSHOT_MIN_URLS", 100),

		FeedTimeout:    feed.MayDuration("TIMEOUT", 30*time.Second),
		OpenPhishURL:   feed.MayString("OPENPHISH_URL", ""),
		URLhausTextURL: feed.MayString("URLHAUS_TEXT_URL", ""),
		URLhausCSVURL:  feed.MayString("URLHAUS_CSV_URL", ""),
		PhishTankURL:   feed.MayString("PHISHTANK_URL", ""),

		ReputationTimeout: rep.MayDuration("TIMEOUT", 10*time.Second),
		PhishTankAPIURL:   rep.MayString("PHISHTANK_URL", ""),
		SafeBrowsingURL:   rep.MayString("SAFEBROWSING_URL", ""),
	}
}
