// Package service implements the periodic list ingestion refresh
package service

import (
	"context"
	"time"

	"fishguard/internal/adapters/feeds"
	"fishguard/internal/platform/logger"
	corpusdom "fishguard/internal/services/corpus/domain"
	corpussvc "fishguard/internal/services/corpus/service"
	"fishguard/internal/services/ingest/domain"

	"golang.org/x/sync/singleflight"
)

// Config for the refresher
type Config struct {
	// Every is the refresh cadence; defaults to 6h
	Every time.Duration

	// SnapshotMaxAge is how old a restored snapshot may be before it is
	// distrusted; defaults to 6h
	SnapshotMaxAge time.Duration

	// MinURLs is the floor under which a restored snapshot is treated as
	// truncated and refreshed immediately despite being fresh; defaults to 100
	MinURLs int
}

func (c Config) withDefaults() Config {
	if c.Every <= 0 {
		c.Every = 6 * time.Hour
	}
	if c.SnapshotMaxAge <= 0 {
		c.SnapshotMaxAge = 6 * time.Hour
	}
	if c.MinURLs <= 0 {
		c.MinURLs = 100
	}
	return c
}

// Refresher implements domain.RunnerPort
type Refresher struct {
	store *corpussvc.Store
	snaps corpusdom.SnapshotPort
	feeds []feeds.Feed
	cfg   Config

	log   logger.Logger
	now   func() time.Time
	group singleflight.Group
}

// New constructs a refresher over the given store, snapshot port, and feeds
func New(store *corpussvc.Store, snaps corpusdom.SnapshotPort, fs []feeds.Feed, cfg Config) *Refresher {
	return &Refresher{
		store: store,
		snaps: snaps,
		feeds: fs,
		cfg:   cfg.withDefaults(),
		log:   *logger.Named("ingest"),
		now:   time.Now,
	}
}

// Refresh implements domain.RefresherPort. A manual trigger racing the
// scheduled cycle joins the in-flight refresh instead of starting a second one
func (r *Refresher) Refresh(ctx context.Context) (domain.Report, error) {
	v, err, _ := r.group.Do("refresh", func() (any, error) {
		return r.refresh(ctx)
	})
	if err != nil {
		return domain.Report{}, err
	}
	return v.(domain.Report), nil
}

func (r *Refresher) refresh(ctx context.Context) (domain.Report, error) {
	started := r.now()
	rep := domain.Report{StartedAt: started}

	b := corpussvc.NewBuild()
	for _, f := range r.feeds {
		if err := ctx.Err(); err != nil {
			return rep, err
		}
		urls, err := f.Fetch(ctx)
		if err != nil {
			// one broken feed never aborts the cycle
			r.log.Warn().Str("feed", f.Name()).Err(err).Msg("feed fetch failed; skipping")
			rep.Feeds = append(rep.Feeds, domain.FeedResult{Name: f.Name(), Err: err.Error()})
			continue
		}
		for _, u := range urls {
			b.Insert(u)
		}
		r.log.Info().Str("feed", f.Name()).Int("urls", len(urls)).Msg("feed loaded")
		rep.Feeds = append(rep.Feeds, domain.FeedResult{Name: f.Name(), URLs: len(urls)})
	}

	r.store.Publish(b, r.now())
	rep.URLs = b.Len()
	rep.Domains = b.Domains()
	rep.Took = r.now().Sub(started)

	if err := r.snaps.Save(ctx, r.store.Snapshot(r.now())); err != nil {
		// the live corpus is already published; persistence catches up next cycle
		r.log.Warn().Err(err).Msg("snapshot save failed")
	}

	r.log.Info().
		Int("urls", rep.URLs).
		Int("domains", rep.Domains).
		Dur("took", rep.Took).
		Msg("corpus refreshed")
	return rep, nil
}

// Run implements domain.RunnerPort
func (r *Refresher) Run(ctx context.Context) error {
	if !r.restore(ctx) {
		if _, err := r.Refresh(ctx); err != nil {
			return err
		}
	}

	t := time.NewTicker(r.cfg.Every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			if _, err := r.Refresh(ctx); err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				r.log.Error().Err(err).Msg("scheduled refresh failed")
			}
		}
	}
}

// restore loads the persisted snapshot and reports whether it was usable
// as-is. A missing, stale, or implausibly small snapshot forces a refresh
func (r *Refresher) restore(ctx context.Context) bool {
	snap, ok, err := r.snaps.Load(ctx)
	if err != nil {
		r.log.Warn().Err(err).Msg("snapshot load failed")
		return false
	}
	if !ok {
		r.log.Info().Msg("no snapshot; downloading lists")
		return false
	}
	age := r.now().Sub(snap.LastSave)
	if age >= r.cfg.SnapshotMaxAge {
		r.log.Info().Dur("age", age).Msg("snapshot stale; downloading lists")
		return false
	}

	r.store.Restore(snap)
	st := r.store.Stats()
	if st.URLs < r.cfg.MinURLs {
		r.log.Warn().Int("urls", st.URLs).Msg("snapshot implausibly small; forcing refresh")
		return false
	}
	r.log.Info().
		Int("urls", st.URLs).
		Int("domains", st.Domains).
		Dur("age", age).
		Msg("corpus restored from snapshot")
	return true
}
