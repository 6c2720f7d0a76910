package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"fishguard/internal/platform/config"
	"fishguard/internal/platform/logger"
	"fishguard/internal/platform/store"

	"fishguard/internal/adapters/feeds"
	corpusrepo "fishguard/internal/services/corpus/repo"
	corpussvc "fishguard/internal/services/corpus/service"
	ingestsvc "fishguard/internal/services/ingest/service"
	scanmod "fishguard/internal/services/scan/module"
)

func main() {
	root := config.New()
	refreshCfg := root.Prefix("CORE_REFRESH_")
	pgCfg := root.Prefix("SERVICE_PGSQL_")

	l := logger.Get()

	var (
		fLoop = flag.Bool("loop", false, "keep refreshing on the configured interval instead of exiting")
	)
	flag.Parse()

	st, err := store.Open(context.Background(), store.Config{
		PG: store.PGConfig{
			Enabled:     true,
			URL:         pgCfg.MustString("DBURL"),
			MaxConns:    int32(pgCfg.MayInt("MAX_CONNS", 2)),
			SlowQueryMs: pgCfg.MayInt("SLOW_MS", 500),
			LogSQL:      pgCfg.MayBool("LOG_SQL", false),
		},
	}, store.WithLogger(*l))
	if err != nil {
		l.Panic().Err(err).Msg("store.Open failed")
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			l.Error().Err(err).Msg("failed to close store")
		}
	}()

	o := scanmod.FromConfig(refreshCfg)

	corpus := corpussvc.New()
	snaps := corpussvc.NewSnapshots(st.PG, corpusrepo.NewPG())
	fetcher := feeds.NewHTTPFetcher(o.FeedTimeout)
	refresher := ingestsvc.New(corpus, snaps, []feeds.Feed{
		feeds.NewOpenPhish(fetcher, o.OpenPhishURL),
		feeds.NewURLhausText(fetcher, o.URLhausTextURL),
		feeds.NewPhishTank(fetcher, o.PhishTankURL),
		feeds.NewURLhausCSV(fetcher, o.URLhausCSVURL),
	}, ingestsvc.Config{
		Every:          o.RefreshEvery,
		SnapshotMaxAge: o.SnapshotMaxAge,
		MinURLs:        o.SnapshotMinURLs,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *fLoop {
		if err := refresher.Run(ctx); err != nil && ctx.Err() == nil {
			l.Panic().Err(err).Msg("refresh loop stopped")
		}
		return
	}

	rep, err := refresher.Refresh(ctx)
	if err != nil {
		l.Panic().Err(err).Msg("refresh failed")
	}
	l.Info().
		Int("urls", rep.URLs).
		Int("domains", rep.Domains).
		Dur("took", rep.Took).
		Msg("corpus refreshed")
}
