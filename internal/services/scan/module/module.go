// Package module wires the scan pipeline into the API using modkit
package module

import (
	"context"
	"net/http"

	modkit "fishguard/internal/modkit"
	"fishguard/internal/modkit/httpkit"
	str "fishguard/internal/platform/strings"

	"fishguard/internal/adapters/feeds"
	"fishguard/internal/adapters/reputation"
	"fishguard/internal/core/heuristic"
	"fishguard/internal/core/rules"
	corpusrepo "fishguard/internal/services/corpus/repo"
	corpussvc "fishguard/internal/services/corpus/service"
	histrepo "fishguard/internal/services/history/repo"
	histsvc "fishguard/internal/services/history/service"
	ingestdom "fishguard/internal/services/ingest/domain"
	ingestsvc "fishguard/internal/services/ingest/service"
	"fishguard/internal/services/scan/domain"
	scanhttp "fishguard/internal/services/scan/http"
	scanrepo "fishguard/internal/services/scan/repo"
	scansvc "fishguard/internal/services/scan/service"
	wlrepo "fishguard/internal/services/whitelist/repo"
	wlsvc "fishguard/internal/services/whitelist/service"
)

// Ports exposed by the scan module. Runner and Sweeper are long-running
// loops the owning process starts alongside the HTTP server
type Ports struct {
	Scanner domain.ScannerPort
	Debug   domain.DebugPort
	Runner  ingestdom.RunnerPort
	Sweeper func(context.Context)
}

// Module implements the scan module
type Module struct {
	name   string
	prefix string

	mws       []func(http.Handler) http.Handler
	ports     Ports
	subrouter func(httpkit.Router) httpkit.Router
	register  func(httpkit.Router)
}

// New constructs the scan module, wiring the corpus, ingestion, whitelist,
// history, credentials, reputation checkers, and heuristic scorer together
func New(deps modkit.Deps, opts ...modkit.Option) *Module {
	b := modkit.Build(append([]modkit.Option{
		modkit.WithName("scan"), modkit.WithPrefix("/scan"),
	}, opts...)...)
	o := FromConfig(deps.Cfg)

	store := corpussvc.New()
	snaps := corpussvc.NewSnapshots(deps.PG, corpusrepo.NewPG())

	fetcher := feeds.NewHTTPFetcher(o.FeedTimeout)
	refresher := ingestsvc.New(store, snaps, []feeds.Feed{
		feeds.NewOpenPhish(fetcher, o.OpenPhishURL),
		feeds.NewURLhausText(fetcher, o.URLhausTextURL),
		feeds.NewPhishTank(fetcher, o.PhishTankURL),
		feeds.NewURLhausCSV(fetcher, o.URLhausCSVURL),
	}, ingestsvc.Config{
		Every:          o.RefreshEvery,
		SnapshotMaxAge: o.SnapshotMaxAge,
		MinURLs:        o.SnapshotMinURLs,
	})

	pack, err := rules.Load()
	if err != nil {
		panic("scan: " + err.Error())
	}

	var sink domain.EventSink
	if deps.CH != nil {
		sink = scansvc.NewCHSink(deps.CH)
	}

	svc := scansvc.New(scansvc.Ports{
		Matcher:   store,
		Admin:     store,
		Refresher: refresher,
		Whitelist: wlsvc.New(deps.PG, wlrepo.NewPG()),
		History:   histsvc.New(deps.PG, histrepo.NewPG()),
		Creds:     scansvc.NewCredentials(deps.PG, scanrepo.NewPG()),
		Checkers: []reputation.Checker{
			reputation.NewPhishTank(o.PhishTankAPIURL, o.ReputationTimeout),
			reputation.NewSafeBrowsing(o.SafeBrowsingURL, o.ReputationTimeout),
		},
		Sink: sink,
	}, heuristic.New(pack), scansvc.Config{
		CacheTTL:  o.CacheTTL,
		CacheMax:  o.CacheMax,
		ReadyPoll: o.ReadyPoll,
		ReadyWait: o.ReadyWait,
	})

	m := &Module{
		name:      b.Name,
		prefix:    b.Prefix,
		mws:       b.Mw,
		subrouter: b.Subrouter,
	}
	m.ports = Ports{
		Scanner: svc,
		Debug:   svc,
		Runner:  refresher,
		Sweeper: svc.RunSweeper,
	}

	external := b.Register
	m.register = func(r httpkit.Router) {
		scanhttp.Register(r, svc, svc)
		if external != nil {
			external(r)
		}
	}
	return m
}

// MountRoutes mounts the module routes on the given router
func (m *Module) MountRoutes(r httpkit.Router) {
	r.Route(m.prefix, func(rr httpkit.Router) {
		for _, mw := range m.mws {
			rr.Use(mw)
		}
		if m.subrouter != nil {
			rr = m.subrouter(rr)
		}
		if m.register != nil {
			m.register(rr)
		}
	})
}

// Name returns the module name
func (m *Module) Name() string { return str.MustString(m.name, "module name") }

// Prefix returns the module route prefix
func (m *Module) Prefix() string { return str.MustPrefix(m.prefix) }

// Middlewares returns the module middlewares
func (m *Module) Middlewares() []func(http.Handler) http.Handler { return m.mws }

// Ports returns the module ports for cross-module lookups
func (m *Module) Ports() any { return m.ports }
