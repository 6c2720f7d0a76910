// Package service implements the tiered classification pipeline: whitelist,
// cache, corpus match, external reputation, and finally the local heuristic
// scorer. Tiers run in strict order with early exit; no tier failure is
// fatal to the request
package service

import (
	"context"
	"strings"
	"time"

	"fishguard/internal/adapters/reputation"
	"fishguard/internal/core/heuristic"
	"fishguard/internal/platform/logger"
	corpusdom "fishguard/internal/services/corpus/domain"
	histdom "fishguard/internal/services/history/domain"
	ingestdom "fishguard/internal/services/ingest/domain"
	"fishguard/internal/services/scan/domain"
	wldom "fishguard/internal/services/whitelist/domain"

	"github.com/google/uuid"
)

// Config for the pipeline
type Config struct {
	CacheTTL   time.Duration // default 1h
	CacheMax   int           // default 100
	ReadyPoll  time.Duration // default 500ms
	ReadyWait  time.Duration // default 10s
	SweepEvery time.Duration // default CacheTTL
}

func (c Config) withDefaults() Config {
	if c.CacheTTL <= 0 {
		c.CacheTTL = time.Hour
	}
	if c.CacheMax <= 0 {
		c.CacheMax = 100
	}
	if c.ReadyPoll <= 0 {
		c.ReadyPoll = 500 * time.Millisecond
	}
	if c.ReadyWait <= 0 {
		c.ReadyWait = 10 * time.Second
	}
	if c.SweepEvery <= 0 {
		c.SweepEvery = c.CacheTTL
	}
	return c
}

// Ports are the collaborators injected into the pipeline
type Ports struct {
	Matcher   corpusdom.MatcherPort   // required
	Admin     corpusdom.AdminPort     // required
	Refresher ingestdom.RefresherPort // required
	Whitelist wldom.Port              // required
	History   histdom.Port            // required
	Creds     domain.CredentialsPort  // required
	Checkers  []reputation.Checker    // optional, tried in order
	Sink      domain.EventSink        // optional
}

// Service implements domain.ScannerPort and domain.DebugPort
type Service struct {
	ports Ports
	score *heuristic.Scorer
	cache *resultCache
	cfg   Config

	log logger.Logger
	now func() time.Time
}

// New constructs the pipeline service
func New(p Ports, scorer *heuristic.Scorer, cfg Config) *Service {
	cfg = cfg.withDefaults()
	return &Service{
		ports: p,
		score: scorer,
		cache: newResultCache(cfg.CacheTTL, cfg.CacheMax),
		cfg:   cfg,
		log:   *logger.Named("scan"),
		now:   time.Now,
	}
}

// Scan implements domain.ScannerPort
func (s *Service) Scan(ctx context.Context, url string) domain.ScanResult {
	url = strings.TrimSpace(url)
	if url == "" {
		return errResult("empty url")
	}

	// tier 1: whitelist short-circuits everything and is never cached
	listed, err := s.ports.Whitelist.Contains(ctx, url)
	if err != nil {
		s.log.Error().Err(err).Msg("whitelist lookup failed")
		res := errResult("whitelist lookup failed")
		s.record(ctx, url, res)
		return res
	}
	if listed {
		res := domain.Verdict(false)
		res.Whitelisted = true
		res.Source = "whitelist"
		res.ThreatType = domain.ThreatSafe
		s.record(ctx, url, res)
		return res
	}

	// tier 2: live cache entries are returned unchanged
	res, cached := s.cache.get(url)
	if !cached {
		res = s.classify(ctx, url)
		// error-tier results are excluded from the cache so a transient
		// failure is retried on the next identical request
		if !res.Errored() {
			s.cache.put(url, res)
		}
	}

	s.record(ctx, url, res)
	if res.Positive() {
		if _, err := s.ports.History.IncrementThreats(ctx); err != nil {
			s.log.Warn().Err(err).Msg("threat count update failed")
		}
		if !cached {
			s.emit(ctx, url, res)
		}
	}
	return res
}

// classify runs the corpus, reputation, and heuristic tiers
func (s *Service) classify(ctx context.Context, url string) domain.ScanResult {
	// an uninitialized corpus is waited for, then treated as empty
	s.waitReady(ctx)

	if m := s.ports.Matcher.Check(url); m.IsPhishing {
		res := domain.Verdict(true)
		res.Confidence = m.Confidence
		res.Source = m.Source
		res.ThreatType = m.ThreatType
		return res
	}

	for _, c := range s.ports.Checkers {
		key, err := s.ports.Creds.APIKey(ctx, c.Provider())
		if err != nil {
			s.log.Warn().Str("provider", c.Provider()).Err(err).Msg("credential lookup failed")
			continue
		}
		if key == "" {
			continue
		}
		v, err := c.Check(ctx, url, key)
		if err != nil {
			// transport failures degrade silently to the next tier
			s.log.Warn().Str("provider", c.Provider()).Err(err).Msg("reputation check failed")
			continue
		}
		if v.Match {
			res := domain.Verdict(true)
			res.Source = v.Source
			res.ThreatType = v.ThreatType
			return res
		}
	}

	h := s.score.Score(url)
	res := domain.Verdict(h.Phishing)
	res.ThreatScore = h.Score
	res.ThreatType = string(h.ThreatType)
	res.DetectedPatterns = h.Patterns
	res.Source = "local_heuristics"
	return res
}

// waitReady polls for a published corpus, bounded by ReadyWait; timing out
// is not an error, lookups just run against the empty corpus
func (s *Service) waitReady(ctx context.Context) {
	if s.ports.Matcher.Ready() {
		return
	}
	deadline := s.now().Add(s.cfg.ReadyWait)
	t := time.NewTicker(s.cfg.ReadyPoll)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if s.ports.Matcher.Ready() || s.now().After(deadline) {
				return
			}
		}
	}
}

// RunSweeper expires cache entries on a fixed cadence until ctx is done
func (s *Service) RunSweeper(ctx context.Context) {
	t := time.NewTicker(s.cfg.SweepEvery)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			s.cache.sweep()
		}
	}
}

func (s *Service) record(ctx context.Context, url string, res domain.ScanResult) {
	err := s.ports.History.Append(ctx, histdom.Entry{
		URL:       url,
		Timestamp: s.now().UTC(),
		Result:    res,
	})
	if err != nil {
		s.log.Warn().Err(err).Msg("history write failed")
	}
}

func (s *Service) emit(ctx context.Context, url string, res domain.ScanResult) {
	if s.ports.Sink == nil {
		return
	}
	s.ports.Sink.ThreatDetected(ctx, domain.ThreatEvent{
		ID:         uuid.NewString(),
		URL:        url,
		Source:     res.Source,
		ThreatType: res.ThreatType,
		Confidence: res.Confidence,
		Score:      res.ThreatScore,
		DetectedAt: s.now().UTC(),
	})
}

// CheckURL implements domain.DebugPort
func (s *Service) CheckURL(url string) corpusdom.Match { return s.ports.Matcher.Check(url) }

// Stats implements domain.DebugPort
func (s *Service) Stats() corpusdom.Stats { return s.ports.Admin.Stats() }

// Search implements domain.DebugPort
func (s *Service) Search(keyword string) corpusdom.SearchResult {
	return s.ports.Admin.Search(keyword)
}

// ForceUpdate implements domain.DebugPort
func (s *Service) ForceUpdate(ctx context.Context) (ingestdom.Report, error) {
	return s.ports.Refresher.Refresh(ctx)
}

func errResult(msg string) domain.ScanResult {
	return domain.ScanResult{Error: true, Message: msg}
}
