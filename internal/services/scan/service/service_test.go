package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"fishguard/internal/adapters/reputation"
	"fishguard/internal/core/heuristic"
	"fishguard/internal/core/rules"
	corpusdom "fishguard/internal/services/corpus/domain"
	histdom "fishguard/internal/services/history/domain"
	ingestdom "fishguard/internal/services/ingest/domain"
	"fishguard/internal/services/scan/domain"
)

type fakeMatcher struct {
	match corpusdom.Match
	ready bool
	calls int
}

func (m *fakeMatcher) Check(string) corpusdom.Match { m.calls++; return m.match }
func (m *fakeMatcher) Ready() bool                  { return m.ready }

type fakeAdmin struct{}

func (fakeAdmin) Stats() corpusdom.Stats               { return corpusdom.Stats{URLs: 7, Ready: true} }
func (fakeAdmin) Search(string) corpusdom.SearchResult { return corpusdom.SearchResult{} }

type fakeRefresher struct{ calls int }

func (r *fakeRefresher) Refresh(context.Context) (ingestdom.Report, error) {
	r.calls++
	return ingestdom.Report{URLs: 42}, nil
}

type fakeWhitelist struct {
	listed bool
	err    error
}

func (w *fakeWhitelist) Add(context.Context, string) error    { return nil }
func (w *fakeWhitelist) Remove(context.Context, string) error { return nil }
func (w *fakeWhitelist) List(context.Context) ([]string, error) {
	return nil, nil
}
func (w *fakeWhitelist) Contains(context.Context, string) (bool, error) {
	return w.listed, w.err
}

type fakeHistory struct {
	entries []histdom.Entry
	threats int
}

func (h *fakeHistory) Append(_ context.Context, e histdom.Entry) error {
	h.entries = append([]histdom.Entry{e}, h.entries...)
	return nil
}
func (h *fakeHistory) List(context.Context) ([]histdom.Entry, error) { return h.entries, nil }
func (h *fakeHistory) Clear(context.Context) error                   { h.entries = nil; return nil }
func (h *fakeHistory) IncrementThreats(context.Context) (int, error) {
	h.threats++
	return h.threats, nil
}
func (h *fakeHistory) ThreatCount(context.Context) (int, error) { return h.threats, nil }
func (h *fakeHistory) ResetThreats(context.Context) error       { h.threats = 0; return nil }

type fakeCreds map[string]string

func (c fakeCreds) APIKey(_ context.Context, provider string) (string, error) {
	return c[provider], nil
}

type fakeChecker struct {
	provider string
	verdict  reputation.Verdict
	err      error
	calls    int
}

func (c *fakeChecker) Provider() string { return c.provider }
func (c *fakeChecker) Check(context.Context, string, string) (reputation.Verdict, error) {
	c.calls++
	return c.verdict, c.err
}

type fakeSink struct{ events []domain.ThreatEvent }

func (s *fakeSink) ThreatDetected(_ context.Context, ev domain.ThreatEvent) {
	s.events = append(s.events, ev)
}

type fixture struct {
	svc     *Service
	matcher *fakeMatcher
	wl      *fakeWhitelist
	hist    *fakeHistory
	sink    *fakeSink
}

func newFixture(t *testing.T, mutate func(*Ports)) *fixture {
	t.Helper()
	pack, err := rules.Load()
	if err != nil {
		t.Fatalf("rules.Load: %v", err)
	}

	f := &fixture{
		matcher: &fakeMatcher{ready: true},
		wl:      &fakeWhitelist{},
		hist:    &fakeHistory{},
		sink:    &fakeSink{},
	}
	p := Ports{
		Matcher:   f.matcher,
		Admin:     fakeAdmin{},
		Refresher: &fakeRefresher{},
		Whitelist: f.wl,
		History:   f.hist,
		Creds:     fakeCreds{},
		Sink:      f.sink,
	}
	if mutate != nil {
		mutate(&p)
	}
	f.svc = New(p, heuristic.New(pack), Config{
		ReadyPoll: time.Millisecond,
		ReadyWait: 20 * time.Millisecond,
	})
	return f
}

func TestScan_EmptyURL(t *testing.T) {
	f := newFixture(t, nil)

	res := f.svc.Scan(context.Background(), "   ")
	if !res.Error || res.IsPhishing != nil {
		t.Fatalf("expected error result, got %+v", res)
	}
	if len(f.hist.entries) != 0 {
		t.Fatalf("empty input should not be recorded")
	}
}

func TestScan_WhitelistShortCircuits(t *testing.T) {
	f := newFixture(t, nil)
	f.wl.listed = true
	f.matcher.match = corpusdom.Match{IsPhishing: true, Confidence: 100}

	res := f.svc.Scan(context.Background(), "https://trusted.example.com/login")
	if res.Positive() || !res.Whitelisted {
		t.Fatalf("whitelisted url classified: %+v", res)
	}
	if res.Source != "whitelist" || res.ThreatType != domain.ThreatSafe {
		t.Fatalf("unexpected verdict: %+v", res)
	}
	if f.matcher.calls != 0 {
		t.Fatalf("corpus consulted for whitelisted url")
	}
	// recorded in history, but never cached
	if len(f.hist.entries) != 1 {
		t.Fatalf("history entries = %d, want 1", len(f.hist.entries))
	}
	if f.svc.cache.len() != 0 {
		t.Fatalf("whitelisted verdict must not be cached")
	}
}

func TestScan_WhitelistErrorIsRecorded(t *testing.T) {
	f := newFixture(t, nil)
	f.wl.err = errors.New("kv down")

	res := f.svc.Scan(context.Background(), "https://a.example.com/")
	if !res.Error {
		t.Fatalf("expected error result, got %+v", res)
	}
	if len(f.hist.entries) != 1 {
		t.Fatalf("error result not recorded")
	}
	if f.svc.cache.len() != 0 {
		t.Fatalf("error result cached")
	}
}

func TestScan_CorpusHit(t *testing.T) {
	f := newFixture(t, nil)
	f.matcher.match = corpusdom.Match{
		IsPhishing: true,
		Confidence: 100,
		Source:     corpusdom.SourceExactVariant,
		ThreatType: corpusdom.ThreatConfirmed,
	}

	res := f.svc.Scan(context.Background(), "https://evil.example.com/login")
	if !res.Positive() {
		t.Fatalf("expected positive, got %+v", res)
	}
	if res.Confidence != 100 || res.Source != corpusdom.SourceExactVariant {
		t.Fatalf("match details lost: %+v", res)
	}
	if f.hist.threats != 1 {
		t.Fatalf("threat count = %d, want 1", f.hist.threats)
	}
	if len(f.sink.events) != 1 {
		t.Fatalf("events = %d, want 1", len(f.sink.events))
	}
	if f.sink.events[0].URL != "https://evil.example.com/login" {
		t.Fatalf("event url = %q", f.sink.events[0].URL)
	}
}

func TestScan_CachedResultSkipsPipeline(t *testing.T) {
	f := newFixture(t, nil)
	f.matcher.match = corpusdom.Match{
		IsPhishing: true,
		Confidence: 95,
		Source:     corpusdom.SourceDomain,
		ThreatType: corpusdom.ThreatConfirmed,
	}

	first := f.svc.Scan(context.Background(), "https://evil.example.com/")
	second := f.svc.Scan(context.Background(), "https://evil.example.com/")

	if f.matcher.calls != 1 {
		t.Fatalf("matcher calls = %d, want 1 (second hit served from cache)", f.matcher.calls)
	}
	if second.Source != first.Source || second.Confidence != first.Confidence || !second.Positive() {
		t.Fatalf("cached result differs: %+v vs %+v", first, second)
	}
	// both scans land in history and bump the counter; only the fresh one
	// produces an analytics event
	if len(f.hist.entries) != 2 {
		t.Fatalf("history entries = %d, want 2", len(f.hist.entries))
	}
	if f.hist.threats != 2 {
		t.Fatalf("threat count = %d, want 2", f.hist.threats)
	}
	if len(f.sink.events) != 1 {
		t.Fatalf("events = %d, want 1", len(f.sink.events))
	}
}

func TestScan_ReputationMatch(t *testing.T) {
	chk := &fakeChecker{
		provider: "phishtank",
		verdict: reputation.Verdict{
			Match:      true,
			ThreatType: domain.ThreatConfirmed,
			Source:     "PhishTank API",
		},
	}
	f := newFixture(t, func(p *Ports) {
		p.Creds = fakeCreds{"phishtank": "secret"}
		p.Checkers = []reputation.Checker{chk}
	})

	res := f.svc.Scan(context.Background(), "https://sneaky.example.com/")
	if !res.Positive() || res.Source != "PhishTank API" {
		t.Fatalf("expected reputation positive, got %+v", res)
	}
	if chk.calls != 1 {
		t.Fatalf("checker calls = %d, want 1", chk.calls)
	}
}

func TestScan_ReputationSkippedWithoutKey(t *testing.T) {
	chk := &fakeChecker{provider: "phishtank", verdict: reputation.Verdict{Match: true}}
	f := newFixture(t, func(p *Ports) {
		p.Checkers = []reputation.Checker{chk}
	})

	res := f.svc.Scan(context.Background(), "https://www.google.com/")
	if chk.calls != 0 {
		t.Fatalf("checker called without an api key")
	}
	if res.Source != "local_heuristics" {
		t.Fatalf("expected heuristic fallback, got %+v", res)
	}
	if res.Positive() {
		t.Fatalf("major platform scored as phishing: %+v", res)
	}
}

func TestScan_ReputationFailureDegradesToHeuristic(t *testing.T) {
	chk := &fakeChecker{provider: "google", err: errors.New("upstream 500")}
	f := newFixture(t, func(p *Ports) {
		p.Creds = fakeCreds{"google": "secret"}
		p.Checkers = []reputation.Checker{chk}
	})

	res := f.svc.Scan(context.Background(), "https://www.google.com/")
	if chk.calls != 1 {
		t.Fatalf("checker calls = %d, want 1", chk.calls)
	}
	if res.Error {
		t.Fatalf("transport failure surfaced as error result: %+v", res)
	}
	if res.Source != "local_heuristics" {
		t.Fatalf("expected heuristic fallback, got %+v", res)
	}
}

func TestScan_ErrorResultsAreRetried(t *testing.T) {
	f := newFixture(t, nil)
	f.wl.err = errors.New("kv down")

	_ = f.svc.Scan(context.Background(), "https://a.example.com/")
	f.wl.err = nil

	res := f.svc.Scan(context.Background(), "https://a.example.com/")
	if res.Error {
		t.Fatalf("second scan should have re-run the pipeline: %+v", res)
	}
	if f.matcher.calls != 1 {
		t.Fatalf("matcher calls = %d, want 1", f.matcher.calls)
	}
}

func TestScan_WaitsForCorpusThenProceeds(t *testing.T) {
	f := newFixture(t, nil)
	f.matcher.ready = false

	start := time.Now()
	res := f.svc.Scan(context.Background(), "https://www.google.com/")
	if time.Since(start) < 15*time.Millisecond {
		t.Fatalf("scan did not wait for corpus readiness")
	}
	if res.Error {
		t.Fatalf("readiness timeout must not fail the scan: %+v", res)
	}
}

func TestForceUpdate(t *testing.T) {
	ref := &fakeRefresher{}
	f := newFixture(t, func(p *Ports) { p.Refresher = ref })

	rep, err := f.svc.ForceUpdate(context.Background())
	if err != nil {
		t.Fatalf("ForceUpdate: %v", err)
	}
	if ref.calls != 1 || rep.URLs != 42 {
		t.Fatalf("refresher not invoked: calls=%d rep=%+v", ref.calls, rep)
	}
}

func TestStats_Delegates(t *testing.T) {
	f := newFixture(t, nil)
	if got := f.svc.Stats(); got.URLs != 7 || !got.Ready {
		t.Fatalf("Stats = %+v", got)
	}
}
