// Package service implements the in-memory corpus store and its tiered
// match engine. A refresh builds a complete new generation off to the side
// and publishes it with one atomic pointer swap, so concurrent lookups see
// either the old corpus or the new one, never an interleaving
package service

import (
	"strings"
	"sync/atomic"
	"time"

	"fishguard/internal/core/urlx"
	ptime "fishguard/internal/platform/time"
	"fishguard/internal/services/corpus/domain"
)

// searchLimit caps debug keyword searches per result class
const searchLimit = 500

// hostBucket groups corpus entries sharing one hostname so domain-tier
// lookups avoid a full-corpus scan
type hostBucket struct {
	// lowercase variant spellings, for substring confirmation
	variants []string
	// normalized lowercase paths, deduplicated
	paths []string
}

// generation is one immutable, fully built corpus
type generation struct {
	urls       map[string]struct{}
	ordered    []string // insertion order, oldest first
	domains    map[string]struct{}
	byHost     map[string]*hostBucket
	lastUpdate time.Time
}

func newGeneration() *generation {
	return &generation{
		urls:    make(map[string]struct{}),
		domains: make(map[string]struct{}),
		byHost:  make(map[string]*hostBucket),
	}
}

// add expands rawURL through the variant generator and indexes every form
func (g *generation) add(rawURL string) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return
	}
	for _, v := range urlx.Variants(rawURL) {
		g.addStored(v)
	}
}

// addStored indexes one already-expanded spelling verbatim
func (g *generation) addStored(v string) {
	if _, dup := g.urls[v]; dup {
		return
	}
	g.urls[v] = struct{}{}
	g.ordered = append(g.ordered, v)

	host, path, err := urlx.SplitHostPath(v)
	if err != nil {
		return
	}
	for _, d := range urlx.DomainVariants(host) {
		g.domains[d] = struct{}{}
	}

	b := g.byHost[host]
	if b == nil {
		b = &hostBucket{}
		g.byHost[host] = b
	}
	low := strings.ToLower(v)
	if len(b.variants) == 0 || b.variants[len(b.variants)-1] != low {
		b.variants = append(b.variants, low)
	}
	np := urlx.NormalizePath(strings.ToLower(path))
	for _, p := range b.paths {
		if p == np {
			return
		}
	}
	b.paths = append(b.paths, np)
}

// Build accumulates a fresh corpus before publication. Not safe for
// concurrent use; a refresh owns its Build exclusively
type Build struct {
	g *generation
}

// NewBuild returns an empty corpus under construction
func NewBuild() *Build { return &Build{g: newGeneration()} }

// Insert expands rawURL into its variant closure and stores every form
func (b *Build) Insert(rawURL string) { b.g.add(rawURL) }

// Len reports how many URL spellings the build holds so far
func (b *Build) Len() int { return len(b.g.urls) }

// Domains reports how many domain entries the build holds so far
func (b *Build) Domains() int { return len(b.g.domains) }

// Store holds the live corpus behind an atomic generation pointer.
// All reads are lock-free; only Publish and Restore mutate the pointer
type Store struct {
	gen   atomic.Pointer[generation]
	ready atomic.Bool
}

// New returns an empty, not-yet-ready store
func New() *Store {
	s := &Store{}
	s.gen.Store(newGeneration())
	return s
}

// Publish swaps the finished build in as the live corpus
func (s *Store) Publish(b *Build, at time.Time) {
	b.g.lastUpdate = at
	s.gen.Store(b.g)
	s.ready.Store(true)
}

// Ready implements domain.MatcherPort
func (s *Store) Ready() bool { return s.ready.Load() }

// Check implements domain.MatcherPort. Tiers run in strict order and stop
// on the first hit; an exact variant hit always wins over a domain hit
func (s *Store) Check(rawURL string) domain.Match {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return domain.Match{}
	}
	g := s.gen.Load()

	// tier 1: exact variant membership
	for _, v := range urlx.Variants(rawURL) {
		if _, ok := g.urls[v]; ok {
			return hit(100, domain.SourceExactVariant)
		}
	}

	host, path, err := urlx.SplitHostPath(rawURL)
	if err != nil {
		// unparseable URLs are a non-match here; the heuristic scorer
		// penalizes them further down the pipeline
		return domain.Match{}
	}
	np := urlx.NormalizePath(strings.ToLower(path))

	// tier 2: domain membership, upgraded to 100 when a stored spelling
	// contains host+path verbatim
	if _, ok := g.domains[host]; ok {
		needle := host + np
		if b := g.byHost[host]; b != nil {
			for _, v := range b.variants {
				if strings.Contains(v, needle) {
					return hit(100, domain.SourceURLSubstring)
				}
			}
		}
		return hit(95, domain.SourceDomain)
	}

	// tiers 3 and 4: same-host entries, compared by normalized path with
	// one-sided trailing-slash tolerance
	if b := g.byHost[host]; b != nil && len(b.paths) > 0 {
		for _, sp := range b.paths {
			if sp == np || sp == np+"/" || sp+"/" == np {
				return hit(100, domain.SourcePathMatch)
			}
		}
		// a known-malicious host stays unsafe even when the path rotated
		return hit(90, domain.SourceDomainPresence)
	}

	// tier 5: www-toggled domain membership
	for _, d := range urlx.DomainVariants(host) {
		if d == host {
			continue
		}
		if _, ok := g.domains[d]; ok {
			return hit(95, domain.SourceWWWToggle)
		}
	}

	return domain.Match{}
}

// Stats implements domain.AdminPort
func (s *Store) Stats() domain.Stats {
	g := s.gen.Load()
	return domain.Stats{
		URLs:       len(g.urls),
		Domains:    len(g.domains),
		Ready:      s.ready.Load(),
		LastUpdate: ptime.Ptr(g.lastUpdate),
	}
}

// Search implements domain.AdminPort. Case-insensitive substring search
// over stored URLs and domains, capped per class
func (s *Store) Search(keyword string) domain.SearchResult {
	g := s.gen.Load()
	key := strings.ToLower(strings.TrimSpace(keyword))
	res := domain.SearchResult{URLs: []string{}, Domains: []string{}}
	if key == "" {
		return res
	}
	for _, u := range g.ordered {
		if strings.Contains(strings.ToLower(u), key) {
			res.URLs = append(res.URLs, u)
			if len(res.URLs) >= searchLimit {
				break
			}
		}
	}
	for d := range g.domains {
		if strings.Contains(d, key) {
			res.Domains = append(res.Domains, d)
			if len(res.Domains) >= searchLimit {
				break
			}
		}
	}
	return res
}

// Snapshot captures the live corpus for persistence. URLs beyond the cap
// are dropped oldest-first; domains are kept in full
func (s *Store) Snapshot(now time.Time) domain.Snapshot {
	g := s.gen.Load()

	urls := g.ordered
	if len(urls) > domain.SnapshotURLCap {
		urls = urls[len(urls)-domain.SnapshotURLCap:]
	}
	saved := make([]string, len(urls))
	copy(saved, urls)

	domains := make([]string, 0, len(g.domains))
	for d := range g.domains {
		domains = append(domains, d)
	}

	return domain.Snapshot{
		URLs:       saved,
		Domains:    domains,
		LastUpdate: g.lastUpdate,
		LastSave:   now,
		Counts: domain.SnapshotCounts{
			TotalURLs:    len(g.ordered),
			TotalDomains: len(g.domains),
			SavedURLs:    len(saved),
			SavedDomains: len(domains),
		},
	}
}

// Restore publishes a previously saved snapshot as the live corpus. Stored
// URLs are already variant-expanded, so they index verbatim; the stored
// domain set is adopted as-is
func (s *Store) Restore(snap domain.Snapshot) {
	g := newGeneration()
	for _, u := range snap.URLs {
		g.addStored(u)
	}
	for _, d := range snap.Domains {
		d = strings.ToLower(strings.TrimSpace(d))
		if d != "" {
			g.domains[d] = struct{}{}
		}
	}
	g.lastUpdate = snap.LastUpdate
	s.gen.Store(g)
	s.ready.Store(true)
}

func hit(confidence int, source string) domain.Match {
	return domain.Match{
		IsPhishing: true,
		Confidence: confidence,
		Source:     source,
		ThreatType: domain.ThreatConfirmed,
	}
}
