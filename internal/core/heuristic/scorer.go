// Package heuristic implements the last-resort pattern scorer used when a
// URL matches neither the corpus nor an external reputation source
package heuristic

import (
	"fmt"
	"sort"
	"strings"

	"fishguard/internal/core/rules"
	"fishguard/internal/core/urlx"

	"golang.org/x/net/publicsuffix"
)

// ThreatType classifies the accumulated score
type ThreatType string

const (
	// ThreatSafe means the score stayed under the phishing threshold
	ThreatSafe ThreatType = "SAFE"
	// ThreatSuspicious means the score crossed the phishing threshold
	ThreatSuspicious ThreatType = "SUSPICIOUS_URL"
	// ThreatHighRisk means the score crossed the high-risk threshold
	ThreatHighRisk ThreatType = "HIGH_RISK_PHISHING"
)

// Result is the outcome of scoring one URL. Patterns preserves the order
// in which rules matched
type Result struct {
	Phishing   bool
	Score      int
	ThreatType ThreatType
	Patterns   []string
}

// Scorer runs the weighted rule table over a URL. It is deterministic and
// side-effect free; a Scorer is safe for concurrent use
type Scorer struct {
	p *rules.Pack

	nonLatin *rules.Pattern
}

// New builds a Scorer from a compiled pack
func New(p *rules.Pack) *Scorer {
	s := &Scorer{p: p}
	for i := range p.Patterns {
		if p.Patterns[i].ID == "non_latin_script" {
			s.nonLatin = &p.Patterns[i]
		}
	}
	return s
}

// Score classifies rawURL. Every matching rule contributes its weight
// independently; scores are additive, never exclusive
func (s *Scorer) Score(rawURL string) Result {
	urlLower := strings.ToLower(strings.TrimSpace(rawURL))

	host, _, err := urlx.SplitHostPath(rawURL)
	if err != nil {
		return s.classify(s.p.Weight("malformed_url"), []string{"Malformed URL"})
	}
	host = urlx.FoldHost(host)

	// major platforms skip the rule table; only an obvious homograph in the
	// hostname can flag them
	if s.onMajorPlatform(host) {
		if s.nonLatin != nil && s.nonLatin.Re.MatchString(host) {
			return s.classify(s.p.Weight("homograph_on_platform"),
				[]string{"Homograph attack on major platform"})
		}
		return s.classify(0, nil)
	}

	score := 0
	var patterns []string
	hit := func(w int, name string) {
		score += w
		patterns = append(patterns, name)
	}

	for _, pt := range s.p.Patterns {
		if pt.Re.MatchString(urlLower) || pt.Re.MatchString(host) {
			hit(pt.Score, pt.Name)
		}
	}

	// brand keyword present but the host is not the brand's real domain
	for _, kw := range s.p.BrandKeywords {
		if strings.Contains(host, kw) && !strings.HasSuffix(host, kw+".com") {
			hit(s.p.Weight("brand_imitation"), fmt.Sprintf("Possible %s imitation", kw))
		}
	}

	// homograph substitutions that would spell a brand keyword; keys are
	// sorted so the pattern order is stable
	fakes := make([]string, 0, len(s.p.Homographs))
	for fake := range s.p.Homographs {
		fakes = append(fakes, fake)
	}
	sort.Strings(fakes)
	for _, fake := range fakes {
		real := s.p.Homographs[fake]
		if !strings.Contains(host, fake) {
			continue
		}
		for _, kw := range s.p.BrandKeywords {
			spoofed := strings.Replace(kw, real, fake, 1)
			if spoofed == kw {
				continue
			}
			if strings.Contains(host, spoofed) {
				hit(s.p.Weight("homograph_substitution"),
					fmt.Sprintf("Homograph detected: %s instead of %s", fake, real))
				break
			}
		}
	}

	s.scoreFreeHosting(urlLower, host, hit)

	if len(host) > s.p.Structural.MaxHostnameLength {
		hit(s.p.Weight("long_hostname"), "Very long domain name")
	}
	if strings.Count(host, ".")+1 > s.p.Structural.MaxHostnameLabels {
		hit(s.p.Weight("many_subdomains"), "Too many subdomains")
	}

	return s.classify(score, patterns)
}

// scoreFreeHosting applies the stricter checks reserved for hosts on known
// free-hosting services
func (s *Scorer) scoreFreeHosting(urlLower, host string, hit func(int, string)) {
	fh := s.p.FreeHosting
	var suffix string
	for _, suf := range fh.Suffixes {
		if strings.HasSuffix(host, suf) {
			suffix = suf
			break
		}
	}
	if suffix == "" {
		return
	}

	hit(s.p.Weight("free_hosting_base"), "Free hosting service: "+suffix)

	if fh.BrandInHost.MatchString(host) {
		hit(fh.BrandInHostScore, "Brand name in free hosting subdomain")
	}
	if _, exempt := fh.RandomSubExempt[suffix]; !exempt && fh.RandomSubdomain.MatchString(host) {
		hit(fh.RandomSubdomainScore, "Random subdomain on free hosting")
	}
	if fh.CredentialPath.MatchString(urlLower) {
		hit(fh.CredentialPathScore, "Suspicious path on free hosting")
	}
}

func (s *Scorer) onMajorPlatform(host string) bool {
	etld1, err := publicsuffix.EffectiveTLDPlusOne(host)
	for _, platform := range s.p.MajorPlatforms {
		if host == platform || strings.HasSuffix(host, "."+platform) {
			return true
		}
		if err == nil && etld1 == platform {
			return true
		}
	}
	return false
}

func (s *Scorer) classify(score int, patterns []string) Result {
	r := Result{Score: score, Patterns: patterns, ThreatType: ThreatSafe}
	switch {
	case score >= s.p.Thresholds.HighRisk:
		r.ThreatType = ThreatHighRisk
	case score >= s.p.Thresholds.Phishing:
		r.ThreatType = ThreatSuspicious
	}
	r.Phishing = score >= s.p.Thresholds.Phishing
	return r
}
