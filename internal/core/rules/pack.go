// Package rules loads and compiles the heuristic scoring rules from the
// embedded rules.json. It prepares weighted regex patterns, brand keyword
// lists, and the free-hosting specialization table for the scorer
package rules

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

//go:embed rules.json
var embedded []byte

type rawChecks struct {
	BrandInHost          string   `json:"brand_in_host"`
	BrandInHostScore     int      `json:"brand_in_host_score"`
	RandomSubdomain      string   `json:"random_subdomain"`
	RandomSubdomainScore int      `json:"random_subdomain_score"`
	RandomSubExempt      []string `json:"random_subdomain_exempt"`
	CredentialPath       string   `json:"credential_path"`
	CredentialPathScore  int      `json:"credential_path_score"`
}

type rawPack struct {
	Version             int               `json:"version"`
	Meta                map[string]any    `json:"meta"`
	Patterns            []rawPattern      `json:"patterns"`
	MajorPlatforms      []string          `json:"major_platforms"`
	BrandKeywords       []string          `json:"brand_keywords"`
	Homographs          map[string]string `json:"homographs"`
	FreeHostingSuffixes []string          `json:"free_hosting_suffixes"`
	FreeHostingChecks   rawChecks         `json:"free_hosting_checks"`
	Weights             map[string]int    `json:"weights"`
	Structural          Structural        `json:"structural"`
	Thresholds          Thresholds        `json:"thresholds"`
}

type rawPattern struct {
	ID      string `json:"id"`
	Pattern string `json:"pattern"`
	Score   int    `json:"score"`
	Name    string `json:"name"`
}

// Pattern is a compiled weighted pattern tested against the full URL and
// the hostname; a match contributes Score once and appends Name
type Pattern struct {
	ID    string
	Name  string
	Score int
	Re    *regexp.Regexp
}

// FreeHosting bundles the specialization checks applied only when the host
// ends with a known free-hosting suffix
type FreeHosting struct {
	Suffixes             []string
	BrandInHost          *regexp.Regexp
	BrandInHostScore     int
	RandomSubdomain      *regexp.Regexp
	RandomSubdomainScore int
	RandomSubExempt      map[string]struct{}
	CredentialPath       *regexp.Regexp
	CredentialPathScore  int
}

// Structural holds hostname shape limits
type Structural struct {
	MaxHostnameLength int `json:"max_hostname_length"`
	MaxHostnameLabels int `json:"max_hostname_labels"`
}

// Thresholds are the classification cutoffs over the accumulated score
type Thresholds struct {
	Phishing int `json:"phishing"`
	HighRisk int `json:"high_risk"`
}

// Pack is the compiled rule pack consumed by the heuristic scorer
type Pack struct {
	Version        int
	Meta           map[string]any
	Patterns       []Pattern
	MajorPlatforms []string
	BrandKeywords  []string
	Homographs     map[string]string
	FreeHosting    FreeHosting
	Weights        map[string]int
	Structural     Structural
	Thresholds     Thresholds
}

// Weight returns the named weight, panicking on a missing key so a broken
// rules.json fails loudly at startup rather than scoring zero silently
func (p *Pack) Weight(name string) int {
	w, ok := p.Weights[name]
	if !ok {
		panic(fmt.Sprintf("rules: missing weight %q", name))
	}
	return w
}

// Load returns the compiled pack from the embedded rules.json
func Load() (*Pack, error) {
	var rp rawPack
	if err := json.Unmarshal(embedded, &rp); err != nil {
		return nil, fmt.Errorf("rules: parse rules.json: %w", err)
	}
	if rp.Version != 1 {
		return nil, fmt.Errorf("rules: unsupported rules.json version %d (want 1)", rp.Version)
	}

	p := &Pack{
		Version:        rp.Version,
		Meta:           rp.Meta,
		MajorPlatforms: lowerAll(rp.MajorPlatforms),
		BrandKeywords:  lowerAll(rp.BrandKeywords),
		Homographs:     rp.Homographs,
		Weights:        rp.Weights,
		Structural:     rp.Structural,
		Thresholds:     rp.Thresholds,
	}

	for _, r := range rp.Patterns {
		if r.Score <= 0 {
			return nil, fmt.Errorf("rules: pattern %q has non-positive score %d", r.ID, r.Score)
		}
		re, err := regexp.Compile(r.Pattern)
		if err != nil {
			return nil, fmt.Errorf("rules: compile %q: %w", r.ID, err)
		}
		p.Patterns = append(p.Patterns, Pattern{ID: r.ID, Name: r.Name, Score: r.Score, Re: re})
	}

	fh := FreeHosting{
		Suffixes:             lowerAll(rp.FreeHostingSuffixes),
		BrandInHostScore:     rp.FreeHostingChecks.BrandInHostScore,
		RandomSubdomainScore: rp.FreeHostingChecks.RandomSubdomainScore,
		CredentialPathScore:  rp.FreeHostingChecks.CredentialPathScore,
		RandomSubExempt:      map[string]struct{}{},
	}
	var err error
	if fh.BrandInHost, err = regexp.Compile(rp.FreeHostingChecks.BrandInHost); err != nil {
		return nil, fmt.Errorf("rules: compile brand_in_host: %w", err)
	}
	if fh.RandomSubdomain, err = regexp.Compile(rp.FreeHostingChecks.RandomSubdomain); err != nil {
		return nil, fmt.Errorf("rules: compile random_subdomain: %w", err)
	}
	if fh.CredentialPath, err = regexp.Compile(rp.FreeHostingChecks.CredentialPath); err != nil {
		return nil, fmt.Errorf("rules: compile credential_path: %w", err)
	}
	for _, s := range rp.FreeHostingChecks.RandomSubExempt {
		fh.RandomSubExempt[strings.ToLower(strings.TrimSpace(s))] = struct{}{}
	}
	p.FreeHosting = fh

	for _, w := range []string{
		"homograph_on_platform", "brand_imitation", "homograph_substitution",
		"free_hosting_base", "long_hostname", "many_subdomains", "malformed_url",
	} {
		if v, ok := p.Weights[w]; !ok || v <= 0 {
			return nil, fmt.Errorf("rules: weight %q missing or non-positive", w)
		}
	}
	if p.Thresholds.Phishing <= 0 || p.Thresholds.HighRisk <= p.Thresholds.Phishing {
		return nil, fmt.Errorf("rules: bad thresholds %+v", p.Thresholds)
	}

	return p, nil
}

func lowerAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.ToLower(strings.TrimSpace(s))
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
