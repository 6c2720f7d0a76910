package reputation

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// DefaultPhishTankURL is the live lookup endpoint, distinct from the bulk feed
const DefaultPhishTankURL = "https://checkurl.phishtank.com/checkurl/"

// PhishTank checks one URL against the PhishTank live lookup API
type PhishTank struct {
	BaseURL string
	Client  *http.Client
	Limiter *rate.Limiter
}

// NewPhishTank constructs the PhishTank checker
func NewPhishTank(baseURL string, timeout time.Duration) *PhishTank {
	if baseURL == "" {
		baseURL = DefaultPhishTankURL
	}
	return &PhishTank{
		BaseURL: baseURL,
		Client:  newHTTPClient(timeout),
		Limiter: newLimiter(),
	}
}

// Provider implements Checker
func (p *PhishTank) Provider() string { return "phishtank" }

type phishTankReply struct {
	Results struct {
		Valid    bool `json:"valid"`
		Verified bool `json:"verified"`
	} `json:"results"`
}

// Check implements Checker. A hit requires the record to be both valid and
// human-verified
func (p *PhishTank) Check(ctx context.Context, target, apiKey string) (Verdict, error) {
	if err := wait(ctx, p.Limiter); err != nil {
		return Verdict{}, err
	}

	form := url.Values{}
	form.Set("format", "json")
	form.Set("app_key", apiKey)
	form.Set("url", target)

	req, err := http.NewRequestWithContext(
		ctx, http.MethodPost, p.BaseURL, strings.NewReader(form.Encode()))
	if err != nil {
		return Verdict{}, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.Client.Do(req)
	if err != nil {
		return Verdict{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return Verdict{}, fmt.Errorf("phishtank: unexpected status %d", resp.StatusCode)
	}

	var reply phishTankReply
	if err := json.NewDecoder(resp.Body).Decode(&reply); err != nil {
		return Verdict{}, fmt.Errorf("phishtank: decode: %w", err)
	}

	v := Verdict{Source: "PhishTank API"}
	if reply.Results.Valid && reply.Results.Verified {
		v.Match = true
		v.ThreatType = "CONFIRMED_PHISHING"
	}
	return v, nil
}
