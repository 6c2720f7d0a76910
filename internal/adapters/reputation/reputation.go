// Package reputation implements the external reputation API clients. Both
// providers answer a single question: is this URL a known threat. Transport
// and parse failures surface as errors; the pipeline treats them as silent
// degradation, never as a positive or a caller-visible failure
package reputation

import (
	"context"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

const defaultTimeout = 10 * time.Second

// Verdict is one provider's answer for one URL
type Verdict struct {
	Match      bool
	ThreatType string
	Source     string
}

// Checker is one reputation provider keyed by a stored credential
type Checker interface {
	// Provider is the credential suffix, e.g. "phishtank" for apiKey_phishtank
	Provider() string

	Check(ctx context.Context, url, apiKey string) (Verdict, error)
}

func newHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &http.Client{Timeout: timeout}
}

func newLimiter() *rate.Limiter {
	// provider quotas are tight; one lookup per second with a small burst
	return rate.NewLimiter(rate.Every(time.Second), 5)
}

func wait(ctx context.Context, l *rate.Limiter) error {
	if l == nil {
		return nil
	}
	return l.Wait(ctx)
}
