// Package domain defines the classification pipeline types and ports
package domain

import "time"

// Threat type labels shared across tiers
const (
	ThreatSafe      = "SAFE"
	ThreatConfirmed = "CONFIRMED_PHISHING"
)

// ScanResult is the pipeline's answer for one URL. IsPhishing is nil only
// for the error tier, which is distinct from a confirmed-safe false
type ScanResult struct {
	IsPhishing       *bool    `json:"isPhishing"`
	Confidence       int      `json:"confidence,omitempty"`
	Source           string   `json:"source,omitempty"`
	ThreatType       string   `json:"threatType,omitempty"`
	ThreatScore      int      `json:"threatScore,omitempty"`
	DetectedPatterns []string `json:"detectedPatterns,omitempty"`
	Whitelisted      bool     `json:"whitelisted,omitempty"`
	Error            bool     `json:"error,omitempty"`
	Message          string   `json:"message,omitempty"`
}

// Verdict builds a result with a definite positive or negative
func Verdict(phishing bool) ScanResult {
	return ScanResult{IsPhishing: &phishing}
}

// Errored reports whether r came from the error tier
func (r ScanResult) Errored() bool { return r.IsPhishing == nil || r.Error }

// Positive reports a confirmed threat
func (r ScanResult) Positive() bool { return r.IsPhishing != nil && *r.IsPhishing }

// ThreatEvent is emitted to the analytics sink when a scan flags a threat
type ThreatEvent struct {
	ID         string
	URL        string
	Source     string
	ThreatType string
	Confidence int
	Score      int
	DetectedAt time.Time
}
