// Package domain defines the scan history types and ports
package domain

import (
	"context"
	"time"

	scandom "fishguard/internal/services/scan/domain"
)

// Cap is the maximum number of retained history entries; the newest wins
const Cap = 100

// Entry is one recorded scan, newest first in every listing
type Entry struct {
	URL       string             `json:"url"`
	Timestamp time.Time          `json:"timestamp"`
	Result    scandom.ScanResult `json:"result"`
}

// Port records and serves the scan history plus the running threat counter
type Port interface {
	// Append prepends an entry, dropping the oldest past Cap
	Append(ctx context.Context, e Entry) error

	List(ctx context.Context) ([]Entry, error)
	Clear(ctx context.Context) error

	// IncrementThreats bumps the threat counter and returns the new value
	IncrementThreats(ctx context.Context) (int, error)
	ThreatCount(ctx context.Context) (int, error)
	ResetThreats(ctx context.Context) error
}
