package domain

import (
	"context"

	corpusdom "fishguard/internal/services/corpus/domain"
	ingestdom "fishguard/internal/services/ingest/domain"
)

// ScannerPort runs the full classification pipeline
type ScannerPort interface {
	// Scan never returns a Go error; failures are encoded in the result's
	// error tier so the engine stays responsive
	Scan(ctx context.Context, url string) ScanResult
}

// DebugPort exposes the corpus debug surface through the pipeline module
type DebugPort interface {
	CheckURL(url string) corpusdom.Match
	Stats() corpusdom.Stats
	Search(keyword string) corpusdom.SearchResult
	ForceUpdate(ctx context.Context) (ingestdom.Report, error)
}

// CredentialsPort reads stored reputation API keys; an absent key is
// ("", nil) and disables that provider
type CredentialsPort interface {
	APIKey(ctx context.Context, provider string) (string, error)
}

// EventSink receives threat events for offline analytics. Implementations
// must never block a scan; failures are logged and dropped
type EventSink interface {
	ThreatDetected(ctx context.Context, ev ThreatEvent)
}
