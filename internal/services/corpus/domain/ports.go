package domain

import "context"

// MatcherPort is the read side consumed by the scan pipeline
type MatcherPort interface {
	// Check runs the tiered match against the live corpus. It never errors;
	// an unparseable URL is a non-match
	Check(url string) Match

	// Ready reports whether at least one corpus generation was published
	Ready() bool
}

// AdminPort exposes the debug surface
type AdminPort interface {
	Stats() Stats
	Search(keyword string) SearchResult
}

// SnapshotPort persists and restores the corpus snapshot
type SnapshotPort interface {
	// Save overwrites the stored snapshot
	Save(ctx context.Context, s Snapshot) error

	// Load returns the stored snapshot; ok is false when none exists
	Load(ctx context.Context) (s Snapshot, ok bool, err error)
}
