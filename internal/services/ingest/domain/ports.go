package domain

import "context"

// RefresherPort triggers corpus refreshes
type RefresherPort interface {
	// Refresh runs one full fetch-build-publish cycle. Concurrent callers
	// share a single in-flight cycle
	Refresh(ctx context.Context) (Report, error)
}

// RunnerPort is the long-running side used by the refresh binary
type RunnerPort interface {
	RefresherPort

	// Run restores the persisted snapshot (or performs a blocking refresh
	// when it is missing, stale, or implausibly small) and then refreshes
	// on a fixed cadence until ctx is done
	Run(ctx context.Context) error
}
