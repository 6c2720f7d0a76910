// Package domain defines the whitelist types and ports
package domain

import "context"

// Port manages the user's trusted domains. Entries are keyed by hostname;
// any URL spelling of the same host hits the same entry
type Port interface {
	// Add whitelists the hostname of url. Unparseable URLs are a no-op
	Add(ctx context.Context, url string) error

	// Remove drops the hostname of url. Unparseable URLs are a no-op
	Remove(ctx context.Context, url string) error

	// List returns all whitelisted hostnames
	List(ctx context.Context) ([]string, error)

	// Contains reports whether the hostname of url is whitelisted
	Contains(ctx context.Context, url string) (bool, error)
}
