// Package domain defines the core types and interfaces for the corpus service
package domain

import "time"

// SnapshotURLCap bounds how many URLs a persisted snapshot keeps. The most
// recently inserted entries win; the domain set is never capped
const SnapshotURLCap = 20000

// ThreatConfirmed is the threat type attached to every corpus hit
const ThreatConfirmed = "CONFIRMED_PHISHING"

// Match sources, in tier order
const (
	SourceExactVariant   = "corpus:exact_variant"
	SourceURLSubstring   = "corpus:url_substring"
	SourceDomain         = "corpus:domain"
	SourcePathMatch      = "corpus:path_match"
	SourceDomainPresence = "corpus:domain_presence"
	SourceWWWToggle      = "corpus:www_toggle"
)

// Match is the outcome of one corpus lookup
type Match struct {
	IsPhishing bool   `json:"isPhishing"`
	Confidence int    `json:"confidence,omitempty"`
	Source     string `json:"source,omitempty"`
	ThreatType string `json:"threatType,omitempty"`
}

// Stats summarizes the live corpus for the debug surface. LastUpdate is nil
// until the first refresh or restore publishes a generation
type Stats struct {
	URLs       int        `json:"urls"`
	Domains    int        `json:"domains"`
	Ready      bool       `json:"ready"`
	LastUpdate *time.Time `json:"lastUpdate"`
}

// SearchResult holds debug keyword search hits
type SearchResult struct {
	URLs    []string `json:"urls"`
	Domains []string `json:"domains"`
}

// SnapshotCounts records how much of the corpus the snapshot kept
type SnapshotCounts struct {
	TotalURLs    int `json:"totalUrls"`
	TotalDomains int `json:"totalDomains"`
	SavedURLs    int `json:"savedUrls"`
	SavedDomains int `json:"savedDomains"`
}

// Snapshot is the persisted corpus form. URLs are already variant-expanded;
// restoring a snapshot never re-runs variant generation
type Snapshot struct {
	URLs       []string       `json:"urls"`
	Domains    []string       `json:"domains"`
	LastUpdate time.Time      `json:"lastUpdate"`
	LastSave   time.Time      `json:"lastSave"`
	Counts     SnapshotCounts `json:"counts"`
}
