// Package urlx expands a raw URL into the closure of spellings that must be
// treated as equivalent for corpus insertion and lookup
// Expansion order
// 1 original plus lowercase form
// 2 scheme synthesis when absent then http/https toggles
// 3 trailing slash twins except for file-bearing URLs which are stripped instead
// 4 parsed derivations scheme://host+path both schemes bare host+path and the
//   directory form for file-bearing URLs
package urlx

import (
	"sort"
	"strings"
)

// fileExts are the extensions that mark a URL as file-bearing
var fileExts = []string{".html", ".htm", ".php", ".aspx", ".jsp"}

// IsFileBearing reports whether the URL ends in a recognized file extension
// or contains one followed by a slash
func IsFileBearing(raw string) bool {
	s := strings.ToLower(raw)
	for _, ext := range fileExts {
		if strings.HasSuffix(s, ext) || strings.Contains(s, ext+"/") {
			return true
		}
	}
	return false
}

// Variants returns the sorted deduplicated closure of equivalent spellings of
// raw. It is a pure function of its input and is invoked identically at
// insert time and at query time
func Variants(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	set := map[string]struct{}{}
	add := func(ss ...string) {
		for _, s := range ss {
			if s != "" {
				set[s] = struct{}{}
			}
		}
	}

	lower := strings.ToLower(raw)
	add(raw, lower)

	// synthesize both schemes when none is present
	if !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") {
		add("http://"+raw, "https://"+raw, "http://"+lower, "https://"+lower)
	}

	// scheme toggle over everything accumulated so far
	for _, v := range keys(set) {
		switch {
		case strings.HasPrefix(v, "https://"):
			add("http://" + v[len("https://"):])
		case strings.HasPrefix(v, "http://"):
			add("https://" + v[len("http://"):])
		}
	}

	fileBearing := IsFileBearing(lower)

	// trailing slash handling; file-bearing URLs never gain a slash variant,
	// an existing one is stripped for matching purposes
	for _, v := range keys(set) {
		if fileBearing {
			if strings.HasSuffix(v, "/") {
				add(strings.TrimSuffix(v, "/"))
			}
			continue
		}
		if strings.HasSuffix(v, "/") {
			add(strings.TrimSuffix(v, "/"))
		} else {
			add(v + "/")
		}
	}

	// derived forms from a successful parse; the host is already lowercased
	// by SplitHostPath, the path keeps its case so both spellings are stored
	if host, path, err := SplitHostPath(raw); err == nil {
		for _, hp := range dedupe(host+path, strings.ToLower(host+path)) {
			add(hp, "http://"+hp, "https://"+hp)
			if !fileBearing {
				if trimmed := strings.TrimSuffix(hp, "/"); trimmed != hp {
					add(trimmed, "http://"+trimmed, "https://"+trimmed)
				} else {
					add(hp+"/", "http://"+hp+"/", "https://"+hp+"/")
				}
			}
		}
		if fileBearing && path != "/" {
			if i := strings.LastIndex(path, "/"); i >= 0 {
				for _, dir := range dedupe(host+path[:i+1], strings.ToLower(host+path[:i+1])) {
					add(dir, "http://"+dir, "https://"+dir)
					// the directory form is not itself file-bearing, so its
					// re-expansion yields a slash-stripped twin; keep the
					// closure closed under that
					trimmed := strings.TrimSuffix(dir, "/")
					add(trimmed, "http://"+trimmed, "https://"+trimmed)
				}
			}
		}
	}

	out := keys(set)
	sort.Strings(out)
	return out
}

// DomainVariants returns the lowercased host plus its www-toggled twin
func DomainVariants(host string) []string {
	host = strings.ToLower(strings.TrimSpace(host))
	if host == "" {
		return nil
	}
	if strings.HasPrefix(host, "www.") {
		return []string{host, strings.TrimPrefix(host, "www.")}
	}
	return []string{host, "www." + host}
}

func dedupe(a, b string) []string {
	if a == b {
		return []string{a}
	}
	return []string{a, b}
}

func keys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
