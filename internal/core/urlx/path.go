package urlx

import (
	"net/url"
	"strings"
	"unicode"

	perr "fishguard/internal/platform/errors"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// SplitHostPath parses raw into a lowercased hostname and its path.
// A missing scheme is tolerated by prefixing http:// before parsing
func SplitHostPath(raw string) (host, path string, err error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", "", perr.InvalidArgf("empty url")
	}
	if !strings.HasPrefix(strings.ToLower(s), "http://") && !strings.HasPrefix(strings.ToLower(s), "https://") {
		s = "http://" + s
	}
	u, uerr := url.Parse(s)
	if uerr != nil || u.Hostname() == "" {
		return "", "", perr.InvalidArgf("unparseable url %q", raw)
	}
	path = u.Path
	if path == "" {
		path = "/"
	}
	return strings.ToLower(u.Hostname()), path, nil
}

// NormalizePath collapses repeated separators and strips a trailing
// separator only when the path is file-bearing
func NormalizePath(p string) string {
	for strings.Contains(p, "//") {
		p = strings.ReplaceAll(p, "//", "/")
	}
	if IsFileBearing(p) {
		p = strings.TrimSuffix(p, "/")
	}
	return p
}

// foldChain mirrors the hostname folding pipeline: NFKC then strip
// combining marks. Safe for concurrent use via transform.String
var foldChain = transform.Chain(
	norm.NFKC,
	runes.Remove(runes.In(unicode.Mn)),
)

// FoldHost returns the NFKC-folded, mark-stripped, lowercased hostname.
// Confusable scripts (Cyrillic, Greek) survive folding so homograph
// scanning still sees them
func FoldHost(host string) string {
	if host == "" {
		return ""
	}
	folded, _, err := transform.String(foldChain, host)
	if err != nil {
		folded = host
	}
	return strings.ToLower(folded)
}
