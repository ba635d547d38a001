// Package videoid canonicalizes and validates YouTube video identifiers.
package videoid

import (
	"regexp"
	"strings"
)

// canonical matches an 11-character YouTube video ID. The final character is
// restricted to the base64 digits that can encode a valid last 2-bit group of
// a 64-bit ID; not every base64 character can legally appear there.
var canonical = regexp.MustCompile(`^[A-Za-z0-9_-]{10}[AEIMQUYcgkosw048]$`)

// urlPattern is one recognized way of embedding a video ID in a URL. host is
// matched case-insensitively as a substring of the whole input (an empty
// host matches any input); path is a
// regexp applied to the full URL (scheme included) with exactly one capture
// group holding the candidate ID.
type urlPattern struct {
	host string
	path *regexp.Regexp
}

// patterns is tried in order; the first match wins.
var patterns = []urlPattern{
	{host: "", path: regexp.MustCompile(`[?&]v=([A-Za-z0-9_-]{11})`)},
	{host: "youtube.com", path: regexp.MustCompile(`/v/([A-Za-z0-9_-]{11})`)},
	{host: "youtube.com", path: regexp.MustCompile(`/embed/([A-Za-z0-9_-]{11})`)},
	{host: "youtube.com", path: regexp.MustCompile(`/shorts/([A-Za-z0-9_-]{11})`)},
	{host: "", path: regexp.MustCompile(`/video/([A-Za-z0-9_-]{11})`)},
	{host: "youtu.be", path: regexp.MustCompile(`youtu\.be/([A-Za-z0-9_-]{11})`)},
	{host: "filmot.com", path: regexp.MustCompile(`filmot\.com/video/([A-Za-z0-9_-]{11})`)},
}

// ID is a validated 11-character YouTube video ID.
type ID string

// Parse canonicalizes s into a valid ID, trying each recognized URL form in
// order if s is not already a bare canonical ID. It performs no network I/O.
// The zero value, ok=false, is returned when nothing matches.
func Parse(s string) (ID, bool) {
	if canonical.MatchString(s) {
		return ID(s), true
	}
	lower := strings.ToLower(s)
	for _, p := range patterns {
		if p.host != "" && !strings.Contains(lower, strings.ToLower(p.host)) {
			continue
		}
		m := p.path.FindStringSubmatch(s)
		if m == nil {
			continue
		}
		candidate := m[1]
		if canonical.MatchString(candidate) {
			return ID(candidate), true
		}
	}
	return "", false
}

// Valid reports whether s is already in canonical form.
func Valid(s string) bool {
	return canonical.MatchString(s)
}

func (id ID) String() string { return string(id) }
