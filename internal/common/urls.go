package common

import (
	"net/url"
	"regexp"
	"strings"
)

var nonAlnum = regexp.MustCompile(`[^a-zA-Z0-9]`)

// SanitizeURLForFilename collapses a URL into a deterministic filename stem,
// capped at 100 characters so screenshot paths stay portable.
func SanitizeURLForFilename(raw string) string {
	s := nonAlnum.ReplaceAllString(raw, "_")
	if len(s) > 100 {
		s = s[:100]
	}
	return s
}

// Hostname returns the lowercased host of a URL, or "" if unparseable.
func Hostname(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Hostname())
}
