// Package slug normalizes arbitrary label text into filesystem-safe path
// segments.
package slug

import (
	"regexp"
	"strings"
)

var unsafe = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

// Make collapses runs of disallowed characters to a single hyphen, trims
// leading/trailing hyphens and lowercases the result. Inputs that normalize
// to nothing yield the fallback, never an empty string.
func Make(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	s := unsafe.ReplaceAllString(strings.TrimSpace(v), "-")
	s = strings.Trim(s, "-")
	s = strings.ToLower(s)
	if s == "" {
		return fallback
	}
	return s
}
