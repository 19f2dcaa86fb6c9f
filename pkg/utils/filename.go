package utils

import (
	"regexp"
	"strings"
)

var (
	controlChars   = regexp.MustCompile(`[\x00-\x1f\x7f]`)
	unsafeInName   = regexp.MustCompile(`[^A-Za-z0-9._-]+`)
	repeatedDashes = regexp.MustCompile(`-{2,}`)
)

// SanitizeString removes control characters
func SanitizeString(s string) string {
	return controlChars.ReplaceAllString(s, "")
}

// SanitizeFilename reduces s to a single safe path segment usable in a
// Content-Disposition header. Returns "" when nothing usable remains.
func SanitizeFilename(s string) string {
	s = SanitizeString(strings.TrimSpace(s))
	s = unsafeInName.ReplaceAllString(s, "-")
	s = repeatedDashes.ReplaceAllString(s, "-")
	s = strings.Trim(s, ".-")
	if len(s) > 100 {
		s = strings.TrimRight(s[:100], ".-")
	}
	return s
}
