// Package security holds the textual and policy guards applied to model output.
package security

import (
	"regexp"
	"strings"
)

// denylist entries are removed case-insensitively from model output.
var denylist = []*regexp.Regexp{
	regexp.MustCompile(`(?i);\s*rm\s+`),
	regexp.MustCompile(`(?i)&&\s*rm\s+`),
	regexp.MustCompile(`(?i)\|\s*rm\s+`),
	regexp.MustCompile("(?i)`[^`]*`"),
	regexp.MustCompile(`(?i)\$\([^)]*\)`),
	regexp.MustCompile(`(?i)>\s*/dev/`),
	regexp.MustCompile(`(?i)<\s*/dev/`),
	regexp.MustCompile(`(?i)\|\s*sh\s*`),
	regexp.MustCompile(`(?i)\|\s*bash\s*`),
	regexp.MustCompile(`(?i);\s*sudo\s+`),
	regexp.MustCompile(`(?i)&&\s*sudo\s+`),
}

// Sanitize removes denylisted shell fragments and trims surrounding whitespace.
//
// Removal repeats until nothing matches, so Sanitize(Sanitize(s)) == Sanitize(s)
// even when a removal splices a new match together.
func Sanitize(text string) string {
	out := text
	for {
		next := out
		for _, pattern := range denylist {
			next = pattern.ReplaceAllString(next, "")
		}
		next = strings.TrimSpace(next)
		if next == out {
			return next
		}
		out = next
	}
}

// SanitizeInput applies Sanitize when enabled and returns text unchanged otherwise.
func SanitizeInput(text string, enabled bool) string {
	if !enabled {
		return text
	}
	return Sanitize(text)
}
