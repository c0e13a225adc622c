package extract

import (
	"regexp"
	"strings"
)

// Candidate is literal command text pulled from a response; it carries no trust.
type Candidate string

// commandPatterns run in order: line-leading token, backtick span, $( ) span.
var commandPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?m)^([A-Za-z][A-Za-z0-9_-]*(?:[ \t]+[^\n]*)?)`),
	regexp.MustCompile("`([^`]+)`"),
	regexp.MustCompile(`\$\(([^)]+)\)`),
}

// Commands returns every command-shaped substring of text.
//
// Matches are trimmed; empty results and ones starting with '#' are dropped.
func Commands(text string) []Candidate {
	var candidates []Candidate
	for _, pattern := range commandPatterns {
		for _, groups := range pattern.FindAllStringSubmatch(text, -1) {
			candidate := strings.TrimSpace(groups[1])
			if candidate == "" || strings.HasPrefix(candidate, "#") {
				continue
			}
			candidates = append(candidates, Candidate(candidate))
		}
	}
	return candidates
}
