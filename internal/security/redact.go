package security

import "regexp"

var (
	apiKeyPattern     = regexp.MustCompile(`sk-[a-zA-Z0-9]{48,}`)
	credentialPattern = regexp.MustCompile(`(?i)(password|token|key|secret)["\s]*[:=]["\s]*[^\s"]+`)
)

// Redact masks API keys and credential assignments in free text.
func Redact(text string) string {
	text = apiKeyPattern.ReplaceAllString(text, "sk-***REDACTED***")
	return credentialPattern.ReplaceAllString(text, "${1}: ***REDACTED***")
}
