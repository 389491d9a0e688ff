package pii

import (
	"regexp"
	"strings"

	platformstrings "election/pkg/platform/strings"
)

// Placeholders substituted for redacted spans.
const (
	RedactedEmail      = "[REDACTED EMAIL]"
	RedactedPhone      = "[REDACTED PHONE NUMBER]"
	RedactedNationalID = "[REDACTED NATIONAL ID]"
	RedactedName       = "[REDACTED NAME]"
)

var (
	emailPattern      = regexp.MustCompile(`\b[^\s@]+@[^\s@]+\.[^\s@]+\b`)
	phonePattern      = regexp.MustCompile(`\(?\d{3}\)?-? ?\d{3}-?\d{4}`)
	nationalIDPattern = regexp.MustCompile(`\d{3}[- ]?\d{2}[- ]?\d{4}`)
)

// RedactFreeText replaces emails, phone numbers, national IDs and every
// literal occurrence of knownNames with placeholders. Matching is best-effort;
// phones run before national IDs so "(555) 123-4567" is never split.
func RedactFreeText(text string, knownNames []string) string {
	redacted := emailPattern.ReplaceAllLiteralString(text, RedactedEmail)
	redacted = phonePattern.ReplaceAllLiteralString(redacted, RedactedPhone)
	redacted = nationalIDPattern.ReplaceAllLiteralString(redacted, RedactedNationalID)

	for _, name := range platformstrings.LongestFirst(knownNames) {
		redacted = strings.ReplaceAll(redacted, name, RedactedName)
	}
	return redacted
}
