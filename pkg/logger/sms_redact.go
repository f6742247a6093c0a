package logger

import (
	"regexp"
	"unicode/utf8"
)

const maxRedactedLen = 200

var (
	phonePattern = regexp.MustCompile(`\+?\d{10,}`)
	codePattern  = regexp.MustCompile(`\b\d{4,8}\b`)
)

// Redact masks phone numbers and numeric codes and truncates long text.
// Message bodies must pass through Redact before they are logged.
func Redact(s string) string {
	s = phonePattern.ReplaceAllString(s, "[PHONE]")
	s = codePattern.ReplaceAllString(s, "[CODE]")
	if utf8.RuneCountInString(s) > maxRedactedLen {
		s = string([]rune(s)[:maxRedactedLen]) + "... [truncated]"
	}
	return s
}
