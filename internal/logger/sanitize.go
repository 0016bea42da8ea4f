package logger

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	// MaxPathLength caps URL paths in access logs.
	MaxPathLength = 500
	// MaxErrorMessageLength caps error strings in logs.
	MaxErrorMessageLength = 1000
)

// SanitizePath scrubs a request path for logging. Invalid UTF-8 and
// control characters are dropped and the result is truncated, which
// keeps log injection out of the access log.
func SanitizePath(path string) string {
	return SanitizeString(path, MaxPathLength)
}

// SanitizeError scrubs an error message for logging.
func SanitizeError(err error) string {
	if err == nil {
		return ""
	}
	return SanitizeString(err.Error(), MaxErrorMessageLength)
}

// SanitizeString drops control characters, repairs UTF-8 and truncates
// to maxLength, appending an ellipsis marker when cut.
func SanitizeString(s string, maxLength int) string {
	if s == "" {
		return ""
	}
	if !utf8.ValidString(s) {
		s = strings.ToValidUTF8(s, "")
	}
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsPrint(r) || r == ' ' || r == '\t' {
			b.WriteRune(r)
		}
	}
	s = b.String()
	if maxLength > 0 && len(s) > maxLength {
		s = s[:maxLength] + "..."
	}
	return s
}
