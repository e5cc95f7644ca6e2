package logger

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	// MaxPathLength bounds proxied URL paths in log output. The proxy
	// forwards arbitrary caller-supplied paths, so they are never logged
	// raw.
	MaxPathLength = 500
	// MaxDetailLength bounds upstream error details in log output.
	MaxDetailLength = 1000
)

// SanitizePath prepares a URL path for logging: valid UTF-8, no control
// characters, bounded length.
func SanitizePath(path string) string {
	return sanitize(path, MaxPathLength)
}

// SanitizeError prepares an error message for logging.
func SanitizeError(err error) string {
	if err == nil {
		return ""
	}
	return sanitize(err.Error(), MaxDetailLength)
}

func sanitize(s string, maxLength int) string {
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

	if len(s) > maxLength {
		s = s[:maxLength] + "..."
	}
	return s
}
