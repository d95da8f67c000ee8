package internal

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// NewRunID returns a unique identifier for one invocation
func NewRunID() string {
	return uuid.NewString()
}

// ShortID returns the first block of a run ID for console output
func ShortID(runID string) string {
	if i := strings.IndexByte(runID, '-'); i > 0 {
		return runID[:i]
	}
	return runID
}

// SanitizeFilename creates a safe filename from a string
func SanitizeFilename(s string) string {
	var b strings.Builder
	for _, r := range s {
		if isAlphaNumeric(r) || r == '-' || r == '_' {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}
	return b.String()
}

// TimestampSuffix formats t for archive directory names
func TimestampSuffix(t time.Time) string {
	return t.Format("20060102-150405")
}

// isAlphaNumeric checks if a rune is an ASCII letter or digit
func isAlphaNumeric(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') ||
		(r >= '0' && r <= '9')
}
