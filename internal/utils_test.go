package internal

import (
	"testing"
	"time"
)

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"en", "en"},
		{"zh-TW", "zh-TW"},
		{"pt_BR", "pt_BR"},
		{"../etc", "___etc"},
		{"a b/c", "a_b_c"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := SanitizeFilename(tt.in); got != tt.want {
				t.Errorf("SanitizeFilename(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNewRunID(t *testing.T) {
	a, b := NewRunID(), NewRunID()
	if a == b {
		t.Error("run IDs should be unique")
	}
	if len(a) != 36 {
		t.Errorf("run ID %q has length %d, want 36", a, len(a))
	}
	if short := ShortID(a); len(short) != 8 {
		t.Errorf("ShortID(%q) = %q, want 8 characters", a, short)
	}
	if ShortID("plain") != "plain" {
		t.Error("ShortID should keep IDs without a dash")
	}
}

func TestTimestampSuffix(t *testing.T) {
	ts := time.Date(2024, 3, 9, 14, 5, 7, 0, time.UTC)
	if got := TimestampSuffix(ts); got != "20240309-140507" {
		t.Errorf("TimestampSuffix() = %q", got)
	}
}
