package language

import (
	"errors"
	"testing"

	"codeberg.org/snonux/polyglot/internal/translation"
)

func TestNormalize(t *testing.T) {
	table := Default()

	tests := []struct {
		in   string
		want string
	}{
		{"kr", "ko"},
		{"KR", "ko"},
		{"jp", "ja"},
		{"cn", "zh-CN"},
		{"zh", "zh-CN"},
		{"tw", "zh-TW"},
		{"ua", "uk"},
		{"br", "pt-BR"},
		{"pt_br", "pt-BR"},
		{" EN-us ", "en-US"},
		{"de", "de"},
		{"xx", "xx"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := table.Normalize(tt.in); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestResolve(t *testing.T) {
	table := Default()

	lang, err := table.Resolve("kr")
	if err != nil {
		t.Fatalf("Resolve(kr) failed: %v", err)
	}
	if lang.Code != "ko" || lang.Name != "Korean" {
		t.Errorf("Resolve(kr) = %+v, want ko/Korean", lang)
	}

	_, err = table.Resolve("klingon")
	var unsupported *translation.UnsupportedLanguageError
	if !errors.As(err, &unsupported) {
		t.Fatalf("expected UnsupportedLanguageError, got %v", err)
	}
	if unsupported.Requested != "klingon" {
		t.Errorf("Requested = %q, want klingon", unsupported.Requested)
	}

	if _, err := table.Resolve(""); err == nil {
		t.Error("empty code should not resolve")
	}
}

func TestNewTable_ExtraAliases(t *testing.T) {
	table, err := NewTable(map[string]string{
		"Deutsch": "de",
		"kr":      "ko",
		"cn":      "zh_tw",
	})
	if err != nil {
		t.Fatalf("NewTable failed: %v", err)
	}

	if got := table.Normalize("deutsch"); got != "de" {
		t.Errorf("Normalize(deutsch) = %q, want de", got)
	}
	if got := table.Normalize("cn"); got != "zh-TW" {
		t.Errorf("extra alias should override default, got %q", got)
	}

	// The default table is not affected
	if got := Default().Normalize("cn"); got != "zh-CN" {
		t.Errorf("default table changed: cn -> %q", got)
	}
}

func TestNewTable_InvalidAlias(t *testing.T) {
	tests := []struct {
		name  string
		extra map[string]string
	}{
		{"unsupported target", map[string]string{"xx": "klingon"}},
		{"empty alias", map[string]string{" ": "de"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewTable(tt.extra); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestLanguages_Sorted(t *testing.T) {
	langs := Default().Languages()
	if len(langs) == 0 {
		t.Fatal("no languages")
	}
	for i := 1; i < len(langs); i++ {
		if langs[i-1].Code >= langs[i].Code {
			t.Fatalf("languages not sorted at %d: %s >= %s", i, langs[i-1].Code, langs[i].Code)
		}
	}
}

func TestAliases_Copy(t *testing.T) {
	table := Default()
	aliases := table.Aliases()
	aliases["kr"] = "ja"
	if table.Normalize("kr") != "ko" {
		t.Error("table modified through Aliases() copy")
	}
}
