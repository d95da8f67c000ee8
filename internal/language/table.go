package language

import (
	"fmt"
	"sort"
	"strings"

	"codeberg.org/snonux/polyglot/internal/translation"
)

// Language is a supported target language
type Language struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// supported maps canonical codes to English names. The names are used in
// provider prompts.
var supported = map[string]string{
	"af":    "Afrikaans",
	"ar":    "Arabic",
	"bg":    "Bulgarian",
	"bn":    "Bengali",
	"ca":    "Catalan",
	"cs":    "Czech",
	"da":    "Danish",
	"de":    "German",
	"el":    "Greek",
	"en":    "English",
	"en-GB": "English (UK)",
	"en-US": "English (US)",
	"es":    "Spanish",
	"es-MX": "Spanish (Mexico)",
	"et":    "Estonian",
	"fa":    "Persian",
	"fi":    "Finnish",
	"fr":    "French",
	"fr-CA": "French (Canada)",
	"he":    "Hebrew",
	"hi":    "Hindi",
	"hr":    "Croatian",
	"hu":    "Hungarian",
	"id":    "Indonesian",
	"it":    "Italian",
	"ja":    "Japanese",
	"ko":    "Korean",
	"lt":    "Lithuanian",
	"lv":    "Latvian",
	"ms":    "Malay",
	"nb":    "Norwegian Bokmål",
	"nl":    "Dutch",
	"no":    "Norwegian",
	"pl":    "Polish",
	"pt":    "Portuguese",
	"pt-BR": "Portuguese (Brazil)",
	"pt-PT": "Portuguese (Portugal)",
	"ro":    "Romanian",
	"ru":    "Russian",
	"sk":    "Slovak",
	"sl":    "Slovenian",
	"sr":    "Serbian",
	"sv":    "Swedish",
	"sw":    "Swahili",
	"ta":    "Tamil",
	"th":    "Thai",
	"tl":    "Filipino",
	"tr":    "Turkish",
	"uk":    "Ukrainian",
	"ur":    "Urdu",
	"vi":    "Vietnamese",
	"zh-CN": "Chinese (Simplified)",
	"zh-TW": "Chinese (Traditional)",
}

// defaultAliases are keyed by lower-case alias
var defaultAliases = map[string]string{
	"kr": "ko",
	"jp": "ja",
	"cn": "zh-CN",
	"zh": "zh-CN",
	"tw": "zh-TW",
	"ua": "uk",
	"br": "pt-BR",
	"gr": "el",
	"se": "sv",
	"dk": "da",
	"cz": "cs",
	"vn": "vi",
	"in": "id",
}

// Table resolves requested codes to canonical supported languages. A Table
// is immutable after construction and safe for concurrent use.
type Table struct {
	aliases   map[string]string
	supported map[string]string
}

// NewTable returns the default table extended with extra aliases. Extra
// aliases override defaults; their targets must be supported codes.
func NewTable(extra map[string]string) (*Table, error) {
	t := &Table{
		aliases:   make(map[string]string, len(defaultAliases)+len(extra)),
		supported: supported,
	}
	for alias, code := range defaultAliases {
		t.aliases[alias] = code
	}
	for alias, code := range extra {
		key := aliasKey(alias)
		if key == "" {
			return nil, fmt.Errorf("empty alias for %q", code)
		}
		canonical := canonicalize(code)
		if _, ok := t.supported[canonical]; !ok {
			return nil, fmt.Errorf("alias %q points to unsupported language %q", alias, code)
		}
		t.aliases[key] = canonical
	}
	return t, nil
}

// Default returns the table without extra aliases
func Default() *Table {
	t, _ := NewTable(nil)
	return t
}

// Normalize maps code to its canonical form without checking support:
// "KR" -> "ko", "pt_br" -> "pt-BR", "zh" -> "zh-CN".
func (t *Table) Normalize(code string) string {
	if canonical, ok := t.aliases[aliasKey(code)]; ok {
		return canonical
	}
	return canonicalize(code)
}

// Resolve normalizes code and checks that the result is supported
func (t *Table) Resolve(code string) (Language, error) {
	canonical := t.Normalize(code)
	name, ok := t.supported[canonical]
	if !ok {
		return Language{}, &translation.UnsupportedLanguageError{Requested: code, Canonical: canonical}
	}
	return Language{Code: canonical, Name: name}, nil
}

// Languages returns all supported languages sorted by code
func (t *Table) Languages() []Language {
	langs := make([]Language, 0, len(t.supported))
	for code, name := range t.supported {
		langs = append(langs, Language{Code: code, Name: name})
	}
	sort.Slice(langs, func(i, j int) bool { return langs[i].Code < langs[j].Code })
	return langs
}

// Aliases returns a copy of the alias table
func (t *Table) Aliases() map[string]string {
	out := make(map[string]string, len(t.aliases))
	for k, v := range t.aliases {
		out[k] = v
	}
	return out
}

func aliasKey(code string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(code), "_", "-"))
}

// canonicalize lower-cases the language part and upper-cases the region
func canonicalize(code string) string {
	normalized := strings.ReplaceAll(strings.TrimSpace(code), "_", "-")
	if normalized == "" {
		return ""
	}
	parts := strings.Split(normalized, "-")
	parts[0] = strings.ToLower(parts[0])
	if len(parts) >= 2 {
		parts[1] = strings.ToUpper(parts[1])
	}
	return strings.Join(parts, "-")
}
