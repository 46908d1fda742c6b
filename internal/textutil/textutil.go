// Package textutil provides small text helpers shared across components.
package textutil

import (
	"path/filepath"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var titleCaser = cases.Title(language.Und, cases.NoLower)

// DisplayName derives a human-readable plugin name from a bundle path:
// the bundle suffix is dropped, separators become spaces, and lowercase
// words are title-cased while existing capitalization is preserved
// ("TAL-Reverb-4.vst3" becomes "TAL Reverb 4").
func DisplayName(bundlePath string) string {
	base := filepath.Base(strings.TrimRight(bundlePath, "/\\"))
	base = strings.TrimSuffix(base, filepath.Ext(base))

	cleaned := strings.Builder{}
	prevSpace := false
	for _, r := range base {
		switch {
		case unicode.IsLetter(r) || unicode.IsNumber(r):
			cleaned.WriteRune(r)
			prevSpace = false
		case unicode.IsSpace(r) || r == '-' || r == '_' || r == '.':
			if !prevSpace {
				cleaned.WriteRune(' ')
				prevSpace = true
			}
		}
	}
	name := strings.TrimSpace(cleaned.String())
	if name == "" {
		return base
	}
	return titleCaser.String(name)
}

// SanitizeToken converts a string to a lowercase filesystem-safe token.
// Letters are lowercased, digits, dots, hyphens, and underscores are kept,
// everything else becomes an underscore. Returns "unknown" for empty input.
func SanitizeToken(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return "unknown"
	}
	var b strings.Builder
	for _, r := range value {
		switch {
		case r >= 'a' && r <= 'z':
			b.WriteRune(r)
		case r >= 'A' && r <= 'Z':
			b.WriteRune(r + ('a' - 'A'))
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '-' || r == '_' || r == '.':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	out := strings.Trim(b.String(), "_-.")
	if out == "" {
		return "unknown"
	}
	return out
}
