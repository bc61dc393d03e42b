package normalizer

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Strips parenthetical suffixes like "Ana (2 pantallas)".
var parentheticalPattern = regexp.MustCompile(`\s*\(.*?\)`)

var diacriticStripper = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// NormalizeName canonicalizes a free-text client name: parenthetical
// suffixes removed, diacritics stripped, lowercased, trimmed. Never fails;
// a transform error degrades to lowercase/trim of the raw form.
func NormalizeName(raw string) string {
	if raw == "" {
		return ""
	}
	name := parentheticalPattern.ReplaceAllString(raw, "")
	stripped, _, err := transform.String(diacriticStripper, name)
	if err != nil {
		return strings.TrimSpace(strings.ToLower(name))
	}
	return strings.TrimSpace(strings.ToLower(stripped))
}
