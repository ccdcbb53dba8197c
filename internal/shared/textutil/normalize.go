// Package textutil normalizes user supplied search terms so lookups are
// accent and case insensitive ("orcamento" matches "Orçamento").
package textutil

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var stripAccents = transform.Chain(
	norm.NFD,
	runes.Remove(runes.In(unicode.Mn)),
	norm.NFC,
)

// Fold lowercases s and removes combining marks. Transform failures fall
// back to plain lowercasing so search never errors out.
func Fold(s string) string {
	folded, _, err := transform.String(stripAccents, s)
	if err != nil {
		return strings.ToLower(s)
	}
	return strings.ToLower(folded)
}

// Contains reports whether haystack contains needle after folding both.
func Contains(haystack, needle string) bool {
	if needle == "" {
		return true
	}
	return strings.Contains(Fold(haystack), Fold(needle))
}
