// Package identity canonicalises the person names attached to enrolled fingerprints.
package identity

import (
	"errors"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// ErrEmptyName is returned when a name is blank after canonicalisation.
var ErrEmptyName = errors.New("name must not be empty")

// CanonicalName returns the stored form of a name: NFC, trimmed, with runs of
// whitespace collapsed to a single space. Case and diacritics are preserved.
func CanonicalName(name string) (string, error) {
	name = strings.Join(strings.Fields(norm.NFC.String(name)), " ")
	if name == "" {
		return "", ErrEmptyName
	}
	return name, nil
}

// RemoveDiacritics removes diacritical marks from a string (e.g., "Jiří" -> "Jiri").
func RemoveDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, _ := transform.String(t, s)
	return result
}

// NormalizeName folds a name for loose searching (lowercase, no diacritics, spaces for dashes).
func NormalizeName(name string) string {
	name = RemoveDiacritics(name)
	name = strings.ToLower(name)
	name = strings.ReplaceAll(name, "-", " ")
	return strings.Join(strings.Fields(name), " ")
}

// Matches reports whether query is a loose substring of name.
func Matches(name, query string) bool {
	return strings.Contains(NormalizeName(name), NormalizeName(query))
}
