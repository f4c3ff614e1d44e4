// Package stringutil provides string normalization helpers for matching
// Vietnamese user input.
package stringutil

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

var dStroke = strings.NewReplacer("đ", "d", "Đ", "D")

// IsNumeric checks if a string contains only digits.
// Returns false for empty strings.
func IsNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// StripDiacritics removes Vietnamese tone and vowel marks, mapping đ to d.
// Case is preserved.
func StripDiacritics(s string) string {
	s = dStroke.Replace(s)
	if stripped, _, err := transform.String(stripMarks, s); err == nil {
		return stripped
	}
	return s
}

// Fold normalizes text for matching: diacritics removed, lowercased, and
// every run of characters other than letters, digits and '@' collapsed to
// a single space.
//
// Example:
//
//	Fold("Tôi muốn tải font NVN Parka!") returns "toi muon tai font nvn parka"
func Fold(s string) string {
	s = strings.ToLower(StripDiacritics(s))

	var b strings.Builder
	b.Grow(len(s))
	space := false
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '@' {
			if space && b.Len() > 0 {
				b.WriteByte(' ')
			}
			space = false
			b.WriteRune(r)
			continue
		}
		space = true
	}
	return b.String()
}

// After returns the trimmed text following the first occurrence of marker,
// or "" when marker is absent.
func After(text, marker string) string {
	_, rest, ok := strings.Cut(text, marker)
	if !ok {
		return ""
	}
	return strings.TrimSpace(rest)
}
