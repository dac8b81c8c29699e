package library

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stripAccents removes diacritics by canonical decomposition and dropping
// the combining marks.
var stripAccents = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

var turkishLower = cases.Lower(language.Turkish)

// TurkishLower lowercases with the Turkish dotted/dotless I convention
// (I→ı, İ→i) ahead of the general lowercase pass.
func TurkishLower(s string) string {
	return turkishLower.String(s)
}

// NormalizeKey builds the comparison key used everywhere a case- and
// accent-insensitive match is needed: duplicate detection, search haystacks,
// waitlist membership, borrower filters.
//
// Pipeline: trim → strip diacritics → Turkish lowercase.
func NormalizeKey(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	stripped, _, err := transform.String(stripAccents, s)
	if err != nil {
		// Transform failures are limited to malformed UTF-8; fold case anyway.
		stripped = s
	}
	return TurkishLower(stripped)
}

// TitleCase title-cases each whitespace-delimited word the Turkish way:
// a leading 'i' becomes 'İ' and a leading 'ı' becomes 'I', the rest of the
// word is Turkish-lowercased.
func TitleCase(s string) string {
	words := strings.Fields(s)
	out := make([]string, 0, len(words))
	for _, w := range words {
		r := []rune(w)
		var head string
		switch r[0] {
		case 'i':
			head = "İ"
		case 'ı':
			head = "I"
		default:
			head = string(unicode.ToUpper(r[0]))
		}
		out = append(out, head+TurkishLower(string(r[1:])))
	}
	return strings.Join(out, " ")
}
