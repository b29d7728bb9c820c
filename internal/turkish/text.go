// Package turkish holds the small amount of Turkish-specific text handling
// the rest of the service depends on: diacritic folding for matching and
// number formatting for answers.
//
// Folding is hand-rolled rather than built on a Unicode normalization
// library because Turkish casing is irregular: dotless ı and dotted İ do
// not round-trip through the standard lower/upper tables, so a generic
// strip-the-combining-marks pass gets "İl" vs "il" wrong.
package turkish

import (
	"strconv"
	"strings"
	"unicode"
)

var foldTable = map[rune]rune{
	'ç': 'c', 'Ç': 'c',
	'ğ': 'g', 'Ğ': 'g',
	'ı': 'i', 'I': 'i',
	'İ': 'i',
	'ö': 'o', 'Ö': 'o',
	'ş': 's', 'Ş': 's',
	'ü': 'u', 'Ü': 'u',
	'â': 'a', 'Â': 'a',
	'î': 'i', 'Î': 'i',
	'û': 'u', 'Û': 'u',
}

// Fold lowercases s and replaces Turkish diacritics with their ASCII
// counterparts. Matching throughout the extractor and schema resolver is
// done on folded text so "Şanlıurfa", "sanliurfa" and "SANLIURFA" all
// compare equal.
func Fold(s string) string {
	return strings.Map(func(r rune) rune {
		if f, ok := foldTable[r]; ok {
			return f
		}
		return unicode.ToLower(r)
	}, s)
}

// Tokens splits s into folded word tokens. Anything that is not a letter
// or digit is a separator, so punctuation around words ("Antalya'da,")
// never leaks into a token.
func Tokens(s string) []string {
	return strings.FieldsFunc(Fold(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// FormatNumber renders n with Turkish thousands grouping: 1234567 → "1.234.567".
func FormatNumber(n int64) string {
	neg := n < 0
	if neg {
		n = -n
	}
	s := formatGroups(n)
	if neg {
		return "-" + s
	}
	return s
}

func formatGroups(n int64) string {
	s := strconv.FormatInt(n, 10)
	if len(s) <= 3 {
		return s
	}
	head := len(s) % 3
	if head == 0 {
		head = 3
	}
	var sb strings.Builder
	sb.WriteString(s[:head])
	for i := head; i < len(s); i += 3 {
		sb.WriteByte('.')
		sb.WriteString(s[i : i+3])
	}
	return sb.String()
}

// FormatQuantity renders a measure value in tons, collapsing large values
// to "milyon ton" / "bin ton" the way the reporting layer phrases them.
func FormatQuantity(v float64) string {
	switch {
	case v >= 1_000_000:
		return FormatNumber(int64(v/1_000_000)) + " milyon ton"
	case v >= 10_000:
		return FormatNumber(int64(v/1000)) + " bin ton"
	default:
		return FormatNumber(int64(v)) + " ton"
	}
}
