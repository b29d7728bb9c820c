// Package extract scans a free-form question for the five recognized
// dimensions: province, district, product, year and category. It is a pure
// lexical pass over closed vocabularies: no I/O, no errors, total over
// any input string.
package extract

import (
	"regexp"
	"strconv"
	"strings"

	"tarim-kds/internal/models"
	"tarim-kds/internal/turkish"
)

// Extractor turns questions into ParsedQuery values. ReferenceYear anchors
// relative-time phrases ("geçen yıl", "2 yıl önce"); it is typically the
// latest reporting year in the data.
type Extractor struct {
	ReferenceYear int
}

// New creates an extractor anchored at referenceYear.
func New(referenceYear int) *Extractor {
	return &Extractor{ReferenceYear: referenceYear}
}

var yearPattern = regexp.MustCompile(`^(19|20)\d{2}$`)

// Relative-time phrases, matched on folded text. "N yıl önce" is handled
// separately because of the numeric capture.
var relativeYears = []struct {
	phrase string
	offset int
}{
	{"gecen yil", -1},
	{"gecen sene", -1},
	{"bu yil", 0},
	{"bu sene", 0},
	{"last year", -1},
	{"this year", 0},
}

var yearsAgoPattern = regexp.MustCompile(`(\d+) (?:yil once|sene once|years? ago)`)

// Extract never fails: unmatched dimensions are simply left zero. The
// original sentence is carried along for intent keyword lookups.
func (e *Extractor) Extract(question string) models.ParsedQuery {
	folded := turkish.Fold(question)
	tokens := turkish.Tokens(question)

	parsed := models.ParsedQuery{Question: question}
	parsed.Province = matchWholeWord(tokens, provinces)
	parsed.District = matchWholeWord(tokens, districts)
	parsed.Product = e.matchProduct(tokens)
	parsed.Year = e.matchYear(tokens, folded)
	parsed.Category = matchCategory(tokens)
	return parsed
}

// LookupProvince reports whether raw, taken as a whole, names a province.
// The fallback path uses it to treat a bare input string as a province.
func LookupProvince(raw string) (string, bool) {
	folded := turkish.Fold(strings.TrimSpace(raw))
	for _, p := range provinces {
		if turkish.Fold(p) == folded {
			return p, true
		}
	}
	return "", false
}

// matchWholeWord returns the first vocabulary entry, in list order, whose
// folded form equals one of the question's tokens. List order is the
// tie-break contract: names that prefix each other resolve the same way
// on every run.
func matchWholeWord(tokens []string, vocab []string) string {
	set := make(map[string]bool, len(tokens))
	for _, t := range tokens {
		set[t] = true
	}
	for _, v := range vocab {
		if set[turkish.Fold(v)] {
			return v
		}
	}
	return ""
}

// matchProduct finds the first product whose root is a prefix of some
// token. The bounded suffix tolerates Turkish case endings ("domatesi",
// "biberde") without letting a short root swallow an unrelated long word.
func (e *Extractor) matchProduct(tokens []string) string {
	for _, p := range products {
		for _, root := range p.Roots {
			folded := turkish.Fold(root)
			// Multi-word roots ("seker pancari") match per first word of
			// the root against consecutive tokens.
			if strings.Contains(folded, " ") {
				if containsPhrase(tokens, strings.Fields(folded)) {
					return p.Value
				}
				continue
			}
			for _, t := range tokens {
				if tokenMatchesRoot(t, folded) {
					return p.Value
				}
			}
		}
	}
	return ""
}

func tokenMatchesRoot(token, root string) bool {
	if !strings.HasPrefix(token, root) {
		return false
	}
	// Up to four trailing runes of suffix.
	return len([]rune(token))-len([]rune(root)) <= 4
}

func containsPhrase(tokens, phrase []string) bool {
	if len(phrase) == 0 {
		return false
	}
	for i := 0; i+len(phrase) <= len(tokens); i++ {
		ok := true
		for j, w := range phrase {
			if j == len(phrase)-1 {
				if !tokenMatchesRoot(tokens[i+j], w) {
					ok = false
				}
			} else if tokens[i+j] != w {
				ok = false
			}
			if !ok {
				break
			}
		}
		if ok {
			return true
		}
	}
	return false
}

// matchYear takes the first 19xx/20xx token; failing that, a relative-time
// phrase offset from the reference year.
func (e *Extractor) matchYear(tokens []string, folded string) int {
	for _, t := range tokens {
		if yearPattern.MatchString(t) {
			y, _ := strconv.Atoi(t)
			return y
		}
	}
	for _, rel := range relativeYears {
		if strings.Contains(folded, rel.phrase) {
			return e.ReferenceYear + rel.offset
		}
	}
	if m := yearsAgoPattern.FindStringSubmatch(folded); m != nil {
		n, err := strconv.Atoi(m[1])
		if err == nil && n > 0 && n < 100 {
			return e.ReferenceYear - n
		}
	}
	return 0
}

// matchCategory uses the same suffix-tolerant prefix matching as products
// so "meyveler", "sebzelerin" still hit their keyword.
func matchCategory(tokens []string) string {
	for _, c := range categories {
		for _, kw := range c.Keywords {
			folded := turkish.Fold(kw)
			for _, t := range tokens {
				if tokenMatchesRoot(t, folded) {
					return c.Value
				}
			}
		}
	}
	return ""
}
