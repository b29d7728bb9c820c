// Package intent classifies a parsed question into one of the closed set
// of query shapes. The whole selection is one decision table over which
// dimensions are filtered plus a handful of keyword groups scanned from
// the original sentence; the table's priority order is the contract.
package intent

import (
	"strings"

	"tarim-kds/internal/models"
	"tarim-kds/internal/turkish"
)

// Keyword groups, matched on folded question text. Multi-word entries are
// substring-matched; single words must match a whole token, so "alan"
// never fires inside "Alanya".
var (
	districtBreakdownKeywords = []string{
		"ilce bazinda", "ilcelere gore", "ilce ilce", "ilce bazli",
		"by district", "per district", "by region",
	}
	rankingKeywords = []string{
		"en cok", "en fazla", "hangi", "hangisi", "ilk", "top",
		"most", "which", "siralama", "sirala",
	}
	areaKeywords = []string{
		"alan", "alani", "alanlar", "ekim", "ekilen", "dekar", "hektar",
		"area", "cultivated", "acreage",
	}
	productionKeywords = []string{
		"uretim", "uretimi", "uretilen", "uretiliyor", "rekolte",
		"production", "produced", "harvest",
	}
	districtWords = []string{"ilce", "ilcede", "ilceler", "district", "districts"}
)

// Select maps a ParsedQuery to exactly one QueryIntent. Total over all
// inputs: every reachable combination of filters and keywords lands on a
// branch, with IntentTotal as the universal default.
//
// Priority order:
//  1. explicit "by district" phrasing wins regardless of other filters
//  2. ranking keywords rank whichever dimension is not already filtered
//  3. an area keyword without a production keyword narrows to area-only
//  4. otherwise total
func Select(parsed models.ParsedQuery) models.QueryIntent {
	q := newScanner(parsed.Question)

	if q.hasAny(districtBreakdownKeywords) {
		return models.IntentDistrictBreakdown
	}

	if q.hasAny(rankingKeywords) {
		return rankingIntent(parsed, q)
	}

	if q.hasAny(areaKeywords) && !q.hasAny(productionKeywords) {
		return models.IntentAreaOnly
	}

	return models.IntentTotal
}

// rankingIntent ranks the dimension the question did not already pin
// down. A mentioned district word steers toward district ranking; a
// filtered product with no province means "which provinces grow it"; a
// filtered province (or district) means "which products does it grow".
// With nothing filtered the least surprising ranking is across provinces.
func rankingIntent(parsed models.ParsedQuery, q *scanner) models.QueryIntent {
	if q.hasAny(districtWords) {
		return models.IntentRankingByDistrict
	}
	if parsed.Product != "" && parsed.Province == "" && parsed.District == "" {
		return models.IntentRankingByProvince
	}
	if parsed.Province != "" || parsed.District != "" {
		return models.IntentRankingByProduct
	}
	return models.IntentRankingByProvince
}

type scanner struct {
	folded string
	tokens map[string]bool
}

func newScanner(question string) *scanner {
	tokens := make(map[string]bool)
	for _, t := range turkish.Tokens(question) {
		tokens[t] = true
	}
	return &scanner{folded: turkish.Fold(question), tokens: tokens}
}

func (s *scanner) hasAny(keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(kw, " ") {
			if strings.Contains(s.folded, kw) {
				return true
			}
			continue
		}
		if s.tokens[kw] {
			return true
		}
	}
	return false
}
