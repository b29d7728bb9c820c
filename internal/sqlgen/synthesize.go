package sqlgen

import (
	"tarim-kds/internal/extract"
	"tarim-kds/internal/models"
	"tarim-kds/internal/schema"
	"tarim-kds/internal/turkish"
)

const defaultRankingLimit = 10

// Synthesize renders the statement for one intent over the resolved
// schema. Every value filter is a bind parameter; the only text that
// reaches the statement verbatim comes from the schema's column set.
// A missing year filter is filled in with defaultYear and the injection
// is flagged so callers can surface it in the answer.
func Synthesize(in models.QueryIntent, parsed models.ParsedQuery, sch *schema.Schema, defaultYear int) models.SynthesizedQuery {
	year := parsed.Year
	injected := false
	if year == 0 && defaultYear > 0 {
		year = defaultYear
		injected = true
	}

	b := NewBuilder(sch.Table)
	out := models.SynthesizedQuery{
		Path:         models.PathRules,
		Intent:       in,
		YearInjected: injected,
	}

	production := sch.Column(schema.RoleProduction)
	area := sch.Column(schema.RoleArea)

	switch in {
	case models.IntentTotal:
		b.Select("SUM(" + Quote(production) + ") AS toplam_uretim")
		out.Measures = []string{production}

	case models.IntentAreaOnly:
		b.Select("SUM(" + Quote(area) + ") AS toplam_alan")
		out.Measures = []string{area}

	case models.IntentRankingByProduct:
		col := sch.Column(schema.RoleProduct)
		b.Select(Quote(col))
		b.Select("SUM(" + Quote(production) + ") AS toplam_uretim")
		b.GroupBy(Quote(col))
		b.OrderBy("toplam_uretim DESC")
		b.Limit(rankingLimit(parsed.Question))
		out.Measures = []string{production}

	case models.IntentRankingByProvince:
		col := sch.Column(schema.RoleProvince)
		b.Select(Quote(col))
		b.Select("SUM(" + Quote(production) + ") AS toplam_uretim")
		b.GroupBy(Quote(col))
		b.OrderBy("toplam_uretim DESC")
		b.Limit(rankingLimit(parsed.Question))
		out.Measures = []string{production}

	case models.IntentRankingByDistrict:
		col := sch.Column(schema.RoleDistrict)
		b.Select(Quote(col))
		b.Select("SUM(" + Quote(production) + ") AS toplam_uretim")
		b.GroupBy(Quote(col))
		b.OrderBy("toplam_uretim DESC")
		b.Limit(rankingLimit(parsed.Question))
		out.Measures = []string{production}

	case models.IntentDistrictBreakdown:
		col := sch.Column(schema.RoleDistrict)
		b.Select(Quote(col))
		b.Select("SUM(" + Quote(area) + ") AS toplam_alan")
		b.Select("SUM(" + Quote(production) + ") AS toplam_uretim")
		b.GroupBy(Quote(col))
		b.OrderBy("toplam_uretim DESC")
		out.Measures = []string{area, production}
	}

	applyFilters(b, in, parsed, sch, year)

	out.SQL, out.Params = b.Build()
	return out
}

// Fallback builds the degraded-mode query: the top products of one
// province for the reference year. Used when neither the rule path nor
// the generative path produced a safe statement but a province is known.
func Fallback(province string, sch *schema.Schema, year int) models.SynthesizedQuery {
	product := sch.Column(schema.RoleProduct)
	production := sch.Column(schema.RoleProduction)

	b := NewBuilder(sch.Table)
	b.Select(Quote(product))
	b.Select("SUM(" + Quote(production) + ") AS toplam_uretim")
	b.Where(Quote(sch.Column(schema.RoleProvince))+" = ?", province)
	if year > 0 {
		b.Where(Quote(sch.Column(schema.RoleYear))+" = ?", year)
	}
	b.GroupBy(Quote(product))
	b.OrderBy("toplam_uretim DESC")
	b.Limit(defaultRankingLimit)

	sql, params := b.Build()
	return models.SynthesizedQuery{
		SQL:      sql,
		Params:   params,
		Path:     models.PathFallback,
		Intent:   models.IntentRankingByProduct,
		Measures: []string{production},
	}
}

// applyFilters adds the WHERE clauses shared by every intent. A filter
// on the dimension being ranked is skipped; grouping already spans it.
func applyFilters(b *Builder, in models.QueryIntent, parsed models.ParsedQuery, sch *schema.Schema, year int) {
	if parsed.Province != "" && in != models.IntentRankingByProvince {
		b.Where(Quote(sch.Column(schema.RoleProvince))+" = ?", parsed.Province)
	}
	if parsed.District != "" && in != models.IntentRankingByDistrict && in != models.IntentDistrictBreakdown {
		b.Where(Quote(sch.Column(schema.RoleDistrict))+" = ?", parsed.District)
	}
	if parsed.Product != "" && in != models.IntentRankingByProduct {
		cond, params := ProductCondition(sch.Column(schema.RoleProduct), parsed.Product)
		b.Where(cond, params...)
	}
	if parsed.Category != "" {
		b.Where(Quote(sch.Column(schema.RoleCategory))+" = ?", parsed.Category)
	}
	if year > 0 {
		b.Where(Quote(sch.Column(schema.RoleYear))+" = ?", year)
	}
}

// ProductCondition matches a canonical product against the free-text
// product column. Dataset rows name varieties like "Domates (Salçalık)"
// or "Sivri Biber", so an exact match alone misses most of them.
//
// Every product matches its exact name or a head word followed by a
// space ("Domates (Sofralık)"). Products on the multi-variety list also
// match as a later word with a leading space boundary ("Sivri Biber");
// the boundary keeps "Biber" from matching "Biberiye".
func ProductCondition(col, value string) (string, []any) {
	q := Quote(col)
	if extract.MultiVariety(value) {
		return "(" + q + " = ? OR " + q + " LIKE ? OR " + q + " LIKE ?)",
			[]any{value, value + " %", "% " + value + "%"}
	}
	return "(" + q + " = ? OR " + q + " LIKE ?)", []any{value, value + " %"}
}

// rankingLimit honors an explicit small number in the question ("ilk 5",
// "top 3") and otherwise defaults to ten. Four-digit tokens are years,
// never limits.
func rankingLimit(question string) int {
	for _, tok := range turkish.Tokens(question) {
		if len(tok) == 0 || len(tok) > 2 {
			continue
		}
		n := 0
		ok := true
		for _, r := range tok {
			if r < '0' || r > '9' {
				ok = false
				break
			}
			n = n*10 + int(r-'0')
		}
		if ok && n >= 1 && n <= 99 {
			return n
		}
	}
	return defaultRankingLimit
}
