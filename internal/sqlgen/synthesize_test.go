package sqlgen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tarim-kds/internal/models"
	"tarim-kds/internal/safety"
	"tarim-kds/internal/schema"
)

func TestSynthesize(t *testing.T) {
	sch := schema.Default()

	tests := []struct {
		name       string
		intent     models.QueryIntent
		parsed     models.ParsedQuery
		wantSQL    string
		wantParams []any
		wantYear   bool
	}{
		{
			name:   "total with province and product",
			intent: models.IntentTotal,
			parsed: models.ParsedQuery{
				Question: "Mersin tomato production",
				Province: "Mersin",
				Product:  "Domates",
			},
			wantSQL: `SELECT SUM("uretim_miktari") AS toplam_uretim FROM "urunler" ` +
				`WHERE "il" = ? AND ("urun_adi" = ? OR "urun_adi" LIKE ? OR "urun_adi" LIKE ?) AND "yil" = ?`,
			wantParams: []any{"Mersin", "Domates", "Domates %", "% Domates%", 2024},
			wantYear:   true,
		},
		{
			name:   "ranking by product honors explicit limit",
			intent: models.IntentRankingByProduct,
			parsed: models.ParsedQuery{
				Question: "which 5 products are produced most in Antalya",
				Province: "Antalya",
			},
			wantSQL: `SELECT "urun_adi", SUM("uretim_miktari") AS toplam_uretim FROM "urunler" ` +
				`WHERE "il" = ? AND "yil" = ? GROUP BY "urun_adi" ORDER BY toplam_uretim DESC LIMIT 5`,
			wantParams: []any{"Antalya", 2024},
			wantYear:   true,
		},
		{
			name:   "ranking by province skips province filter",
			intent: models.IntentRankingByProvince,
			parsed: models.ParsedQuery{
				Question: "en fazla buğday üreten iller",
				Product:  "Buğday",
				Year:     2022,
			},
			wantSQL: `SELECT "il", SUM("uretim_miktari") AS toplam_uretim FROM "urunler" ` +
				`WHERE ("urun_adi" = ? OR "urun_adi" LIKE ?) AND "yil" = ? GROUP BY "il" ORDER BY toplam_uretim DESC LIMIT 10`,
			wantParams: []any{"Buğday", "Buğday %", 2022},
		},
		{
			name:   "ranking by district keeps province filter",
			intent: models.IntentRankingByDistrict,
			parsed: models.ParsedQuery{
				Question: "Antalya'da en çok üretim yapan 3 ilçe",
				Province: "Antalya",
				District: "Manavgat",
			},
			wantSQL: `SELECT "ilce", SUM("uretim_miktari") AS toplam_uretim FROM "urunler" ` +
				`WHERE "il" = ? AND "yil" = ? GROUP BY "ilce" ORDER BY toplam_uretim DESC LIMIT 3`,
			wantParams: []any{"Antalya", 2024},
			wantYear:   true,
		},
		{
			name:   "area only",
			intent: models.IntentAreaOnly,
			parsed: models.ParsedQuery{
				Question: "Konya buğday ekim alanı",
				Province: "Konya",
				Product:  "Buğday",
			},
			wantSQL: `SELECT SUM("ekilen_alan") AS toplam_alan FROM "urunler" ` +
				`WHERE "il" = ? AND ("urun_adi" = ? OR "urun_adi" LIKE ?) AND "yil" = ?`,
			wantParams: []any{"Konya", "Buğday", "Buğday %", 2024},
			wantYear:   true,
		},
		{
			name:   "district breakdown has no limit and no district filter",
			intent: models.IntentDistrictBreakdown,
			parsed: models.ParsedQuery{
				Question: "Antalya'da ilçe bazında domates üretimi",
				Province: "Antalya",
				Product:  "Domates",
			},
			wantSQL: `SELECT "ilce", SUM("ekilen_alan") AS toplam_alan, SUM("uretim_miktari") AS toplam_uretim FROM "urunler" ` +
				`WHERE "il" = ? AND ("urun_adi" = ? OR "urun_adi" LIKE ? OR "urun_adi" LIKE ?) AND "yil" = ? ` +
				`GROUP BY "ilce" ORDER BY toplam_uretim DESC`,
			wantParams: []any{"Antalya", "Domates", "Domates %", "% Domates%", 2024},
			wantYear:   true,
		},
		{
			name:   "category filter",
			intent: models.IntentTotal,
			parsed: models.ParsedQuery{
				Question: "Antalya sebze üretimi 2023",
				Province: "Antalya",
				Category: "Sebze",
				Year:     2023,
			},
			wantSQL: `SELECT SUM("uretim_miktari") AS toplam_uretim FROM "urunler" ` +
				`WHERE "il" = ? AND "kategori" = ? AND "yil" = ?`,
			wantParams: []any{"Antalya", "Sebze", 2023},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Synthesize(tt.intent, tt.parsed, sch, 2024)
			assert.Equal(t, tt.wantSQL, got.SQL)
			assert.Equal(t, tt.wantParams, got.Params)
			assert.Equal(t, models.PathRules, got.Path)
			assert.Equal(t, tt.intent, got.Intent)
			assert.Equal(t, tt.wantYear, got.YearInjected)
		})
	}
}

func TestSynthesizeWithoutDefaultYear(t *testing.T) {
	sch := schema.Default()
	got := Synthesize(models.IntentTotal, models.ParsedQuery{Province: "Mersin"}, sch, 0)

	assert.False(t, got.YearInjected)
	assert.NotContains(t, got.SQL, `"yil"`)
	assert.Equal(t, []any{"Mersin"}, got.Params)
}

// Every intent over every filter combination must produce a statement the
// safety gate accepts against the same schema.
func TestSynthesizeAlwaysPassesSafetyGate(t *testing.T) {
	sch := schema.Default()

	parses := []models.ParsedQuery{
		{},
		{Province: "Mersin"},
		{District: "Manavgat"},
		{Product: "Domates"},
		{Product: "Buğday"},
		{Category: "Meyve"},
		{Year: 2022},
		{Province: "Antalya", Product: "Biber", Category: "Sebze", Year: 2021},
		{Province: "Konya", District: "Ereğli", Product: "Üzüm"},
		{Question: "ilk 7 ürün", Province: "Antalya"},
	}

	for _, in := range models.AllIntents {
		for _, parsed := range parses {
			got := Synthesize(in, parsed, sch, 2024)
			v := safety.Validate(got.SQL, sch)
			require.True(t, v.Safe, "intent %s, parsed %+v, sql %q, offending %q",
				in, parsed, got.SQL, v.Offending)
		}
	}
}

func TestFallback(t *testing.T) {
	sch := schema.Default()
	got := Fallback("Mersin", sch, 2024)

	assert.Equal(t, `SELECT "urun_adi", SUM("uretim_miktari") AS toplam_uretim FROM "urunler" `+
		`WHERE "il" = ? AND "yil" = ? GROUP BY "urun_adi" ORDER BY toplam_uretim DESC LIMIT 10`, got.SQL)
	assert.Equal(t, []any{"Mersin", 2024}, got.Params)
	assert.Equal(t, models.PathFallback, got.Path)
	assert.Equal(t, models.IntentRankingByProduct, got.Intent)

	v := safety.Validate(got.SQL, sch)
	assert.True(t, v.Safe, "offending %q", v.Offending)
}

func TestProductCondition(t *testing.T) {
	tests := []struct {
		name       string
		value      string
		wantCond   string
		wantParams []any
	}{
		{
			name:       "multi variety product",
			value:      "Biber",
			wantCond:   `("urun_adi" = ? OR "urun_adi" LIKE ? OR "urun_adi" LIKE ?)`,
			wantParams: []any{"Biber", "Biber %", "% Biber%"},
		},
		{
			name:       "head word only",
			value:      "Buğday",
			wantCond:   `("urun_adi" = ? OR "urun_adi" LIKE ?)`,
			wantParams: []any{"Buğday", "Buğday %"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cond, params := ProductCondition("urun_adi", tt.value)
			assert.Equal(t, tt.wantCond, cond)
			assert.Equal(t, tt.wantParams, params)
		})
	}
}

func TestRankingLimit(t *testing.T) {
	tests := []struct {
		question string
		want     int
	}{
		{"ilk 5 ürün", 5},
		{"top 3 provinces", 3},
		{"en çok üreten 15 il", 15},
		{"en çok üretilen ürünler", 10},
		{"2022 yılında en çok üretim", 10},
		{"", 10},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, rankingLimit(tt.question), "question %q", tt.question)
	}
}
