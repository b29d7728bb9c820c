// Package analysis holds the decision-card machinery: the fixed
// question packs run for a province or product, and the report prompt
// their results are rendered into.
package analysis

import (
	"fmt"

	"tarim-kds/internal/schema"
	"tarim-kds/internal/sqlgen"
)

// Question is one member of a pack: display text plus the statement
// answering it. Text is shown to the report model alongside the rows.
type Question struct {
	ID     int
	Text   string
	SQL    string
	Params []any
}

// ProvincePack builds the ten questions asked about one province for
// the reference year. Trend questions reach back two or four years.
func ProvincePack(sch *schema.Schema, province string, year int) []Question {
	t := sqlgen.Quote(sch.Table)
	il := sqlgen.Quote(sch.Column(schema.RoleProvince))
	urun := sqlgen.Quote(sch.Column(schema.RoleProduct))
	yil := sqlgen.Quote(sch.Column(schema.RoleYear))
	grup := sqlgen.Quote(sch.Column(schema.RoleCategory))
	uretim := sqlgen.Quote(sch.Column(schema.RoleProduction))
	alan := sqlgen.Quote(sch.Column(schema.RoleArea))
	y4 := year - 4

	return []Question{
		{
			ID:   1,
			Text: fmt.Sprintf("Bu ilde %d yılında en çok üretilen 5 ürün nedir?", year),
			SQL: fmt.Sprintf(`SELECT %s, SUM(%s) as toplam FROM %s WHERE %s = ? AND %s = ? GROUP BY %s ORDER BY toplam DESC LIMIT 5`,
				urun, uretim, t, il, yil, urun),
			Params: []any{province, year},
		},
		{
			ID:   2,
			Text: "Son 3 yılda üretim trendi nasıl?",
			SQL: fmt.Sprintf(`SELECT %s, SUM(%s) as toplam FROM %s WHERE %s = ? AND %s >= ? GROUP BY %s ORDER BY %s`,
				yil, uretim, t, il, yil, yil, yil),
			Params: []any{province, year - 2},
		},
		{
			ID:   3,
			Text: fmt.Sprintf("%d yılında ürün grubu bazlı üretim, Türkiye toplamı, pay ve Türkiye sıralaması", year),
			SQL: fmt.Sprintf(`SELECT g.grup, g.il_uretim, g.tr_uretim, g.turkiye_payi, g.sira FROM (
SELECT sub.grup, sub.il_uretim, sub.tr_uretim, sub.turkiye_payi,
  (SELECT COUNT(*) + 1 FROM (
    SELECT %[2]s, SUM(%[6]s) as tt FROM %[1]s
    WHERE %[5]s = sub.grup AND %[4]s = ?
    GROUP BY %[2]s HAVING tt > sub.il_uretim
  )) as sira
FROM (
  SELECT k.%[5]s as grup,
    SUM(k.%[6]s) as il_uretim,
    (SELECT SUM(%[6]s) FROM %[1]s WHERE %[5]s = k.%[5]s AND %[4]s = ?) as tr_uretim,
    ROUND(SUM(k.%[6]s) * 100.0 / (SELECT SUM(%[6]s) FROM %[1]s WHERE %[5]s = k.%[5]s AND %[4]s = ?), 1) as turkiye_payi
  FROM %[1]s k WHERE k.%[2]s = ? AND k.%[4]s = ?
  GROUP BY k.%[5]s
) sub
) g ORDER BY g.il_uretim DESC`,
				t, il, urun, yil, grup, uretim),
			Params: []any{year, year, year, province, year},
		},
		{
			ID:   4,
			Text: fmt.Sprintf("%d yılında hangi ürün grubunda en güçlü?", year),
			SQL: fmt.Sprintf(`SELECT %s, SUM(%s) as toplam, SUM(%s) as alan FROM %s WHERE %s = ? AND %s = ? GROUP BY %s ORDER BY toplam DESC LIMIT 1`,
				grup, uretim, alan, t, il, yil, grup),
			Params: []any{province, year},
		},
		{
			ID:   5,
			Text: fmt.Sprintf("%d-%d arası üretimi en çok artan 3 ürün hangisi?", y4, year),
			SQL: fmt.Sprintf(`SELECT a.%[3]s, (a.toplam - b.toplam) as fark, a.toplam as son_yil, b.toplam as ilk_yil
FROM (SELECT %[3]s, SUM(%[6]s) as toplam FROM %[1]s WHERE %[2]s = ? AND %[4]s = ? GROUP BY %[3]s) a
INNER JOIN (SELECT %[3]s, SUM(%[6]s) as toplam FROM %[1]s WHERE %[2]s = ? AND %[4]s = ? GROUP BY %[3]s) b
ON a.%[3]s = b.%[3]s
ORDER BY fark DESC LIMIT 3`,
				t, il, urun, yil, grup, uretim),
			Params: []any{province, year, province, y4},
		},
		{
			ID:   6,
			Text: fmt.Sprintf("%d-%d arası üretimi en çok azalan 3 ürün hangisi?", y4, year),
			SQL: fmt.Sprintf(`SELECT a.%[3]s, (a.toplam - b.toplam) as fark, a.toplam as son_yil, b.toplam as ilk_yil
FROM (SELECT %[3]s, SUM(%[6]s) as toplam FROM %[1]s WHERE %[2]s = ? AND %[4]s = ? GROUP BY %[3]s) a
INNER JOIN (SELECT %[3]s, SUM(%[6]s) as toplam FROM %[1]s WHERE %[2]s = ? AND %[4]s = ? GROUP BY %[3]s) b
ON a.%[3]s = b.%[3]s
ORDER BY fark ASC LIMIT 3`,
				t, il, urun, yil, grup, uretim),
			Params: []any{province, year, province, y4},
		},
		{
			ID:   7,
			Text: "Son 5 yılda toplam ekim alanı trendi",
			SQL: fmt.Sprintf(`SELECT %s, SUM(%s) as toplam_alan FROM %s WHERE %s = ? AND %s >= ? GROUP BY %s ORDER BY %s`,
				yil, alan, t, il, yil, yil, yil),
			Params: []any{province, y4},
		},
		{
			ID:   8,
			Text: fmt.Sprintf("%d yılında ürün çeşitliliği ne durumda?", year),
			SQL: fmt.Sprintf(`SELECT COUNT(DISTINCT %s) as urun_sayisi, COUNT(DISTINCT %s) as grup_sayisi FROM %s WHERE %s = ? AND %s = ?`,
				urun, grup, t, il, yil),
			Params: []any{province, year},
		},
		{
			ID:   9,
			Text: fmt.Sprintf("%d yılında bu il toplam üretimde Türkiye'de kaçıncı sırada?", year),
			SQL: fmt.Sprintf(`SELECT sira, iladi, toplam FROM (
SELECT %[2]s as iladi, SUM(%[3]s) as toplam, ROW_NUMBER() OVER (ORDER BY SUM(%[3]s) DESC) as sira
FROM %[1]s WHERE %[4]s = ? GROUP BY %[2]s) ranked
WHERE iladi = ? OR sira <= 5 ORDER BY sira`,
				t, il, uretim, yil),
			Params: []any{year, province},
		},
		{
			ID:   10,
			Text: "Son 5 yılda yıllık üretim değişim oranı nedir?",
			SQL: fmt.Sprintf(`SELECT %s, SUM(%s) as uretim FROM %s WHERE %s = ? AND %s >= ? GROUP BY %s ORDER BY %s`,
				yil, uretim, t, il, yil, yil, yil),
			Params: []any{province, y4},
		},
	}
}

// ProductPack builds the ten questions asked about one product across
// Turkey for the reference year.
func ProductPack(sch *schema.Schema, product string, year int) []Question {
	t := sqlgen.Quote(sch.Table)
	il := sqlgen.Quote(sch.Column(schema.RoleProvince))
	urun := sqlgen.Quote(sch.Column(schema.RoleProduct))
	yil := sqlgen.Quote(sch.Column(schema.RoleYear))
	uretim := sqlgen.Quote(sch.Column(schema.RoleProduction))
	alan := sqlgen.Quote(sch.Column(schema.RoleArea))
	y4 := year - 4

	return []Question{
		{
			ID:   1,
			Text: fmt.Sprintf("%d yılında bu ürünü en çok üreten 5 il hangisi?", year),
			SQL: fmt.Sprintf(`SELECT %s, SUM(%s) as toplam FROM %s WHERE %s = ? AND %s = ? GROUP BY %s ORDER BY toplam DESC LIMIT 5`,
				il, uretim, t, urun, yil, il),
			Params: []any{product, year},
		},
		{
			ID:   2,
			Text: "Son 5 yılda Türkiye geneli üretim trendi nasıl?",
			SQL: fmt.Sprintf(`SELECT %s, SUM(%s) as toplam FROM %s WHERE %s = ? AND %s >= ? GROUP BY %s ORDER BY %s`,
				yil, uretim, t, urun, yil, yil, yil),
			Params: []any{product, y4},
		},
		{
			ID:   3,
			Text: fmt.Sprintf("%d yılında bu ürünün üretim yoğunlaşması nasıl? (ilk 5 ilin toplam payı)", year),
			SQL: fmt.Sprintf(`SELECT ROUND(SUM(toplam) * 100.0 / (SELECT SUM(%[4]s) FROM %[1]s WHERE %[2]s = ? AND %[3]s = ?), 1) as ilk5_pay
FROM (SELECT SUM(%[4]s) as toplam FROM %[1]s WHERE %[2]s = ? AND %[3]s = ? GROUP BY %[5]s ORDER BY toplam DESC LIMIT 5)`,
				t, urun, yil, uretim, il),
			Params: []any{product, year, product, year},
		},
		{
			ID:   4,
			Text: "Son 5 yılda toplam ekim alanı ne kadar?",
			SQL: fmt.Sprintf(`SELECT %s, SUM(%s) as toplam_alan FROM %s WHERE %s = ? AND %s >= ? GROUP BY %s ORDER BY %s`,
				yil, alan, t, urun, yil, yil, yil),
			Params: []any{product, y4},
		},
		{
			ID:   5,
			Text: fmt.Sprintf("%d-%d arası üretimi en çok artan 5 il hangileri?", y4, year),
			SQL: fmt.Sprintf(`SELECT a.%[2]s, (a.toplam - b.toplam) as fark, a.toplam as son_yil, b.toplam as ilk_yil
FROM (SELECT %[2]s, SUM(%[5]s) as toplam FROM %[1]s WHERE %[3]s = ? AND %[4]s = ? GROUP BY %[2]s) a
INNER JOIN (SELECT %[2]s, SUM(%[5]s) as toplam FROM %[1]s WHERE %[3]s = ? AND %[4]s = ? GROUP BY %[2]s) b
ON a.%[2]s = b.%[2]s
ORDER BY fark DESC LIMIT 5`,
				t, il, urun, yil, uretim),
			Params: []any{product, year, product, y4},
		},
		{
			ID:   6,
			Text: fmt.Sprintf("%d-%d arası üretimi en çok azalan 5 il hangileri?", y4, year),
			SQL: fmt.Sprintf(`SELECT a.%[2]s, (a.toplam - b.toplam) as fark, a.toplam as son_yil, b.toplam as ilk_yil
FROM (SELECT %[2]s, SUM(%[5]s) as toplam FROM %[1]s WHERE %[3]s = ? AND %[4]s = ? GROUP BY %[2]s) a
INNER JOIN (SELECT %[2]s, SUM(%[5]s) as toplam FROM %[1]s WHERE %[3]s = ? AND %[4]s = ? GROUP BY %[2]s) b
ON a.%[2]s = b.%[2]s
ORDER BY fark ASC LIMIT 5`,
				t, il, urun, yil, uretim),
			Params: []any{product, year, product, y4},
		},
		{
			ID:   7,
			Text: fmt.Sprintf("%d yılında kaç ilde üretiliyor?", year),
			SQL: fmt.Sprintf(`SELECT COUNT(DISTINCT %s) as il_sayisi FROM %s WHERE %s = ? AND %s = ?`,
				il, t, urun, yil),
			Params: []any{product, year},
		},
		{
			ID:   8,
			Text: fmt.Sprintf("%d yılında en çok üreten 5 ilin Türkiye üretimindeki payı", year),
			SQL: fmt.Sprintf(`SELECT %[2]s, SUM(%[5]s) as uretim,
ROUND(SUM(%[5]s) * 100.0 / (SELECT SUM(%[5]s) FROM %[1]s WHERE %[3]s = ? AND %[4]s = ?), 1) as pay_yuzde
FROM %[1]s WHERE %[3]s = ? AND %[4]s = ? GROUP BY %[2]s ORDER BY uretim DESC LIMIT 5`,
				t, il, urun, yil, uretim),
			Params: []any{product, year, product, year},
		},
		{
			ID:   9,
			Text: fmt.Sprintf("%d yılında Türkiye toplam üretimi ne kadar?", year),
			SQL: fmt.Sprintf(`SELECT SUM(%s) as toplam FROM %s WHERE %s = ? AND %s = ?`,
				uretim, t, urun, yil),
			Params: []any{product, year},
		},
		{
			ID:   10,
			Text: "Yıllık büyüme oranı nedir?",
			SQL: fmt.Sprintf(`SELECT %s, SUM(%s) as uretim FROM %s WHERE %s = ? AND %s >= ? GROUP BY %s ORDER BY %s`,
				yil, uretim, t, urun, yil, yil, yil),
			Params: []any{product, y4},
		},
	}
}
