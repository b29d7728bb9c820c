package gemini

import (
	"fmt"
	"strconv"
	"strings"

	"tarim-kds/internal/schema"
	"tarim-kds/internal/sqlgen"
)

// SystemInstruction pins the model to single-statement SQLite SELECTs
// over the statistics table. Groq and OpenRouter reuse it as their
// system message so every provider answers under the same contract.
const SystemInstruction = `Sen Türkiye tarım istatistikleri veritabanı için SQL üreten bir asistansın.
Görevin: kullanıcının Türkçe veya İngilizce sorusunu TEK bir SQLite SELECT sorgusuna çevirmek.

Kurallar:
- SADECE SQL döndür. Açıklama, yorum veya markdown ekleme.
- Yalnızca SELECT üretebilirsin. INSERT, UPDATE, DELETE, DROP, PRAGMA ve benzeri ifadeler yasaktır.
- Tek bir ifade üret; noktalı virgülle ifade zincirleme yasaktır.
- Yalnızca sana verilen tablo ve sütunları kullan.
- Metin karşılaştırmalarında ürün adları varyant içerir ("Domates (Salçalık)", "Sivri Biber"); eşleşme için LIKE kullan.
- Soru yıl belirtmiyorsa sana verilen referans yılını filtre olarak ekle.`

// BuildSQLPrompt renders the per-question prompt: the resolved table
// shape, the reference year and two worked examples showing the product
// LIKE pattern and the year default. Examples carry more weight than
// prose with the smaller models in the fallback chain.
func BuildSQLPrompt(question string, sch *schema.Schema, referenceYear int) string {
	table := sqlgen.Quote(sch.Table)
	il := sqlgen.Quote(sch.Column(schema.RoleProvince))
	urun := sqlgen.Quote(sch.Column(schema.RoleProduct))
	yil := sqlgen.Quote(sch.Column(schema.RoleYear))
	uretim := sqlgen.Quote(sch.Column(schema.RoleProduction))

	var sb strings.Builder

	sb.WriteString("Tablo: ")
	sb.WriteString(sch.Table)
	sb.WriteString("\nSütunlar: ")
	sb.WriteString(strings.Join(sch.Columns, ", "))
	sb.WriteString("\nReferans yılı: ")
	sb.WriteString(strconv.Itoa(referenceYear))

	sb.WriteString("\n\nÖrnekler:\nSoru: Antalya'da domates üretimi ne kadar?\nSQL: ")
	sb.WriteString(fmt.Sprintf(
		`SELECT SUM(%[1]s) AS toplam_uretim FROM %[2]s WHERE %[3]s = 'Antalya' AND (%[4]s = 'Domates' OR %[4]s LIKE 'Domates %%') AND %[5]s = %[6]d`,
		uretim, table, il, urun, yil, referenceYear))
	sb.WriteString("\nSoru: 2022'de en çok buğday üreten 5 il hangileri?\nSQL: ")
	sb.WriteString(fmt.Sprintf(
		`SELECT %[1]s, SUM(%[2]s) AS toplam_uretim FROM %[3]s WHERE (%[4]s = 'Buğday' OR %[4]s LIKE 'Buğday %%') AND %[5]s = 2022 GROUP BY %[1]s ORDER BY toplam_uretim DESC LIMIT 5`,
		il, uretim, table, urun, yil))

	sb.WriteString("\n\nSoru: ")
	sb.WriteString(question)
	sb.WriteString("\nSQL:")

	return sb.String()
}

// CleanSQL strips the markdown fences and surrounding noise models wrap
// around statements despite instructions, plus a trailing semicolon so
// the safety gate sees a single bare statement.
func CleanSQL(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "```sql")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "SQL:")
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, ";")
	return strings.TrimSpace(s)
}
