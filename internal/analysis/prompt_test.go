package analysis

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildReportPrompt(t *testing.T) {
	answered := []Answered{
		{
			Question: Question{ID: 1, Text: "En çok üretilen 5 ürün nedir?"},
			Rows:     []map[string]any{{"urun_adi": "Domates", "toplam": 1200000.0}},
		},
		{
			Question: Question{ID: 2, Text: "Üretim trendi nasıl?"},
			Err:      errors.New("no such column"),
		},
	}

	prompt := BuildReportPrompt("il", "Mersin", 2024, answered)

	assert.Contains(t, prompt, "Mersin ili için 2024 yılı tarımsal analiz.")
	assert.Contains(t, prompt, "En çok üretilen 5 ürün nedir?")
	assert.Contains(t, prompt, `"Domates"`)
	assert.Contains(t, prompt, `"hata"`, "failed questions are reported to the model, not dropped")
	assert.Contains(t, prompt, "KARAR KARTI FORMATI:")
	assert.Contains(t, prompt, "2027 projeksiyonu", "scenario section projects three years ahead")
	assert.Contains(t, prompt, "2020-2024 yılları")
}

func TestBuildReportPromptProductContext(t *testing.T) {
	prompt := BuildReportPrompt("urun", "Domates", 2023, nil)

	assert.Contains(t, prompt, "Domates ürünü için 2023 yılı Türkiye geneli analiz.")
	assert.NotContains(t, prompt, "ili için")
}

func TestSafeJSONTruncates(t *testing.T) {
	rows := []map[string]any{{"v": strings.Repeat("x", maxDataLen)}}

	out := safeJSON(rows)
	assert.LessOrEqual(t, len(out), maxDataLen+len("...(kırpıldı)"))
	assert.True(t, strings.HasSuffix(out, "...(kırpıldı)"))
}
