package turkish

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFold(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain ascii", "ankara", "ankara"},
		{"uppercase ascii", "ANKARA", "ankara"},
		{"dotted capital I", "İstanbul", "istanbul"},
		{"dotless i", "Şanlıurfa", "sanliurfa"},
		{"capital dotless I", "IĞDIR", "igdir"},
		{"all diacritics", "çğıöşüÇĞÖŞÜ", "cgiosucgosu"},
		{"circumflex", "kâğıt", "kagit"},
		{"mixed sentence", "Antalya'da DOMATES üretimi", "antalya'da domates uretimi"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Fold(tt.in))
		})
	}
}

func TestTokens(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"punctuation stripped", "Antalya'da, domates!", []string{"antalya", "da", "domates"}},
		{"digits kept", "2023 yılında ilk 5", []string{"2023", "yilinda", "ilk", "5"}},
		{"empty", "", nil},
		{"only separators", " ,.!? ", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Tokens(tt.in)
			if tt.want == nil {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "0"},
		{7, "7"},
		{999, "999"},
		{1000, "1.000"},
		{1234567, "1.234.567"},
		{-45000, "-45.000"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatNumber(tt.in), "FormatNumber(%d)", tt.in)
	}
}

func TestFormatQuantity(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{512, "512 ton"},
		{9_999, "9.999 ton"},
		{45_000, "45 bin ton"},
		{2_500_000, "2 milyon ton"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatQuantity(tt.in), "FormatQuantity(%f)", tt.in)
	}
}
