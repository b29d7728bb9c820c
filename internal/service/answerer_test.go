package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"tarim-kds/internal/models"
	"tarim-kds/internal/schema"
)

type fakeStore struct {
	queryRows []map[string]any
	queryErr  error
	queries   []string
	provinces []string
	products  []string
	listErr   error
}

func (f *fakeStore) Query(ctx context.Context, query string, params ...any) ([]map[string]any, error) {
	f.queries = append(f.queries, query)
	return f.queryRows, f.queryErr
}

func (f *fakeStore) Provinces(ctx context.Context, sch *schema.Schema) ([]string, error) {
	return f.provinces, f.listErr
}

func (f *fakeStore) Products(ctx context.Context, sch *schema.Schema) ([]string, error) {
	return f.products, f.listErr
}

func (f *fakeStore) Snapshot(ctx context.Context, sch *schema.Schema, limit int) ([]map[string]any, error) {
	return f.queryRows, f.queryErr
}

func (f *fakeStore) RowCount(ctx context.Context, sch *schema.Schema) (int64, error) {
	return int64(len(f.queryRows)), nil
}

func (f *fakeStore) Years(ctx context.Context, sch *schema.Schema) ([]int, error) {
	return []int{2020, 2024}, nil
}

type fakeResolver struct {
	query models.SynthesizedQuery
	err   error
}

func (f *fakeResolver) Resolve(ctx context.Context, question string) (models.SynthesizedQuery, error) {
	return f.query, f.err
}

type fakeLLM struct {
	report  string
	err     error
	prompts []string
}

func (f *fakeLLM) GenerateAnalysis(ctx context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	return f.report, f.err
}

func (f *fakeLLM) GetModelInfo() map[string]interface{} {
	return map[string]interface{}{"provider": "fake"}
}

func newAnswerer(t *testing.T, store *fakeStore, res *fakeResolver, llm LLMClient) *Answerer {
	t.Helper()
	schemas := schema.NewCache(nil, zaptest.NewLogger(t))
	return NewAnswerer(store, res, llm, schemas, 2024, time.Hour, zaptest.NewLogger(t))
}

func TestAskTotal(t *testing.T) {
	store := &fakeStore{queryRows: []map[string]any{{"toplam_uretim": float64(2150000)}}}
	res := &fakeResolver{query: models.SynthesizedQuery{
		SQL:          `SELECT SUM("uretim_miktari") AS toplam_uretim FROM "urunler"`,
		Path:         models.PathRules,
		Intent:       models.IntentTotal,
		YearInjected: true,
	}}
	a := newAnswerer(t, store, res, nil)

	resp, err := a.Ask(context.Background(), "Mersin domates üretimi")
	require.NoError(t, err)

	assert.Equal(t, "Toplam üretim: 2 milyon ton.", resp.Answer)
	assert.Equal(t, models.PathRules, resp.Path)
	assert.Equal(t, 2024, resp.Year)
	assert.Len(t, store.queries, 1)
}

func TestAskAreaOnly(t *testing.T) {
	store := &fakeStore{queryRows: []map[string]any{{"toplam_alan": float64(45000)}}}
	res := &fakeResolver{query: models.SynthesizedQuery{
		Path:   models.PathRules,
		Intent: models.IntentAreaOnly,
	}}
	a := newAnswerer(t, store, res, nil)

	resp, err := a.Ask(context.Background(), "Konya buğday ekim alanı")
	require.NoError(t, err)

	assert.Equal(t, "Toplam ekilen alan: 45.000 dekar.", resp.Answer)
	assert.Zero(t, resp.Year, "no injected year means no year in the response")
}

func TestAskRanking(t *testing.T) {
	store := &fakeStore{queryRows: []map[string]any{
		{"urun_adi": "Domates", "toplam_uretim": float64(1200000)},
		{"urun_adi": "Limon", "toplam_uretim": int64(350000)},
	}}
	res := &fakeResolver{query: models.SynthesizedQuery{
		Path:   models.PathRules,
		Intent: models.IntentRankingByProduct,
	}}
	a := newAnswerer(t, store, res, nil)

	resp, err := a.Ask(context.Background(), "Antalya'da en çok üretilen ürünler")
	require.NoError(t, err)

	assert.Equal(t, "Sıralama:\n1. Domates: 1 milyon ton\n2. Limon: 350 bin ton", resp.Answer)
}

func TestAskFallbackHeading(t *testing.T) {
	store := &fakeStore{queryRows: []map[string]any{
		{"urun_adi": "Elma", "toplam_uretim": float64(90000)},
	}}
	res := &fakeResolver{query: models.SynthesizedQuery{
		Path:   models.PathFallback,
		Intent: models.IntentRankingByProduct,
	}}
	a := newAnswerer(t, store, res, nil)

	resp, err := a.Ask(context.Background(), "Isparta")
	require.NoError(t, err)
	assert.Equal(t, "En çok üretilen ürünler:\n1. Elma: 90 bin ton", resp.Answer)
}

func TestAskNoRows(t *testing.T) {
	store := &fakeStore{}
	res := &fakeResolver{query: models.SynthesizedQuery{Path: models.PathRules, Intent: models.IntentTotal}}
	a := newAnswerer(t, store, res, nil)

	resp, err := a.Ask(context.Background(), "Mersin ananas üretimi")
	require.NoError(t, err)
	assert.Equal(t, "Bu soru için veri bulunamadı.", resp.Answer)
}

func TestAskGenerativeSingleValue(t *testing.T) {
	store := &fakeStore{queryRows: []map[string]any{{"ortalama": float64(42)}}}
	res := &fakeResolver{query: models.SynthesizedQuery{Path: models.PathGenerative}}
	a := newAnswerer(t, store, res, nil)

	resp, err := a.Ask(context.Background(), "ortalama verim nedir")
	require.NoError(t, err)
	assert.Equal(t, "Sonuç: 42", resp.Answer)
}

func TestAskResolverError(t *testing.T) {
	res := &fakeResolver{err: errors.New("unresolvable")}
	a := newAnswerer(t, &fakeStore{}, res, nil)

	_, err := a.Ask(context.Background(), "???")
	assert.Error(t, err)
}

func TestAnalyze(t *testing.T) {
	store := &fakeStore{
		provinces: []string{"Antalya", "Mersin"},
		queryRows: []map[string]any{{"urun_adi": "Domates", "toplam": float64(100)}},
	}
	llm := &fakeLLM{report: "KARAR KARTI ..."}
	a := newAnswerer(t, store, &fakeResolver{}, llm)

	resp, err := a.Analyze(context.Background(), "il", "mersin")
	require.NoError(t, err)

	assert.Equal(t, "il", resp.Tip)
	assert.Equal(t, "Mersin", resp.Secim, "selection canonicalized against the data")
	assert.Equal(t, 2024, resp.Year)
	assert.Equal(t, "KARAR KARTI ...", resp.Report)
	assert.False(t, resp.Cached)
	assert.NotEmpty(t, resp.Data)
	require.Len(t, llm.prompts, 1)
	assert.Contains(t, llm.prompts[0], "Mersin")
}

func TestAnalyzeCacheHit(t *testing.T) {
	store := &fakeStore{
		provinces: []string{"Mersin"},
		queryRows: []map[string]any{{"toplam": float64(1)}},
	}
	llm := &fakeLLM{report: "rapor"}
	a := newAnswerer(t, store, &fakeResolver{}, llm)

	first, err := a.Analyze(context.Background(), "il", "Mersin")
	require.NoError(t, err)
	second, err := a.Analyze(context.Background(), "il", "MERSİN")
	require.NoError(t, err)

	assert.False(t, first.Cached)
	assert.True(t, second.Cached)
	assert.Equal(t, first.Report, second.Report)
	assert.Len(t, llm.prompts, 1, "cache hit must not regenerate the report")
}

func TestAnalyzeBadTip(t *testing.T) {
	a := newAnswerer(t, &fakeStore{}, &fakeResolver{}, &fakeLLM{})

	_, err := a.Analyze(context.Background(), "bolge", "Akdeniz")
	assert.ErrorIs(t, err, ErrBadTip)
}

func TestAnalyzeUnknownSelection(t *testing.T) {
	store := &fakeStore{provinces: []string{"Mersin"}}
	a := newAnswerer(t, store, &fakeResolver{}, &fakeLLM{})

	_, err := a.Analyze(context.Background(), "il", "Atlantis")
	assert.ErrorIs(t, err, ErrUnknownSelection)
}

func TestAnalyzeWithoutLLM(t *testing.T) {
	a := newAnswerer(t, &fakeStore{}, &fakeResolver{}, nil)

	_, err := a.Analyze(context.Background(), "urun", "Domates")
	assert.ErrorIs(t, err, ErrAnalysisUnavailable)
}

func TestProvincesFallsBackToVocabulary(t *testing.T) {
	store := &fakeStore{listErr: errors.New("db gone")}
	a := newAnswerer(t, store, &fakeResolver{}, nil)

	got, err := a.Provinces(context.Background())
	require.NoError(t, err)
	assert.Len(t, got, 81)
}

func TestProductsFromStore(t *testing.T) {
	store := &fakeStore{products: []string{"Biber (Sivri)", "Domates"}}
	a := newAnswerer(t, store, &fakeResolver{}, nil)

	got, err := a.Products(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Biber (Sivri)", "Domates"}, got)
}

func TestDebug(t *testing.T) {
	store := &fakeStore{queryRows: []map[string]any{{"il": "Adana"}}}
	a := newAnswerer(t, store, &fakeResolver{}, &fakeLLM{})

	out := a.Debug(context.Background())

	assert.Equal(t, "urunler", out["table"])
	assert.Equal(t, 2024, out["reference_year"])
	assert.NotNil(t, out["sample"])
	assert.Equal(t, int64(1), out["row_count"])
	assert.Equal(t, []int{2020, 2024}, out["years"])
	assert.Equal(t, map[string]interface{}{"provider": "fake"}, out["llm"])
}
