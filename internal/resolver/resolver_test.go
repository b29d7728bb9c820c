package resolver

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"tarim-kds/internal/extract"
	"tarim-kds/internal/models"
	"tarim-kds/internal/schema"
)

type fakeGenerator struct {
	sql   string
	err   error
	calls int
}

func (f *fakeGenerator) GenerateSQL(ctx context.Context, question string, sch *schema.Schema, referenceYear int) (string, error) {
	f.calls++
	return f.sql, f.err
}

func newResolver(t *testing.T, gen Generator) *Resolver {
	t.Helper()
	schemas := schema.NewCache(nil, zaptest.NewLogger(t))
	return New(schemas, extract.New(2024), gen, 0, zaptest.NewLogger(t))
}

func TestResolveRulePath(t *testing.T) {
	// A generator that would blow up if consulted proves the rule path
	// short-circuits the ladder.
	gen := &fakeGenerator{err: errors.New("must not be called")}
	r := newResolver(t, gen)

	q, err := r.Resolve(context.Background(), "Mersin'de domates üretimi ne kadar?")
	require.NoError(t, err)

	assert.Equal(t, models.PathRules, q.Path)
	assert.Equal(t, models.IntentTotal, q.Intent)
	assert.Contains(t, q.SQL, `SUM("uretim_miktari")`)
	assert.Contains(t, q.Params, "Mersin")
	assert.True(t, q.YearInjected)
	assert.Zero(t, gen.calls)
}

func TestResolveGenerativePath(t *testing.T) {
	gen := &fakeGenerator{sql: `SELECT "il", SUM("uretim_miktari") AS t FROM "urunler" GROUP BY "il"`}
	r := newResolver(t, gen)

	q, err := r.Resolve(context.Background(), "verimlilik trendleri hakkında genel bir soru")
	require.NoError(t, err)

	assert.Equal(t, models.PathGenerative, q.Path)
	assert.Equal(t, gen.sql, q.SQL)
	assert.Equal(t, 1, gen.calls)
}

func TestResolveRejectsUnsafeGeneratedSQL(t *testing.T) {
	// An unsafe generated statement must never surface; with no province
	// to anchor a fallback the ladder is exhausted.
	gen := &fakeGenerator{sql: `DROP TABLE urunler`}
	r := newResolver(t, gen)

	_, err := r.Resolve(context.Background(), "tüm verileri silebilir misin")
	assert.ErrorIs(t, err, ErrUnresolvable)
	assert.Equal(t, 1, gen.calls)
}

func TestResolveBareProvinceUsesRules(t *testing.T) {
	// A lone province name is enough signal for the rule path; the
	// generator stays untouched.
	gen := &fakeGenerator{err: errors.New("must not be called")}
	r := newResolver(t, gen)

	q, err := r.Resolve(context.Background(), "Mersin")
	require.NoError(t, err)
	assert.Equal(t, models.PathRules, q.Path)
	assert.Contains(t, q.Params, "Mersin")
	assert.Zero(t, gen.calls)
}

type fixedSource struct {
	table   string
	columns []string
}

func (s fixedSource) TableColumns(ctx context.Context) (string, []string, error) {
	return s.table, s.columns, nil
}

func TestResolveNeverReturnsGateRejectedStatement(t *testing.T) {
	// A table name carrying a quote poisons every synthesized statement,
	// so the gate rejects the rule path and the fallback alike. Resolve
	// must end unresolvable instead of surfacing either statement.
	schemas := schema.NewCache(fixedSource{
		table:   `ur"unler`,
		columns: []string{"il", "ilce", "urun_adi", "yil", "kategori", "ekilen_alan", "uretim_miktari", "verim"},
	}, zaptest.NewLogger(t))
	r := New(schemas, extract.New(2024), nil, 0, zaptest.NewLogger(t))

	_, err := r.Resolve(context.Background(), "Mersin'de domates üretimi ne kadar?")
	assert.ErrorIs(t, err, ErrUnresolvable)

	_, err = r.Resolve(context.Background(), "Ankara")
	assert.ErrorIs(t, err, ErrUnresolvable)
}

func TestFallbackQuery(t *testing.T) {
	r := newResolver(t, nil)
	sch := schema.Default()

	q, ok := r.fallback("Ankara", models.ParsedQuery{Province: "Ankara"}, sch)
	require.True(t, ok)
	assert.Equal(t, models.PathFallback, q.Path)
	assert.Equal(t, models.IntentRankingByProduct, q.Intent)
	assert.Equal(t, []any{"Ankara", 2024}, q.Params)

	// Raw input treated as a province name when extraction found none.
	q, ok = r.fallback("  istanbul  ", models.ParsedQuery{}, sch)
	require.True(t, ok)
	assert.Contains(t, q.Params, "İstanbul")

	_, ok = r.fallback("hiçbir yer", models.ParsedQuery{}, sch)
	assert.False(t, ok)
}

func TestResolveNilGenerator(t *testing.T) {
	r := newResolver(t, nil)

	_, err := r.Resolve(context.Background(), "hava durumu nasıl")
	assert.ErrorIs(t, err, ErrUnresolvable)
}

func TestResolveCachesDecision(t *testing.T) {
	gen := &fakeGenerator{sql: `SELECT "il" FROM "urunler" LIMIT 1`}
	r := newResolver(t, gen)

	first, err := r.Resolve(context.Background(), "genel bir durum sorusu")
	require.NoError(t, err)
	second, err := r.Resolve(context.Background(), "GENEL BİR DURUM SORUSU")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, gen.calls, "folded cache key must absorb the second call")
}
