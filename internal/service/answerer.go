package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"tarim-kds/internal/analysis"
	"tarim-kds/internal/extract"
	"tarim-kds/internal/models"
	"tarim-kds/internal/safety"
	"tarim-kds/internal/schema"
	"tarim-kds/internal/turkish"
)

var (
	// ErrBadTip rejects analyze requests whose tip is neither
	// "il" nor "urun".
	ErrBadTip = errors.New("tip must be 'il' or 'urun'")

	// ErrUnknownSelection rejects analyze selections that do not
	// appear in the data. The whitelist doubles as the injection
	// guard: only values read back from the database ever reach a
	// pack query.
	ErrUnknownSelection = errors.New("selection not present in the data")

	// ErrAnalysisUnavailable is returned when no LLM provider is
	// configured; questions still work, decision cards do not.
	ErrAnalysisUnavailable = errors.New("analysis requires an LLM provider")
)

// Store is the data access surface the service needs
type Store interface {
	Query(ctx context.Context, query string, params ...any) ([]map[string]any, error)
	Provinces(ctx context.Context, sch *schema.Schema) ([]string, error)
	Products(ctx context.Context, sch *schema.Schema) ([]string, error)
	Snapshot(ctx context.Context, sch *schema.Schema, limit int) ([]map[string]any, error)
	RowCount(ctx context.Context, sch *schema.Schema) (int64, error)
	Years(ctx context.Context, sch *schema.Schema) ([]int, error)
}

// QueryResolver turns a question into a validated statement
type QueryResolver interface {
	Resolve(ctx context.Context, question string) (models.SynthesizedQuery, error)
}

// LLMClient interface for any LLM provider
type LLMClient interface {
	GenerateAnalysis(ctx context.Context, prompt string) (string, error)
	GetModelInfo() map[string]interface{}
}

// Answerer handles question answering and decision-card generation
type Answerer struct {
	store    Store
	resolver QueryResolver
	llm      LLMClient // nil disables analyze
	schemas  *schema.Cache
	refYear  int
	logger   *zap.Logger

	cacheTTL time.Duration
	mu       sync.Mutex
	reports  map[string]cachedReport
}

type cachedReport struct {
	resp    *models.AnalyzeResponse
	expires time.Time
}

// NewAnswerer creates a new answerer service
func NewAnswerer(
	store Store,
	res QueryResolver,
	llm LLMClient,
	schemas *schema.Cache,
	refYear int,
	cacheTTL time.Duration,
	logger *zap.Logger,
) *Answerer {
	if cacheTTL <= 0 {
		cacheTTL = 24 * time.Hour
	}
	return &Answerer{
		store:    store,
		resolver: res,
		llm:      llm,
		schemas:  schemas,
		refYear:  refYear,
		logger:   logger,
		cacheTTL: cacheTTL,
		reports:  make(map[string]cachedReport),
	}
}

// ReferenceYear returns the year used when questions name none.
func (a *Answerer) ReferenceYear() int {
	return a.refYear
}

// Ask resolves and executes one question and renders a plain Turkish
// answer next to the raw rows.
func (a *Answerer) Ask(ctx context.Context, question string) (*models.AskResponse, error) {
	q, err := a.resolver.Resolve(ctx, question)
	if err != nil {
		return nil, err
	}

	rows, err := a.store.Query(ctx, q.SQL, q.Params...)
	if err != nil {
		return nil, fmt.Errorf("query execution failed: %w", err)
	}

	resp := &models.AskResponse{
		SQL:  q.SQL,
		Path: q.Path,
		Rows: rows,
	}
	if q.YearInjected {
		resp.Year = a.refYear
	}
	resp.Answer = a.formatAnswer(q, rows)

	a.logger.Info("Question answered",
		zap.String("path", string(q.Path)),
		zap.String("intent", string(q.Intent)),
		zap.Int("rows", len(rows)))

	return resp, nil
}

// Analyze runs the question pack for one province or product and has
// the LLM turn the results into a decision card. Cards are cached per
// tip, selection and year.
func (a *Answerer) Analyze(ctx context.Context, tip, secim string) (*models.AnalyzeResponse, error) {
	tip = strings.ToLower(strings.TrimSpace(tip))
	secim = strings.TrimSpace(secim)
	if tip != "il" && tip != "urun" {
		return nil, ErrBadTip
	}
	if a.llm == nil {
		return nil, ErrAnalysisUnavailable
	}

	sch := a.schemas.Resolve(ctx)

	canonical, err := a.whitelist(ctx, sch, tip, secim)
	if err != nil {
		return nil, err
	}

	year := a.refYear
	key := tip + "|" + canonical + "|" + fmt.Sprint(year)
	if resp, ok := a.cachedAnalysis(key); ok {
		return resp, nil
	}

	var pack []analysis.Question
	if tip == "il" {
		pack = analysis.ProvincePack(sch, canonical, year)
	} else {
		pack = analysis.ProductPack(sch, canonical, year)
	}

	answered := make([]analysis.Answered, 0, len(pack))
	data := make([]models.AnalyzeDataSet, 0, len(pack))
	for _, q := range pack {
		item := analysis.Answered{Question: q}
		if v := safety.Validate(q.SQL, sch); !v.Safe {
			// Pack statements are fixed; a rejection means the pack
			// and the gate disagree and one of them has a bug.
			a.logger.Error("pack statement rejected by safety gate",
				zap.Int("question_id", q.ID),
				zap.String("offending", v.Offending))
			item.Err = fmt.Errorf("statement rejected: %s", v.Offending)
		} else if rows, err := a.store.Query(ctx, q.SQL, q.Params...); err != nil {
			a.logger.Warn("pack question failed",
				zap.Int("question_id", q.ID),
				zap.Error(err))
			item.Err = err
		} else {
			item.Rows = rows
			data = append(data, models.AnalyzeDataSet{Question: q.Text, Rows: rows})
		}
		answered = append(answered, item)
	}

	prompt := analysis.BuildReportPrompt(tip, canonical, year, answered)
	report, err := a.llm.GenerateAnalysis(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("report generation failed: %w", err)
	}

	resp := &models.AnalyzeResponse{
		Tip:    tip,
		Secim:  canonical,
		Year:   year,
		Report: report,
		Data:   data,
	}
	a.storeAnalysis(key, resp)

	a.logger.Info("Analysis generated",
		zap.String("tip", tip),
		zap.String("secim", canonical),
		zap.Int("year", year))

	return resp, nil
}

// Provinces lists the provinces present in the data, falling back to
// the static vocabulary if the database cannot answer.
func (a *Answerer) Provinces(ctx context.Context) ([]string, error) {
	sch := a.schemas.Resolve(ctx)
	values, err := a.store.Provinces(ctx, sch)
	if err != nil || len(values) == 0 {
		a.logger.Warn("falling back to static province list", zap.Error(err))
		return extract.Provinces(), nil
	}
	return values, nil
}

// Products lists the products present in the data.
func (a *Answerer) Products(ctx context.Context) ([]string, error) {
	sch := a.schemas.Resolve(ctx)
	values, err := a.store.Products(ctx, sch)
	if err != nil || len(values) == 0 {
		a.logger.Warn("falling back to static product list", zap.Error(err))
		return extract.Products(), nil
	}
	return values, nil
}

// Debug reports the resolved schema, a data sample and provider info.
func (a *Answerer) Debug(ctx context.Context) map[string]any {
	sch := a.schemas.Resolve(ctx)

	out := map[string]any{
		"table":          sch.Table,
		"columns":        sch.Columns,
		"reference_year": a.refYear,
	}

	if sample, err := a.store.Snapshot(ctx, sch, 5); err != nil {
		out["sample_error"] = err.Error()
	} else {
		out["sample"] = sample
	}

	if n, err := a.store.RowCount(ctx, sch); err == nil {
		out["row_count"] = n
	}
	if years, err := a.store.Years(ctx, sch); err == nil {
		out["years"] = years
	}

	if a.llm != nil {
		out["llm"] = a.llm.GetModelInfo()
	}

	return out
}

// whitelist maps the raw selection onto a value actually present in the
// data, comparing on folded text so casing and diacritics do not matter.
func (a *Answerer) whitelist(ctx context.Context, sch *schema.Schema, tip, secim string) (string, error) {
	var values []string
	var err error
	if tip == "il" {
		values, err = a.store.Provinces(ctx, sch)
	} else {
		values, err = a.store.Products(ctx, sch)
	}
	if err != nil {
		return "", fmt.Errorf("failed to load selection whitelist: %w", err)
	}

	folded := turkish.Fold(secim)
	for _, v := range values {
		if turkish.Fold(v) == folded {
			return v, nil
		}
	}
	return "", ErrUnknownSelection
}

func (a *Answerer) formatAnswer(q models.SynthesizedQuery, rows []map[string]any) string {
	if len(rows) == 0 {
		return "Bu soru için veri bulunamadı."
	}

	if q.Path == models.PathGenerative {
		return genericAnswer(rows)
	}

	switch q.Intent {
	case models.IntentTotal:
		return "Toplam üretim: " + turkish.FormatQuantity(asFloat(rows[0]["toplam_uretim"])) + "."
	case models.IntentAreaOnly:
		return "Toplam ekilen alan: " + turkish.FormatNumber(int64(asFloat(rows[0]["toplam_alan"]))) + " dekar."
	case models.IntentDistrictBreakdown:
		return rankedAnswer("İlçe bazında üretim:", rows)
	default:
		head := "Sıralama:"
		if q.Path == models.PathFallback {
			head = "En çok üretilen ürünler:"
		}
		return rankedAnswer(head, rows)
	}
}

// rankedAnswer renders grouped rows as a numbered list. The label is
// whatever non-aggregate column the row carries.
func rankedAnswer(head string, rows []map[string]any) string {
	var sb strings.Builder
	sb.WriteString(head)
	for i, row := range rows {
		label := ""
		for col, v := range row {
			if col == "toplam_uretim" || col == "toplam_alan" {
				continue
			}
			label = fmt.Sprint(v)
			break
		}
		sb.WriteString(fmt.Sprintf("\n%d. %s: %s", i+1, label,
			turkish.FormatQuantity(asFloat(row["toplam_uretim"]))))
	}
	return sb.String()
}

// genericAnswer covers generated statements, whose shape is unknown.
func genericAnswer(rows []map[string]any) string {
	if len(rows) == 1 && len(rows[0]) == 1 {
		for _, v := range rows[0] {
			return "Sonuç: " + fmt.Sprint(v)
		}
	}
	return fmt.Sprintf("%d kayıt bulundu.", len(rows))
}

func asFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int64:
		return float64(n)
	case int:
		return float64(n)
	}
	return 0
}

func (a *Answerer) cachedAnalysis(key string) (*models.AnalyzeResponse, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	c, ok := a.reports[key]
	if !ok || time.Now().After(c.expires) {
		delete(a.reports, key)
		return nil, false
	}
	out := *c.resp
	out.Cached = true
	return &out, true
}

func (a *Answerer) storeAnalysis(key string, resp *models.AnalyzeResponse) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.reports[key] = cachedReport{resp: resp, expires: time.Now().Add(a.cacheTTL)}
}
