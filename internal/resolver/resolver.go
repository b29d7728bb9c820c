// Package resolver runs a question through the resolution ladder:
// the rule path first, the generative path when rules find nothing to
// hold on to, and a degraded province summary before giving up.
package resolver

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"tarim-kds/internal/extract"
	"tarim-kds/internal/intent"
	"tarim-kds/internal/models"
	"tarim-kds/internal/safety"
	"tarim-kds/internal/schema"
	"tarim-kds/internal/sqlgen"
	"tarim-kds/internal/turkish"
)

// ErrUnresolvable is returned when every path has been exhausted: no
// entities matched, the generative path was disabled or produced an
// unsafe statement, and no province could anchor a fallback.
var ErrUnresolvable = errors.New("resolver: question could not be resolved to a query")

// Generator is the generative path. A nil Generator disables it, which
// is the configuration for deployments without an LLM key; the ladder
// then steps straight from rules to fallback.
type Generator interface {
	GenerateSQL(ctx context.Context, question string, sch *schema.Schema, referenceYear int) (string, error)
}

type Resolver struct {
	schemas    *schema.Cache
	extractor  *extract.Extractor
	gen        Generator
	genTimeout time.Duration
	logger     *zap.Logger

	mu    sync.Mutex
	cache map[string]cacheEntry
	ttl   time.Duration
}

type cacheEntry struct {
	query   models.SynthesizedQuery
	expires time.Time
}

func New(schemas *schema.Cache, extractor *extract.Extractor, gen Generator, genTimeout time.Duration, logger *zap.Logger) *Resolver {
	if genTimeout <= 0 {
		genTimeout = 15 * time.Second
	}
	return &Resolver{
		schemas:    schemas,
		extractor:  extractor,
		gen:        gen,
		genTimeout: genTimeout,
		logger:     logger,
		cache:      make(map[string]cacheEntry),
		ttl:        10 * time.Minute,
	}
}

// Resolve produces a validated statement for the question or
// ErrUnresolvable. Every returned statement, whatever path produced it,
// has passed the safety gate.
func (r *Resolver) Resolve(ctx context.Context, question string) (models.SynthesizedQuery, error) {
	key := turkish.Fold(strings.TrimSpace(question))
	if q, ok := r.cached(key); ok {
		return q, nil
	}

	sch := r.schemas.Resolve(ctx)
	parsed := r.extractor.Extract(question)
	in := intent.Select(parsed)

	if hasSignal(parsed, in) {
		q := sqlgen.Synthesize(in, parsed, sch, r.extractor.ReferenceYear)
		if v := safety.Validate(q.SQL, sch); v.Safe {
			r.store(key, q)
			return q, nil
		} else if v.Offending != "" {
			// The rule path only emits schema columns and bind
			// parameters; a rejection here is a bug worth noise.
			r.logger.Error("rule-path statement rejected by safety gate",
				zap.String("sql", q.SQL),
				zap.String("offending", v.Offending))
		}
	}

	if q, ok := r.generate(ctx, question, sch); ok {
		r.store(key, q)
		return q, nil
	}

	if q, ok := r.fallback(question, parsed, sch); ok {
		return q, nil
	}

	return models.SynthesizedQuery{}, ErrUnresolvable
}

// hasSignal reports whether the extractor found anything for the rule
// path to build on. A bare question with no entities, no year and no
// recognized phrasing must not silently become a grand total.
func hasSignal(parsed models.ParsedQuery, in models.QueryIntent) bool {
	return parsed.Province != "" || parsed.District != "" ||
		parsed.Product != "" || parsed.Category != "" ||
		parsed.Year != 0 || in != models.IntentTotal
}

func (r *Resolver) generate(ctx context.Context, question string, sch *schema.Schema) (models.SynthesizedQuery, bool) {
	if r.gen == nil {
		return models.SynthesizedQuery{}, false
	}

	genCtx, cancel := context.WithTimeout(ctx, r.genTimeout)
	defer cancel()

	sql, err := r.gen.GenerateSQL(genCtx, question, sch, r.extractor.ReferenceYear)
	if err != nil {
		r.logger.Warn("generative path failed", zap.Error(err))
		return models.SynthesizedQuery{}, false
	}

	if v := safety.Validate(sql, sch); !v.Safe {
		r.logger.Warn("generated statement rejected",
			zap.String("sql", sql),
			zap.String("offending", v.Offending))
		return models.SynthesizedQuery{}, false
	}

	return models.SynthesizedQuery{SQL: sql, Path: models.PathGenerative}, true
}

// fallback anchors on a province, either one the extractor matched or
// the raw input being nothing but a province name, and summarizes its
// top products for the reference year.
func (r *Resolver) fallback(question string, parsed models.ParsedQuery, sch *schema.Schema) (models.SynthesizedQuery, bool) {
	province := parsed.Province
	if province == "" {
		if p, ok := extract.LookupProvince(strings.TrimSpace(question)); ok {
			province = p
		}
	}
	if province == "" {
		return models.SynthesizedQuery{}, false
	}

	q := sqlgen.Fallback(province, sch, r.extractor.ReferenceYear)
	if v := safety.Validate(q.SQL, sch); !v.Safe {
		r.logger.Error("fallback statement rejected by safety gate",
			zap.String("sql", q.SQL),
			zap.String("offending", v.Offending))
		return models.SynthesizedQuery{}, false
	}
	return q, true
}

func (r *Resolver) cached(key string) (models.SynthesizedQuery, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.cache[key]
	if !ok || time.Now().After(e.expires) {
		delete(r.cache, key)
		return models.SynthesizedQuery{}, false
	}
	return e.query, true
}

func (r *Resolver) store(key string, q models.SynthesizedQuery) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cache[key] = cacheEntry{query: q, expires: time.Now().Add(r.ttl)}
}
