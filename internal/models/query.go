package models

// ResolutionPath identifies which strategy produced the final query for a
// request: the deterministic rule path, the generative fallback, or the
// last-resort generic query.
type ResolutionPath string

const (
	PathRules      ResolutionPath = "rules"
	PathGenerative ResolutionPath = "generative"
	PathFallback   ResolutionPath = "fallback"
)

// QueryIntent is the closed set of query shapes the rule path can produce.
// Exactly one intent is selected per request; IntentTotal is the universal
// default.
type QueryIntent string

const (
	IntentTotal             QueryIntent = "total"
	IntentRankingByProduct  QueryIntent = "ranking-by-product"
	IntentRankingByDistrict QueryIntent = "ranking-by-district"
	IntentRankingByProvince QueryIntent = "ranking-by-province"
	IntentAreaOnly          QueryIntent = "area-only"
	IntentDistrictBreakdown QueryIntent = "district-breakdown"
)

// AllIntents lists every intent, in no particular order. Used by tests that
// check the selector is total over the enumeration.
var AllIntents = []QueryIntent{
	IntentTotal,
	IntentRankingByProduct,
	IntentRankingByDistrict,
	IntentRankingByProvince,
	IntentAreaOnly,
	IntentDistrictBreakdown,
}

// ParsedQuery is the entity extractor's output. An empty field means "no
// filter for this dimension", never "match the empty string". Question
// carries the original sentence for intent keyword lookups downstream.
type ParsedQuery struct {
	Province string
	District string
	Product  string // canonical product value as it appears in the data, e.g. "Domates"
	Year     int    // 0 = no year mentioned
	Category string // "Meyve", "Sebze" or "Tahıl"; "" = no category filter
	Question string
}

// SynthesizedQuery is a parameterized candidate query plus the metadata the
// answer formatter and the handler need. Created fresh per request, never
// cached across requests.
type SynthesizedQuery struct {
	SQL          string
	Params       []any
	Path         ResolutionPath
	Intent       QueryIntent
	Measures     []string // column identifiers that were summed
	YearInjected bool     // true when the default year was injected
}

// Verdict is the safety validator's output. Offending names the first
// token or identifier that caused rejection.
type Verdict struct {
	Safe      bool
	Offending string
}

// AskRequest is the body of POST /api/v1/ask.
type AskRequest struct {
	Question string `json:"question" binding:"required"`
}

// AskResponse is the rendered answer for a question.
type AskResponse struct {
	Answer string           `json:"answer"`
	SQL    string           `json:"sql,omitempty"`
	Path   ResolutionPath   `json:"path"`
	Rows   []map[string]any `json:"rows,omitempty"`
	Year   int              `json:"year,omitempty"`
}

// AnalyzeRequest is the body of POST /api/v1/analyze. Tip selects the
// question pack ("il" or "urun"), Secim the province or product to analyze.
type AnalyzeRequest struct {
	Tip   string `json:"tip" binding:"required"`
	Secim string `json:"secim" binding:"required"`
}

// AnalyzeResponse is a generated decision card plus the data it was built from.
type AnalyzeResponse struct {
	Tip    string           `json:"tip"`
	Secim  string           `json:"secim"`
	Year   int              `json:"yil"`
	Report string           `json:"analiz"`
	Cached bool             `json:"cached,omitempty"`
	Data   []AnalyzeDataSet `json:"veriler,omitempty"`
}

// AnalyzeDataSet pairs one pack question with its result rows.
type AnalyzeDataSet struct {
	Question string           `json:"soru"`
	Rows     []map[string]any `json:"sonuc"`
}
