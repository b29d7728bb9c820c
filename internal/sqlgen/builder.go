// Package sqlgen turns a classified question into a parameterized SQLite
// statement. Statements are assembled from a clause list rather than
// spliced strings, so every user-derived value travels as a bind
// parameter and the shape of the output is decided in exactly one place.
package sqlgen

import (
	"strconv"
	"strings"
)

// Builder accumulates the clauses of a single SELECT statement. Zero
// value is not usable; start with NewBuilder.
type Builder struct {
	table      string
	selects    []string
	conditions []string
	params     []any
	groupBy    []string
	orderBy    string
	limit      int
}

func NewBuilder(table string) *Builder {
	return &Builder{table: table}
}

// Select appends one output expression, already quoted by the caller.
func (b *Builder) Select(expr string) *Builder {
	b.selects = append(b.selects, expr)
	return b
}

// Where appends one condition with its bind parameters. Conditions are
// joined with AND; alternatives inside a condition carry their own
// parentheses.
func (b *Builder) Where(cond string, params ...any) *Builder {
	b.conditions = append(b.conditions, cond)
	b.params = append(b.params, params...)
	return b
}

func (b *Builder) GroupBy(cols ...string) *Builder {
	b.groupBy = append(b.groupBy, cols...)
	return b
}

func (b *Builder) OrderBy(expr string) *Builder {
	b.orderBy = expr
	return b
}

func (b *Builder) Limit(n int) *Builder {
	b.limit = n
	return b
}

// Build renders the statement and returns it with its parameters in
// placeholder order.
func (b *Builder) Build() (string, []any) {
	var sb strings.Builder
	sb.WriteString("SELECT ")
	sb.WriteString(strings.Join(b.selects, ", "))
	sb.WriteString(" FROM ")
	sb.WriteString(Quote(b.table))
	if len(b.conditions) > 0 {
		sb.WriteString(" WHERE ")
		sb.WriteString(strings.Join(b.conditions, " AND "))
	}
	if len(b.groupBy) > 0 {
		sb.WriteString(" GROUP BY ")
		sb.WriteString(strings.Join(b.groupBy, ", "))
	}
	if b.orderBy != "" {
		sb.WriteString(" ORDER BY ")
		sb.WriteString(b.orderBy)
	}
	if b.limit > 0 {
		sb.WriteString(" LIMIT ")
		sb.WriteString(strconv.Itoa(b.limit))
	}
	return sb.String(), b.params
}

// Quote wraps an identifier in double quotes. Identifiers here come from
// the resolved schema, never from user input, but quoting keeps reserved
// words and mixed-case columns safe.
func Quote(ident string) string {
	return `"` + ident + `"`
}
