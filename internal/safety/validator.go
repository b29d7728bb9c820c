// Package safety decides whether a statement may touch the database.
// Every statement, including ones built by the rule path, goes through
// Validate before execution; the generative path is the reason the gate
// exists, but having a single gate means no caller can forget it.
package safety

import (
	"strings"

	"tarim-kds/internal/models"
	"tarim-kds/internal/schema"
)

// Statements are rejected when any of these appear outside a string
// literal. The list is verbs, not a grammar: anything that could write,
// reconfigure or escape the read-only contract.
var deniedKeywords = map[string]bool{
	"insert": true, "update": true, "delete": true, "drop": true,
	"alter": true, "create": true, "attach": true, "detach": true,
	"pragma": true, "grant": true, "revoke": true, "replace": true,
	"truncate": true, "vacuum": true, "reindex": true,
}

// Validate checks one statement against the read-only contract:
// a single SELECT (optionally WITH-prefixed), no write or admin
// keywords, no comments, no statement chaining, quoted identifiers
// limited to the resolved schema, and FROM targets limited to the known
// table, a subquery or a CTE declared in the same statement.
//
// Keywords inside single-quoted string literals are exempt; a question
// about "drop" in a product name must not fail the gate.
func Validate(sql string, sch *schema.Schema) models.Verdict {
	toks, verdict := tokenize(sql)
	if !verdict.Safe {
		return verdict
	}
	if len(toks) == 0 {
		return reject("empty statement")
	}

	head := strings.ToLower(toks[0].text)
	if toks[0].kind != tokenWord || (head != "select" && head != "with") {
		return reject("statement must start with SELECT")
	}

	ctes := cteNames(toks)

	for i, t := range toks {
		switch t.kind {
		case tokenWord:
			w := strings.ToLower(t.text)
			if deniedKeywords[w] {
				return reject("forbidden keyword: " + w)
			}
			if w == "from" {
				if v := checkFromTarget(toks, i, sch, ctes); !v.Safe {
					return v
				}
			}
		case tokenIdent:
			if !sch.AllowsColumn(t.text) && !strings.EqualFold(t.text, sch.Table) {
				return reject("unknown identifier: " + t.text)
			}
		case tokenPunct:
			if t.text == ";" && !onlyTrailing(toks, i) {
				return reject("multiple statements are not allowed")
			}
		}
	}

	return models.Verdict{Safe: true}
}

func reject(offending string) models.Verdict {
	return models.Verdict{Safe: false, Offending: offending}
}

// checkFromTarget inspects the token after FROM. A parenthesis opens a
// subquery, which is validated by the same pass; anything else must name
// the schema table or a CTE.
func checkFromTarget(toks []token, i int, sch *schema.Schema, ctes map[string]bool) models.Verdict {
	if i+1 >= len(toks) {
		return reject("FROM without a target")
	}
	next := toks[i+1]
	switch next.kind {
	case tokenPunct:
		if next.text == "(" {
			return models.Verdict{Safe: true}
		}
	case tokenWord, tokenIdent:
		name := strings.ToLower(next.text)
		if strings.EqualFold(next.text, sch.Table) || ctes[name] {
			return models.Verdict{Safe: true}
		}
		return reject("unknown table: " + next.text)
	}
	return reject("FROM without a target")
}

// cteNames collects names declared as "WITH name AS" or ", name AS" so
// references to them later pass the FROM check. Only statements that
// start with WITH can declare any.
func cteNames(toks []token) map[string]bool {
	names := make(map[string]bool)
	if len(toks) == 0 || !strings.EqualFold(toks[0].text, "with") {
		return names
	}
	for i := 1; i+1 < len(toks); i++ {
		if toks[i].kind == tokenWord && strings.EqualFold(toks[i+1].text, "as") {
			prev := toks[i-1]
			if strings.EqualFold(prev.text, "with") || prev.text == "," || prev.text == ")" {
				names[strings.ToLower(toks[i].text)] = true
			}
		}
	}
	return names
}

// onlyTrailing reports whether the semicolon at index i ends the
// statement, i.e. nothing but more semicolons follows it.
func onlyTrailing(toks []token, i int) bool {
	for _, t := range toks[i+1:] {
		if t.text != ";" {
			return false
		}
	}
	return true
}

type tokenKind int

const (
	tokenWord  tokenKind = iota // bare identifier or keyword
	tokenIdent                  // double-quoted identifier, quotes stripped
	tokenString                 // single-quoted literal, quotes stripped
	tokenPunct                  // single punctuation rune
)

type token struct {
	kind tokenKind
	text string
}

// tokenize splits the statement with full quote awareness. It fails the
// verdict directly for constructs that never appear in a legitimate
// statement here: SQL comments and unterminated quotes.
func tokenize(sql string) ([]token, models.Verdict) {
	var toks []token
	runes := []rune(sql)
	i := 0
	for i < len(runes) {
		r := runes[i]
		switch {
		case r == '\'':
			text, next, ok := scanString(runes, i)
			if !ok {
				return nil, reject("unterminated string literal")
			}
			toks = append(toks, token{kind: tokenString, text: text})
			i = next
		case r == '"':
			j := i + 1
			for j < len(runes) && runes[j] != '"' {
				j++
			}
			if j >= len(runes) {
				return nil, reject("unterminated identifier")
			}
			toks = append(toks, token{kind: tokenIdent, text: string(runes[i+1 : j])})
			i = j + 1
		case r == '-' && i+1 < len(runes) && runes[i+1] == '-':
			return nil, reject("SQL comments are not allowed")
		case r == '/' && i+1 < len(runes) && runes[i+1] == '*':
			return nil, reject("SQL comments are not allowed")
		case isWordRune(r):
			j := i
			for j < len(runes) && isWordRune(runes[j]) {
				j++
			}
			toks = append(toks, token{kind: tokenWord, text: string(runes[i:j])})
			i = j
		case r == ' ' || r == '\t' || r == '\n' || r == '\r':
			i++
		default:
			toks = append(toks, token{kind: tokenPunct, text: string(r)})
			i++
		}
	}
	return toks, models.Verdict{Safe: true}
}

// scanString consumes a single-quoted literal starting at i, honoring
// the '' escape. Returns the literal body and the index after the
// closing quote.
func scanString(runes []rune, i int) (string, int, bool) {
	var sb strings.Builder
	j := i + 1
	for j < len(runes) {
		if runes[j] == '\'' {
			if j+1 < len(runes) && runes[j+1] == '\'' {
				sb.WriteRune('\'')
				j += 2
				continue
			}
			return sb.String(), j + 1, true
		}
		sb.WriteRune(runes[j])
		j++
	}
	return "", 0, false
}

func isWordRune(r rune) bool {
	return r == '_' ||
		(r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') ||
		(r >= '0' && r <= '9') ||
		r > 127
}
