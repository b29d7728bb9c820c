// Package schema resolves the statistics table's concrete column names into
// canonical roles. The rest of the compiler only ever talks about roles
// (province, production, ...) and asks the resolved Schema for the real
// identifier, so a renamed or localized column never leaks into query
// synthesis logic.
package schema

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"tarim-kds/internal/turkish"
)

// Role is an abstract column purpose, independent of the concrete column
// identifier in the underlying table.
type Role string

const (
	RoleProvince   Role = "province"
	RoleDistrict   Role = "district"
	RoleProduct    Role = "product"
	RoleYear       Role = "year"
	RoleCategory   Role = "category"
	RoleArea       Role = "area"
	RoleProduction Role = "production"
	RoleYield      Role = "yield"
)

// Schema maps canonical roles to real column identifiers. Columns is the
// full ordered column list of the table and is the sole source of truth
// for the safety validator's identifier allowlist. Immutable once built.
type Schema struct {
	Table   string
	Columns []string
	roles   map[Role]string
}

// Column returns the concrete identifier for a role. Every role always
// resolves: unresolved roles were assigned their documented default at
// build time, so callers never branch on "column missing".
func (s *Schema) Column(r Role) string {
	return s.roles[r]
}

// AllowsColumn reports whether ident is the table name or one of the
// table's columns.
func (s *Schema) AllowsColumn(ident string) bool {
	if ident == s.Table {
		return true
	}
	for _, c := range s.Columns {
		if c == ident {
			return true
		}
	}
	return false
}

// roleAliases lists, per role, the known column spellings in priority
// order. Matching is done on folded text, so "İl", "il" and "IL" are the
// same alias. The first alias present in the live column list wins.
var roleAliases = []struct {
	role    Role
	aliases []string
}{
	{RoleProvince, []string{"il", "il_adi", "sehir", "province"}},
	{RoleDistrict, []string{"ilce", "ilce_adi", "district"}},
	{RoleProduct, []string{"urun_adi", "urun", "product"}},
	{RoleYear, []string{"yil", "year"}},
	{RoleCategory, []string{"kategori", "urun_grubu", "urun grubu", "grup", "category"}},
	{RoleArea, []string{"ekilen_alan", "alan", "ekim_alani", "area"}},
	{RoleProduction, []string{"uretim_miktari", "uretim", "production"}},
	{RoleYield, []string{"verim", "yield"}},
}

// defaultIdentifiers are the documented fallbacks assigned when no alias
// matches, and the column set of the hard-coded default schema used when
// the table cannot be introspected at all.
var defaultIdentifiers = map[Role]string{
	RoleProvince:   "il",
	RoleDistrict:   "ilce",
	RoleProduct:    "urun_adi",
	RoleYear:       "yil",
	RoleCategory:   "kategori",
	RoleArea:       "ekilen_alan",
	RoleProduction: "uretim_miktari",
	RoleYield:      "verim",
}

const defaultTable = "urunler"

// Default returns the hard-coded schema used when introspection degrades.
// The system must stay answerable for the common case even without a live
// column list.
func Default() *Schema {
	roles := make(map[Role]string, len(defaultIdentifiers))
	cols := make([]string, 0, len(roleAliases))
	for _, ra := range roleAliases {
		ident := defaultIdentifiers[ra.role]
		roles[ra.role] = ident
		cols = append(cols, ident)
	}
	return &Schema{Table: defaultTable, Columns: cols, roles: roles}
}

// Build resolves roles against a live column list. Unmatched roles get
// their default identifier.
func Build(table string, columns []string) *Schema {
	folded := make(map[string]string, len(columns))
	for _, c := range columns {
		folded[turkish.Fold(c)] = c
	}

	roles := make(map[Role]string, len(roleAliases))
	for _, ra := range roleAliases {
		assigned := defaultIdentifiers[ra.role]
		for _, alias := range ra.aliases {
			if actual, ok := folded[alias]; ok {
				assigned = actual
				break
			}
		}
		roles[ra.role] = assigned
	}

	cols := make([]string, len(columns))
	copy(cols, columns)
	return &Schema{Table: table, Columns: cols, roles: roles}
}

// Source provides the live table name and column list, typically backed by
// PRAGMA table_info against the statistics database.
type Source interface {
	TableColumns(ctx context.Context) (table string, columns []string, err error)
}

// Cache memoizes the resolved schema for the process lifetime. It is an
// explicit injectable handle rather than package state: pass the same
// Cache everywhere and every component shares one resolution. Safe for
// concurrent use; a racing double resolution is idempotent and harmless.
type Cache struct {
	source Source
	logger *zap.Logger

	mu       sync.Mutex
	resolved *Schema
}

// NewCache creates a schema cache over source. A nil source resolves to
// the default schema immediately.
func NewCache(source Source, logger *zap.Logger) *Cache {
	return &Cache{source: source, logger: logger}
}

// Resolve returns the memoized schema, introspecting the table on first
// call. Introspection failure falls back to the default schema, so the
// resolver path never fails on a missing schema.
func (c *Cache) Resolve(ctx context.Context) *Schema {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.resolved != nil {
		return c.resolved
	}

	if c.source == nil {
		c.resolved = Default()
		return c.resolved
	}

	table, columns, err := c.source.TableColumns(ctx)
	if err != nil || len(columns) == 0 {
		c.logger.Warn("schema introspection failed, using default schema", zap.Error(err))
		c.resolved = Default()
		return c.resolved
	}

	c.resolved = Build(table, columns)
	c.logger.Info("schema resolved",
		zap.String("table", table),
		zap.Int("columns", len(columns)))
	return c.resolved
}
