package repository

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"tarim-kds/internal/schema"
	"tarim-kds/internal/sqlgen"
)

// StatsRepository reads the agricultural statistics database. The file
// is opened read-only; nothing in the service writes, and the mode
// backs up the safety gate at the connection level.
type StatsRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewStatsRepository opens the database at dbPath
func NewStatsRepository(dbPath string, logger *zap.Logger) (*StatsRepository, error) {
	db, err := sql.Open("sqlite", "file:"+dbPath+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to reach database: %w", err)
	}

	logger.Info("Stats repository initialized", zap.String("db_path", dbPath))

	return &StatsRepository{db: db, logger: logger}, nil
}

// NewWithDB wraps an existing connection. Used by tests.
func NewWithDB(db *sql.DB, logger *zap.Logger) *StatsRepository {
	return &StatsRepository{db: db, logger: logger}
}

// TableColumns introspects the database: the statistics table name and
// its column list. Implements the schema source contract; the preferred
// table name wins when the file carries more than one table.
func (r *StatsRepository) TableColumns(ctx context.Context) (string, []string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name`)
	if err != nil {
		return "", nil, fmt.Errorf("failed to list tables: %w", err)
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return "", nil, fmt.Errorf("failed to scan table name: %w", err)
		}
		tables = append(tables, name)
	}
	if err := rows.Err(); err != nil {
		return "", nil, err
	}
	if len(tables) == 0 {
		return "", nil, fmt.Errorf("database has no tables")
	}

	table := tables[0]
	for _, t := range tables {
		if t == "urunler" {
			table = t
			break
		}
	}

	cols, err := r.columns(ctx, table)
	if err != nil {
		return "", nil, err
	}

	return table, cols, nil
}

func (r *StatsRepository) columns(ctx context.Context, table string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, "PRAGMA table_info("+sqlgen.Quote(table)+")")
	if err != nil {
		return nil, fmt.Errorf("failed to read table info: %w", err)
	}
	defer rows.Close()

	var cols []string
	for rows.Next() {
		var (
			cid       int
			name      string
			colType   string
			notNull   int
			dfltValue sql.NullString
			pk        int
		)
		if err := rows.Scan(&cid, &name, &colType, &notNull, &dfltValue, &pk); err != nil {
			return nil, fmt.Errorf("failed to scan column: %w", err)
		}
		cols = append(cols, name)
	}
	return cols, rows.Err()
}

// MaxYear returns the latest year present in the data. The service uses
// it as the reference year when a question names none.
func (r *StatsRepository) MaxYear(ctx context.Context, sch *schema.Schema) (int, error) {
	q := "SELECT MAX(" + sqlgen.Quote(sch.Column(schema.RoleYear)) + ") FROM " + sqlgen.Quote(sch.Table)

	var year sql.NullInt64
	if err := r.db.QueryRowContext(ctx, q).Scan(&year); err != nil {
		return 0, fmt.Errorf("failed to query max year: %w", err)
	}
	if !year.Valid {
		return 0, fmt.Errorf("no year data in table %s", sch.Table)
	}
	return int(year.Int64), nil
}

// RowCount returns the number of rows in the statistics table.
func (r *StatsRepository) RowCount(ctx context.Context, sch *schema.Schema) (int64, error) {
	q := "SELECT COUNT(*) FROM " + sqlgen.Quote(sch.Table)

	var n int64
	if err := r.db.QueryRowContext(ctx, q).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count rows: %w", err)
	}
	return n, nil
}

// Years lists the distinct years present in the data, ascending.
func (r *StatsRepository) Years(ctx context.Context, sch *schema.Schema) ([]int, error) {
	col := sqlgen.Quote(sch.Column(schema.RoleYear))
	q := "SELECT DISTINCT " + col + " FROM " + sqlgen.Quote(sch.Table) +
		" WHERE " + col + " IS NOT NULL ORDER BY " + col

	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("failed to query years: %w", err)
	}
	defer rows.Close()

	var years []int
	for rows.Next() {
		var y int
		if err := rows.Scan(&y); err != nil {
			return nil, fmt.Errorf("failed to scan year: %w", err)
		}
		years = append(years, y)
	}
	return years, rows.Err()
}

// Provinces lists the distinct province values present in the data.
func (r *StatsRepository) Provinces(ctx context.Context, sch *schema.Schema) ([]string, error) {
	return r.distinct(ctx, sch, schema.RoleProvince)
}

// Products lists the distinct product values present in the data.
func (r *StatsRepository) Products(ctx context.Context, sch *schema.Schema) ([]string, error) {
	return r.distinct(ctx, sch, schema.RoleProduct)
}

func (r *StatsRepository) distinct(ctx context.Context, sch *schema.Schema, role schema.Role) ([]string, error) {
	col := sqlgen.Quote(sch.Column(role))
	q := "SELECT DISTINCT " + col + " FROM " + sqlgen.Quote(sch.Table) +
		" WHERE " + col + " IS NOT NULL ORDER BY " + col

	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("failed to query distinct values: %w", err)
	}
	defer rows.Close()

	var values []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			r.logger.Error("Failed to scan distinct value", zap.Error(err))
			continue
		}
		values = append(values, v)
	}
	return values, rows.Err()
}

// Query executes one validated statement and returns the rows as maps
// keyed by result column. Column order is lost here; callers that need
// it read the statement's SELECT list.
func (r *StatsRepository) Query(ctx context.Context, query string, params ...any) ([]map[string]any, error) {
	rows, err := r.db.QueryContext(ctx, query, params...)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read columns: %w", err)
	}

	var result []map[string]any
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		row := make(map[string]any, len(cols))
		for i, col := range cols {
			v := values[i]
			if b, ok := v.([]byte); ok {
				v = string(b)
			}
			row[col] = v
		}
		result = append(result, row)
	}

	return result, rows.Err()
}

// Snapshot returns the first rows of the table for the debug endpoint.
func (r *StatsRepository) Snapshot(ctx context.Context, sch *schema.Schema, limit int) ([]map[string]any, error) {
	if limit <= 0 {
		limit = 5
	}
	q, params := sqlgen.NewBuilder(sch.Table).Select("*").Limit(limit).Build()
	return r.Query(ctx, q, params...)
}

// Close closes the database connection
func (r *StatsRepository) Close() error {
	return r.db.Close()
}
