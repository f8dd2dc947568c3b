package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"CursorAPI/internal/logger"
	"CursorAPI/internal/model"
	"CursorAPI/internal/query"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgxBackend executes compiled queries on a pgx pool.
type PgxBackend struct {
	Pool *pgxpool.Pool
}

func NewPgxBackend(pool *pgxpool.Pool) *PgxBackend {
	return &PgxBackend{Pool: pool}
}

func (b *PgxBackend) Select(ctx context.Context, sb squirrel.SelectBuilder) ([]map[string]any, error) {
	sqlText, args, err := render(sb, squirrel.Dollar)
	if err != nil {
		return nil, err
	}
	rows, err := b.Pool.Query(ctx, sqlText, args...)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	keys := make([]string, len(fields))
	for i, f := range fields {
		keys[i] = f.Name
	}

	out := make([]map[string]any, 0, 64)
	for rows.Next() {
		vals, err := rows.Values()
		if err != nil {
			return nil, err
		}
		row := make(map[string]any, len(keys))
		for i := 0; i < len(keys) && i < len(vals); i++ {
			row[keys[i]] = normalizeValue(vals[i])
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return out, nil
}

func (b *PgxBackend) Count(ctx context.Context, sb squirrel.SelectBuilder) (uint64, error) {
	sqlText, args, err := render(sb, squirrel.Dollar)
	if err != nil {
		return 0, err
	}
	var n int64
	if err := b.Pool.QueryRow(ctx, sqlText, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count: %w", err)
	}
	return nonNegative(n), nil
}

// TableColumns reads the ordered column list from information_schema.
func (b *PgxBackend) TableColumns(ctx context.Context, table string) ([]query.Column, error) {
	schema, name := splitTable(table, "public")
	rows, err := b.Pool.Query(ctx, `
		SELECT column_name, data_type
		FROM information_schema.columns
		WHERE table_schema = $1 AND table_name = $2
		ORDER BY ordinal_position`, schema, name)
	if err != nil {
		return nil, fmt.Errorf("columns of %s: %w", table, err)
	}
	defer rows.Close()

	var cols []query.Column
	for rows.Next() {
		var colName, dataType string
		if err := rows.Scan(&colName, &dataType); err != nil {
			return nil, err
		}
		cols = append(cols, query.Column{Name: colName, Type: model.NormalizeColumnType(dataType)})
	}
	return cols, rows.Err()
}

// SQLBackend executes compiled queries through database/sql (SQLite or pgx stdlib).
type SQLBackend struct {
	DB          *sql.DB
	Placeholder squirrel.PlaceholderFormat
	Driver      string
}

func NewSQLiteBackend(conn *sql.DB) *SQLBackend {
	return &SQLBackend{DB: conn, Placeholder: squirrel.Question, Driver: "sqlite"}
}

func (b *SQLBackend) Select(ctx context.Context, sb squirrel.SelectBuilder) ([]map[string]any, error) {
	sqlText, args, err := render(sb, b.Placeholder)
	if err != nil {
		return nil, err
	}
	rows, err := b.DB.QueryContext(ctx, sqlText, args...)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	keys, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	out := make([]map[string]any, 0, 64)
	for rows.Next() {
		vals := make([]any, len(keys))
		ptrs := make([]any, len(keys))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		row := make(map[string]any, len(keys))
		for i, k := range keys {
			row[k] = normalizeValue(vals[i])
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return out, nil
}

func (b *SQLBackend) Count(ctx context.Context, sb squirrel.SelectBuilder) (uint64, error) {
	sqlText, args, err := render(sb, b.Placeholder)
	if err != nil {
		return 0, err
	}
	var n int64
	if err := b.DB.QueryRowContext(ctx, sqlText, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count: %w", err)
	}
	return nonNegative(n), nil
}

// TableColumns introspects a SQLite table with pragma_table_info.
func (b *SQLBackend) TableColumns(ctx context.Context, table string) ([]query.Column, error) {
	if b.Driver != "sqlite" {
		return nil, fmt.Errorf("introspection is not supported for driver %q", b.Driver)
	}
	_, name := splitTable(table, "main")
	rows, err := b.DB.QueryContext(ctx, `SELECT name, type FROM pragma_table_info(?) ORDER BY cid`, name)
	if err != nil {
		return nil, fmt.Errorf("columns of %s: %w", table, err)
	}
	defer rows.Close()

	var cols []query.Column
	for rows.Next() {
		var colName, dataType string
		if err := rows.Scan(&colName, &dataType); err != nil {
			return nil, err
		}
		cols = append(cols, query.Column{Name: colName, Type: model.NormalizeColumnType(dataType)})
	}
	return cols, rows.Err()
}

func render(sb squirrel.SelectBuilder, ph squirrel.PlaceholderFormat) (string, []any, error) {
	if ph == nil {
		ph = squirrel.Question
	}
	sqlText, args, err := sb.PlaceholderFormat(ph).ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("build sql: %w", err)
	}
	logger.Debug("sql", map[string]any{"query": sqlText, "args": args})
	return sqlText, args, nil
}

func splitTable(table, defaultSchema string) (string, string) {
	if schema, name, ok := strings.Cut(table, "."); ok {
		return schema, name
	}
	return defaultSchema, table
}

func nonNegative(n int64) uint64 {
	if n < 0 {
		return 0
	}
	return uint64(n)
}

// normalizeValue turns driver-specific values into JSON-friendly ones.
func normalizeValue(v any) any {
	switch x := v.(type) {
	case []byte:
		return string(x)
	case [16]byte:
		return uuid.UUID(x).String()
	case pgtype.Numeric:
		f, err := x.Float64Value()
		if err != nil || !f.Valid {
			return nil
		}
		return f.Float64
	}
	return v
}

// Ping reports whether the pool can reach its database.
func (b *PgxBackend) Ping(ctx context.Context) error {
	if b.Pool == nil {
		return errors.New("pgx pool is not initialized")
	}
	return b.Pool.Ping(ctx)
}

func (b *SQLBackend) Ping(ctx context.Context) error {
	if b.DB == nil {
		return errors.New("sql db is not initialized")
	}
	return b.DB.PingContext(ctx)
}
