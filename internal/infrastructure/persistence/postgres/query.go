package postgres

import (
	"context"
	"fmt"

	"github.com/epis-academic/academic-records/internal/domain/shared"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // dialect registration
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/jackc/pgx/v5"
)

// ══════════════════════════════════════════════════════════════════════════════
// QUERY BUILDING
// Static statements are plain SQL strings. Statements with a variable number
// of arguments (IN lists, multi-row upserts) are built with goqu and always
// rendered as prepared statements.
// ══════════════════════════════════════════════════════════════════════════════

const dialectPostgres = "postgres"

var builder = goqu.Dialect(dialectPostgres)

// selectByIDs renders SELECT cols FROM table WHERE column IN (ids).
func selectByIDs(table string, cols []interface{}, column string, ids []shared.ID, order ...exp.OrderedExpression) (string, []interface{}, error) {
	ds := builder.From(table).
		Select(cols...).
		Where(goqu.C(column).In(idStrings(ids)))
	if len(order) > 0 {
		ds = ds.Order(order...)
	}
	return ds.Prepared(true).ToSQL()
}

func orderBy(column string) exp.OrderedExpression {
	return goqu.I(column).Asc()
}

func idStrings(ids []shared.ID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}

func columns(names ...string) []interface{} {
	out := make([]interface{}, len(names))
	for i, n := range names {
		out[i] = n
	}
	return out
}

// ══════════════════════════════════════════════════════════════════════════════
// ROW SCANNING
// ══════════════════════════════════════════════════════════════════════════════

// queryOne runs a single-row query. No row yields the zero value and a nil
// error, which the repositories surface as "not found".
func queryOne[T any](ctx context.Context, q Querier, scan func(pgx.Row) (T, error), sql string, args ...interface{}) (T, error) {
	v, err := scan(q.QueryRow(ctx, sql, args...))
	if IsNoRows(err) {
		var zero T
		return zero, nil
	}
	return v, err
}

// queryAll runs a query and scans every row.
func queryAll[T any](ctx context.Context, q Querier, scan func(pgx.Row) (T, error), sql string, args ...interface{}) ([]T, error) {
	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]T, 0)
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// queryIn is queryAll over a goqu-built IN query. An empty id list returns
// an empty slice without touching the database.
func queryIn[T any](ctx context.Context, q Querier, scan func(pgx.Row) (T, error), table string, cols []interface{}, column string, ids []shared.ID, order ...exp.OrderedExpression) ([]T, error) {
	if len(ids) == 0 {
		return []T{}, nil
	}
	sql, args, err := selectByIDs(table, cols, column, ids, order...)
	if err != nil {
		return nil, fmt.Errorf("build %s query: %w", table, err)
	}
	return queryAll(ctx, q, scan, sql, args...)
}

func execDelete(ctx context.Context, q Querier, table string, id shared.ID) error {
	_, err := q.Exec(ctx, "DELETE FROM "+table+" WHERE id = $1", id.String())
	return err
}

func nullableID(id *shared.ID) interface{} {
	if id == nil {
		return nil
	}
	return id.String()
}

func idPtr(raw *string) *shared.ID {
	if raw == nil {
		return nil
	}
	id := shared.ID(*raw)
	return &id
}
