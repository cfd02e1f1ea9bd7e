package repo

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Tx is the minimal query surface shared by pgx.Tx and *pgxpool.Pool.
// Repositories depend on this so they run identically inside and outside
// an explicit transaction.
type Tx interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Join concatenates non-empty SQL fragments with single spaces.
func Join(parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, " ")
}

// JoinWhere renders a WHERE clause from AND-joined conditions.
// Returns "" when no conditions are given.
func JoinWhere(conds ...string) string {
	kept := make([]string, 0, len(conds))
	for _, c := range conds {
		if strings.TrimSpace(c) != "" {
			kept = append(kept, c)
		}
	}
	if len(kept) == 0 {
		return ""
	}
	return "WHERE " + strings.Join(kept, " AND ")
}

// Insert renders an INSERT statement with positional placeholders for fields,
// optionally with a RETURNING clause.
func Insert(table string, fields []string, returning ...string) string {
	placeholders := make([]string, len(fields))
	for i := range fields {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}
	q := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s)",
		table,
		strings.Join(fields, ", "),
		strings.Join(placeholders, ", "),
	)
	if len(returning) > 0 {
		q += " RETURNING " + strings.Join(returning, ", ")
	}
	return q
}

// Update renders an UPDATE statement assigning $1..$n to fields, followed by
// the given WHERE conditions (whose placeholders continue the sequence).
func Update(table string, fields []string, conds ...string) string {
	assignments := make([]string, len(fields))
	for i, f := range fields {
		assignments[i] = fmt.Sprintf("%s = $%d", f, i+1)
	}
	return Join(
		fmt.Sprintf("UPDATE %s SET %s", table, strings.Join(assignments, ", ")),
		JoinWhere(conds...),
	)
}

// Delete renders a DELETE statement with the given WHERE conditions.
func Delete(table string, conds ...string) string {
	return Join("DELETE FROM "+table, JoinWhere(conds...))
}

// Exists wraps a base query into an EXISTS projection.
func Exists(base string) string {
	return fmt.Sprintf("SELECT EXISTS (%s)", base)
}

// FormatLimitOffset renders LIMIT/OFFSET clauses, omitting zero values.
func FormatLimitOffset(limit, offset int) string {
	parts := make([]string, 0, 2)
	if limit > 0 {
		parts = append(parts, fmt.Sprintf("LIMIT %d", limit))
	}
	if offset > 0 {
		parts = append(parts, fmt.Sprintf("OFFSET %d", offset))
	}
	return strings.Join(parts, " ")
}

// BatchInsertQueryN appends positional value tuples to an INSERT prefix of the
// form "INSERT INTO t (a, b) VALUES" and returns the query with a flattened
// argument list. All rows must have equal arity.
func BatchInsertQueryN(prefix string, rows [][]any) (string, []any) {
	if len(rows) == 0 {
		return prefix, nil
	}
	width := len(rows[0])
	args := make([]any, 0, len(rows)*width)
	tuples := make([]string, 0, len(rows))
	for i, row := range rows {
		placeholders := make([]string, width)
		for j := range row {
			placeholders[j] = fmt.Sprintf("$%d", i*width+j+1)
		}
		tuples = append(tuples, "("+strings.Join(placeholders, ", ")+")")
		args = append(args, row...)
	}
	return prefix + " " + strings.Join(tuples, ", "), args
}
