package store

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"

	"github.com/scicatalog/catalog/catalogerr"
)

// querier is satisfied by both *sql.DB and *sql.Tx, letting ManyToMany run
// either against the store's own connection or inside a caller-supplied
// transaction via InTx.
type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// ManyToMany is a thin relation accessor over a junction table: a fixed set
// of lookup columns pins one side of the relation (e.g. dataset_namespace,
// dataset_name), and an ordered list of reference columns names the other
// side's varying columns (e.g. file_id). It unifies the two incompatible
// variants original_source/metacat/common/dbbase.py's DBManyToMany grew
// over time (a lookup-only form and a reference-columns-only form) into one
// type carrying both.
//
// Grounded on DBManyToMany's list/add/contains/remove, translated from
// format-string SQL assembly to parameterized queries throughout.
type ManyToMany struct {
	q                querier
	table            string
	lookupValues     map[string]any
	lookupCols       []string // sorted, for stable SQL generation
	referenceColumns []string
}

// NewManyToMany builds an accessor for table, pinned by lookup (fixed
// columns held constant for every row this accessor sees) and varying over
// referenceColumns (the tuple identifying a member of the relation).
func NewManyToMany(s *Store, table string, lookup map[string]any, referenceColumns ...string) *ManyToMany {
	cols := make([]string, 0, len(lookup))
	for k := range lookup {
		cols = append(cols, k)
	}
	sort.Strings(cols)
	return &ManyToMany{
		q:                s.db,
		table:            table,
		lookupValues:     lookup,
		lookupCols:       cols,
		referenceColumns: referenceColumns,
	}
}

// InTx returns a copy of m that runs against tx instead of the store's own
// connection, so callers threading an outer transaction (e.g. AddFile) keep
// participating in it rather than opening a second implicit connection.
func (m *ManyToMany) InTx(tx *sql.Tx) *ManyToMany {
	clone := *m
	clone.q = tx
	return &clone
}

func (m *ManyToMany) whereClause(startArg int) (string, []any) {
	if len(m.lookupCols) == 0 {
		return "", nil
	}
	clauses := make([]string, len(m.lookupCols))
	args := make([]any, len(m.lookupCols))
	for i, col := range m.lookupCols {
		clauses[i] = fmt.Sprintf("%s = $%d", col, startArg+i)
		args[i] = m.lookupValues[col]
	}
	return "where " + strings.Join(clauses, " and "), args
}

// List returns every reference-column tuple currently in the relation for
// this accessor's lookup values.
func (m *ManyToMany) List(ctx context.Context) ([][]any, error) {
	where, args := m.whereClause(1)
	query := fmt.Sprintf("select %s from %s %s", strings.Join(m.referenceColumns, ", "), m.table, where)
	rows, err := m.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, catalogerr.Wrap(catalogerr.StoreError, err)
	}
	defer rows.Close()

	var out [][]any
	for rows.Next() {
		dest := make([]any, len(m.referenceColumns))
		ptrs := make([]any, len(dest))
		for i := range dest {
			ptrs[i] = &dest[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, catalogerr.Wrap(catalogerr.StoreError, err)
		}
		out = append(out, dest)
	}
	return out, rows.Err()
}

// Add inserts vals as one reference-column tuple alongside this accessor's
// lookup values, idempotently.
func (m *ManyToMany) Add(ctx context.Context, vals ...any) error {
	if len(vals) != len(m.referenceColumns) {
		return catalogerr.Newf(catalogerr.StoreError, "expected %d reference values, got %d", len(m.referenceColumns), len(vals))
	}
	cols := append(append([]string{}, m.referenceColumns...), m.lookupCols...)
	args := append(append([]any{}, vals...), lookupArgs(m.lookupValues, m.lookupCols)...)
	placeholders := make([]string, len(args))
	for i := range args {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}
	query := fmt.Sprintf("insert into %s(%s) values(%s) on conflict(%s) do nothing",
		m.table, strings.Join(cols, ", "), strings.Join(placeholders, ", "), strings.Join(cols, ", "))
	_, err := m.q.ExecContext(ctx, query, args...)
	if err != nil {
		return classifyWriteError(err)
	}
	return nil
}

// Contains reports whether vals is present as a reference-column tuple
// within this accessor's lookup values.
func (m *ManyToMany) Contains(ctx context.Context, vals ...any) (bool, error) {
	if len(vals) != len(m.referenceColumns) {
		return false, catalogerr.Newf(catalogerr.StoreError, "expected %d reference values, got %d", len(m.referenceColumns), len(vals))
	}
	where, args := m.whereClause(1)
	extra := make([]string, len(m.referenceColumns))
	for i, col := range m.referenceColumns {
		extra[i] = fmt.Sprintf("%s = $%d", col, len(args)+i+1)
	}
	args = append(args, vals...)
	clause := where
	if clause == "" {
		clause = "where " + strings.Join(extra, " and ")
	} else {
		clause += " and " + strings.Join(extra, " and ")
	}
	var exists bool
	query := fmt.Sprintf("select exists(select 1 from %s %s)", m.table, clause)
	if err := m.q.QueryRowContext(ctx, query, args...).Scan(&exists); err != nil {
		return false, catalogerr.Wrap(catalogerr.StoreError, err)
	}
	return exists, nil
}

// Remove deletes a single reference-column tuple, or every row pinned by
// this accessor's lookup values if all is true.
func (m *ManyToMany) Remove(ctx context.Context, all bool, vals ...any) error {
	where, args := m.whereClause(1)
	if !all {
		if len(vals) != len(m.referenceColumns) {
			return catalogerr.Newf(catalogerr.StoreError, "expected %d reference values, got %d", len(m.referenceColumns), len(vals))
		}
		extra := make([]string, len(m.referenceColumns))
		for i, col := range m.referenceColumns {
			extra[i] = fmt.Sprintf("%s = $%d", col, len(args)+i+1)
		}
		args = append(args, vals...)
		if where == "" {
			where = "where " + strings.Join(extra, " and ")
		} else {
			where += " and " + strings.Join(extra, " and ")
		}
	}
	query := fmt.Sprintf("delete from %s %s", m.table, where)
	if _, err := m.q.ExecContext(ctx, query, args...); err != nil {
		return catalogerr.Wrap(catalogerr.StoreError, err)
	}
	return nil
}

// scannedString normalizes a List result column to a string: lib/pq may
// hand back either a string or a []byte for a text column depending on
// protocol format, and List's reference-column tuples are untyped to stay
// generic across junction tables.
func scannedString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case []byte:
		return string(t)
	default:
		return fmt.Sprintf("%v", t)
	}
}

func lookupArgs(values map[string]any, cols []string) []any {
	out := make([]any, len(cols))
	for i, c := range cols {
		out[i] = values[c]
	}
	return out
}
