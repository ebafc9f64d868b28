// Package planner composes the DNF compiler and the dataset-selector
// compiler into one executable basic query against the files table.
//
// Grounded on original_source/metacat/db/dbobjects2.py's
// DBFileSet.sql_for_basic_query / from_basic_query, with the relationship
// hop grounded on DBFileSet._relationship.
package planner

import (
	"fmt"

	"github.com/scicatalog/catalog/dnf"
	"github.com/scicatalog/catalog/dsselect"
)

// Relationship selects the provenance hop applied after the base query.
type Relationship int

const (
	NoRelationship Relationship = iota
	Parents
	Children
)

// Query is the full input to the planner: a metadata DNF, an optional
// dataset selector, and the projection/limit flags from the request.
type Query struct {
	Wheres       dnf.Expr
	Selector     *dsselect.Selector
	WithMetadata bool
	Provenance   bool
	Limit        int // 0 means "return no rows" per the limit=0 boundary case; negative means unbounded
	Relationship Relationship
}

// Plan is the compiled form of a Query: either a single SQL statement to
// run directly, or a marker that the result is known to be empty without a
// store round-trip (branch 2 of the basic-query plan, and the limit=0
// boundary case).
type Plan struct {
	SQL        string
	Empty      bool // true if the query is known to produce no rows
	HasLimit   bool
	LimitValue int
}

// Compile implements the 4-branch basic-query plan from the component
// design: no selector, a selector that resolves to zero datasets at
// plan-time (the caller supplies that count), one dataset (a join against
// that dataset's files_datasets membership rows), or many datasets (a
// WITH-clause join).
//
// resolvedDatasetCount is -1 when the selector hasn't been probed yet
// (forces branch 4, the general join form); 0 forces the eager-empty
// branch; 1 selects the single-dataset branch using
// singleDatasetNamespace and singleDatasetName.
func Compile(q Query, resolvedDatasetCount int, singleDatasetNamespace, singleDatasetName string, counter *dnf.AliasCounter) (Plan, error) {
	if q.Limit == 0 {
		return Plan{Empty: true}, nil
	}

	if q.Selector != nil && resolvedDatasetCount == 0 {
		return Plan{Empty: true}, nil
	}

	alias := counter.Next("f")
	where, err := dnf.Compile(q.Wheres, alias)
	if err != nil {
		return Plan{}, err
	}

	table := "files"
	parents, children := "null as parents", "null as children"
	if q.Provenance {
		table = "files_with_provenance"
		parents = alias + ".parents"
		children = alias + ".children"
	}
	meta := "null as metadata"
	if q.WithMetadata {
		meta = alias + ".metadata"
	}

	whereClause := ""
	if where != "null" {
		whereClause = "where " + where
	}
	limitClause := ""
	if q.Limit > 0 {
		limitClause = fmt.Sprintf("limit %d", q.Limit)
	}

	var sql string
	if q.Selector == nil || resolvedDatasetCount == 1 {
		// Branch 3 (single resolved dataset) constrains the scan to that
		// dataset's membership row instead of delegating to a separate
		// per-dataset listing path.
		if resolvedDatasetCount == 1 {
			sql = singleDatasetJoinSQL(alias, table, meta, parents, children, whereClause, limitClause,
				counter, singleDatasetNamespace, singleDatasetName)
		} else {
			sql = fmt.Sprintf("select %s.id, %s.namespace, %s.name, %s, %s, %s\nfrom %s %s\n%s\n%s",
				alias, alias, alias, meta, parents, children, table, alias, whereClause, limitClause)
		}
	} else {
		datasetsSQL, err := dsselect.Compile(*q.Selector, counter)
		if err != nil {
			return Plan{}, err
		}
		fd := counter.Next("fd")
		sql = fmt.Sprintf(`with selected_datasets as (
%s
)
select %s.id, %s.namespace, %s.name, %s, %s, %s
from %s %s
inner join files_datasets %s on %s.file_id = %s.id
inner join selected_datasets on selected_datasets.namespace = %s.dataset_namespace and selected_datasets.name = %s.dataset_name
%s
%s`,
			datasetsSQL, alias, alias, alias, meta, parents, children, table, alias, fd, fd, alias, fd, fd, whereClause, limitClause)
	}

	return Plan{SQL: sql, HasLimit: q.Limit > 0, LimitValue: q.Limit}, nil
}

func singleDatasetJoinSQL(alias, table, meta, parents, children, whereClause, limitClause string,
	counter *dnf.AliasCounter, namespace, name string) string {
	fd := counter.Next("fd")
	return fmt.Sprintf(`select %s.id, %s.namespace, %s.name, %s, %s, %s
from %s %s
inner join files_datasets %s on %s.file_id = %s.id
where %s.dataset_namespace = '%s' and %s.dataset_name = '%s'%s
%s`,
		alias, alias, alias, meta, parents, children, table, alias, fd, fd, alias,
		fd, escapeLiteral(namespace), fd, escapeLiteral(name),
		joinExtraWhere(whereClause), limitClause)
}

func joinExtraWhere(whereClause string) string {
	if whereClause == "" {
		return ""
	}
	// whereClause already starts with "where "; fold it into an "and" onto
	// the dataset-membership predicate above instead of emitting a second
	// where.
	return " and (" + whereClause[len("where "):] + ")"
}

func escapeLiteral(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '\'' {
			out = append(out, '\'')
		}
		out = append(out, s[i])
	}
	return string(out)
}

// RelationshipHop builds the provenance-hop query (parents/children) that
// runs after the base query, deduplicated via "select distinct".
//
// Grounded on DBFileSet._relationship.
func RelationshipHop(rel Relationship, withMetadata, withProvenance bool, fileIDs []string, counter *dnf.AliasCounter) string {
	table := "files"
	if withProvenance {
		table = "files_with_provenance"
	}
	f := counter.Next("f")
	pc := counter.Next("pc")

	var join string
	if rel == Children {
		join = fmt.Sprintf("%s.id = %s.child_id and %s.parent_id = any(%s)", f, pc, pc, idArrayLiteral(fileIDs))
	} else {
		join = fmt.Sprintf("%s.id = %s.parent_id and %s.child_id = any(%s)", f, pc, pc, idArrayLiteral(fileIDs))
	}

	meta := "null as metadata"
	if withMetadata {
		meta = f + ".metadata"
	}
	parents, children := "null as parents", "null as children"
	if withProvenance {
		parents, children = f+".parents", f+".children"
	}

	return fmt.Sprintf(`select distinct %s.id, %s.namespace, %s.name, %s, %s, %s
from %s %s, parent_child %s
where %s`, f, f, f, meta, parents, children, table, f, pc, join)
}

func idArrayLiteral(ids []string) string {
	s := "array["
	for i, id := range ids {
		if i > 0 {
			s += ","
		}
		s += "'" + id + "'"
	}
	return s + "]"
}
