// Package dsselect compiles a dataset selector (a list of namespace/name
// patterns plus children/recursion flags and an optional having-DNF) into a
// SQL subquery whose rows carry each selected dataset's namespace and name.
//
// Grounded on original_source/metacat/db/dbobjects2.py's
// DBDataset.sql_for_selector / list_datasets / apply_dataset_selector.
package dsselect

import (
	"fmt"
	"strings"

	"github.com/scicatalog/catalog/dnf"
)

// Pattern is one namespace/name match within a selector.
type Pattern struct {
	Namespace string
	Name      string
	Wildcard  bool // Name is a SQL LIKE pattern rather than an exact match
}

// Selector describes a full dataset selection: the union of its patterns'
// matches, optionally expanded to children, optionally filtered further by
// a having-DNF over dataset metadata.
type Selector struct {
	Patterns     []Pattern
	WithChildren bool
	Recursively  bool
	Having       dnf.Expr
}

// Compile renders the selector as a SQL expression yielding (namespace,
// name, metadata) rows, or (namespace, name) rows when a Having filter wraps
// the union, using counter to mint unique table aliases for the
// recursive-CTE and having-filter forms.
func Compile(sel Selector, counter *dnf.AliasCounter) (string, error) {
	metaColumn := "null as metadata"
	var havingWhere, resultAlias string
	if sel.Having != nil {
		resultAlias = counter.Next("ds")
		cond, err := dnf.Compile(sel.Having, resultAlias)
		if err != nil {
			return "", err
		}
		havingWhere = fmt.Sprintf("where %s", cond)
		metaColumn = "metadata"
	}

	parts := make([]string, 0, len(sel.Patterns)*2)
	for _, p := range sel.Patterns {
		parts = append(parts, compilePatternBase(p, metaColumn, havingWhere != ""))
		if sel.WithChildren {
			childSQL, err := compileChildren(p, counter, sel.Recursively)
			if err != nil {
				return "", err
			}
			parts = append(parts, childSQL)
		}
	}

	union := strings.Join(parts, "\nunion\n")
	if havingWhere == "" {
		return union, nil
	}

	return fmt.Sprintf("select namespace, name from (%s) as %s %s", union, resultAlias, havingWhere), nil
}

func compilePatternBase(p Pattern, metaColumn string, hasHaving bool) string {
	switch {
	case p.Wildcard:
		return fmt.Sprintf("select namespace, name, %s from datasets where namespace=%s and name like %s",
			metaColumn, quote(p.Namespace), quote(p.Name))
	case hasHaving:
		return fmt.Sprintf("select namespace, name, %s from datasets where namespace=%s and name=%s",
			metaColumn, quote(p.Namespace), quote(p.Name))
	default:
		return fmt.Sprintf("select %s as namespace, %s as name, null as metadata", quote(p.Namespace), quote(p.Name))
	}
}

func compileChildren(p Pattern, counter *dnf.AliasCounter, recursively bool) (string, error) {
	if !recursively {
		ds := counter.Next("ds")
		return fmt.Sprintf(`select %s.namespace, %s.name, %s.metadata
from datasets %s
where %s.parent_namespace=%s and %s.parent_name like %s`,
			ds, ds, ds, ds, ds, quote(p.Namespace), ds, quote(p.Name)), nil
	}

	d := counter.Next("ds")
	s := counter.Next("ds")
	return fmt.Sprintf(`(
with recursive subsets as (
	select %s.namespace, %s.name, %s.metadata
	from datasets %s
	where %s.parent_namespace=%s and %s.parent_name like %s
	union
	select %s.namespace, %s.name, %s.metadata from datasets %s
		inner join subsets %s on %s.namespace = %s.parent_namespace and %s.name = %s.parent_name
)
select distinct * from subsets
)`, d, d, d, d, d, quote(p.Namespace), d, quote(p.Name),
		d, d, d, d,
		s, s, d, s, d), nil
}

func quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
