// Package query provides a cheap internal consistency check on SQL the
// rest of the engine compiles, independent of dnf's own correctness: a
// syntactically broken compile is a bug in dnf/dsselect/planner, and
// catching it here (with a real Postgres grammar) is cheaper than catching
// it against a live database.
package query

import (
	pg_query "github.com/pganalyze/pg_query_go/v2"

	"github.com/scicatalog/catalog/catalogerr"
)

// Validate parses sql with the Postgres grammar, returning a
// QueryCompileError if it doesn't parse. Never required for correctness —
// dnf/dsselect/planner never call it themselves — callers (tests, the CLI's
// --explain path) use it to catch a malformed compile before it reaches a
// database.
func Validate(sql string) error {
	if _, err := pg_query.Parse(sql); err != nil {
		return catalogerr.Wrap(catalogerr.QueryCompileError, err)
	}
	return nil
}
