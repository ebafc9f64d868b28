package model

// NamedQuery is the in-memory representation of a queries(...) row: a
// saved basic query (see the planner package) stored under a namespaced
// name so it can be listed and re-run without re-parsing its source text.
//
// Grounded on original_source/metacat/db/dbobjects2.py's DBNamedQuery.
type NamedQuery struct {
	Namespace   string
	Name        string
	Source      string // the basic-query text, opaque to this package
	Parameters  []map[string]any
	Description string
	Creator     string
	CreatedAt   int64
}

func (q *NamedQuery) Key() DatasetKey {
	return DatasetKey{Namespace: q.Namespace, Name: q.Name}
}

func (q *NamedQuery) ToPlain() map[string]any {
	return map[string]any{
		"namespace":         q.Namespace,
		"name":              q.Name,
		"source":            q.Source,
		"parameters":        q.Parameters,
		"description":       nullableString(q.Description),
		"creator":           nullableString(q.Creator),
		"created_timestamp": float64(q.CreatedAt),
	}
}
