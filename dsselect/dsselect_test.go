package dsselect

import (
	"testing"

	"github.com/scicatalog/catalog/dnf"
	"github.com/stretchr/testify/assert"
)

func TestCompileSimplePattern(t *testing.T) {
	sel := Selector{Patterns: []Pattern{{Namespace: "root", Name: "data", Wildcard: false}}}
	sql, err := Compile(sel, dnf.NewAliasCounter())
	assert.NoError(t, err)
	assert.Equal(t, "select 'root' as namespace, 'data' as name, null as metadata", sql)
}

func TestCompileWildcardPattern(t *testing.T) {
	sel := Selector{Patterns: []Pattern{{Namespace: "root", Name: "data%", Wildcard: true}}}
	sql, err := Compile(sel, dnf.NewAliasCounter())
	assert.NoError(t, err)
	assert.Equal(t, "select namespace, name, null as metadata from datasets where namespace='root' and name like 'data%'", sql)
}

// Scenario 4: recursive with_children over A(parent=root), B(parent=A), C(parent=B).
func TestCompileWithChildrenRecursively(t *testing.T) {
	sel := Selector{
		Patterns:     []Pattern{{Namespace: "root", Name: "%", Wildcard: true}},
		WithChildren: true,
		Recursively:  true,
	}
	sql, err := Compile(sel, dnf.NewAliasCounter())
	assert.NoError(t, err)
	assert.Contains(t, sql, "with recursive subsets as (")
	assert.Contains(t, sql, "inner join subsets")
}

func TestCompileWithChildrenOneHop(t *testing.T) {
	sel := Selector{
		Patterns:     []Pattern{{Namespace: "root", Name: "%", Wildcard: true}},
		WithChildren: true,
		Recursively:  false,
	}
	sql, err := Compile(sel, dnf.NewAliasCounter())
	assert.NoError(t, err)
	assert.NotContains(t, sql, "with recursive")
	assert.Contains(t, sql, "parent_namespace=")
}

func TestCompileWithHavingWrapsUnion(t *testing.T) {
	sel := Selector{
		Patterns: []Pattern{{Namespace: "root", Name: "data", Wildcard: false}},
		Having: dnf.Expr{dnf.And{
			{Attribute: "frozen", Shape: dnf.Scalar, Op: dnf.Present},
		}},
	}
	sql, err := Compile(sel, dnf.NewAliasCounter())
	assert.NoError(t, err)
	assert.Contains(t, sql, "select namespace, name from (")
	assert.Contains(t, sql, "where ds0.metadata ? 'frozen'")
}
