package planner

import (
	"testing"

	"github.com/scicatalog/catalog/dnf"
	"github.com/scicatalog/catalog/dsselect"
	"github.com/stretchr/testify/assert"
)

func TestLimitZeroReturnsEmptyWithoutStoreRoundTrip(t *testing.T) {
	plan, err := Compile(Query{Limit: 0}, -1, "", "", dnf.NewAliasCounter())
	assert.NoError(t, err)
	assert.True(t, plan.Empty)
	assert.Empty(t, plan.SQL)
}

func TestNoSelectorSingleTableScan(t *testing.T) {
	plan, err := Compile(Query{Limit: -1}, -1, "", "", dnf.NewAliasCounter())
	assert.NoError(t, err)
	assert.False(t, plan.Empty)
	assert.Contains(t, plan.SQL, "from files f0")
}

func TestZeroDatasetSelectorReturnsEmpty(t *testing.T) {
	sel := &dsselect.Selector{Patterns: []dsselect.Pattern{{Namespace: "root", Name: "missing"}}}
	plan, err := Compile(Query{Selector: sel, Limit: -1}, 0, "", "", dnf.NewAliasCounter())
	assert.NoError(t, err)
	assert.True(t, plan.Empty)
}

func TestSingleDatasetSelectorDelegates(t *testing.T) {
	sel := &dsselect.Selector{Patterns: []dsselect.Pattern{{Namespace: "root", Name: "data"}}}
	plan, err := Compile(Query{Selector: sel, Limit: -1}, 1, "root", "data", dnf.NewAliasCounter())
	assert.NoError(t, err)
	assert.Contains(t, plan.SQL, "dataset_namespace = 'root'")
	assert.Contains(t, plan.SQL, "dataset_name = 'data'")
}

func TestManyDatasetSelectorUsesJoinPath(t *testing.T) {
	sel := &dsselect.Selector{Patterns: []dsselect.Pattern{
		{Namespace: "root", Name: "a"},
		{Namespace: "root", Name: "b"},
	}}
	plan, err := Compile(Query{Selector: sel, Limit: -1}, 2, "", "", dnf.NewAliasCounter())
	assert.NoError(t, err)
	assert.Contains(t, plan.SQL, "with selected_datasets as (")
	assert.Contains(t, plan.SQL, "inner join files_datasets")
}

func TestEmptyDNFProducesNoWhereClause(t *testing.T) {
	plan, err := Compile(Query{Limit: -1}, -1, "", "", dnf.NewAliasCounter())
	assert.NoError(t, err)
	assert.NotContains(t, plan.SQL, "where")
}

func TestRelationshipHopDedups(t *testing.T) {
	sql := RelationshipHop(Parents, false, false, []string{"abc", "def"}, dnf.NewAliasCounter())
	assert.Contains(t, sql, "select distinct")
	assert.Contains(t, sql, "parent_child")
	assert.Contains(t, sql, "any(array['abc','def'])")
}
