package store

import (
	"errors"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"

	"github.com/scicatalog/catalog/catalogerr"
)

func TestConfigDSNAppliesDefaults(t *testing.T) {
	cfg := Config{Host: "db", User: "catalog", Password: "secret", Database: "catalog"}
	dsn := cfg.dsn()
	assert.Contains(t, dsn, "port=5432")
	assert.Contains(t, dsn, "sslmode=disable")
	assert.Contains(t, dsn, "host=db")
}

func TestConfigDSNHonorsOverrides(t *testing.T) {
	cfg := Config{Host: "db", Port: 5433, SSLMode: "require"}
	dsn := cfg.dsn()
	assert.Contains(t, dsn, "port=5433")
	assert.Contains(t, dsn, "sslmode=require")
}

func TestApplyEnvOverridesOverridesOnlySetVars(t *testing.T) {
	t.Setenv("PGHOST", "envhost")
	t.Setenv("PGPASSWORD", "envsecret")
	t.Setenv("PGPORT", "6543")

	cfg := Config{Host: "filehost", Port: 5432, User: "catalog", Password: "filesecret", Database: "catalog"}
	cfg.ApplyEnvOverrides()

	assert.Equal(t, "envhost", cfg.Host)
	assert.Equal(t, "envsecret", cfg.Password)
	assert.Equal(t, 6543, cfg.Port)
	assert.Equal(t, "catalog", cfg.User, "unset PGUSER must leave the file value alone")
}

func TestApplyEnvOverridesIgnoresUnsetVars(t *testing.T) {
	cfg := Config{Host: "filehost", Port: 5432}
	cfg.ApplyEnvOverrides()
	assert.Equal(t, "filehost", cfg.Host)
	assert.Equal(t, 5432, cfg.Port)
}

func TestClassifyWriteErrorMapsUniqueViolation(t *testing.T) {
	err := classifyWriteError(&pq.Error{Code: "23505", Message: "duplicate key"})
	kind, ok := catalogerr.KindOf(err)
	assert.True(t, ok)
	assert.Equal(t, catalogerr.AlreadyExists, kind)
}

func TestClassifyWriteErrorMapsOtherPQErrorsToStoreError(t *testing.T) {
	err := classifyWriteError(&pq.Error{Code: "23502", Message: "not null violation"})
	kind, ok := catalogerr.KindOf(err)
	assert.True(t, ok)
	assert.Equal(t, catalogerr.StoreError, kind)
}

func TestClassifyWriteErrorWrapsNonPQErrors(t *testing.T) {
	err := classifyWriteError(errors.New("connection reset"))
	kind, ok := catalogerr.KindOf(err)
	assert.True(t, ok)
	assert.Equal(t, catalogerr.StoreError, kind)
}

func TestAncestryWalksDottedPathToRoot(t *testing.T) {
	assert.Equal(t, []string{"a.b.c", "a.b", "a", ""}, ancestry("a.b.c"))
	assert.Equal(t, []string{"a", ""}, ancestry("a"))
	assert.Equal(t, []string{""}, ancestry(""))
}

func TestNullableStringConvertsEmptyToNil(t *testing.T) {
	assert.Nil(t, nullableString(""))
	assert.Equal(t, "x", nullableString("x"))
}

func TestManyToManyWhereClauseOrdersLookupColumns(t *testing.T) {
	m := NewManyToMany(&Store{}, "files_datasets", map[string]any{"dataset_name": "n", "dataset_namespace": "ns"}, "file_id")
	where, args := m.whereClause(1)
	assert.Equal(t, "where dataset_name = $1 and dataset_namespace = $2", where)
	assert.Equal(t, []any{"n", "ns"}, args)
}

func TestManyToManyWhereClauseEmptyWithNoLookup(t *testing.T) {
	m := NewManyToMany(&Store{}, "users_roles", map[string]any{})
	where, args := m.whereClause(1)
	assert.Equal(t, "", where)
	assert.Nil(t, args)
}

func TestScannedStringNormalizesByteSlice(t *testing.T) {
	assert.Equal(t, "bob", scannedString([]byte("bob")))
	assert.Equal(t, "bob", scannedString("bob"))
}
