package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadParsesStoreSection(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catalogctl.yaml")
	doc := []byte("store:\n  host: db.example.org\n  port: 5433\n  user: catalog\n  database: catalog\n")
	assert.NoError(t, os.WriteFile(path, doc, 0o644))

	c, err := Load(path)
	assert.NoError(t, err)
	assert.Equal(t, "db.example.org", c.Store.Host)
	assert.Equal(t, 5433, c.Store.Port)
	assert.Equal(t, "catalog", c.Store.User)
	assert.Equal(t, "catalog", c.Store.Database)
}

func TestLoadMissingFileErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadAppliesEnvOverridesOverFileValues(t *testing.T) {
	t.Setenv("PGPASSWORD", "envsecret")
	t.Setenv("PGHOST", "envhost")

	dir := t.TempDir()
	path := filepath.Join(dir, "catalogctl.yaml")
	doc := []byte("store:\n  host: db.example.org\n  user: catalog\n  password: filesecret\n  database: catalog\n")
	assert.NoError(t, os.WriteFile(path, doc, 0o644))

	c, err := Load(path)
	assert.NoError(t, err)
	assert.Equal(t, "envhost", c.Store.Host)
	assert.Equal(t, "envsecret", c.Store.Password)
	assert.Equal(t, "catalog", c.Store.User, "unset PGUSER must leave the file value alone")
}
