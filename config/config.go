// Package config loads catalogctl's YAML configuration file: the store
// connection plus anything else a CLI invocation needs that isn't worth a
// flag.
//
// Grounded on the teacher's adapter.Config for the field set, and
// gopkg.in/yaml.v2 (already used by the teacher's go.mod) for the file
// format rather than a bespoke flag-only setup. The environment-variable
// override names (PGHOST/PGPORT/PGUSER/PGPASSWORD/PGDATABASE/PGSSLMODE)
// are lifted directly from database/postgres/database_test.go's
// setupTestDatabase, which reads the same libpq-standard names to avoid
// putting a password in a checked-in file.
package config

import (
	"os"
	"strconv"

	"gopkg.in/yaml.v2"

	"github.com/scicatalog/catalog/store"
)

// Config is the top-level shape of catalogctl's config file.
type Config struct {
	Store store.Config `yaml:"store"`
}

// Load reads and parses a YAML config file from path, then lets
// PGHOST/PGPORT/PGUSER/PGPASSWORD/PGDATABASE/PGSSLMODE override whatever
// the file set — the same names and precedence the teacher's own
// Postgres test harness uses, so a deployment can keep the password out
// of the YAML file entirely.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, err
	}
	c.Store.ApplyEnvOverrides()
	return &c, nil
}
