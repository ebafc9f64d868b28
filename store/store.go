// Package store is the repository layer: it owns the *sql.DB connection,
// the persisted schema, and CRUD/listing operations for every record type
// in model. Set algebra over file results lives alongside it; bulk ingest
// is in package ingest, which runs against a transaction from BeginTx.
//
// Grounded on the teacher's driver package (database/sql + lib/pq
// connection handling, one adapter file per backend) and
// original_source/metacat/db/dbobjects2.py for the query shapes each
// method issues.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strconv"

	_ "github.com/lib/pq"
)

// Config names a Postgres connection the way driver.Config names a
// mysqldef/psqldef target, trimmed to the fields this engine's store
// actually needs (no DbType switch: this store is Postgres-only).
type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string // defaults to "disable" when empty, matching local dev use
}

// ApplyEnvOverrides lets PGHOST/PGPORT/PGUSER/PGPASSWORD/PGDATABASE/
// PGSSLMODE override whatever c already holds, in place. Intended for
// secrets and per-environment DSN parts that shouldn't live in a checked-in
// config file, the same libpq-standard names the teacher's own
// database/postgres/database_test.go reads.
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("PGHOST"); v != "" {
		c.Host = v
	}
	if v := os.Getenv("PGPORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Port = port
		}
	}
	if v := os.Getenv("PGUSER"); v != "" {
		c.User = v
	}
	if v := os.Getenv("PGPASSWORD"); v != "" {
		c.Password = v
	}
	if v := os.Getenv("PGDATABASE"); v != "" {
		c.Database = v
	}
	if v := os.Getenv("PGSSLMODE"); v != "" {
		c.SSLMode = v
	}
}

func (c Config) dsn() string {
	sslMode := c.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	port := c.Port
	if port == 0 {
		port = 5432
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, port, c.User, c.Password, c.Database, sslMode)
}

// Store wraps the catalog's database handle. Every repository method hangs
// off Store as a receiver so tests can substitute an in-memory fake
// satisfying the same narrow interfaces (model.MetadataLoader, etc.)
// without needing a real Postgres instance.
type Store struct {
	db *sql.DB
}

// Open connects to Postgres and verifies the connection with a ping.
func Open(cfg Config) (*Store, error) {
	db, err := sql.Open("postgres", cfg.dsn())
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

// Bootstrap applies the persisted schema idempotently. Intended for tests
// and local development, not as a migration tool.
func (s *Store) Bootstrap(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, Schema)
	return err
}

// BeginTx opens a transaction. Callers that were handed an outer
// transaction should thread it through their own parameters instead of
// calling this again, per the "participate without committing" discipline.
func (s *Store) BeginTx(ctx context.Context) (*sql.Tx, error) {
	return s.db.BeginTx(ctx, nil)
}

// withTx runs fn inside a fresh transaction when tx is nil, committing on
// success and rolling back on error; when tx is non-nil it participates in
// the caller's transaction without committing or rolling it back.
func (s *Store) withTx(ctx context.Context, tx *sql.Tx, fn func(*sql.Tx) error) error {
	if tx != nil {
		return fn(tx)
	}
	owned, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(owned); err != nil {
		owned.Rollback()
		return err
	}
	return owned.Commit()
}
