package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"iter"

	"github.com/scicatalog/catalog/catalogerr"
	"github.com/scicatalog/catalog/model"
)

const fileColumns = "id, namespace, name, metadata, size, checksums, creator, created_timestamp"

// GetFile fetches a file by its FID. Returns (nil, nil) when absent, per the
// "NotFound surfaces as null/absent" policy.
func (s *Store) GetFile(ctx context.Context, fid string) (*model.File, error) {
	row := s.db.QueryRowContext(ctx, "select "+fileColumns+" from files where id = $1", fid)
	f, err := scanFile(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, catalogerr.Wrap(catalogerr.StoreError, err)
	}
	return f.WithLoader(s), nil
}

// ExistsFile reports whether a file with the given FID exists.
func (s *Store) ExistsFile(ctx context.Context, fid string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, "select exists(select 1 from files where id = $1)", fid).Scan(&exists)
	if err != nil {
		return false, catalogerr.Wrap(catalogerr.StoreError, err)
	}
	return exists, nil
}

// FileMetadata implements model.MetadataLoader for lazy per-file fetches.
func (s *Store) FileMetadata(ctx context.Context, fid string) (map[string]any, error) {
	var raw []byte
	err := s.db.QueryRowContext(ctx, "select metadata from files where id = $1", fid).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil, catalogerr.New(catalogerr.NotFound, fid)
	}
	if err != nil {
		return nil, catalogerr.Wrap(catalogerr.StoreError, err)
	}
	var meta map[string]any
	if err := json.Unmarshal(raw, &meta); err != nil {
		return nil, catalogerr.Wrap(catalogerr.StoreError, err)
	}
	return meta, nil
}

// SaveFile performs a strict insert: uniqueness violations on (namespace,
// name) or id surface as AlreadyExists, never an upsert.
func (s *Store) SaveFile(ctx context.Context, tx *sql.Tx, f *model.File) error {
	meta, err := json.Marshal(orEmptyObject(f.Metadata))
	if err != nil {
		return catalogerr.Wrap(catalogerr.StoreError, err)
	}
	checksums, err := json.Marshal(orEmptyObject(anyMapFromStrings(f.Checksums)))
	if err != nil {
		return catalogerr.Wrap(catalogerr.StoreError, err)
	}
	return s.withTx(ctx, tx, func(t *sql.Tx) error {
		_, err := t.ExecContext(ctx, `
			insert into files(id, namespace, name, metadata, size, checksums, creator)
				values($1, nullif($2, ''), nullif($3, ''), $4, $5, $6, $7)`,
			f.FID, f.Namespace, f.Name, meta, f.Size, checksums, nullableString(f.Creator))
		if err != nil {
			return classifyWriteError(err)
		}
		return nil
	})
}

// ListFiles runs query and streams results lazily. The returned error
// accessor reports the error that ended the sequence, if any (including
// context cancellation); callers must check it after the sequence is
// exhausted or abandoned. The query runs only when the sequence is ranged
// over, and the underlying *sql.Rows is closed when that range ends.
func (s *Store) ListFiles(ctx context.Context, query string, args ...any) (iter.Seq[model.File], func() error) {
	var lastErr error
	seq := func(yield func(model.File) bool) {
		rows, err := s.db.QueryContext(ctx, query, args...)
		if err != nil {
			lastErr = catalogerr.Wrap(catalogerr.StoreError, err)
			return
		}
		defer rows.Close()
		for rows.Next() {
			f, err := scanFile(rows)
			if err != nil {
				lastErr = catalogerr.Wrap(catalogerr.StoreError, err)
				return
			}
			if !yield(*f.WithLoader(s)) {
				return
			}
		}
		if err := rows.Err(); err != nil {
			lastErr = catalogerr.Wrap(catalogerr.StoreError, err)
		}
	}
	return seq, func() error { return lastErr }
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanFile(row rowScanner) (*model.File, error) {
	var (
		fid, namespace, name, creator sql.NullString
		meta, checksums               []byte
		size                          sql.NullInt64
		createdAt                     sql.NullFloat64
	)
	if err := row.Scan(&fid, &namespace, &name, &meta, &size, &checksums, &creator, &createdAt); err != nil {
		return nil, err
	}
	f := model.NewFile(fid.String, namespace.String, name.String)
	f.Creator = creator.String
	f.CreatedAt = int64(createdAt.Float64)
	if size.Valid {
		v := size.Int64
		f.Size = &v
	}
	if len(meta) > 0 {
		var m map[string]any
		if err := json.Unmarshal(meta, &m); err != nil {
			return nil, err
		}
		f.Metadata = m
	}
	if len(checksums) > 0 {
		var c map[string]string
		if err := json.Unmarshal(checksums, &c); err != nil {
			return nil, err
		}
		f.Checksums = c
	}
	return f, nil
}

func orEmptyObject(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	return m
}

func anyMapFromStrings(m map[string]string) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// --- set algebra (component C) ---

// Join is multi-way intersection on file-ID. All but the first operand are
// materialized into hash sets; the result preserves the first operand's
// order.
func Join(sets ...iter.Seq[model.File]) iter.Seq[model.File] {
	if len(sets) == 0 {
		return func(func(model.File) bool) {}
	}
	if len(sets) == 1 {
		return sets[0]
	}
	idSets := make([]map[string]bool, len(sets)-1)
	for i, s := range sets[1:] {
		idSets[i] = idSetOf(s)
	}
	return func(yield func(model.File) bool) {
		for f := range sets[0] {
			inAll := true
			for _, ids := range idSets {
				if !ids[f.FID] {
					inAll = false
					break
				}
			}
			if inAll && !yield(f) {
				return
			}
		}
	}
}

// Union is first-seen-wins by file-ID, preserving input order: the first
// input's files come first, then each subsequent input's files not already
// seen.
func Union(sets ...iter.Seq[model.File]) iter.Seq[model.File] {
	return func(yield func(model.File) bool) {
		seen := map[string]bool{}
		for _, s := range sets {
			for f := range s {
				if seen[f.FID] {
					continue
				}
				seen[f.FID] = true
				if !yield(f) {
					return
				}
			}
		}
	}
}

// Subtract is left-minus-right by file-ID; right is materialized into a
// hash set before the left operand is streamed.
func Subtract(left, right iter.Seq[model.File]) iter.Seq[model.File] {
	rightIDs := idSetOf(right)
	return func(yield func(model.File) bool) {
		for f := range left {
			if rightIDs[f.FID] {
				continue
			}
			if !yield(f) {
				return
			}
		}
	}
}

func idSetOf(s iter.Seq[model.File]) map[string]bool {
	ids := map[string]bool{}
	for f := range s {
		ids[f.FID] = true
	}
	return ids
}
