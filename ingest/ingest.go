// Package ingest implements bulk file registration: many files and their
// parent/child edges written in a single caller-supplied transaction,
// choosing between a row-by-row insert and a bulk COPY path depending on
// batch size. Dataset membership is not recorded here.
//
// Grounded on original_source/metacat/db/dbobjects2.py's DBFile.create_many
// and original_source/metacat/common/dbbase.py's insert_many (the
// copy_threshold row-vs-copy branch).
package ingest

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/lib/pq"

	"github.com/scicatalog/catalog/catalogerr"
	"github.com/scicatalog/catalog/model"
	"github.com/scicatalog/catalog/name"
)

// DefaultCopyThreshold mirrors insert_many's copy_threshold default: batches
// at or below this size use row inserts, larger batches use COPY.
const DefaultCopyThreshold = 100

// Request is one batch of files to register, plus the default creator and
// copy threshold for this call.
type Request struct {
	Files         []*model.File
	Creator       string
	CopyThreshold int // 0 means DefaultCopyThreshold
}

// execer is the narrow *sql.Tx surface CreateMany needs. Declaring it as an
// interface (rather than taking *sql.Tx directly) lets repository tests
// substitute fakeExecer and exercise the row-insert and parent-edge paths
// without a live Postgres transaction; *sql.Tx satisfies it unmodified.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	PrepareContext(ctx context.Context, query string) (*sql.Stmt, error)
}

// CreateMany registers every file in req, assigning a fresh FID via
// name.NewFileID to any file that doesn't already have one, recording
// parent edges, and writing both in tx; committing or rolling back tx is
// left to the caller. Unlike create_many's unbound
// second cursor (Open Question 1), every statement here runs against the
// single transaction the caller supplies.
func CreateMany(ctx context.Context, tx execer, req Request) ([]*model.File, error) {
	threshold := req.CopyThreshold
	if threshold == 0 {
		threshold = DefaultCopyThreshold
	}

	for _, f := range req.Files {
		if f.FID == "" {
			f.FID = name.NewFileID()
		}
		if f.Creator == "" {
			f.Creator = req.Creator
		}
	}

	var err error
	if len(req.Files) <= threshold {
		err = insertFilesRows(ctx, tx, req.Files)
	} else {
		err = insertFilesCopy(ctx, tx, req.Files)
	}
	if err != nil {
		return nil, err
	}

	if err := insertParentEdges(ctx, tx, req.Files, threshold); err != nil {
		return nil, err
	}
	return req.Files, nil
}

const insertFileSQL = `
	insert into files(id, namespace, name, metadata, size, checksums, creator)
		values($1, nullif($2, ''), nullif($3, ''), $4, $5, $6, $7)`

func insertFilesRows(ctx context.Context, tx execer, files []*model.File) error {
	for _, f := range files {
		meta, checksums, err := encodeFileJSON(f)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, insertFileSQL, f.FID, f.Namespace, f.Name, meta, f.Size, checksums, nullableString(f.Creator)); err != nil {
			return classifyInsertError(err)
		}
	}
	return nil
}

// insertFilesCopy uses pq.CopyIn, lib/pq's bulk-load entrypoint, in place of
// create_many's hand-assembled tab-delimited COPY FROM STDIN buffer — COPY
// wire-protocol framing is pq's job, not application code's.
func insertFilesCopy(ctx context.Context, tx execer, files []*model.File) error {
	stmt, err := tx.PrepareContext(ctx, pq.CopyIn("files", "id", "namespace", "name", "metadata", "size", "checksums", "creator"))
	if err != nil {
		return catalogerr.Wrap(catalogerr.StoreError, err)
	}
	defer stmt.Close()

	for _, f := range files {
		meta, checksums, err := encodeFileJSON(f)
		if err != nil {
			return err
		}
		if _, err := stmt.ExecContext(ctx, f.FID, nullableString(f.Namespace), nullableString(f.Name), meta, f.Size, checksums, nullableString(f.Creator)); err != nil {
			return classifyInsertError(err)
		}
	}
	if _, err := stmt.ExecContext(ctx); err != nil {
		return classifyInsertError(err)
	}
	return nil
}

const insertParentEdgeSQL = "insert into parent_child(parent_id, child_id) values($1, $2) on conflict do nothing"

func insertParentEdges(ctx context.Context, tx execer, files []*model.File, threshold int) error {
	type edge struct{ child, parent string }
	var edges []edge
	for _, f := range files {
		for _, p := range f.Parents {
			edges = append(edges, edge{child: f.FID, parent: p})
		}
	}
	if len(edges) == 0 {
		return nil
	}

	if len(edges) <= threshold {
		for _, e := range edges {
			if _, err := tx.ExecContext(ctx, insertParentEdgeSQL, e.parent, e.child); err != nil {
				return classifyInsertError(err)
			}
		}
		return nil
	}

	stmt, err := tx.PrepareContext(ctx, pq.CopyIn("parent_child", "parent_id", "child_id"))
	if err != nil {
		return catalogerr.Wrap(catalogerr.StoreError, err)
	}
	defer stmt.Close()
	for _, e := range edges {
		if _, err := stmt.ExecContext(ctx, e.parent, e.child); err != nil {
			return classifyInsertError(err)
		}
	}
	if _, err := stmt.ExecContext(ctx); err != nil {
		return classifyInsertError(err)
	}
	return nil
}

func encodeFileJSON(f *model.File) (meta, checksums []byte, err error) {
	metaMap := f.Metadata
	if metaMap == nil {
		metaMap = map[string]any{}
	}
	meta, err = json.Marshal(metaMap)
	if err != nil {
		return nil, nil, catalogerr.Wrap(catalogerr.StoreError, err)
	}
	checksumMap := map[string]any{}
	for k, v := range f.Checksums {
		checksumMap[k] = v
	}
	checksums, err = json.Marshal(checksumMap)
	if err != nil {
		return nil, nil, catalogerr.Wrap(catalogerr.StoreError, err)
	}
	return meta, checksums, nil
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

const uniqueViolationClass = "23505"

func classifyInsertError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolationClass {
		return catalogerr.Wrap(catalogerr.AlreadyExists, err)
	}
	return catalogerr.Wrap(catalogerr.StoreError, err)
}
