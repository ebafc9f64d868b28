package store

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/scicatalog/catalog/catalogerr"
	"github.com/scicatalog/catalog/model"
)

// GetDataset fetches a dataset by its (namespace, name) key. Returns
// (nil, nil) when absent.
func (s *Store) GetDataset(ctx context.Context, namespace, name string) (*model.Dataset, error) {
	row := s.db.QueryRowContext(ctx, `
		select parent_namespace, parent_name, frozen, monotonic, metadata, creator, created_timestamp, description
			from datasets where namespace = $1 and name = $2`, namespace, name)

	var (
		parentNamespace, parentName, creator, description sql.NullString
		frozen, monotonic                                 bool
		meta                                               []byte
		createdAt                                          sql.NullFloat64
	)
	err := row.Scan(&parentNamespace, &parentName, &frozen, &monotonic, &meta, &creator, &createdAt, &description)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, catalogerr.Wrap(catalogerr.StoreError, err)
	}

	d := &model.Dataset{
		Namespace:       namespace,
		Name:            name,
		ParentNamespace: parentNamespace.String,
		ParentName:      parentName.String,
		Frozen:          frozen,
		Monotonic:       monotonic,
		Creator:         creator.String,
		CreatedAt:       int64(createdAt.Float64),
		Description:     description.String,
	}
	if len(meta) > 0 {
		if err := json.Unmarshal(meta, &d.Metadata); err != nil {
			return nil, catalogerr.Wrap(catalogerr.StoreError, err)
		}
	}
	return d, nil
}

// ExistsDataset reports whether the (namespace, name) key is taken.
func (s *Store) ExistsDataset(ctx context.Context, namespace, name string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		"select exists(select 1 from datasets where namespace = $1 and name = $2)", namespace, name).Scan(&exists)
	if err != nil {
		return false, catalogerr.Wrap(catalogerr.StoreError, err)
	}
	return exists, nil
}

// SaveDataset upserts a dataset on its primary key. Before writing, it
// walks the would-be parent chain and rejects the save with
// CircularDatasetDependency if the dataset would appear in its own
// ancestry — the Open Question 4 decision: cycle detection happens here,
// not as an after-the-fact constraint.
func (s *Store) SaveDataset(ctx context.Context, d *model.Dataset) error {
	if d.HasParent() {
		cyclic, err := s.datasetInAncestry(ctx, d.ParentKey(), d.Key())
		if err != nil {
			return err
		}
		if cyclic {
			return catalogerr.New(catalogerr.CircularDatasetDependency, d.Key().String())
		}
	}

	meta, err := json.Marshal(orEmptyObject(d.Metadata))
	if err != nil {
		return catalogerr.Wrap(catalogerr.StoreError, err)
	}

	_, err = s.db.ExecContext(ctx, `
		insert into datasets(namespace, name, parent_namespace, parent_name, frozen, monotonic, metadata, creator, description)
			values($1, $2, $3, $4, $5, $6, $7, $8, $9)
			on conflict(namespace, name)
				do update set parent_namespace=$3, parent_name=$4, frozen=$5, monotonic=$6, metadata=$7, description=$9`,
		d.Namespace, d.Name, nullableString(d.ParentNamespace), nullableString(d.ParentName),
		d.Frozen, d.Monotonic, meta, nullableString(d.Creator), nullableString(d.Description))
	if err != nil {
		return classifyWriteError(err)
	}
	return nil
}

// datasetInAncestry walks parent references starting at start, reporting
// true if target is reached (meaning target would be its own ancestor once
// start is made target's parent).
func (s *Store) datasetInAncestry(ctx context.Context, start, target model.DatasetKey) (bool, error) {
	visited := map[model.DatasetKey]bool{}
	current := start
	for {
		if current == target {
			return true, nil
		}
		if visited[current] {
			return false, nil // an existing cycle elsewhere; not this save's doing
		}
		visited[current] = true

		var parentNamespace, parentName sql.NullString
		err := s.db.QueryRowContext(ctx,
			"select parent_namespace, parent_name from datasets where namespace = $1 and name = $2",
			current.Namespace, current.Name).Scan(&parentNamespace, &parentName)
		if err == sql.ErrNoRows || !parentNamespace.Valid {
			return false, nil
		}
		if err != nil {
			return false, catalogerr.Wrap(catalogerr.StoreError, err)
		}
		current = model.DatasetKey{Namespace: parentNamespace.String, Name: parentName.String}
	}
}

// filesDatasetsRelation returns the files_datasets junction-table accessor
// pinned to one dataset, with file_id as its varying reference column.
func (s *Store) filesDatasetsRelation(datasetNamespace, datasetName string) *ManyToMany {
	return NewManyToMany(s, "files_datasets",
		map[string]any{"dataset_namespace": datasetNamespace, "dataset_name": datasetName}, "file_id")
}

// AddFile records file membership in a dataset, ignoring an already-present
// triple.
func (s *Store) AddFile(ctx context.Context, tx *sql.Tx, fid, datasetNamespace, datasetName string) error {
	return s.withTx(ctx, tx, func(t *sql.Tx) error {
		return s.filesDatasetsRelation(datasetNamespace, datasetName).InTx(t).Add(ctx, fid)
	})
}

// FileInDataset reports whether fid is a member of the given dataset.
func (s *Store) FileInDataset(ctx context.Context, fid, datasetNamespace, datasetName string) (bool, error) {
	return s.filesDatasetsRelation(datasetNamespace, datasetName).Contains(ctx, fid)
}
