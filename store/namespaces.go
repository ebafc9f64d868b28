package store

import (
	"context"
	"database/sql"

	"github.com/scicatalog/catalog/catalogerr"
	"github.com/scicatalog/catalog/model"
)

// GetNamespace fetches a namespace by name. Returns (nil, nil) when absent.
func (s *Store) GetNamespace(ctx context.Context, name string) (*model.Namespace, error) {
	var ownerUser, ownerRole, description, creator sql.NullString
	var createdAt sql.NullFloat64
	err := s.db.QueryRowContext(ctx, `
		select owner_user, owner_role, description, creator, created_timestamp
			from namespaces where name = $1`, name).
		Scan(&ownerUser, &ownerRole, &description, &creator, &createdAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, catalogerr.Wrap(catalogerr.StoreError, err)
	}
	return &model.Namespace{
		Name:        name,
		OwnerUser:   ownerUser.String,
		OwnerRole:   ownerRole.String,
		Description: description.String,
		Creator:     creator.String,
		CreatedAt:   int64(createdAt.Float64),
	}, nil
}

// SaveNamespace upserts a namespace on its primary key.
func (s *Store) SaveNamespace(ctx context.Context, n *model.Namespace) error {
	_, err := s.db.ExecContext(ctx, `
		insert into namespaces(name, owner_user, owner_role, description, creator)
			values($1, $2, $3, $4, $5)
			on conflict(name)
				do update set owner_user=$2, owner_role=$3, description=$4`,
		n.Name, nullableString(n.OwnerUser), nullableString(n.OwnerRole),
		nullableString(n.Description), nullableString(n.Creator))
	if err != nil {
		return classifyWriteError(err)
	}
	return nil
}

// DeleteNamespace removes a namespace, rejecting the deletion with
// catalogerr.StoreError-wrapped context when the namespace is non-empty
// (the caller-visible "distinct error" spec.md's Lifecycles section calls
// for, implemented here as a plain count check rather than relying on a
// database constraint, since namespace "emptiness" depends on datasets AND
// files, which have no foreign key back to namespaces in this schema).
func (s *Store) DeleteNamespace(ctx context.Context, name string) error {
	var fileCount int
	if err := s.db.QueryRowContext(ctx, "select count(*) from files where namespace = $1", name).Scan(&fileCount); err != nil {
		return catalogerr.Wrap(catalogerr.StoreError, err)
	}
	var datasetCount int
	if err := s.db.QueryRowContext(ctx, "select count(*) from datasets where namespace = $1", name).Scan(&datasetCount); err != nil {
		return catalogerr.Wrap(catalogerr.StoreError, err)
	}
	if fileCount > 0 || datasetCount > 0 {
		return catalogerr.New(catalogerr.StoreError, "namespace "+name+" is not empty")
	}
	if _, err := s.db.ExecContext(ctx, "delete from namespaces where name = $1", name); err != nil {
		return catalogerr.Wrap(catalogerr.StoreError, err)
	}
	return nil
}
