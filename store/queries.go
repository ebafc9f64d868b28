package store

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/scicatalog/catalog/catalogerr"
	"github.com/scicatalog/catalog/model"
)

// GetNamedQuery fetches a saved query by key. Returns (nil, nil) when
// absent.
func (s *Store) GetNamedQuery(ctx context.Context, namespace, name string) (*model.NamedQuery, error) {
	var source, description, creator sql.NullString
	var parameters []byte
	var createdAt sql.NullFloat64
	err := s.db.QueryRowContext(ctx, `
		select source, parameters, description, creator, created_timestamp
			from queries where namespace = $1 and name = $2`, namespace, name).
		Scan(&source, &parameters, &description, &creator, &createdAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, catalogerr.Wrap(catalogerr.StoreError, err)
	}
	params, err := unmarshalParameters(parameters)
	if err != nil {
		return nil, catalogerr.Wrap(catalogerr.StoreError, err)
	}
	return &model.NamedQuery{
		Namespace:   namespace,
		Name:        name,
		Source:      source.String,
		Parameters:  params,
		Description: description.String,
		Creator:     creator.String,
		CreatedAt:   int64(createdAt.Float64),
	}, nil
}

// SaveNamedQuery upserts a saved query on its (namespace, name) key.
func (s *Store) SaveNamedQuery(ctx context.Context, q *model.NamedQuery) error {
	params, err := json.Marshal(orEmptyParameters(q.Parameters))
	if err != nil {
		return catalogerr.Wrap(catalogerr.StoreError, err)
	}
	_, err = s.db.ExecContext(ctx, `
		insert into queries(namespace, name, source, parameters, description, creator)
			values($1, $2, $3, $4, $5, $6)
			on conflict(namespace, name) do update set source=$3, parameters=$4, description=$5`,
		q.Namespace, q.Name, q.Source, params, nullableString(q.Description), nullableString(q.Creator))
	if err != nil {
		return classifyWriteError(err)
	}
	return nil
}

// ListNamedQueries lists queries, optionally scoped to one namespace.
func (s *Store) ListNamedQueries(ctx context.Context, namespace string) ([]*model.NamedQuery, error) {
	var rows *sql.Rows
	var err error
	if namespace != "" {
		rows, err = s.db.QueryContext(ctx, "select namespace, name, source, parameters, description, creator, created_timestamp from queries where namespace = $1", namespace)
	} else {
		rows, err = s.db.QueryContext(ctx, "select namespace, name, source, parameters, description, creator, created_timestamp from queries")
	}
	if err != nil {
		return nil, catalogerr.Wrap(catalogerr.StoreError, err)
	}
	defer rows.Close()

	var out []*model.NamedQuery
	for rows.Next() {
		var ns, n, source string
		var parameters []byte
		var description, creator sql.NullString
		var createdAt sql.NullFloat64
		if err := rows.Scan(&ns, &n, &source, &parameters, &description, &creator, &createdAt); err != nil {
			return nil, catalogerr.Wrap(catalogerr.StoreError, err)
		}
		params, err := unmarshalParameters(parameters)
		if err != nil {
			return nil, catalogerr.Wrap(catalogerr.StoreError, err)
		}
		out = append(out, &model.NamedQuery{
			Namespace: ns, Name: n, Source: source, Parameters: params,
			Description: description.String, Creator: creator.String, CreatedAt: int64(createdAt.Float64),
		})
	}
	return out, rows.Err()
}

func orEmptyParameters(params []map[string]any) []map[string]any {
	if params == nil {
		return []map[string]any{}
	}
	return params
}

func unmarshalParameters(raw []byte) ([]map[string]any, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var params []map[string]any
	if err := json.Unmarshal(raw, &params); err != nil {
		return nil, err
	}
	return params, nil
}
