package store

import (
	"context"
	"database/sql"

	"github.com/lib/pq"

	"github.com/scicatalog/catalog/catalogerr"
	"github.com/scicatalog/catalog/model"
)

// GetUser fetches a user with its authenticators and role memberships.
// Returns (nil, nil) when absent.
func (s *Store) GetUser(ctx context.Context, username string) (*model.User, error) {
	var name, email, flags sql.NullString
	err := s.db.QueryRowContext(ctx, "select name, email, flags from users where username = $1", username).
		Scan(&name, &email, &flags)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, catalogerr.Wrap(catalogerr.StoreError, err)
	}

	u := &model.User{
		Username:       username,
		Name:           name.String,
		Email:          email.String,
		Flags:          flags.String,
		Authenticators: map[model.AuthenticatorType]*model.Authenticator{},
	}

	rows, err := s.db.QueryContext(ctx, "select type, secrets from authenticators where username = $1", username)
	if err != nil {
		return nil, catalogerr.Wrap(catalogerr.StoreError, err)
	}
	defer rows.Close()
	for rows.Next() {
		var typ string
		var secrets pq.StringArray
		if err := rows.Scan(&typ, &secrets); err != nil {
			return nil, catalogerr.Wrap(catalogerr.StoreError, err)
		}
		u.Authenticators[model.AuthenticatorType(typ)] = &model.Authenticator{
			Type:    model.AuthenticatorType(typ),
			Secrets: []string(secrets),
		}
	}
	if err := rows.Err(); err != nil {
		return nil, catalogerr.Wrap(catalogerr.StoreError, err)
	}

	rolesOf, err := s.userRolesRelation(username).List(ctx)
	if err != nil {
		return nil, err
	}
	for _, row := range rolesOf {
		u.RoleNames = append(u.RoleNames, scannedString(row[0]))
	}
	return u, nil
}

// userRolesRelation returns the users_roles junction-table accessor pinned
// to one username, with role_name as its varying reference column.
func (s *Store) userRolesRelation(username string) *ManyToMany {
	return NewManyToMany(s, "users_roles", map[string]any{"username": username}, "role_name")
}

// roleMembersRelation returns the users_roles junction-table accessor
// pinned to one role, with username as its varying reference column.
func (s *Store) roleMembersRelation(role string) *ManyToMany {
	return NewManyToMany(s, "users_roles", map[string]any{"role_name": role}, "username")
}

// SaveUser upserts the user row and its authenticators; role membership is
// managed separately through AddRoleMember/RemoveRoleMember.
func (s *Store) SaveUser(ctx context.Context, u *model.User) error {
	_, err := s.db.ExecContext(ctx, `
		insert into users(username, name, email, flags) values($1, $2, $3, $4)
			on conflict(username) do update set name=$2, email=$3, flags=$4`,
		u.Username, nullableString(u.Name), nullableString(u.Email), u.Flags)
	if err != nil {
		return classifyWriteError(err)
	}
	for typ, auth := range u.Authenticators {
		_, err := s.db.ExecContext(ctx, `
			insert into authenticators(username, type, secrets) values($1, $2, $3)
				on conflict(username, type) do update set secrets=$3`,
			u.Username, string(typ), pq.Array(auth.Secrets))
		if err != nil {
			return classifyWriteError(err)
		}
	}
	return nil
}

// GetRole fetches a role with its member list. Returns (nil, nil) when
// absent.
func (s *Store) GetRole(ctx context.Context, name string) (*model.Role, error) {
	var description sql.NullString
	err := s.db.QueryRowContext(ctx, "select description from roles where name = $1", name).Scan(&description)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, catalogerr.Wrap(catalogerr.StoreError, err)
	}
	r := &model.Role{Name: name, Description: description.String}
	members, err := s.roleMembersRelation(name).List(ctx)
	if err != nil {
		return nil, err
	}
	for _, row := range members {
		r.Members = append(r.Members, scannedString(row[0]))
	}
	return r, nil
}

// SaveRole upserts the role row itself; members are managed via
// AddRoleMember/RemoveRoleMember.
func (s *Store) SaveRole(ctx context.Context, r *model.Role) error {
	_, err := s.db.ExecContext(ctx, `
		insert into roles(name, description) values($1, $2)
			on conflict(name) do update set description=$2`,
		r.Name, nullableString(r.Description))
	if err != nil {
		return classifyWriteError(err)
	}
	return nil
}

// AddRoleMember adds username to role, idempotently.
func (s *Store) AddRoleMember(ctx context.Context, role, username string) error {
	return s.roleMembersRelation(role).Add(ctx, username)
}

// RemoveRoleMember removes username from role, if present.
func (s *Store) RemoveRoleMember(ctx context.Context, role, username string) error {
	return s.roleMembersRelation(role).Remove(ctx, false, username)
}

// IsRoleMember reports whether username belongs to role.
func (s *Store) IsRoleMember(ctx context.Context, role, username string) (bool, error) {
	return s.roleMembersRelation(role).Contains(ctx, username)
}
