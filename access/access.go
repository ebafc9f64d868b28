// Package access wires model.Namespace's ownership predicate to a live
// store, and adds the admin-flag override the engine layer (not the model
// layer, which stays store-agnostic) is responsible for.
//
// Grounded on original_source/metacat/db/dbobjects2.py's DBNamespace.owned_by
// and DBUser.is_admin.
package access

import (
	"context"

	"github.com/scicatalog/catalog/model"
)

// RoleLister looks up a role's member usernames; store.Store satisfies this
// via GetRole.
type RoleLister interface {
	GetRole(ctx context.Context, name string) (*model.Role, error)
}

// Checker answers ownership and visibility questions against a live store.
type Checker struct {
	roles RoleLister
}

// NewChecker builds a Checker backed by roles.
func NewChecker(roles RoleLister) *Checker {
	return &Checker{roles: roles}
}

// CanModify reports whether user may modify resources in namespace: true if
// user is an admin, or model.Namespace.OwnedBy says so once role membership
// is resolved against the store.
func (c *Checker) CanModify(ctx context.Context, ns *model.Namespace, user *model.User, direct bool) (bool, error) {
	if user.IsAdmin() {
		return true, nil
	}
	var lookupErr error
	owned := ns.OwnedBy(user.Username, direct, func(role string) []string {
		r, err := c.roles.GetRole(ctx, role)
		if err != nil {
			lookupErr = err
			return nil
		}
		if r == nil {
			return nil
		}
		return r.Members
	})
	if lookupErr != nil {
		return false, lookupErr
	}
	return owned, nil
}
