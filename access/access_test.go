package access

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/scicatalog/catalog/model"
)

type fakeRoles struct {
	roles map[string]*model.Role
}

func (f *fakeRoles) GetRole(ctx context.Context, name string) (*model.Role, error) {
	return f.roles[name], nil
}

func TestCanModifyAdminAlwaysAllowed(t *testing.T) {
	c := NewChecker(&fakeRoles{})
	ns := &model.Namespace{Name: "exp", OwnerUser: "someone-else"}
	admin := &model.User{Username: "root", Flags: "a"}
	ok, err := c.CanModify(context.Background(), ns, admin, false)
	assert.NoError(t, err)
	assert.True(t, ok)
}

func TestCanModifyDirectOwnerUser(t *testing.T) {
	c := NewChecker(&fakeRoles{})
	ns := &model.Namespace{Name: "exp", OwnerUser: "alice"}
	alice := &model.User{Username: "alice"}
	ok, err := c.CanModify(context.Background(), ns, alice, false)
	assert.NoError(t, err)
	assert.True(t, ok)
}

func TestCanModifyViaRoleMembershipUnlessDirect(t *testing.T) {
	c := NewChecker(&fakeRoles{roles: map[string]*model.Role{
		"experimenters": {Name: "experimenters", Members: []string{"bob"}},
	}})
	ns := &model.Namespace{Name: "exp", OwnerRole: "experimenters"}
	bob := &model.User{Username: "bob"}

	ok, err := c.CanModify(context.Background(), ns, bob, false)
	assert.NoError(t, err)
	assert.True(t, ok)

	ok, err = c.CanModify(context.Background(), ns, bob, true)
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestCanModifyDeniedForUnrelatedUser(t *testing.T) {
	c := NewChecker(&fakeRoles{})
	ns := &model.Namespace{Name: "exp", OwnerUser: "alice"}
	eve := &model.User{Username: "eve"}
	ok, err := c.CanModify(context.Background(), ns, eve, false)
	assert.NoError(t, err)
	assert.False(t, ok)
}
