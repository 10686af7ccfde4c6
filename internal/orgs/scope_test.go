package orgs

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskboard/taskboard/internal/rbac"
)

type stubStore struct {
	children map[int64][]Organization
	err      error
	calls    int
}

func (s *stubStore) FindByParent(ctx context.Context, parentID int64) ([]Organization, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.children[parentID], nil
}

func parent(id int64) *int64 { return &id }

func hierarchy() *stubStore {
	return &stubStore{children: map[int64][]Organization{
		1: {{ID: 2, Name: "Child A", ParentOrgID: parent(1)}, {ID: 3, Name: "Child B", ParentOrgID: parent(1)}},
		// Not reachable from 1 in one hop; must never leak into a scope for org 1.
		2: {{ID: 9, Name: "Grandchild", ParentOrgID: parent(2)}},
	}}
}

func TestScopeForViewerIsHomeOnly(t *testing.T) {
	store := hierarchy()
	r := NewResolver(store)

	scope, err := r.ScopeFor(context.Background(), rbac.Principal{ID: 7, Role: rbac.RoleViewer, OrganizationID: 1})
	require.NoError(t, err)
	assert.Equal(t, []int64{1}, scope.IDs())
	assert.Zero(t, store.calls, "viewer scope needs no lookup")
}

func TestScopeForOwnerAndAdminIncludeDirectChildren(t *testing.T) {
	for _, role := range []rbac.Role{rbac.RoleOwner, rbac.RoleAdmin} {
		store := hierarchy()
		scope, err := NewResolver(store).ScopeFor(context.Background(), rbac.Principal{ID: 1, Role: role, OrganizationID: 1})
		require.NoError(t, err)
		assert.Equal(t, []int64{1, 2, 3}, scope.IDs(), role)
		assert.False(t, scope.Contains(9), "grandchildren are out of scope")
		assert.Equal(t, 1, store.calls, "exactly one store query")
	}
}

func TestScopeForAdminWithoutChildren(t *testing.T) {
	scope, err := NewResolver(hierarchy()).ScopeFor(context.Background(), rbac.Principal{Role: rbac.RoleAdmin, OrganizationID: 3})
	require.NoError(t, err)
	assert.Equal(t, []int64{3}, scope.IDs())
}

func TestScopeForUnknownRoleIsEmpty(t *testing.T) {
	store := hierarchy()
	scope, err := NewResolver(store).ScopeFor(context.Background(), rbac.Principal{Role: rbac.Role("Auditor"), OrganizationID: 1})
	require.NoError(t, err)
	assert.True(t, scope.Empty())
	assert.False(t, scope.Contains(1))
	assert.Zero(t, store.calls)
}

func TestScopeForPropagatesStoreError(t *testing.T) {
	store := &stubStore{err: errors.New("db down")}
	_, err := NewResolver(store).ScopeFor(context.Background(), rbac.Principal{Role: rbac.RoleOwner, OrganizationID: 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db down")
}
