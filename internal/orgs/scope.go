package orgs

import (
	"context"
	"fmt"
	"sort"

	"github.com/taskboard/taskboard/internal/rbac"
)

// Scope is the request-scoped set of organization IDs a principal may access.
type Scope struct {
	ids map[int64]struct{}
}

// NewScope builds a Scope from ids.
func NewScope(ids ...int64) Scope {
	set := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return Scope{ids: set}
}

// Contains reports whether orgID is in scope.
func (s Scope) Contains(orgID int64) bool {
	_, ok := s.ids[orgID]
	return ok
}

// Empty reports whether the scope grants nothing.
func (s Scope) Empty() bool {
	return len(s.ids) == 0
}

// IDs returns the organization IDs in ascending order.
func (s Scope) IDs() []int64 {
	out := make([]int64, 0, len(s.ids))
	for id := range s.ids {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Resolver computes organization scopes. It holds no state besides the store
// and never caches, so results reflect the hierarchy at call time.
type Resolver struct {
	store Store
}

// NewResolver constructs a Resolver.
func NewResolver(store Store) *Resolver {
	return &Resolver{store: store}
}

// ScopeFor returns the organizations p may access:
//   - Viewer: the home organization only, without touching the store.
//   - Owner, Admin: the home organization plus its direct children.
//   - anything else: nothing.
//
// Children of children are never included.
func (r *Resolver) ScopeFor(ctx context.Context, p rbac.Principal) (Scope, error) {
	switch p.Role {
	case rbac.RoleViewer:
		return NewScope(p.OrganizationID), nil
	case rbac.RoleOwner, rbac.RoleAdmin:
		children, err := r.store.FindByParent(ctx, p.OrganizationID)
		if err != nil {
			return Scope{}, fmt.Errorf("orgs: resolve scope: %w", err)
		}
		ids := make([]int64, 0, len(children)+1)
		ids = append(ids, p.OrganizationID)
		for _, c := range children {
			ids = append(ids, c.ID)
		}
		return NewScope(ids...), nil
	default:
		return NewScope(), nil
	}
}
