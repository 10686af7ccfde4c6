package orgs

import (
	"context"
	"fmt"

	"github.com/taskboard/taskboard/internal/rbac"
	"github.com/taskboard/taskboard/internal/shared"
)

// Decision is the outcome of a row-level access check.
type Decision int

// Access decisions.
const (
	Allowed Decision = iota
	NotFound
	Forbidden
)

func (d Decision) String() string {
	switch d {
	case Allowed:
		return "allowed"
	case NotFound:
		return "not_found"
	case Forbidden:
		return "forbidden"
	}
	return fmt.Sprintf("decision(%d)", int(d))
}

// Err maps the decision onto the shared error taxonomy.
func (d Decision) Err() error {
	switch d {
	case NotFound:
		return shared.ErrNotFound
	case Forbidden:
		return shared.ErrOutOfScope
	}
	return nil
}

// Scoped is a resource owned by exactly one organization.
type Scoped interface {
	OwningOrganization() int64
}

// Finder looks a scoped resource up by id. found is false when no row exists.
type Finder[T Scoped] interface {
	FindByID(ctx context.Context, id int64) (resource T, found bool, err error)
}

// ScopeSource resolves a principal's organization scope.
type ScopeSource interface {
	ScopeFor(ctx context.Context, p rbac.Principal) (Scope, error)
}

// Guard decides whether a principal may act on a specific resource. Existence
// is checked before scope, so out-of-scope principals can tell a missing
// resource from one they may not touch.
type Guard[T Scoped] struct {
	finder Finder[T]
	scopes ScopeSource
}

// NewGuard constructs a Guard.
func NewGuard[T Scoped](finder Finder[T], scopes ScopeSource) *Guard[T] {
	return &Guard[T]{finder: finder, scopes: scopes}
}

// CheckAccess looks the resource up and tests its organization against the
// principal's scope. The returned resource is the zero value unless found.
func (g *Guard[T]) CheckAccess(ctx context.Context, p rbac.Principal, id int64) (T, Decision, error) {
	var zero T
	resource, found, err := g.finder.FindByID(ctx, id)
	if err != nil {
		return zero, Forbidden, err
	}
	if !found {
		return zero, NotFound, nil
	}
	scope, err := g.scopes.ScopeFor(ctx, p)
	if err != nil {
		return zero, Forbidden, err
	}
	if !scope.Contains(resource.OwningOrganization()) {
		return resource, Forbidden, nil
	}
	return resource, Allowed, nil
}

// Authorize is CheckAccess with non-allowed decisions turned into errors.
func (g *Guard[T]) Authorize(ctx context.Context, p rbac.Principal, id int64) (T, error) {
	resource, decision, err := g.CheckAccess(ctx, p, id)
	if err != nil {
		var zero T
		return zero, err
	}
	if derr := decision.Err(); derr != nil {
		var zero T
		return zero, fmt.Errorf("resource %d: %w", id, derr)
	}
	return resource, nil
}
