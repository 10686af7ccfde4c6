// Package orgs models the two-tier organization hierarchy and the row-level
// scoping rules derived from it.
//
// The hierarchy has depth exactly two: an organization with a parent has no
// children of its own. Scope resolution therefore looks one hop down from the
// principal's home organization and never further.
package orgs

// Organization is a tenant node. ParentOrgID is nil for top-level organizations.
type Organization struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	ParentOrgID *int64 `json:"parentOrgId,omitempty"`
}
