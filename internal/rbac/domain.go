package rbac

// Role is the fixed organizational role carried by a principal.
type Role string

// Roles recognised by the permission catalog.
const (
	RoleOwner  Role = "Owner"
	RoleAdmin  Role = "Admin"
	RoleViewer Role = "Viewer"
)

// Roles lists the catalogued roles in descending privilege.
func Roles() []Role {
	return []Role{RoleOwner, RoleAdmin, RoleViewer}
}

// Valid reports whether r is one of the catalogued roles.
func (r Role) Valid() bool {
	switch r {
	case RoleOwner, RoleAdmin, RoleViewer:
		return true
	}
	return false
}

// Capability names one allowed action on one resource kind.
type Capability string

// Capabilities granted by the catalog.
const (
	CapTaskCreate Capability = "task:create"
	CapTaskRead   Capability = "task:read"
	CapTaskUpdate Capability = "task:update"
	CapTaskDelete Capability = "task:delete"
	CapAuditRead  Capability = "audit:read"
)

// Principal describes the authenticated actor of a request. It is built once
// from verified token claims and is read-only afterwards.
type Principal struct {
	ID             int64  `json:"id"`
	Role           Role   `json:"role"`
	OrganizationID int64  `json:"organizationId"`
	Email          string `json:"email,omitempty"`
}

// ParseRole maps a claim value to a Role. Matching is exact; values outside
// the catalog are preserved so the catalog can deny them.
func ParseRole(raw string) Role {
	for _, r := range Roles() {
		if raw == string(r) {
			return r
		}
	}
	return Role(raw)
}
