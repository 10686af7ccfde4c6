package rbac

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taskboard/taskboard/internal/platform/httpx"
)

// PermissionsHandler exposes the permission catalog.
type PermissionsHandler struct {
	rbac Middleware
}

// NewPermissionsHandler builds PermissionsHandler instance.
func NewPermissionsHandler(rbac Middleware) *PermissionsHandler {
	return &PermissionsHandler{rbac: rbac}
}

// MountRoutes registers permission routes.
func (h *PermissionsHandler) MountRoutes(r chi.Router) {
	r.With(h.rbac.Authenticated()).Get("/", h.listPermissions)
}

type rolePermissions struct {
	Role         Role         `json:"role"`
	Capabilities []Capability `json:"capabilities"`
}

func (h *PermissionsHandler) listPermissions(w http.ResponseWriter, r *http.Request) {
	roles := Roles()
	out := make([]rolePermissions, 0, len(roles))
	for _, role := range roles {
		out = append(out, rolePermissions{Role: role, Capabilities: CapabilitiesFor(role).List()})
	}
	httpx.JSON(w, http.StatusOK, out)
}
