package audithttp

import (
	"github.com/go-chi/chi/v5"

	"github.com/taskboard/taskboard/internal/rbac"
)

// MountRoutes mendaftarkan endpoint audit trail.
func (h *Handler) MountRoutes(r chi.Router) {
	if h == nil {
		return
	}
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.Require(rbac.CapAuditRead))
		r.Get("/", h.handleList)
	})
}
