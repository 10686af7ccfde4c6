package audithttp

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/taskboard/taskboard/internal/audit"
	"github.com/taskboard/taskboard/internal/platform/httpx"
	"github.com/taskboard/taskboard/internal/rbac"
	"github.com/taskboard/taskboard/internal/shared"
)

// TrailService defines the business contract for audit trail data.
type TrailService interface {
	List(ctx context.Context, page, perPage int) (audit.Page, error)
}

// Handler menangani permintaan audit trail.
type Handler struct {
	logger  *slog.Logger
	service TrailService
	rbac    rbac.Middleware
}

// NewHandler membuat handler audit baru.
func NewHandler(logger *slog.Logger, service TrailService, rbac rbac.Middleware) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service, rbac: rbac}
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	page, perPage, err := parsePaging(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	out, err := h.service.List(r.Context(), page, perPage)
	if err != nil {
		h.logger.Error("list audit trail", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, out)
}

func parsePaging(r *http.Request) (int, int, error) {
	q := r.URL.Query()
	page, err := optionalInt(q.Get("page"))
	if err != nil {
		return 0, 0, fmt.Errorf("%w: page: %v", shared.ErrValidation, err)
	}
	perPage, err := optionalInt(q.Get("perPage"))
	if err != nil {
		return 0, 0, fmt.Errorf("%w: perPage: %v", shared.ErrValidation, err)
	}
	return page, perPage, nil
}

func optionalInt(raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	return strconv.Atoi(raw)
}
