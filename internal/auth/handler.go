package auth

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	"github.com/go-playground/validator/v10"

	"github.com/taskboard/taskboard/internal/platform/httpx"
	"github.com/taskboard/taskboard/internal/rbac"
	"github.com/taskboard/taskboard/internal/shared"
)

// Handler wires HTTP endpoints for authentication flows.
type Handler struct {
	logger     *slog.Logger
	service    *Service
	rbac       rbac.Middleware
	validator  *validator.Validate
	loginLimit int
}

// NewHandler constructs a Handler instance. loginLimit caps login attempts per
// client IP per minute; zero disables the limit.
func NewHandler(logger *slog.Logger, service *Service, rbac rbac.Middleware, loginLimit int) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		logger:     logger,
		service:    service,
		rbac:       rbac,
		validator:  validator.New(),
		loginLimit: loginLimit,
	}
}

// MountLogin registers the public login route.
func (h *Handler) MountLogin(r chi.Router) {
	if h.loginLimit > 0 {
		r = r.With(httprate.Limit(h.loginLimit, time.Minute,
			httprate.WithKeyFuncs(httprate.KeyByIP),
			httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
				httpx.Problem(w, http.StatusTooManyRequests, "Too Many Requests", "too many login attempts")
			}),
		))
	}
	r.Post("/login", h.handleLogin)
}

// MountRoutes registers routes that act on the current session.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.Authenticated())
		r.Post("/logout", h.handleLogout)
		r.Get("/me", h.handleMe)
	})
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	AccessToken string `json:"access_token"`
}

type meResponse struct {
	rbac.Principal
	Capabilities []rbac.Capability `json:"capabilities"`
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		var fieldErrs validator.ValidationErrors
		fields := []string{}
		if errors.As(err, &fieldErrs) {
			for _, fe := range fieldErrs {
				fields = append(fields, fe.Field())
			}
		}
		httpx.RespondError(w, fmt.Errorf("%w: invalid %s", shared.ErrValidation, strings.Join(fields, ", ")))
		return
	}
	token, user, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.logger.Warn("login failed", slog.String("email", req.Email), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	h.logger.Info("login", slog.Int64("user", user.ID), slog.String("role", string(user.Role)))
	httpx.JSON(w, http.StatusOK, loginResponse{AccessToken: token})
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	claims, ok := ClaimsFromContext(r.Context())
	if ok {
		if err := h.service.Logout(r.Context(), claims); err != nil {
			h.logger.Error("logout", slog.Any("error", err))
			httpx.RespondError(w, err)
			return
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	p, ok := rbac.PrincipalFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, shared.ErrUnauthenticated)
		return
	}
	httpx.JSON(w, http.StatusOK, meResponse{Principal: p, Capabilities: rbac.CapabilitiesFor(p.Role).List()})
}
