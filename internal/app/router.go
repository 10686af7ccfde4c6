package app

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/taskboard/taskboard/internal/audit"
	audithttp "github.com/taskboard/taskboard/internal/audit/http"
	"github.com/taskboard/taskboard/internal/auth"
	"github.com/taskboard/taskboard/internal/observability"
	"github.com/taskboard/taskboard/internal/platform/httpx"
	"github.com/taskboard/taskboard/internal/rbac"
	"github.com/taskboard/taskboard/internal/tasks"
	"github.com/taskboard/taskboard/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger             *slog.Logger
	Config             *Config
	Metrics            *observability.Metrics
	PrincipalSupplier  func(http.Handler) http.Handler
	Interceptor        *audit.Interceptor
	AuthHandler        *auth.Handler
	TasksHandler       *tasks.Handler
	AuditHandler       *audithttp.Handler
	PermissionsHandler *rbac.PermissionsHandler
	JobsHandler        *jobs.Handler
	HealthCheck        func(ctx context.Context) error
}

// NewRouter constructs the chi.Router with taskboard defaults.
//
// Every /api route except login runs behind the audit interceptor, which sits
// after the principal supplier and before any capability check so that
// rejected requests are recorded too.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if params.HealthCheck != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := params.HealthCheck(ctx); err != nil {
				params.Logger.Warn("health check failed", slog.Any("error", err))
				httpx.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
				return
			}
		}
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}
	if params.JobsHandler != nil {
		r.Route("/jobs", params.JobsHandler.MountRoutes)
	}

	audited := func(next http.Handler) http.Handler { return next }
	if params.Interceptor != nil {
		audited = params.Interceptor.Middleware
	}

	r.Route("/api", func(r chi.Router) {
		if params.PrincipalSupplier != nil {
			r.Use(params.PrincipalSupplier)
		}
		if params.AuthHandler != nil {
			r.Route("/auth", func(r chi.Router) {
				params.AuthHandler.MountLogin(r)
				r.Group(func(r chi.Router) {
					r.Use(audited)
					params.AuthHandler.MountRoutes(r)
				})
			})
		}
		r.Group(func(r chi.Router) {
			r.Use(audited)
			if params.TasksHandler != nil {
				r.Route("/tasks", params.TasksHandler.MountRoutes)
			}
			if params.PermissionsHandler != nil {
				r.Route("/permissions", params.PermissionsHandler.MountRoutes)
			}
			if params.AuditHandler != nil {
				r.Route("/audit-log", params.AuditHandler.MountRoutes)
			}
		})
	})

	return r
}
