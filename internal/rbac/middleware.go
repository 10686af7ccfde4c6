package rbac

import (
	"log/slog"
	"net/http"

	"github.com/taskboard/taskboard/internal/platform/httpx"
	"github.com/taskboard/taskboard/internal/shared"
)

// Middleware wires RBAC authorization helpers for HTTP handlers.
type Middleware struct {
	Logger *slog.Logger
}

// Require ensures the current principal holds all required capabilities.
// An empty requirement leaves the route public.
func (m Middleware) Require(caps ...Capability) func(http.Handler) http.Handler {
	required := normalizeCapabilities(caps)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(required) == 0 {
				next.ServeHTTP(w, r)
				return
			}
			principal, ok := PrincipalFromContext(r.Context())
			if !ok {
				httpx.RespondError(w, shared.ErrUnauthenticated)
				return
			}
			if !IsAuthorized(principal.Role, required...) {
				if m.Logger != nil {
					m.Logger.Debug("rbac capability denied",
						slog.Int64("user", principal.ID),
						slog.String("role", string(principal.Role)),
						slog.Any("required", required),
					)
				}
				httpx.RespondError(w, shared.ErrInsufficientCapability)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Authenticated rejects anonymous requests without requiring any capability.
func (m Middleware) Authenticated() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := PrincipalFromContext(r.Context()); !ok {
				httpx.RespondError(w, shared.ErrUnauthenticated)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func normalizeCapabilities(caps []Capability) []Capability {
	seen := make(map[Capability]struct{}, len(caps))
	normalized := make([]Capability, 0, len(caps))
	for _, c := range caps {
		if c == "" {
			continue
		}
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		normalized = append(normalized, c)
	}
	return normalized
}
