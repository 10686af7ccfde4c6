package auth

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/taskboard/taskboard/internal/rbac"
)

type claimsContextKey struct{}

// ClaimsFromContext returns the verified token claims for the request.
func ClaimsFromContext(ctx context.Context) (Claims, bool) {
	c, ok := ctx.Value(claimsContextKey{}).(Claims)
	return c, ok
}

// Verifier resolves bearer tokens.
type Verifier interface {
	Verify(ctx context.Context, raw string) (rbac.Principal, Claims, error)
}

// Supplier attaches the principal carried by a valid bearer token. Requests
// without a usable token continue anonymously; route guards reject them.
func Supplier(verifier Verifier, logger *slog.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := bearerToken(r)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}
			p, claims, err := verifier.Verify(r.Context(), raw)
			if err != nil {
				logger.Debug("bearer token rejected", slog.Any("error", err))
				next.ServeHTTP(w, r)
				return
			}
			ctx := rbac.ContextWithPrincipal(r.Context(), p)
			ctx = context.WithValue(ctx, claimsContextKey{}, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
