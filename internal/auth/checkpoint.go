package auth

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi"
)

// APIPrefix is stripped from chi route patterns before they are compared to
// permitted path endpoints, which are stored without the mount prefix.
const APIPrefix = "/api/v1"

// Checkpoint gates routes on a resolved tenant-user principal's permitted
// endpoints.
type Checkpoint struct {
	logger *slog.Logger
}

func NewCheckpoint(logger *slog.Logger) *Checkpoint {
	return &Checkpoint{logger: logger}
}

// Authorize allows the request iff the route's registered pattern is in the
// principal's permitted endpoint set. Routes that only require
// authentication, not a specific permission, pass skipPathValidation=true.
// The permission set was recomputed when the principal was resolved, so no
// stale grant survives a revocation.
func (c *Checkpoint) Authorize(skipPathValidation bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := UserFromContext(r.Context())
			if !ok || user == nil {
				c.logger.Warn("authorization check failed: no principal in context",
					"method", r.Method, "path", r.URL.Path)
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			if skipPathValidation {
				next.ServeHTTP(w, r)
				return
			}

			pattern := RoutePattern(r)
			if !user.HasPermission(pattern) {
				c.logger.Warn("access denied: principal lacks permit",
					"user_id", user.ID,
					"route_pattern", pattern,
					"user_permissions", user.Permissions)
				http.Error(w, fmt.Sprintf("Forbidden: %s needs a permit for this action", user.FirstName), http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RoutePattern returns the registered chi pattern of the matched route with
// the API mount prefix stripped.
func RoutePattern(r *http.Request) string {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		return r.URL.Path
	}
	pattern := rctx.RoutePattern()
	return strings.TrimPrefix(pattern, APIPrefix)
}
