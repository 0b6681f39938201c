package middleware

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/frahmantamala/farm-management/internal"
)

// TenantIDHeader carries the tenant identifier on every tenant-scoped
// request.
const TenantIDHeader = "x-tenant-id"

// ConnectionResolver yields a live connection for a tenant, typically the
// connection registry.
type ConnectionResolver interface {
	Get(tenantID uuid.UUID) (*gorm.DB, error)
}

// TenantResolution attaches the tenant's live database connection to the
// request context. Requests without the header, and requests whose tenant
// cannot be resolved, proceed without a connection: plenty of routes are
// tenant-agnostic, so the failure is deferred to whichever downstream
// component actually needs the connection.
func TenantResolution(resolver ConnectionResolver, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := r.Header.Get(TenantIDHeader)
			if raw == "" {
				next.ServeHTTP(w, r)
				return
			}

			tenantID, err := uuid.Parse(raw)
			if err != nil {
				logger.Warn("malformed tenant id header", "value", raw)
				next.ServeHTTP(w, r)
				return
			}

			db, err := resolver.Get(tenantID)
			if err != nil {
				if appErr, ok := internal.IsAppError(err); ok {
					logger.Warn("tenant connection resolution failed",
						"tenant_id", tenantID,
						"type", appErr.Type,
						"code", appErr.Code)
				} else {
					logger.Warn("tenant connection resolution failed", "tenant_id", tenantID, "error", err)
				}
				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(internal.ContextWithTenantDB(r.Context(), db)))
		})
	}
}
