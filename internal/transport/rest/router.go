package rest

import (
	"database/sql"
	"log/slog"

	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"

	"github.com/frahmantamala/farm-management/internal/auth"
	"github.com/frahmantamala/farm-management/internal/crops"
	"github.com/frahmantamala/farm-management/internal/tenant"
	"github.com/frahmantamala/farm-management/internal/transport/middleware"
)

// RegisterAllRoutes wires the tenant resolution middleware, the principal
// resolvers, and the authorization checkpoint in front of the handlers.
// Route order matters: tenant resolution runs before any resolver so
// tenant-user authentication always sees the request's connection.
func RegisterAllRoutes(
	router *chi.Mux,
	platformDB *sql.DB,
	tenantResolver middleware.ConnectionResolver,
	connCounter ConnectionCounter,
	authHandler *auth.Handler,
	checkpoint *auth.Checkpoint,
	tenantHandler *tenant.Handler,
	cropsHandler *crops.Handler,
	logger *slog.Logger,
) {
	healthHandler := NewHealthHandler(platformDB, connCounter)

	// Global middleware
	router.Use(middleware.CORS)
	router.Use(chiMiddleware.RequestID)
	router.Use(middleware.RequestID)
	router.Use(middleware.LoggingMiddleware(logger))
	router.Use(middleware.RecoveryMiddleware(logger))

	router.Route(auth.APIPrefix, func(r chi.Router) {
		r.Use(middleware.TenantResolution(tenantResolver, logger))

		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		// Auth routes
		r.Route("/auth", func(sr chi.Router) {
			sr.Post("/login", authHandler.UserLogin)
			sr.Post("/logout", authHandler.UserLogout)
			sr.Post("/admin/login", authHandler.AdministratorLogin)
			sr.Post("/admin/logout", authHandler.AdministratorLogout)
		})

		// Tenant-user routes
		r.Group(func(pr chi.Router) {
			pr.Use(authHandler.UserAuthMiddleware)

			// Authentication only, no specific permit
			pr.With(checkpoint.Authorize(true)).Get("/users/me", authHandler.CurrentUser)

			pr.With(checkpoint.Authorize(false)).Get("/crops/all", cropsHandler.GetAllCrops)
			pr.With(checkpoint.Authorize(false)).Get("/crops/{id}", cropsHandler.GetCrop)
			pr.With(checkpoint.Authorize(false)).Post("/crops", cropsHandler.CreateCrop)
		})

		// Platform administrator routes
		r.Group(func(ar chi.Router) {
			ar.Use(authHandler.AdministratorAuthMiddleware)

			ar.Get("/admin/me", authHandler.CurrentAdministrator)
		})

		// Tenant management, guarded by the x-tenant-token header channel
		r.Route("/tenants", func(tr chi.Router) {
			tr.Use(authHandler.TenantManagementMiddleware)

			tr.Post("/", tenantHandler.CreateTenant)
			tr.Get("/", tenantHandler.GetAllTenants)
			tr.Get("/by-subdomain/{subdomain}", tenantHandler.GetTenantBySubdomain)
			tr.Get("/{id}", tenantHandler.GetTenant)
			tr.Delete("/{id}", tenantHandler.DeactivateTenant)
			tr.Patch("/{id}/database", tenantHandler.ReconfigureDatabase)
		})
	})
}
