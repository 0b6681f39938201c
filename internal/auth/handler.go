package auth

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/frahmantamala/farm-management/internal"
	"github.com/frahmantamala/farm-management/internal/transport"
)

type Handler struct {
	*transport.BaseHandler
	Service   ServiceAPI
	CookieTTL time.Duration
}

func NewHandler(svc ServiceAPI, cookieTTL time.Duration) *Handler {
	return &Handler{
		BaseHandler: transport.NewBaseHandler(nil),
		Service:     svc,
		CookieTTL:   cookieTTL,
	}
}

// UserLogin authenticates a tenant user against the tenant connection
// attached by the tenant resolution middleware and sets the user-token
// cookie.
func (h *Handler) UserLogin(w http.ResponseWriter, r *http.Request) {
	var dto LoginDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	token, user, err := h.Service.AuthenticateUser(r.Context(), dto)
	if err != nil {
		h.writeAuthError(w, err)
		return
	}

	h.setTokenCookie(w, UserTokenCookie, token)
	h.WriteJSON(w, http.StatusOK, user)
}

// AdministratorLogin authenticates a platform administrator against the
// platform database and sets the administrator-token cookie.
func (h *Handler) AdministratorLogin(w http.ResponseWriter, r *http.Request) {
	var dto LoginDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	token, admin, err := h.Service.AuthenticateAdministrator(dto)
	if err != nil {
		h.writeAuthError(w, err)
		return
	}

	h.setTokenCookie(w, AdminTokenCookie, token)
	h.WriteJSON(w, http.StatusOK, admin)
}

func (h *Handler) UserLogout(w http.ResponseWriter, r *http.Request) {
	h.clearTokenCookie(w, UserTokenCookie)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) AdministratorLogout(w http.ResponseWriter, r *http.Request) {
	h.clearTokenCookie(w, AdminTokenCookie)
	w.WriteHeader(http.StatusNoContent)
}

// CurrentUser returns the resolved tenant-user principal. Authentication
// only; mounted with path validation skipped.
func (h *Handler) CurrentUser(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok || user == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	h.WriteJSON(w, http.StatusOK, user)
}

func (h *Handler) CurrentAdministrator(w http.ResponseWriter, r *http.Request) {
	admin, ok := AdministratorFromContext(r.Context())
	if !ok || admin == nil {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	h.WriteJSON(w, http.StatusOK, admin)
}

// UserAuthMiddleware resolves the tenant-user principal from the user-token
// cookie and the request's tenant connection.
func (h *Handler) UserAuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := h.cookieToken(r, UserTokenCookie)
		if token == "" {
			h.WriteError(w, http.StatusUnauthorized, "missing authentication token")
			return
		}

		user, err := h.Service.ResolveUser(r.Context(), token)
		if err != nil {
			h.writeAuthError(w, err)
			return
		}

		next.ServeHTTP(w, r.WithContext(ContextWithUser(r.Context(), user)))
	})
}

// AdministratorAuthMiddleware resolves the platform administrator from the
// administrator-token cookie.
func (h *Handler) AdministratorAuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := h.cookieToken(r, AdminTokenCookie)
		if token == "" {
			h.WriteError(w, http.StatusUnauthorized, "missing authentication token")
			return
		}

		admin, err := h.Service.ResolveAdministrator(token)
		if err != nil {
			h.writeAuthError(w, err)
			return
		}

		next.ServeHTTP(w, r.WithContext(ContextWithAdministrator(r.Context(), admin)))
	})
}

// TenantManagementMiddleware guards tenant-management routes: an
// administrator token carried in the x-tenant-token header.
func (h *Handler) TenantManagementMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := r.Header.Get(TenantTokenHeader)
		if token == "" {
			h.WriteError(w, http.StatusUnauthorized, "missing tenant management token")
			return
		}

		admin, err := h.Service.ResolveAdministrator(token)
		if err != nil {
			h.writeAuthError(w, err)
			return
		}

		next.ServeHTTP(w, r.WithContext(ContextWithAdministrator(r.Context(), admin)))
	})
}

func (h *Handler) cookieToken(r *http.Request, name string) string {
	cookie, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	return cookie.Value
}

func (h *Handler) setTokenCookie(w http.ResponseWriter, name, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(h.CookieTTL),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *Handler) clearTokenCookie(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *Handler) writeAuthError(w http.ResponseWriter, err error) {
	if _, ok := err.(ValidationError); ok {
		h.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	if appErr, ok := internal.IsAppError(err); ok {
		switch appErr.Type {
		case internal.ErrorTypeConfiguration, internal.ErrorTypeIntegrity:
			// Operator-level failures stand apart from end-user auth noise.
			h.Logger.Error("authentication infrastructure failure", "type", appErr.Type, "code", appErr.Code, "error", err)
		default:
			h.Logger.Warn("authentication failed", "type", appErr.Type, "code", appErr.Code)
		}
		h.WriteError(w, appErr.StatusCode, appErr.Message)
		return
	}
	h.Logger.Error("authentication failed", "error", err)
	h.WriteError(w, http.StatusInternalServerError, "internal server error")
}
