package middleware

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/stafflink/backoffice/modules/core/services"
	"github.com/stafflink/backoffice/pkg/application"
	"github.com/stafflink/backoffice/pkg/composables"
	"github.com/stafflink/backoffice/pkg/configuration"
	"github.com/stafflink/backoffice/pkg/httpapi"
)

// Authorize resolves the bearer token into a user and tenant scope. Requests
// without an Authorization header pass through anonymously; RequireAuthorization
// blocks them further down the chain.
func Authorize(app application.Application) mux.MiddlewareFunc {
	conf := configuration.Use()
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				next.ServeHTTP(w, r)
				return
			}
			raw := strings.TrimPrefix(authHeader, "Bearer ")
			if raw == authHeader || raw == "" {
				_ = httpapi.WriteError(w, http.StatusUnauthorized, "AUTH_INVALID_TOKEN", "malformed authorization header", nil)
				return
			}

			authService := app.Service(services.AuthService{}).(*services.AuthService)
			u, tenantID, err := authService.UserFromToken(r.Context(), raw)
			if err != nil {
				composables.UseLogger(r.Context()).WithError(err).Warn("token rejected")
				_ = httpapi.WriteError(w, http.StatusUnauthorized, "AUTH_INVALID_TOKEN", "invalid or expired token", nil)
				return
			}

			ctx := r.Context()
			if u.IsSuperadmin() {
				// Superadmins carry no tenant of their own and may scope a
				// request to any company explicitly.
				if override := r.URL.Query().Get("tenant_id"); override != "" {
					id, err := uuid.Parse(override)
					if err != nil {
						_ = httpapi.WriteError(w, http.StatusBadRequest, "TENANT_INVALID", "invalid tenant_id", nil)
						return
					}
					ctx = composables.WithTenantID(ctx, id)
				} else if code := r.Header.Get(conf.CompanyCodeHeader); code != "" {
					tenantService := app.Service(services.TenantService{}).(*services.TenantService)
					t, err := tenantService.GetByCode(ctx, code)
					if err != nil {
						_ = httpapi.WriteError(w, http.StatusNotFound, "TENANT_NOT_FOUND", "unknown company code", nil)
						return
					}
					ctx = composables.WithTenantID(ctx, t.ID())
				}
			} else {
				ctx = composables.WithTenantID(ctx, tenantID)
			}

			ctx = composables.WithUser(ctx, u)
			if params, ok := composables.UseParams(ctx); ok {
				params.Authenticated = true
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAuthorization rejects anonymous requests with 401.
func RequireAuthorization() mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, err := composables.UseUser(r.Context()); err != nil {
				_ = httpapi.WriteError(w, http.StatusUnauthorized, "AUTH_REQUIRED", "authentication required", nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
