package middleware

import (
	"net"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/stafflink/backoffice/modules/core/services"
	"github.com/stafflink/backoffice/pkg/application"
	"github.com/stafflink/backoffice/pkg/composables"
	"github.com/stafflink/backoffice/pkg/configuration"
	"github.com/stafflink/backoffice/pkg/httpapi"
)

// RequireTenant resolves the company for unauthenticated entry points such as
// login. The company code header wins; otherwise the request host is matched
// against registered tenant domains.
func RequireTenant(app application.Application) mux.MiddlewareFunc {
	conf := configuration.Use()
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tenantService := app.Service(services.TenantService{}).(*services.TenantService)

			if code := strings.TrimSpace(r.Header.Get(conf.CompanyCodeHeader)); code != "" {
				t, err := tenantService.GetByCode(r.Context(), code)
				if err != nil {
					composables.UseLogger(r.Context()).WithField("code", code).WithError(err).Warn("tenant not found for company code")
					_ = httpapi.WriteError(w, http.StatusNotFound, "TENANT_NOT_FOUND", "unknown company code", nil)
					return
				}
				next.ServeHTTP(w, r.WithContext(composables.WithTenantID(r.Context(), t.ID())))
				return
			}

			host := normalizeHost(r.Host)
			if host == "" {
				_ = httpapi.WriteError(w, http.StatusNotFound, "TENANT_NOT_FOUND", "company could not be resolved", nil)
				return
			}
			t, err := tenantService.GetByDomain(r.Context(), host)
			if err != nil {
				composables.UseLogger(r.Context()).WithField("host", host).WithError(err).Warn("tenant not found for host")
				_ = httpapi.WriteError(w, http.StatusNotFound, "TENANT_NOT_FOUND", "company could not be resolved", nil)
				return
			}
			next.ServeHTTP(w, r.WithContext(composables.WithTenantID(r.Context(), t.ID())))
		})
	}
}

func normalizeHost(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	raw = strings.ToLower(raw)
	if h, _, err := net.SplitHostPort(raw); err == nil {
		return strings.ToLower(strings.TrimSpace(h))
	}
	return raw
}
