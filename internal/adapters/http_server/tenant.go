package httpserver

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"revenue_dash/internal/domain"
)

type tenantKey struct{}

// TenantFrom returns the tenant resolved by the Tenant middleware.
func TenantFrom(ctx context.Context) string {
	t, _ := ctx.Value(tenantKey{}).(string)
	return t
}

// Tenant resolves the caller's tenant once per request. With an identity
// resolver the bearer token is required; without one the X-Tenant-ID header is
// trusted. A missing or empty tenant becomes defaultTenant.
func Tenant(resolver domain.IdentityResolver, defaultTenant string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tenant := strings.TrimSpace(r.Header.Get("X-Tenant-ID"))
			if resolver != nil {
				token, ok := bearer(r.Header.Get("Authorization"))
				if !ok {
					writeProblem(w, http.StatusUnauthorized, "Unauthorized", "bearer token required")
					return
				}
				t, err := resolver.ResolveTenant(r.Context(), token)
				switch {
				case errors.Is(err, domain.ErrUnauthorized):
					writeProblem(w, http.StatusUnauthorized, "Unauthorized", "invalid credentials")
					return
				case err != nil:
					log.Error().Err(err).Msg("identity lookup failed")
					writeProblem(w, http.StatusServiceUnavailable, "Service Unavailable", "identity provider unavailable")
					return
				}
				tenant = t
			}
			if tenant == "" {
				tenant = defaultTenant
			}
			if e := accessFrom(r.Context()); e != nil {
				e.tenantID = tenant
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), tenantKey{}, tenant)))
		})
	}
}

func bearer(h string) (string, bool) {
	const prefix = "bearer "
	if len(h) <= len(prefix) || !strings.EqualFold(h[:len(prefix)], prefix) {
		return "", false
	}
	tok := strings.TrimSpace(h[len(prefix):])
	return tok, tok != ""
}
