package middleware

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	profilesapp "github.com/propwatch/rentroll-risk/internal/application/profiles"
	domain "github.com/propwatch/rentroll-risk/internal/domain/profiles"
)

// SubscriptionGate blocks analysis requests from tenants whose subscription
// lapsed or whose quota is used up. The gate only checks; usage is consumed
// after a successful analysis, so a failed run never costs quota.
func SubscriptionGate(svc *profilesapp.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if svc == nil {
				next.ServeHTTP(w, r)
				return
			}

			tenant := chi.URLParam(r, "tenant")
			if tenant == "" {
				tenant = GetTenantFromContext(r.Context())
			}

			if err := svc.Check(r.Context(), tenant); err != nil {
				switch {
				case errors.Is(err, domain.ErrProfileNotFound):
					http.Error(w, "no profile for tenant; complete onboarding first", http.StatusForbidden)
				case errors.Is(err, domain.ErrSubscriptionInactive):
					http.Error(w, "subscription inactive; renew to run analyses", http.StatusPaymentRequired)
				case errors.Is(err, domain.ErrQuotaExhausted):
					http.Error(w, "analysis quota exhausted", http.StatusTooManyRequests)
				default:
					http.Error(w, err.Error(), http.StatusInternalServerError)
				}
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
