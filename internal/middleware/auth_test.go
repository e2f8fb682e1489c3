package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func authedHandler(t *testing.T, keys map[string]string) (http.Handler, *string) {
	t.Helper()
	var seenTenant string
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenTenant = GetTenantFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	return APIKeyAuth(keys)(inner), &seenTenant
}

func TestAPIKeyAuth(t *testing.T) {
	keys := map[string]string{"acme": "secret-acme", "globex": "secret-globex"}

	t.Run("bearer key resolves tenant", func(t *testing.T) {
		h, seen := authedHandler(t, keys)
		req := httptest.NewRequest(http.MethodGet, "/v1/acme/analyses", nil)
		req.Header.Set("Authorization", "Bearer secret-acme")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "acme", *seen)
	})

	t.Run("bare key accepted", func(t *testing.T) {
		h, seen := authedHandler(t, keys)
		req := httptest.NewRequest(http.MethodGet, "/v1/globex/analyses", nil)
		req.Header.Set("Authorization", "secret-globex")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "globex", *seen)
	})

	t.Run("missing header", func(t *testing.T) {
		h, _ := authedHandler(t, keys)
		req := httptest.NewRequest(http.MethodGet, "/v1/acme/analyses", nil)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("wrong key", func(t *testing.T) {
		h, _ := authedHandler(t, keys)
		req := httptest.NewRequest(http.MethodGet, "/v1/acme/analyses", nil)
		req.Header.Set("Authorization", "Bearer nope")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("health bypasses auth", func(t *testing.T) {
		h, _ := authedHandler(t, keys)
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("metrics bypasses auth", func(t *testing.T) {
		h, _ := authedHandler(t, keys)
		req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}
