package httpserver_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	server "revenue_dash/internal/adapters/http_server"
	"revenue_dash/internal/app"
	"revenue_dash/internal/domain"
)

// degradedHandlers serves everything from the default fallback tables.
func degradedHandlers(idp domain.IdentityResolver) *server.Handlers {
	nop := zerolog.Nop()
	agg := app.NewRevenueAggregator(nil, app.DefaultFallbackTable(), nop)
	return &server.Handlers{
		Summaries:     app.NewSummaryService(agg, nil, time.Minute, nop),
		Directory:     app.NewPropertyDirectory(nil, app.DefaultPropertyFallback(), nop),
		Identity:      idp,
		DefaultTenant: "default_tenant",
	}
}

func newServer(h *server.Handlers) http.Handler {
	s := server.New()
	s.MountHandlers(h)
	return s.Mux()
}

func get(t *testing.T, h http.Handler, path string, hdr map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for k, v := range hdr {
		req.Header.Set(k, v)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestSummary_PrecisionDemoRoundsExactly(t *testing.T) {
	h := newServer(degradedHandlers(nil))

	rr := get(t, h, "/dashboard/summary?property_id=prop-precision-demo", map[string]string{"X-Tenant-ID": "tenant-a"})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"property_id":"prop-precision-demo","total_revenue":2.68,"currency":"USD","reservations_count":1}`, rr.Body.String())
	assert.Contains(t, rr.Body.String(), `"total_revenue":2.68`)

	rr = get(t, h, "/dashboard/summary?property_id=prop-precision-demo", map[string]string{"X-Tenant-ID": "tenant-b"})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"total_revenue":3.68`)
}

func TestSummary_TenantIsolation(t *testing.T) {
	h := newServer(degradedHandlers(nil))

	var a, b map[string]any
	rr := get(t, h, "/dashboard/summary?property_id=prop-001", map[string]string{"X-Tenant-ID": "tenant-a"})
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &a))
	rr = get(t, h, "/dashboard/summary?property_id=prop-001", map[string]string{"X-Tenant-ID": "tenant-b"})
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &b))

	assert.Equal(t, 1000.0, a["total_revenue"])
	assert.Equal(t, 3.0, a["reservations_count"])
	assert.Equal(t, 0.0, b["total_revenue"])
	assert.Equal(t, 0.0, b["reservations_count"])
}

func TestSummary_MissingPropertyIs400(t *testing.T) {
	h := newServer(degradedHandlers(nil))

	rr := get(t, h, "/dashboard/summary", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "application/problem+json", rr.Header().Get("Content-Type"))
}

func TestSummary_DefaultTenantAndETag(t *testing.T) {
	h := newServer(degradedHandlers(nil))

	rr := get(t, h, "/dashboard/summary?property_id=prop-001", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	// default_tenant has no fallback entries
	assert.Contains(t, rr.Body.String(), `"total_revenue":0.00`)
	etag := rr.Header().Get("ETag")
	require.NotEmpty(t, etag)

	rr = get(t, h, "/dashboard/summary?property_id=prop-001", map[string]string{"If-None-Match": etag})
	assert.Equal(t, http.StatusNotModified, rr.Code)
}

func TestProperties_PerTenant(t *testing.T) {
	h := newServer(degradedHandlers(nil))

	rr := get(t, h, "/dashboard/properties", map[string]string{"X-Tenant-ID": "tenant-b"})
	require.Equal(t, http.StatusOK, rr.Code)
	var props []domain.Property
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &props))
	require.Len(t, props, 4)
	assert.Equal(t, "Mountain Lodge Beta", props[0].Name)

	rr = get(t, h, "/dashboard/properties", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `[]`, rr.Body.String())
}

type stubIdentity map[string]string

func (s stubIdentity) ResolveTenant(_ context.Context, token string) (string, error) {
	t, ok := s[token]
	if !ok {
		return "", domain.ErrUnauthorized
	}
	return t, nil
}

func TestTenant_IdentityProvider(t *testing.T) {
	h := newServer(degradedHandlers(stubIdentity{"tok-b": "tenant-b", "tok-empty": ""}))

	rr := get(t, h, "/dashboard/summary?property_id=prop-004", map[string]string{"Authorization": "Bearer tok-b", "X-Tenant-ID": "tenant-a"})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"total_revenue":1776.50`)

	rr = get(t, h, "/dashboard/summary?property_id=prop-004", nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = get(t, h, "/dashboard/summary?property_id=prop-004", map[string]string{"Authorization": "Bearer nope"})
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = get(t, h, "/dashboard/summary?property_id=prop-004", map[string]string{"Authorization": "Bearer tok-empty"})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"reservations_count":0`)
}

func TestHealthz(t *testing.T) {
	rr := get(t, newServer(degradedHandlers(nil)), "/healthz", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "ok", rr.Body.String())
}
