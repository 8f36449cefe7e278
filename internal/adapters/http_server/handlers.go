// internal/adapters/http_server/handlers.go
package httpserver

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"revenue_dash/internal/app"
	"revenue_dash/internal/domain"
	"revenue_dash/internal/money"
)

type Handlers struct {
	Summaries     *app.SummaryService
	Directory     *app.PropertyDirectory
	Identity      domain.IdentityResolver // nil: tenant comes from X-Tenant-ID
	DefaultTenant string
}

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

type summaryResponse struct {
	PropertyID        string       `json:"property_id"`
	TotalRevenue      money.Amount `json:"total_revenue"`
	Currency          string       `json:"currency"`
	ReservationsCount int64        `json:"reservations_count"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })
	s.mux.Group(func(r chi.Router) {
		r.Use(Tenant(h.Identity, h.DefaultTenant))
		r.Get("/dashboard/summary", h.getSummary)
		r.Get("/dashboard/properties", h.listProperties)
	})
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	etag := `W/"` + hex.EncodeToString(sum[:]) + `"`
	return etag, body
}

// writeJSON answers with body, or 304 when the client already holds etag.
// Responses are tenant specific, so shared caches must not keep them.
func writeJSON(w http.ResponseWriter, r *http.Request, v any) {
	etag, body := calcETagAndBody(v)
	if body == nil {
		writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "response encoding failed")
		return
	}
	w.Header().Set("Cache-Control", "private, no-cache")
	w.Header().Set("Vary", "Authorization, X-Tenant-ID")
	w.Header().Set("ETag", etag)
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Str("path", r.URL.Path).Msg("failed to write body")
	}
}

func (h *Handlers) getSummary(w http.ResponseWriter, r *http.Request) {
	propertyID := strings.TrimSpace(r.URL.Query().Get("property_id"))
	if propertyID == "" {
		writeProblem(w, http.StatusBadRequest, "Invalid property_id", "property_id query parameter is required")
		return
	}
	tenantID := TenantFrom(r.Context())

	s := h.Summaries.GetRevenueSummary(r.Context(), propertyID, tenantID)

	total, err := money.RoundDisplay(s.Total)
	if err != nil {
		log.Error().Err(err).
			Str("tenant_id", tenantID).
			Str("property_id", propertyID).
			Str("total", s.Total).
			Msg("summary total is not a decimal")
		writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "revenue total could not be read")
		return
	}

	writeJSON(w, r, summaryResponse{
		PropertyID:        s.PropertyID,
		TotalRevenue:      total,
		Currency:          s.Currency,
		ReservationsCount: s.Count,
	})
}

func (h *Handlers) listProperties(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, h.Directory.List(r.Context(), TenantFrom(r.Context())))
}
