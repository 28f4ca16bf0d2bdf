// Package handler exposes ledger aggregates over HTTP.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"carbonledger/internal/reports"
	"carbonledger/internal/transport/http/shared"
	"carbonledger/pkg/domain"
)

// Service defines the aggregate operations the HTTP layer needs.
type Service interface {
	AggregateTotals(ctx context.Context, companyID domain.CompanyID, period string) (*reports.Totals, error)
}

// Handler handles reporting endpoints.
type Handler struct {
	logger  *slog.Logger
	service Service
}

// New creates a reports Handler.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, service: service}
}

// Register registers the reporting routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/reports/totals", h.handleTotals)
}

// totalsResponse is the canonical aggregate handed to compliance
// consumers.
type totalsResponse struct {
	CompanyID   string             `json:"company_id"`
	Period      string             `json:"period,omitempty"`
	Scope1Total float64            `json:"scope1_total"`
	Scope2Total float64            `json:"scope2_total"`
	Scope3Total float64            `json:"scope3_total"`
	TotalCO2e   float64            `json:"total_co2e"`
	ByCategory  map[string]float64 `json:"by_category"`
	Records     int                `json:"records"`
}

func (h *Handler) handleTotals(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	companyID, err := domain.ParseCompanyID(r.URL.Query().Get("company_id"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	totals, err := h.service.AggregateTotals(ctx, companyID, r.URL.Query().Get("period"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, totalsResponse{
		CompanyID:   totals.CompanyID.String(),
		Period:      totals.Period,
		Scope1Total: totals.Scope1Total,
		Scope2Total: totals.Scope2Total,
		Scope3Total: totals.Scope3Total,
		TotalCO2e:   totals.TotalCO2e,
		ByCategory:  totals.ByCategory,
		Records:     totals.Records,
	})
}
