// Package handler exposes border levy assessment over HTTP.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"carbonledger/internal/levy"
	"carbonledger/internal/transport/http/shared"
	"carbonledger/pkg/domain"
	dErrors "carbonledger/pkg/domain-errors"
)

// Service defines the levy operations the HTTP layer needs.
type Service interface {
	AssessCompany(ctx context.Context, companyID domain.CompanyID, period string, lines []levy.ImportLine) (*levy.Assessment, error)
}

// Handler handles levy endpoints.
type Handler struct {
	logger  *slog.Logger
	service Service
}

// New creates a levy Handler.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, service: service}
}

// Register registers the levy routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/levy/assess", h.handleAssess)
}

type importLine struct {
	Sector            string  `json:"sector"`
	Quantity          float64 `json:"quantity"`
	EmbeddedEmissions float64 `json:"embedded_emissions,omitempty"`
	CarbonPricePaid   float64 `json:"carbon_price_paid,omitempty"`
}

// assessmentResponse is the levy outcome.
type assessmentResponse struct {
	Period          string  `json:"period,omitempty"`
	CarbonPrice     float64 `json:"carbon_price"`
	TotalQuantity   float64 `json:"total_quantity"`
	CoveredQuantity float64 `json:"covered_quantity"`
	TotalEmissions  float64 `json:"total_emissions"`
	PricePaid       float64 `json:"carbon_price_paid"`
	RawLiability    float64 `json:"liability_raw"`
	BelowDeMinimis  bool    `json:"below_de_minimis"`
	Liability       float64 `json:"liability"`
}

func (h *Handler) handleAssess(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req struct {
		CompanyID string       `json:"company_id"`
		Period    string       `json:"period"`
		Imports   []importLine `json:"imports"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid request body"))
		return
	}
	companyID, err := domain.ParseCompanyID(req.CompanyID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	lines := make([]levy.ImportLine, 0, len(req.Imports))
	for _, line := range req.Imports {
		lines = append(lines, levy.ImportLine{
			Sector:            levy.Sector(line.Sector),
			Quantity:          line.Quantity,
			EmbeddedEmissions: line.EmbeddedEmissions,
			CarbonPricePaid:   line.CarbonPricePaid,
		})
	}

	assessment, err := h.service.AssessCompany(ctx, companyID, req.Period, lines)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, assessmentResponse{
		Period:          assessment.Period,
		CarbonPrice:     assessment.CarbonPrice,
		TotalQuantity:   assessment.TotalQuantity,
		CoveredQuantity: assessment.CoveredQuantity,
		TotalEmissions:  assessment.TotalEmissions,
		PricePaid:       assessment.PricePaid,
		RawLiability:    assessment.RawLiability,
		BelowDeMinimis:  assessment.BelowDeMinimis,
		Liability:       assessment.Liability,
	})
}
