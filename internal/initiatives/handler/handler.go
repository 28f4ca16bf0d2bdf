// Package handler exposes the reduction initiative register over HTTP.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"carbonledger/internal/initiatives"
	"carbonledger/internal/platform/middleware"
	"carbonledger/internal/transport/http/shared"
	"carbonledger/pkg/domain"
	dErrors "carbonledger/pkg/domain-errors"
)

// Service defines the initiative operations the HTTP layer needs.
type Service interface {
	Register(ctx context.Context, in initiatives.RegisterInput) (*initiatives.Initiative, error)
	List(ctx context.Context, companyID domain.CompanyID) ([]*initiatives.Initiative, error)
	UpdateActualReduction(ctx context.Context, id domain.InitiativeID, value float64) (*initiatives.Initiative, error)
	Transition(ctx context.Context, id domain.InitiativeID, next initiatives.Status) (*initiatives.Initiative, error)
	Payback(ctx context.Context, id domain.InitiativeID, carbonPrice float64) (float64, error)
}

// Handler handles reduction initiative endpoints.
type Handler struct {
	logger  *slog.Logger
	service Service
}

// New creates an initiatives Handler.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, service: service}
}

// Register registers the initiative routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/initiatives", h.handleRegister)
	r.Get("/initiatives", h.handleList)
	r.Post("/initiatives/{id}/actual", h.handleUpdateActual)
	r.Post("/initiatives/{id}/status", h.handleTransition)
	r.Get("/initiatives/{id}/payback", h.handlePayback)
}

// initiativeResponse is the wire shape of one initiative.
type initiativeResponse struct {
	ID                    string     `json:"id"`
	CompanyID             string     `json:"company_id"`
	Name                  string     `json:"name"`
	Description           string     `json:"description,omitempty"`
	InitiativeType        string     `json:"initiative_type,omitempty"`
	TargetScope           string     `json:"target_scope"`
	StartDate             *time.Time `json:"start_date,omitempty"`
	EndDate               *time.Time `json:"end_date,omitempty"`
	Investment            float64    `json:"investment"`
	ExpectedReductionCO2e float64    `json:"expected_reduction_co2e"`
	ActualReductionCO2e   float64    `json:"actual_reduction_co2e"`
	Status                string     `json:"status"`
	Notes                 string     `json:"notes,omitempty"`
}

func toResponse(initiative *initiatives.Initiative) initiativeResponse {
	return initiativeResponse{
		ID:                    initiative.ID.String(),
		CompanyID:             initiative.CompanyID.String(),
		Name:                  initiative.Name,
		Description:           initiative.Description,
		InitiativeType:        initiative.InitiativeType,
		TargetScope:           initiative.TargetScope.String(),
		StartDate:             initiative.StartDate,
		EndDate:               initiative.EndDate,
		Investment:            initiative.Investment,
		ExpectedReductionCO2e: initiative.ExpectedReductionCO2e,
		ActualReductionCO2e:   initiative.ActualReductionCO2e,
		Status:                initiative.Status.String(),
		Notes:                 initiative.Notes,
	}
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req struct {
		CompanyID             string     `json:"company_id"`
		Name                  string     `json:"name"`
		Description           string     `json:"description"`
		InitiativeType        string     `json:"initiative_type"`
		TargetScope           string     `json:"target_scope"`
		StartDate             *time.Time `json:"start_date"`
		Investment            float64    `json:"investment"`
		ExpectedReductionCO2e float64    `json:"expected_reduction_co2e"`
		Notes                 string     `json:"notes"`
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
	scope, err := domain.ParseScope(req.TargetScope)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	initiative, err := h.service.Register(ctx, initiatives.RegisterInput{
		CompanyID:             companyID,
		Name:                  req.Name,
		Description:           req.Description,
		InitiativeType:        req.InitiativeType,
		TargetScope:           scope,
		StartDate:             req.StartDate,
		Investment:            req.Investment,
		ExpectedReductionCO2e: req.ExpectedReductionCO2e,
		Notes:                 req.Notes,
		Actor:                 middleware.GetActor(ctx),
	})
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, toResponse(initiative))
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	companyID, err := domain.ParseCompanyID(r.URL.Query().Get("company_id"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	list, err := h.service.List(ctx, companyID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	out := make([]initiativeResponse, 0, len(list))
	for _, initiative := range list {
		out = append(out, toResponse(initiative))
	}
	shared.WriteJSON(w, http.StatusOK, out)
}

func (h *Handler) handleUpdateActual(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := domain.ParseInitiativeID(chi.URLParam(r, "id"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	var req struct {
		ActualReductionCO2e float64 `json:"actual_reduction_co2e"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid request body"))
		return
	}
	initiative, err := h.service.UpdateActualReduction(ctx, id, req.ActualReductionCO2e)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, toResponse(initiative))
}

func (h *Handler) handleTransition(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := domain.ParseInitiativeID(chi.URLParam(r, "id"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid request body"))
		return
	}
	initiative, err := h.service.Transition(ctx, id, initiatives.Status(req.Status))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, toResponse(initiative))
}

func (h *Handler) handlePayback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := domain.ParseInitiativeID(chi.URLParam(r, "id"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	price, err := strconv.ParseFloat(r.URL.Query().Get("carbon_price"), 64)
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "carbon_price query parameter is required"))
		return
	}
	years, err := h.service.Payback(ctx, id, price)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]float64{"payback_years": years})
}
