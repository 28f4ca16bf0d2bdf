// Package handler exposes reduction target management over HTTP.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"carbonledger/internal/platform/middleware"
	"carbonledger/internal/targets"
	"carbonledger/internal/transport/http/shared"
	"carbonledger/pkg/domain"
	dErrors "carbonledger/pkg/domain-errors"
)

// Service defines the target operations the HTTP layer needs.
type Service interface {
	CreateTarget(ctx context.Context, in targets.CreateTargetInput) (*targets.Target, error)
	GetTargets(ctx context.Context, companyID domain.CompanyID) ([]*targets.Target, error)
	Progress(ctx context.Context, id domain.TargetID, period string) (*targets.TargetProgress, error)
	UpdateStatus(ctx context.Context, id domain.TargetID, status targets.Status) error
}

// Handler handles reduction target endpoints.
type Handler struct {
	logger  *slog.Logger
	service Service
}

// New creates a targets Handler.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, service: service}
}

// Register registers the target routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/targets", h.handleCreate)
	r.Get("/targets", h.handleList)
	r.Get("/targets/{id}/progress", h.handleProgress)
	r.Post("/targets/{id}/status", h.handleUpdateStatus)
}

// targetResponse is the wire shape of one target.
type targetResponse struct {
	ID              string  `json:"id"`
	CompanyID       string  `json:"company_id"`
	Description     string  `json:"description,omitempty"`
	BaselineYear    int     `json:"baseline_year"`
	BaselineCO2e    float64 `json:"baseline_co2e"`
	TargetYear      int     `json:"target_year"`
	TargetCO2e      float64 `json:"target_co2e"`
	ScopeCoverage   string  `json:"scope_coverage"`
	Type            string  `json:"type"`
	IntensityMetric string  `json:"intensity_metric,omitempty"`
	Status          string  `json:"status"`
}

func toResponse(target *targets.Target) targetResponse {
	return targetResponse{
		ID:              target.ID.String(),
		CompanyID:       target.CompanyID.String(),
		Description:     target.Description,
		BaselineYear:    target.BaselineYear,
		BaselineCO2e:    target.BaselineCO2e,
		TargetYear:      target.TargetYear,
		TargetCO2e:      target.TargetCO2e,
		ScopeCoverage:   target.ScopeCoverage,
		Type:            target.Type.String(),
		IntensityMetric: target.IntensityMetric,
		Status:          target.Status.String(),
	}
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req struct {
		CompanyID       string  `json:"company_id"`
		Description     string  `json:"description"`
		BaselineYear    int     `json:"baseline_year"`
		BaselineCO2e    float64 `json:"baseline_co2e"`
		TargetYear      int     `json:"target_year"`
		TargetCO2e      float64 `json:"target_co2e"`
		ScopeCoverage   string  `json:"scope_coverage"`
		Type            string  `json:"type"`
		IntensityMetric string  `json:"intensity_metric"`
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

	target, err := h.service.CreateTarget(ctx, targets.CreateTargetInput{
		CompanyID:       companyID,
		Description:     req.Description,
		BaselineYear:    req.BaselineYear,
		BaselineCO2e:    req.BaselineCO2e,
		TargetYear:      req.TargetYear,
		TargetCO2e:      req.TargetCO2e,
		ScopeCoverage:   req.ScopeCoverage,
		Type:            targets.TargetType(req.Type),
		IntensityMetric: req.IntensityMetric,
		Actor:           middleware.GetActor(ctx),
	})
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, toResponse(target))
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	companyID, err := domain.ParseCompanyID(r.URL.Query().Get("company_id"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	list, err := h.service.GetTargets(ctx, companyID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	out := make([]targetResponse, 0, len(list))
	for _, target := range list {
		out = append(out, toResponse(target))
	}
	shared.WriteJSON(w, http.StatusOK, out)
}

func (h *Handler) handleProgress(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := domain.ParseTargetID(chi.URLParam(r, "id"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	progress, err := h.service.Progress(ctx, id, r.URL.Query().Get("period"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]any{
		"target":      toResponse(progress.Target),
		"actual_co2e": progress.ActualCO2e,
		"percent":     progress.Percent,
	})
}

func (h *Handler) handleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := domain.ParseTargetID(chi.URLParam(r, "id"))
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
	if err := h.service.UpdateStatus(ctx, id, targets.Status(req.Status)); err != nil {
		shared.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
