// Package handler exposes factor lookups and company override management
// over HTTP.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"carbonledger/internal/factors"
	"carbonledger/internal/platform/middleware"
	"carbonledger/internal/transport/http/shared"
	"carbonledger/pkg/domain"
	dErrors "carbonledger/pkg/domain-errors"
	audit "carbonledger/pkg/platform/audit"
)

// AuditPublisher records override mutations for the audit trail.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event)
}

// Handler handles factor catalogue and override endpoints.
type Handler struct {
	logger    *slog.Logger
	table     *factors.Table
	overrides factors.OverrideStore
	auditor   AuditPublisher
}

// New creates a factors Handler. The audit publisher may be nil.
func New(table *factors.Table, overrides factors.OverrideStore, logger *slog.Logger, auditor AuditPublisher) *Handler {
	return &Handler{logger: logger, table: table, overrides: overrides, auditor: auditor}
}

// Register registers the factor routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/factors/{scope}/{category}/{activity}", h.handleResolve)
	r.Post("/factors/overrides", h.handleSaveOverride)
	r.Get("/factors/overrides", h.handleListOverrides)
	r.Delete("/factors/overrides/{id}", h.handleDeleteOverride)
}

// factorResponse is the wire shape of a resolved factor.
type factorResponse struct {
	ID           string  `json:"id"`
	Version      string  `json:"version"`
	Scope        string  `json:"scope"`
	Category     string  `json:"category"`
	ActivityType string  `json:"activity_type"`
	Name         string  `json:"name,omitempty"`
	Unit         string  `json:"unit"`
	Kind         string  `json:"kind"`
	CO2          float64 `json:"factor_co2,omitempty"`
	CH4          float64 `json:"factor_ch4,omitempty"`
	N2O          float64 `json:"factor_n2o,omitempty"`
	GWP          float64 `json:"gwp,omitempty"`
	CO2e         float64 `json:"factor_co2e,omitempty"`
	Source       string  `json:"source,omitempty"`
}

func (h *Handler) handleResolve(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	scope, err := domain.ParseScope(chi.URLParam(r, "scope"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	category, err := domain.ParseCategory(scope, chi.URLParam(r, "category"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	var companyID domain.CompanyID
	if raw := r.URL.Query().Get("company_id"); raw != "" {
		companyID, err = domain.ParseCompanyID(raw)
		if err != nil {
			shared.WriteError(w, err)
			return
		}
	}
	asOf := time.Now().UTC()
	if raw := r.URL.Query().Get("as_of"); raw != "" {
		asOf, err = time.Parse("2006-01-02", raw)
		if err != nil {
			shared.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "as_of must be YYYY-MM-DD"))
			return
		}
	}

	factor, err := h.table.Resolve(ctx, companyID, scope, category, chi.URLParam(r, "activity"), asOf)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, factorResponse{
		ID:           factor.ID,
		Version:      factor.Version,
		Scope:        factor.Scope.String(),
		Category:     factor.Category.String(),
		ActivityType: factor.ActivityType,
		Name:         factor.Name,
		Unit:         factor.Unit,
		Kind:         string(factor.Kind),
		CO2:          factor.CO2,
		CH4:          factor.CH4,
		N2O:          factor.N2O,
		GWP:          factor.GWP,
		CO2e:         factor.CO2e,
		Source:       factor.Source,
	})
}

// overrideRequest is a company-specific factor override.
type overrideRequest struct {
	CompanyID    string     `json:"company_id"`
	Scope        string     `json:"scope"`
	Category     string     `json:"category"`
	ActivityType string     `json:"activity_type"`
	FactorCO2    float64    `json:"factor_co2,omitempty"`
	FactorCH4    float64    `json:"factor_ch4,omitempty"`
	FactorN2O    float64    `json:"factor_n2o,omitempty"`
	FactorCO2e   float64    `json:"factor_co2e,omitempty"`
	Unit         string     `json:"unit"`
	Source       string     `json:"source,omitempty"`
	ValidFrom    *time.Time `json:"valid_from,omitempty"`
	ValidUntil   *time.Time `json:"valid_until,omitempty"`
}

func (h *Handler) handleSaveOverride(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req overrideRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid request body"))
		return
	}
	companyID, err := domain.ParseCompanyID(req.CompanyID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	scope, err := domain.ParseScope(req.Scope)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	category, err := domain.ParseCategory(scope, req.Category)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	if req.FactorCO2 == 0 && req.FactorCH4 == 0 && req.FactorN2O == 0 && req.FactorCO2e == 0 {
		shared.WriteError(w, dErrors.New(dErrors.CodeValidation, "at least one factor value is required"))
		return
	}

	override := &factors.CustomFactor{
		CompanyID:    companyID,
		Scope:        scope,
		Category:     category,
		ActivityType: req.ActivityType,
		FactorCO2:    req.FactorCO2,
		FactorCH4:    req.FactorCH4,
		FactorN2O:    req.FactorN2O,
		FactorCO2e:   req.FactorCO2e,
		Unit:         req.Unit,
		Source:       req.Source,
		ValidFrom:    req.ValidFrom,
		ValidUntil:   req.ValidUntil,
	}
	if err := h.overrides.Save(ctx, override); err != nil {
		h.logger.ErrorContext(ctx, "save factor override failed",
			"request_id", middleware.GetRequestID(ctx),
			"error", err.Error(),
		)
		shared.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "persist override"))
		return
	}

	if h.auditor != nil {
		h.auditor.Emit(ctx, audit.Event{
			CompanyID: companyID,
			Subject:   override.ID.String(),
			Action:    string(audit.EventFactorOverrideSaved),
			Actor:     middleware.GetActor(ctx),
		})
	}
	shared.WriteJSON(w, http.StatusCreated, map[string]string{"id": override.ID.String()})
}

func (h *Handler) handleListOverrides(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	companyID, err := domain.ParseCompanyID(r.URL.Query().Get("company_id"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	overrides, err := h.overrides.ListByCompany(ctx, companyID)
	if err != nil {
		shared.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "list overrides"))
		return
	}

	out := make([]overrideRequest, 0, len(overrides))
	ids := make([]string, 0, len(overrides))
	for _, override := range overrides {
		ids = append(ids, override.ID.String())
		out = append(out, overrideRequest{
			CompanyID:    override.CompanyID.String(),
			Scope:        override.Scope.String(),
			Category:     override.Category.String(),
			ActivityType: override.ActivityType,
			FactorCO2:    override.FactorCO2,
			FactorCH4:    override.FactorCH4,
			FactorN2O:    override.FactorN2O,
			FactorCO2e:   override.FactorCO2e,
			Unit:         override.Unit,
			Source:       override.Source,
			ValidFrom:    override.ValidFrom,
			ValidUntil:   override.ValidUntil,
		})
	}
	shared.WriteJSON(w, http.StatusOK, map[string]any{"ids": ids, "overrides": out})
}

func (h *Handler) handleDeleteOverride(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid override id"))
		return
	}
	if err := h.overrides.Delete(ctx, id); err != nil {
		shared.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
