// Package handler exposes the emission ledger over HTTP.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"carbonledger/internal/ledger"
	"carbonledger/internal/platform/middleware"
	"carbonledger/internal/transport/http/shared"
	"carbonledger/pkg/domain"
	dErrors "carbonledger/pkg/domain-errors"
)

// Service defines the ledger operations the HTTP layer needs.
type Service interface {
	AddEmission(ctx context.Context, in ledger.AddEmissionInput) (*ledger.EmissionRecord, error)
	BulkImport(ctx context.Context, companyID domain.CompanyID, inputs []ledger.AddEmissionInput) ([]*ledger.EmissionRecord, error)
	GetEmission(ctx context.Context, id domain.RecordID) (*ledger.EmissionRecord, error)
	GetEmissions(ctx context.Context, companyID domain.CompanyID, query ledger.Query) ([]*ledger.EmissionRecord, error)
	UpdateEmissionRecord(ctx context.Context, id domain.RecordID, update ledger.UpdateEmission) (*ledger.EmissionRecord, error)
	DeleteEmissionRecord(ctx context.Context, id domain.RecordID, actor, reason string) error
}

// Handler handles emission ledger endpoints.
type Handler struct {
	logger  *slog.Logger
	service Service
}

// New creates a ledger Handler.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{logger: logger, service: service}
}

// Register registers the ledger routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/emissions", h.handleAddEmission)
	r.Post("/emissions/import", h.handleBulkImport)
	r.Get("/emissions", h.handleListEmissions)
	r.Get("/emissions/{id}", h.handleGetEmission)
	r.Patch("/emissions/{id}", h.handleUpdateEmission)
	r.Delete("/emissions/{id}", h.handleDeleteEmission)
}

// emissionRequest is one activity submission.
type emissionRequest struct {
	CompanyID    string   `json:"company_id"`
	Period       string   `json:"period"`
	Scope        string   `json:"scope"`
	Category     string   `json:"category"`
	ActivityType string   `json:"activity_type"`
	Quantity     float64  `json:"quantity"`
	Unit         string   `json:"unit"`
	Spend        float64  `json:"spend,omitempty"`
	CO2e         *float64 `json:"co2e,omitempty"`
	DataQuality  string   `json:"data_quality,omitempty"`
	Source       string   `json:"source,omitempty"`
	Verified     bool     `json:"verified,omitempty"`
	VerifiedBy   string   `json:"verified_by,omitempty"`
	Notes        string   `json:"notes,omitempty"`
}

func (req emissionRequest) toInput(actor string) (ledger.AddEmissionInput, error) {
	companyID, err := domain.ParseCompanyID(req.CompanyID)
	if err != nil {
		return ledger.AddEmissionInput{}, err
	}
	scope, err := domain.ParseScope(req.Scope)
	if err != nil {
		return ledger.AddEmissionInput{}, err
	}
	category, err := domain.ParseCategory(scope, req.Category)
	if err != nil {
		return ledger.AddEmissionInput{}, err
	}
	return ledger.AddEmissionInput{
		CompanyID:    companyID,
		Period:       req.Period,
		Scope:        scope,
		Category:     category,
		ActivityType: req.ActivityType,
		Quantity:     req.Quantity,
		Unit:         req.Unit,
		Spend:        req.Spend,
		CO2e:         req.CO2e,
		DataQuality:  domain.DataQuality(req.DataQuality),
		Source:       req.Source,
		Verified:     req.Verified,
		VerifiedBy:   req.VerifiedBy,
		Notes:        req.Notes,
		Actor:        actor,
	}, nil
}

// emissionResponse is the wire shape of one ledger record.
type emissionResponse struct {
	ID            string  `json:"id"`
	CompanyID     string  `json:"company_id"`
	Period        string  `json:"period"`
	Scope         string  `json:"scope"`
	Category      string  `json:"category"`
	Subcategory   string  `json:"subcategory,omitempty"`
	ActivityType  string  `json:"activity_type,omitempty"`
	Quantity      float64 `json:"quantity"`
	Unit          string  `json:"unit,omitempty"`
	CO2           float64 `json:"co2"`
	CH4           float64 `json:"ch4"`
	N2O           float64 `json:"n2o"`
	CO2e          float64 `json:"co2e"`
	FactorID      string  `json:"factor_id,omitempty"`
	FactorVersion string  `json:"factor_version,omitempty"`
	DataQuality   string  `json:"data_quality"`
	Source        string  `json:"source,omitempty"`
	Verified      bool    `json:"verified"`
	VerifiedBy    string  `json:"verified_by,omitempty"`
	Notes         string  `json:"notes,omitempty"`
	CreatedAt     string  `json:"created_at"`
	UpdatedAt     string  `json:"updated_at"`
}

func toResponse(record *ledger.EmissionRecord) emissionResponse {
	return emissionResponse{
		ID:            record.ID.String(),
		CompanyID:     record.CompanyID.String(),
		Period:        record.Period,
		Scope:         record.Scope.String(),
		Category:      record.Category.String(),
		Subcategory:   record.Subcategory,
		ActivityType:  record.ActivityType,
		Quantity:      record.Quantity,
		Unit:          record.Unit,
		CO2:           record.CO2,
		CH4:           record.CH4,
		N2O:           record.N2O,
		CO2e:          record.CO2e,
		FactorID:      record.FactorID,
		FactorVersion: record.FactorVersion,
		DataQuality:   record.DataQuality.String(),
		Source:        record.Source,
		Verified:      record.Verified,
		VerifiedBy:    record.VerifiedBy,
		Notes:         record.Notes,
		CreatedAt:     record.CreatedAt.Format(time.RFC3339),
		UpdatedAt:     record.UpdatedAt.Format(time.RFC3339),
	}
}

func (h *Handler) handleAddEmission(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req emissionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid request body"))
		return
	}
	input, err := req.toInput(middleware.GetActor(ctx))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	record, err := h.service.AddEmission(ctx, input)
	if err != nil {
		h.logError(ctx, "add emission failed", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, toResponse(record))
}

func (h *Handler) handleBulkImport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req struct {
		CompanyID string            `json:"company_id"`
		Entries   []emissionRequest `json:"entries"`
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

	actor := middleware.GetActor(ctx)
	inputs := make([]ledger.AddEmissionInput, 0, len(req.Entries))
	for _, entry := range req.Entries {
		if entry.CompanyID == "" {
			entry.CompanyID = req.CompanyID
		}
		input, err := entry.toInput(actor)
		if err != nil {
			shared.WriteError(w, err)
			return
		}
		inputs = append(inputs, input)
	}

	records, err := h.service.BulkImport(ctx, companyID, inputs)
	if err != nil {
		h.logError(ctx, "bulk import failed", err)
		shared.WriteError(w, err)
		return
	}

	out := make([]emissionResponse, 0, len(records))
	for _, record := range records {
		out = append(out, toResponse(record))
	}
	shared.WriteJSON(w, http.StatusCreated, map[string]any{
		"imported": len(out),
		"records":  out,
	})
}

func (h *Handler) handleListEmissions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	companyID, err := domain.ParseCompanyID(r.URL.Query().Get("company_id"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	query := ledger.Query{}
	if period := r.URL.Query().Get("period"); period != "" {
		query.Period = &period
	}
	if scopeLabel := r.URL.Query().Get("scope"); scopeLabel != "" {
		scope, err := domain.ParseScope(scopeLabel)
		if err != nil {
			shared.WriteError(w, err)
			return
		}
		query.Scope = &scope
	}

	records, err := h.service.GetEmissions(ctx, companyID, query)
	if err != nil {
		h.logError(ctx, "list emissions failed", err)
		shared.WriteError(w, err)
		return
	}
	out := make([]emissionResponse, 0, len(records))
	for _, record := range records {
		out = append(out, toResponse(record))
	}
	shared.WriteJSON(w, http.StatusOK, out)
}

func (h *Handler) handleGetEmission(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := domain.ParseRecordID(chi.URLParam(r, "id"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	record, err := h.service.GetEmission(ctx, id)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, toResponse(record))
}

func (h *Handler) handleUpdateEmission(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := domain.ParseRecordID(chi.URLParam(r, "id"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	var req struct {
		Quantity    *float64 `json:"quantity"`
		Unit        *string  `json:"unit"`
		CO2e        *float64 `json:"co2e"`
		DataQuality *string  `json:"data_quality"`
		Source      *string  `json:"source"`
		Verified    *bool    `json:"verified"`
		VerifiedBy  *string  `json:"verified_by"`
		Notes       *string  `json:"notes"`
		Reason      string   `json:"reason"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid request body"))
		return
	}

	update := ledger.UpdateEmission{
		Quantity:   req.Quantity,
		Unit:       req.Unit,
		CO2e:       req.CO2e,
		Source:     req.Source,
		Verified:   req.Verified,
		VerifiedBy: req.VerifiedBy,
		Notes:      req.Notes,
		Actor:      middleware.GetActor(ctx),
		Reason:     req.Reason,
	}
	if req.DataQuality != nil {
		quality := domain.DataQuality(*req.DataQuality)
		update.DataQuality = &quality
	}

	record, err := h.service.UpdateEmissionRecord(ctx, id, update)
	if err != nil {
		h.logError(ctx, "update emission failed", err)
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, toResponse(record))
}

func (h *Handler) handleDeleteEmission(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := domain.ParseRecordID(chi.URLParam(r, "id"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	if err := h.service.DeleteEmissionRecord(ctx, id, middleware.GetActor(ctx), r.URL.Query().Get("reason")); err != nil {
		h.logError(ctx, "delete emission failed", err)
		shared.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) logError(ctx context.Context, msg string, err error) {
	if dErrors.HasCode(err, dErrors.CodeInternal) {
		h.logger.ErrorContext(ctx, msg,
			"request_id", middleware.GetRequestID(ctx),
			"error", err.Error(),
		)
		return
	}
	h.logger.WarnContext(ctx, msg,
		"request_id", middleware.GetRequestID(ctx),
		"error", err.Error(),
	)
}
