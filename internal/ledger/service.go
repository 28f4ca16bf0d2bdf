package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"carbonledger/internal/calculator"
	"carbonledger/internal/platform/metrics"
	"carbonledger/pkg/domain"
	dErrors "carbonledger/pkg/domain-errors"
	audit "carbonledger/pkg/platform/audit"
)

// AuditPublisher records ledger mutations for the audit trail. Emit must
// never fail the mutation it describes.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event)
}

// Service owns the emission record lifecycle. It computes CO2e through the
// calculator when callers do not supply one, stamps factor provenance on
// every computed record, and emits audit events for each mutation.
type Service struct {
	store   Store
	calc    *calculator.Calculator
	logger  *slog.Logger
	auditor AuditPublisher
	metrics *metrics.Metrics
	now     func() time.Time
}

// Option configures the Service.
type Option func(*Service)

// WithLogger sets a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// WithAudit wires an audit publisher for ledger mutations.
func WithAudit(auditor AuditPublisher) Option {
	return func(s *Service) { s.auditor = auditor }
}

// WithMetrics wires Prometheus metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func withClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService constructs the ledger service.
func NewService(store Store, calc *calculator.Calculator, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, dErrors.New(dErrors.CodeValidation, "emission store is required")
	}
	if calc == nil {
		return nil, dErrors.New(dErrors.CodeValidation, "calculator is required")
	}
	s := &Service{
		store:  store,
		calc:   calc,
		logger: slog.Default(),
		now:    func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// AddEmissionInput carries one activity submission. CO2e is computed from
// the factor table unless supplied explicitly; Spend switches Scope-3
// business travel to its spend-based method.
type AddEmissionInput struct {
	CompanyID    domain.CompanyID
	Period       string
	Scope        domain.Scope
	Category     domain.Category
	ActivityType string
	Quantity     float64
	Unit         string
	Spend        float64
	CO2e         *float64
	DataQuality  domain.DataQuality
	Source       string
	Verified     bool
	VerifiedBy   string
	Notes        string
	Actor        string
}

func (in AddEmissionInput) validate() error {
	if in.CompanyID.IsNil() {
		return dErrors.New(dErrors.CodeValidation, "company id is required")
	}
	if in.Period == "" {
		return dErrors.New(dErrors.CodeValidation, "period is required")
	}
	if !in.Scope.IsValid() {
		return dErrors.Newf(dErrors.CodeValidation, "invalid scope %d", int(in.Scope))
	}
	if in.Category.Scope() != in.Scope {
		return dErrors.Newf(dErrors.CodeValidation, "category %q does not belong to %s", in.Category, in.Scope)
	}
	return nil
}

// AddEmission computes (or accepts) the CO2e figure, persists the record
// and returns it. The stored figure is a point-in-time fact: later factor
// table edits never touch it.
func (s *Service) AddEmission(ctx context.Context, in AddEmissionInput) (*EmissionRecord, error) {
	record, err := s.buildRecord(ctx, in)
	if err != nil {
		if s.metrics != nil {
			s.metrics.CalculationErrors.Inc()
			if dErrors.HasCode(err, dErrors.CodeNotFound) {
				s.metrics.FactorCacheMisses.Inc()
			}
		}
		return nil, err
	}

	if err := s.store.Insert(ctx, record); err != nil {
		s.logger.ErrorContext(ctx, "insert emission record failed",
			"company_id", in.CompanyID.String(),
			"period", in.Period,
			"error", err.Error(),
		)
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "persist emission record")
	}

	s.emitAudit(ctx, in.CompanyID, record.ID.String(), audit.EventEmissionRecorded, in.Actor, "")
	if s.metrics != nil {
		s.metrics.RecordEmission(record.Scope.String(), record.CO2e)
	}
	return record, nil
}

// BulkImport persists a batch of submissions as one atomic unit of work.
// A failure on any entry rolls back the whole batch.
func (s *Service) BulkImport(ctx context.Context, companyID domain.CompanyID, inputs []AddEmissionInput) ([]*EmissionRecord, error) {
	if len(inputs) == 0 {
		return nil, nil
	}
	txStore, ok := s.store.(StoreTx)
	if !ok {
		return nil, dErrors.New(dErrors.CodeInternal, "store does not support transactional imports")
	}

	records := make([]*EmissionRecord, 0, len(inputs))
	for i, in := range inputs {
		if in.CompanyID != companyID {
			return nil, dErrors.Newf(dErrors.CodeValidation, "entry %d belongs to a different company", i)
		}
		record, err := s.buildRecord(ctx, in)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeOf(err), fmt.Sprintf("entry %d", i))
		}
		records = append(records, record)
	}

	err := txStore.RunInTx(ctx, func(ctx context.Context) error {
		for _, record := range records {
			if err := s.store.Insert(ctx, record); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "bulk import rolled back",
			"company_id", companyID.String(),
			"entries", len(inputs),
			"error", err.Error(),
		)
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "bulk import")
	}

	s.emitAudit(ctx, companyID, fmt.Sprintf("%d records", len(records)), audit.EventEmissionsImported, firstActor(inputs), "")
	if s.metrics != nil {
		for _, record := range records {
			s.metrics.RecordEmission(record.Scope.String(), record.CO2e)
		}
	}
	return records, nil
}

// GetEmission returns a single record by ID.
func (s *Service) GetEmission(ctx context.Context, id domain.RecordID) (*EmissionRecord, error) {
	return s.store.FindByID(ctx, id)
}

// GetEmissions lists a company's records in the ledger's canonical order:
// period descending, then scope, then category.
func (s *Service) GetEmissions(ctx context.Context, companyID domain.CompanyID, query Query) ([]*EmissionRecord, error) {
	if companyID.IsNil() {
		return nil, dErrors.New(dErrors.CodeValidation, "company id is required")
	}
	return s.store.List(ctx, companyID, query)
}

// UpdateEmission carries a correction. Nil fields are left unchanged.
// Scope, category and activity type are not correctable; reclassification
// means a new record.
type UpdateEmission struct {
	Quantity    *float64
	Unit        *string
	CO2e        *float64
	DataQuality *domain.DataQuality
	Source      *string
	Verified    *bool
	VerifiedBy  *string
	Notes       *string
	Actor       string
	Reason      string
}

// UpdateEmissionRecord applies a correction to an existing record.
func (s *Service) UpdateEmissionRecord(ctx context.Context, id domain.RecordID, update UpdateEmission) (*EmissionRecord, error) {
	record, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if update.Quantity != nil {
		if *update.Quantity < 0 {
			return nil, dErrors.New(dErrors.CodeValidation, "quantity cannot be negative")
		}
		record.Quantity = *update.Quantity
	}
	if update.Unit != nil {
		record.Unit = *update.Unit
	}
	if update.CO2e != nil {
		record.CO2e = calculator.Round3(*update.CO2e)
	}
	if update.DataQuality != nil {
		quality, err := domain.ParseDataQuality(update.DataQuality.String())
		if err != nil {
			return nil, err
		}
		record.DataQuality = quality
	}
	if update.Source != nil {
		record.Source = *update.Source
	}
	if update.Verified != nil {
		record.Verified = *update.Verified
	}
	if update.VerifiedBy != nil {
		record.VerifiedBy = *update.VerifiedBy
	}
	if update.Notes != nil {
		record.Notes = *update.Notes
	}
	record.UpdatedAt = s.now()

	if err := s.store.Update(ctx, record); err != nil {
		s.logger.ErrorContext(ctx, "update emission record failed",
			"record_id", id.String(),
			"error", err.Error(),
		)
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "persist correction")
	}

	s.emitAudit(ctx, record.CompanyID, id.String(), audit.EventEmissionCorrected, update.Actor, update.Reason)
	return record, nil
}

// DeleteEmissionRecord hard-deletes a record. Intended for erroneous
// entries prior to report lock.
func (s *Service) DeleteEmissionRecord(ctx context.Context, id domain.RecordID, actor, reason string) error {
	record, err := s.store.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.store.Delete(ctx, id); err != nil {
		s.logger.ErrorContext(ctx, "delete emission record failed",
			"record_id", id.String(),
			"error", err.Error(),
		)
		return dErrors.Wrap(err, dErrors.CodeInternal, "delete emission record")
	}
	s.emitAudit(ctx, record.CompanyID, id.String(), audit.EventEmissionDeleted, actor, reason)
	return nil
}

func (s *Service) buildRecord(ctx context.Context, in AddEmissionInput) (*EmissionRecord, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	quality, err := domain.ParseDataQuality(in.DataQuality.String())
	if err != nil {
		return nil, err
	}

	now := s.now()
	record := &EmissionRecord{
		ID:           domain.NewRecordID(),
		CompanyID:    in.CompanyID,
		Period:       in.Period,
		Scope:        in.Scope,
		Category:     in.Category,
		Subcategory:  in.Category.Scope3Number(),
		ActivityType: in.ActivityType,
		Quantity:     in.Quantity,
		Unit:         in.Unit,
		DataQuality:  quality,
		Source:       in.Source,
		Verified:     in.Verified,
		VerifiedBy:   in.VerifiedBy,
		Notes:        in.Notes,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if in.CO2e != nil {
		record.CO2e = calculator.Round3(*in.CO2e)
		return record, nil
	}

	breakdown, err := s.calculate(ctx, in, now)
	if err != nil {
		return nil, err
	}
	record.CO2 = breakdown.CO2
	record.CH4 = breakdown.CH4
	record.N2O = breakdown.N2O
	record.CO2e = breakdown.CO2e
	record.FactorID = breakdown.FactorID
	record.FactorVersion = breakdown.FactorVersion
	if record.Unit == "" {
		record.Unit = breakdown.Unit
	}
	if record.Source == "" {
		record.Source = breakdown.Source
	}
	return record, nil
}

func (s *Service) calculate(ctx context.Context, in AddEmissionInput, asOf time.Time) (calculator.Breakdown, error) {
	if in.Scope == domain.Scope3 && in.Spend > 0 {
		results, err := s.calc.CalculateScope3Category(ctx, in.CompanyID, in.Category, []calculator.Scope3Entry{{
			SubType:  in.ActivityType,
			Quantity: in.Quantity,
			Spend:    in.Spend,
		}}, asOf)
		if err != nil {
			return calculator.Breakdown{}, err
		}
		return results.Details[0].Breakdown, nil
	}
	return s.calc.Calculate(ctx, in.CompanyID, in.Scope, in.Category, in.ActivityType, in.Quantity, asOf)
}

func (s *Service) emitAudit(ctx context.Context, companyID domain.CompanyID, subject string, action audit.LedgerEvent, actor, reason string) {
	if s.auditor == nil {
		return
	}
	s.auditor.Emit(ctx, audit.Event{
		Timestamp: s.now(),
		CompanyID: companyID,
		Subject:   subject,
		Action:    string(action),
		Actor:     actor,
		Reason:    reason,
	})
}

func firstActor(inputs []AddEmissionInput) string {
	for _, in := range inputs {
		if in.Actor != "" {
			return in.Actor
		}
	}
	return ""
}
