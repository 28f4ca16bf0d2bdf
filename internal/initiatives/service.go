package initiatives

import (
	"context"
	"log/slog"
	"time"

	"carbonledger/pkg/domain"
	dErrors "carbonledger/pkg/domain-errors"
	audit "carbonledger/pkg/platform/audit"
)

// AuditPublisher records initiative mutations for the audit trail.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event)
}

// Service is the register of mitigation projects.
type Service struct {
	store   Store
	logger  *slog.Logger
	auditor AuditPublisher
	now     func() time.Time
}

// Option configures the Service.
type Option func(*Service)

// WithLogger sets a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// WithAudit wires an audit publisher.
func WithAudit(auditor AuditPublisher) Option {
	return func(s *Service) { s.auditor = auditor }
}

// NewService constructs the initiative register.
func NewService(store Store, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, dErrors.New(dErrors.CodeValidation, "initiative store is required")
	}
	s := &Service{
		store:  store,
		logger: slog.Default(),
		now:    func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// RegisterInput carries a new mitigation project.
type RegisterInput struct {
	CompanyID             domain.CompanyID
	Name                  string
	Description           string
	InitiativeType        string
	TargetScope           domain.Scope
	StartDate             *time.Time
	Investment            float64
	ExpectedReductionCO2e float64
	Notes                 string
	Actor                 string
}

func (in RegisterInput) validate() error {
	if in.CompanyID.IsNil() {
		return dErrors.New(dErrors.CodeValidation, "company id is required")
	}
	if in.Name == "" {
		return dErrors.New(dErrors.CodeValidation, "name is required")
	}
	if !in.TargetScope.IsValid() {
		return dErrors.Newf(dErrors.CodeValidation, "invalid target scope %d", int(in.TargetScope))
	}
	if in.Investment < 0 {
		return dErrors.New(dErrors.CodeValidation, "investment cannot be negative")
	}
	if in.ExpectedReductionCO2e < 0 {
		return dErrors.New(dErrors.CodeValidation, "expected reduction cannot be negative")
	}
	return nil
}

// Register validates and persists a new initiative in planned state.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*Initiative, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	now := s.now()
	initiative := &Initiative{
		ID:                    domain.NewInitiativeID(),
		CompanyID:             in.CompanyID,
		Name:                  in.Name,
		Description:           in.Description,
		InitiativeType:        in.InitiativeType,
		TargetScope:           in.TargetScope,
		StartDate:             in.StartDate,
		Investment:            in.Investment,
		ExpectedReductionCO2e: in.ExpectedReductionCO2e,
		Status:                StatusPlanned,
		Notes:                 in.Notes,
		CreatedAt:             now,
		UpdatedAt:             now,
	}

	if err := s.store.Save(ctx, initiative); err != nil {
		s.logger.ErrorContext(ctx, "save initiative failed",
			"company_id", in.CompanyID.String(),
			"error", err.Error(),
		)
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "persist initiative")
	}

	if s.auditor != nil {
		s.auditor.Emit(ctx, audit.Event{
			Timestamp: now,
			CompanyID: in.CompanyID,
			Subject:   initiative.ID.String(),
			Action:    string(audit.EventInitiativeRegistered),
			Actor:     in.Actor,
		})
	}
	return initiative, nil
}

// List returns a company's initiatives.
func (s *Service) List(ctx context.Context, companyID domain.CompanyID) ([]*Initiative, error) {
	if companyID.IsNil() {
		return nil, dErrors.New(dErrors.CodeValidation, "company id is required")
	}
	return s.store.ListByCompany(ctx, companyID)
}

// UpdateActualReduction records the measured annual saving of an
// initiative.
func (s *Service) UpdateActualReduction(ctx context.Context, id domain.InitiativeID, value float64) (*Initiative, error) {
	if value < 0 {
		return nil, dErrors.New(dErrors.CodeValidation, "actual reduction cannot be negative")
	}
	initiative, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	initiative.ActualReductionCO2e = value
	initiative.UpdatedAt = s.now()
	if err := s.store.Update(ctx, initiative); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "persist actual reduction")
	}
	return initiative, nil
}

// Transition moves an initiative through its lifecycle. Terminal states
// reject further transitions.
func (s *Service) Transition(ctx context.Context, id domain.InitiativeID, next Status) (*Initiative, error) {
	parsed, err := ParseStatus(next.String())
	if err != nil {
		return nil, err
	}
	initiative, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !initiative.Status.canTransitionTo(parsed) {
		return nil, dErrors.Newf(dErrors.CodeConflict,
			"cannot move initiative from %s to %s", initiative.Status, parsed)
	}
	initiative.Status = parsed
	if parsed == StatusCompleted || parsed == StatusCancelled {
		now := s.now()
		initiative.EndDate = &now
	}
	initiative.UpdatedAt = s.now()
	if err := s.store.Update(ctx, initiative); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "persist status change")
	}
	return initiative, nil
}

// Payback computes an initiative's simple payback in years from an
// externally supplied carbon-price proxy.
func (s *Service) Payback(ctx context.Context, id domain.InitiativeID, carbonPrice float64) (float64, error) {
	initiative, err := s.store.FindByID(ctx, id)
	if err != nil {
		return 0, err
	}
	return initiative.PaybackYears(carbonPrice)
}
