package targets

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"carbonledger/pkg/domain"
	dErrors "carbonledger/pkg/domain-errors"
	audit "carbonledger/pkg/platform/audit"
)

// Aggregator supplies the ledger's canonical total for a company and
// period. The reports service implements it.
type Aggregator interface {
	TotalCO2e(ctx context.Context, companyID domain.CompanyID, period string) (float64, error)
}

// AuditPublisher records target mutations for the audit trail.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event)
}

// Service tracks reduction targets and computes progress against ledger
// aggregates.
type Service struct {
	store      Store
	aggregator Aggregator
	logger     *slog.Logger
	auditor    AuditPublisher
	now        func() time.Time
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

// WithAggregator wires the ledger aggregate source used by Progress.
func WithAggregator(aggregator Aggregator) Option {
	return func(s *Service) { s.aggregator = aggregator }
}

// NewService constructs the target tracker.
func NewService(store Store, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, dErrors.New(dErrors.CodeValidation, "target store is required")
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

// CreateTargetInput carries a new reduction commitment.
type CreateTargetInput struct {
	CompanyID       domain.CompanyID
	Description     string
	BaselineYear    int
	BaselineCO2e    float64
	TargetYear      int
	TargetCO2e      float64
	ScopeCoverage   string
	Type            TargetType
	IntensityMetric string
	Actor           string
}

func (in CreateTargetInput) validate() error {
	if in.CompanyID.IsNil() {
		return dErrors.New(dErrors.CodeValidation, "company id is required")
	}
	if in.BaselineYear <= 0 || in.TargetYear <= 0 {
		return dErrors.New(dErrors.CodeValidation, "baseline and target years are required")
	}
	if in.TargetYear <= in.BaselineYear {
		return dErrors.New(dErrors.CodeValidation, "target year must be after baseline year")
	}
	if in.BaselineCO2e < 0 || in.TargetCO2e < 0 {
		return dErrors.New(dErrors.CodeValidation, "emissions cannot be negative")
	}
	if in.BaselineCO2e == in.TargetCO2e {
		return dErrors.New(dErrors.CodeValidation, "target must differ from baseline")
	}
	return nil
}

// CreateTarget validates and persists a reduction target.
func (s *Service) CreateTarget(ctx context.Context, in CreateTargetInput) (*Target, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	targetType, err := ParseTargetType(in.Type.String())
	if err != nil {
		return nil, err
	}

	now := s.now()
	target := &Target{
		ID:              domain.NewTargetID(),
		CompanyID:       in.CompanyID,
		Description:     in.Description,
		BaselineYear:    in.BaselineYear,
		BaselineCO2e:    in.BaselineCO2e,
		TargetYear:      in.TargetYear,
		TargetCO2e:      in.TargetCO2e,
		ScopeCoverage:   in.ScopeCoverage,
		Type:            targetType,
		IntensityMetric: in.IntensityMetric,
		Status:          StatusActive,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if target.ScopeCoverage == "" {
		target.ScopeCoverage = "all"
	}

	if err := s.store.Save(ctx, target); err != nil {
		s.logger.ErrorContext(ctx, "save target failed",
			"company_id", in.CompanyID.String(),
			"error", err.Error(),
		)
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "persist target")
	}

	if s.auditor != nil {
		s.auditor.Emit(ctx, audit.Event{
			Timestamp: now,
			CompanyID: in.CompanyID,
			Subject:   target.ID.String(),
			Action:    string(audit.EventTargetCreated),
			Actor:     in.Actor,
		})
	}
	return target, nil
}

// GetTargets lists a company's targets ordered by target year.
func (s *Service) GetTargets(ctx context.Context, companyID domain.CompanyID) ([]*Target, error) {
	if companyID.IsNil() {
		return nil, dErrors.New(dErrors.CodeValidation, "company id is required")
	}
	return s.store.ListByCompany(ctx, companyID)
}

// TargetProgress is a target paired with its computed progress.
type TargetProgress struct {
	Target     *Target
	ActualCO2e float64
	// Percent is how far actual emissions have moved toward the target,
	// clamped to [0,100].
	Percent float64
}

// Progress computes a target's progress from the ledger total of the given
// period. When period is empty the current year is used.
func (s *Service) Progress(ctx context.Context, id domain.TargetID, period string) (*TargetProgress, error) {
	if s.aggregator == nil {
		return nil, dErrors.New(dErrors.CodeInternal, "no aggregate source configured")
	}
	target, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if period == "" {
		period = strconv.Itoa(s.now().Year())
	}

	actual, err := s.aggregator.TotalCO2e(ctx, target.CompanyID, period)
	if err != nil {
		return nil, err
	}
	pct, err := target.Progress(actual)
	if err != nil {
		return nil, err
	}
	return &TargetProgress{Target: target, ActualCO2e: actual, Percent: pct}, nil
}

// UpdateStatus moves a target through its lifecycle.
func (s *Service) UpdateStatus(ctx context.Context, id domain.TargetID, status Status) error {
	parsed, err := ParseStatus(status.String())
	if err != nil {
		return err
	}
	return s.store.UpdateStatus(ctx, id, parsed)
}
