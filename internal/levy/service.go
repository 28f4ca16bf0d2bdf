package levy

import (
	"context"
	"log/slog"

	"carbonledger/internal/platform/metrics"
	"carbonledger/pkg/domain"
	dErrors "carbonledger/pkg/domain-errors"
)

// Aggregator supplies the accounting engine's canonical total for a
// company and period.
type Aggregator interface {
	TotalCO2e(ctx context.Context, companyID domain.CompanyID, period string) (float64, error)
}

// Service assesses border levy liability against ledger totals.
type Service struct {
	aggregator Aggregator
	prices     PriceSource
	logger     *slog.Logger
	metrics    *metrics.Metrics
}

// Option configures the Service.
type Option func(*Service)

// WithLogger sets a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// WithMetrics wires Prometheus metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// NewService constructs the levy service.
func NewService(aggregator Aggregator, prices PriceSource, opts ...Option) (*Service, error) {
	if aggregator == nil {
		return nil, dErrors.New(dErrors.CodeValidation, "aggregator is required")
	}
	if prices == nil {
		return nil, dErrors.New(dErrors.CodeValidation, "price source is required")
	}
	s := &Service{
		aggregator: aggregator,
		prices:     prices,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// AssessCompany prices a company's ledger total for the period against the
// current carbon price. When the import lines carry no embedded emissions
// of their own, the ledger total stands in for them.
func (s *Service) AssessCompany(ctx context.Context, companyID domain.CompanyID, period string, lines []ImportLine) (*Assessment, error) {
	if companyID.IsNil() {
		return nil, dErrors.New(dErrors.CodeValidation, "company id is required")
	}
	for i, line := range lines {
		if line.Quantity < 0 || line.EmbeddedEmissions < 0 || line.CarbonPricePaid < 0 {
			return nil, dErrors.Newf(dErrors.CodeValidation, "import line %d has negative values", i)
		}
	}

	price, err := s.prices.CurrentPrice(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "resolve carbon price")
	}

	lineEmissions := 0.0
	for _, line := range lines {
		lineEmissions += line.EmbeddedEmissions
	}
	ledgerTotal := 0.0
	if lineEmissions == 0 {
		ledgerTotal, err = s.aggregator.TotalCO2e(ctx, companyID, period)
		if err != nil {
			return nil, err
		}
	}

	assessment := Assess(lines, price, ledgerTotal)
	assessment.Period = period

	s.logger.InfoContext(ctx, "levy assessed",
		"company_id", companyID.String(),
		"period", period,
		"liability", assessment.Liability,
		"below_de_minimis", assessment.BelowDeMinimis,
	)
	if s.metrics != nil {
		s.metrics.LevyAssessments.Inc()
	}
	return &assessment, nil
}
