// Package reports rolls the emission ledger up into the per-period,
// per-scope totals consumed by compliance modules. Totals are always
// computed from the ledger's current records; nothing here caches, so the
// canonical figure can never drift from the ledger.
package reports

import (
	"context"
	"log/slog"

	"carbonledger/internal/calculator"
	"carbonledger/internal/ledger"
	"carbonledger/pkg/domain"
	dErrors "carbonledger/pkg/domain-errors"
)

// LedgerReader is the read-only slice of the ledger this package needs.
type LedgerReader interface {
	List(ctx context.Context, companyID domain.CompanyID, query ledger.Query) ([]*ledger.EmissionRecord, error)
}

// Totals is the canonical aggregate for one company and period.
type Totals struct {
	CompanyID   domain.CompanyID
	Period      string
	Scope1Total float64
	Scope2Total float64
	Scope3Total float64
	TotalCO2e   float64
	// ByCategory breaks the total down per category label.
	ByCategory map[string]float64
	Records    int
}

// Service aggregates ledger records.
type Service struct {
	reader LedgerReader
	logger *slog.Logger
}

// Option configures the Service.
type Option func(*Service)

// WithLogger sets a logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// NewService constructs the report aggregator.
func NewService(reader LedgerReader, opts ...Option) (*Service, error) {
	if reader == nil {
		return nil, dErrors.New(dErrors.CodeValidation, "ledger reader is required")
	}
	s := &Service{reader: reader, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// AggregateTotals sums the ledger by scope for one company and period.
// An empty period aggregates the whole ledger.
func (s *Service) AggregateTotals(ctx context.Context, companyID domain.CompanyID, period string) (*Totals, error) {
	if companyID.IsNil() {
		return nil, dErrors.New(dErrors.CodeValidation, "company id is required")
	}
	query := ledger.Query{}
	if period != "" {
		query.Period = &period
	}
	records, err := s.reader.List(ctx, companyID, query)
	if err != nil {
		return nil, err
	}

	totals := &Totals{
		CompanyID:  companyID,
		Period:     period,
		ByCategory: make(map[string]float64),
	}
	for _, record := range records {
		switch record.Scope {
		case domain.Scope1:
			totals.Scope1Total += record.CO2e
		case domain.Scope2:
			totals.Scope2Total += record.CO2e
		case domain.Scope3:
			totals.Scope3Total += record.CO2e
		}
		totals.ByCategory[record.Category.String()] += record.CO2e
		totals.Records++
	}
	totals.Scope1Total = calculator.Round3(totals.Scope1Total)
	totals.Scope2Total = calculator.Round3(totals.Scope2Total)
	totals.Scope3Total = calculator.Round3(totals.Scope3Total)
	totals.TotalCO2e = calculator.Round3(totals.Scope1Total + totals.Scope2Total + totals.Scope3Total)
	return totals, nil
}

// TotalCO2e returns just the canonical total. Satisfies the target
// tracker's aggregate source.
func (s *Service) TotalCO2e(ctx context.Context, companyID domain.CompanyID, period string) (float64, error) {
	totals, err := s.AggregateTotals(ctx, companyID, period)
	if err != nil {
		return 0, err
	}
	return totals.TotalCO2e, nil
}
