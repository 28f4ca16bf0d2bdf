package levy

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"carbonledger/pkg/domain"
	dErrors "carbonledger/pkg/domain-errors"
)

func TestAssess(t *testing.T) {
	tests := []struct {
		name           string
		lines          []ImportLine
		price          float64
		totalEmissions float64
		wantLiability  float64
		wantBelow      bool
	}{
		{
			name: "covered quantity below threshold waives the liability",
			lines: []ImportLine{
				{Sector: SectorCement, Quantity: 49.9, EmbeddedEmissions: 100},
			},
			price:         85,
			wantLiability: 0,
			wantBelow:     true,
		},
		{
			name: "at the threshold the liability applies",
			lines: []ImportLine{
				{Sector: SectorCement, Quantity: 50, EmbeddedEmissions: 100},
			},
			price:         85,
			wantLiability: 8500,
			wantBelow:     false,
		},
		{
			name: "excluded sector defeats the waiver regardless of quantity",
			lines: []ImportLine{
				{Sector: SectorCement, Quantity: 10, EmbeddedEmissions: 100},
				{Sector: SectorElectricity, Quantity: 1, EmbeddedEmissions: 5},
			},
			price:         85,
			wantLiability: 8925,
			wantBelow:     false,
		},
		{
			name: "price already paid at origin is deducted",
			lines: []ImportLine{
				{Sector: SectorIronSteel, Quantity: 100, EmbeddedEmissions: 100, CarbonPricePaid: 2000},
			},
			price:         85,
			wantLiability: 6500,
			wantBelow:     false,
		},
		{
			name: "overpaid origin price floors at zero",
			lines: []ImportLine{
				{Sector: SectorAluminium, Quantity: 100, EmbeddedEmissions: 10, CarbonPricePaid: 5000},
			},
			price:         85,
			wantLiability: 0,
			wantBelow:     false,
		},
		{
			name: "ledger total overrides the line emissions",
			lines: []ImportLine{
				{Sector: SectorFertilizers, Quantity: 200, EmbeddedEmissions: 10},
			},
			price:          85,
			totalEmissions: 50,
			wantLiability:  4250,
			wantBelow:      false,
		},
		{
			name:          "no lines and no emissions is a zero waived assessment",
			lines:         nil,
			price:         85,
			wantLiability: 0,
			wantBelow:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := Assess(tt.lines, tt.price, tt.totalEmissions)
			assert.Equal(t, tt.wantLiability, a.Liability)
			assert.Equal(t, tt.wantBelow, a.BelowDeMinimis)
		})
	}
}

func TestAssessAccumulates(t *testing.T) {
	a := Assess([]ImportLine{
		{Sector: SectorCement, Quantity: 30, EmbeddedEmissions: 40, CarbonPricePaid: 100},
		{Sector: SectorIronSteel, Quantity: 25, EmbeddedEmissions: 60, CarbonPricePaid: 200},
		{Sector: Sector("textiles"), Quantity: 10, EmbeddedEmissions: 5},
	}, 85, 0)

	assert.Equal(t, 65.0, a.TotalQuantity)
	// Only cement and iron/steel count toward the de-minimis quantity.
	assert.Equal(t, 55.0, a.CoveredQuantity)
	assert.Equal(t, 105.0, a.TotalEmissions)
	assert.Equal(t, 300.0, a.PricePaid)
	// 105 * 85 - 300 = 8625.
	assert.Equal(t, 8625.0, a.RawLiability)
	assert.Equal(t, a.RawLiability, a.Liability)
}

func TestSectorClassification(t *testing.T) {
	assert.True(t, SectorCement.Covered())
	assert.True(t, SectorFertilizers.Covered())
	assert.False(t, SectorElectricity.Covered())
	assert.True(t, SectorElectricity.Excluded())
	assert.True(t, SectorHydrogen.Excluded())
	assert.False(t, Sector("textiles").Covered())
	assert.False(t, Sector("textiles").Excluded())
}

func TestStaticPriceSource(t *testing.T) {
	ctx := context.Background()

	price, err := StaticPriceSource{Price: 85}.CurrentPrice(ctx)
	require.NoError(t, err)
	assert.Equal(t, 85.0, price)

	_, err = StaticPriceSource{}.CurrentPrice(ctx)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
}

func TestCachedPriceSourceFallback(t *testing.T) {
	// Without a cache the source degrades to the fallback price.
	source := NewCachedPriceSource(nil, 85)
	price, err := source.CurrentPrice(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 85.0, price)

	err = source.SetPrice(context.Background(), 90)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInternal))
}

// =============================================================================
// Levy Service Test Suite
// =============================================================================

type stubAggregator struct {
	total float64
	err   error
	calls int
}

func (a *stubAggregator) TotalCO2e(context.Context, domain.CompanyID, string) (float64, error) {
	a.calls++
	return a.total, a.err
}

type LevyServiceSuite struct {
	suite.Suite
	aggregator *stubAggregator
	service    *Service
	ctx        context.Context
	companyID  domain.CompanyID
}

func TestLevyServiceSuite(t *testing.T) {
	suite.Run(t, new(LevyServiceSuite))
}

func (s *LevyServiceSuite) SetupTest() {
	s.aggregator = &stubAggregator{}
	s.ctx = context.Background()
	s.companyID = domain.NewCompanyID()

	var err error
	s.service, err = NewService(s.aggregator, StaticPriceSource{Price: 85})
	s.Require().NoError(err)
}

func (s *LevyServiceSuite) TestNewService() {
	s.Run("nil aggregator returns error", func() {
		_, err := NewService(nil, StaticPriceSource{Price: 85})
		s.Error(err)
	})

	s.Run("nil price source returns error", func() {
		_, err := NewService(s.aggregator, nil)
		s.Error(err)
	})
}

func (s *LevyServiceSuite) TestAssessCompany() {
	s.Run("prices the import lines", func() {
		assessment, err := s.service.AssessCompany(s.ctx, s.companyID, "2024", []ImportLine{
			{Sector: SectorCement, Quantity: 100, EmbeddedEmissions: 100},
		})
		s.Require().NoError(err)

		s.Equal("2024", assessment.Period)
		s.Equal(8500.0, assessment.Liability)
		s.Zero(s.aggregator.calls)
	})

	s.Run("falls back to the ledger total when lines carry no emissions", func() {
		s.aggregator.total = 100

		assessment, err := s.service.AssessCompany(s.ctx, s.companyID, "2024", []ImportLine{
			{Sector: SectorCement, Quantity: 100},
		})
		s.Require().NoError(err)

		s.Equal(100.0, assessment.TotalEmissions)
		s.Equal(8500.0, assessment.Liability)
		s.Equal(1, s.aggregator.calls)
	})

	s.Run("nil company is rejected", func() {
		_, err := s.service.AssessCompany(s.ctx, domain.CompanyID{}, "2024", nil)
		s.Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("negative line values are rejected", func() {
		_, err := s.service.AssessCompany(s.ctx, s.companyID, "2024", []ImportLine{
			{Sector: SectorCement, Quantity: -1},
		})
		s.Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("aggregator failure propagates", func() {
		s.aggregator.err = dErrors.New(dErrors.CodeInternal, "ledger unavailable")
		defer func() { s.aggregator.err = nil }()

		_, err := s.service.AssessCompany(s.ctx, s.companyID, "2024", nil)
		s.Error(err)
	})
}
