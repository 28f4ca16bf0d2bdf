package calculator

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"carbonledger/internal/factors"
	"carbonledger/pkg/domain"
	dErrors "carbonledger/pkg/domain-errors"
)

// =============================================================================
// Calculator Test Suite
// =============================================================================
// The calculation formulas are the core of the engine: published reference
// figures (diesel combustion, grid electricity) are pinned here so a factor
// or formula regression fails loudly.

type CalculatorSuite struct {
	suite.Suite
	table     *factors.Table
	overrides *factors.InMemoryOverrideStore
	calc      *Calculator
	ctx       context.Context
}

func TestCalculatorSuite(t *testing.T) {
	suite.Run(t, new(CalculatorSuite))
}

func (s *CalculatorSuite) SetupTest() {
	s.overrides = factors.NewInMemoryOverrideStore()
	s.table = factors.NewTable(factors.WithOverrides(s.overrides))

	var err error
	s.calc, err = New(s.table)
	s.Require().NoError(err)
	s.ctx = context.Background()
}

func (s *CalculatorSuite) TestNew() {
	s.Run("nil table returns error", func() {
		_, err := New(nil)
		s.Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("valid table returns calculator", func() {
		calc, err := New(s.table)
		s.NoError(err)
		s.NotNil(calc)
	})
}

// =============================================================================
// Formula Tests
// =============================================================================

func (s *CalculatorSuite) TestComputeMultiGas() {
	// 1000 litres of diesel against the GHG Protocol factors.
	b, err := s.calc.Calculate(s.ctx, domain.CompanyID{}, domain.Scope1, domain.CategoryStationary, "diesel", 1000, time.Time{})
	s.Require().NoError(err)

	s.InDelta(2.68, b.CO2, 1e-9)
	s.InDelta(0.003, b.CH4, 1e-9)
	s.InDelta(0.0002, b.N2O, 1e-9)
	// co2 + 25*ch4 + 298*n2o = 2.8146, rounded to three decimals.
	s.Equal(2.815, b.CO2e)
	s.Equal("multi_gas", b.Method)
	s.Equal("scope1/stationary/diesel", b.FactorID)
	s.Equal(factors.CatalogueVersion, b.FactorVersion)
}

func (s *CalculatorSuite) TestComputeSingleFactor() {
	// 10000 kWh on the Turkey grid at 0.000475 tCO2e/kWh.
	b, err := s.calc.Calculate(s.ctx, domain.CompanyID{}, domain.Scope2, domain.CategoryElectricity, "turkey", 10000, time.Time{})
	s.Require().NoError(err)

	s.Equal(4.75, b.CO2e)
	s.Zero(b.CO2)
	s.Zero(b.CH4)
	s.Zero(b.N2O)
	s.Equal("single_factor", b.Method)
}

func (s *CalculatorSuite) TestComputeDirectGWP() {
	// 10 kg of R-134a leaked, AR5 GWP 1430.
	b, err := s.calc.Calculate(s.ctx, domain.CompanyID{}, domain.Scope1, domain.CategoryFugitive, "r134a", 10, time.Time{})
	s.Require().NoError(err)

	s.Equal(14.3, b.CO2e)
	s.Equal("direct_gwp", b.Method)
}

func (s *CalculatorSuite) TestComputeIsDeterministic() {
	first, err := s.calc.Calculate(s.ctx, domain.CompanyID{}, domain.Scope1, domain.CategoryStationary, "natural_gas", 123456.789, time.Time{})
	s.Require().NoError(err)

	for range 5 {
		again, err := s.calc.Calculate(s.ctx, domain.CompanyID{}, domain.Scope1, domain.CategoryStationary, "natural_gas", 123456.789, time.Time{})
		s.Require().NoError(err)
		s.Equal(first, again)
	}
}

func (s *CalculatorSuite) TestQuantityValidation() {
	tests := []struct {
		name     string
		quantity float64
	}{
		{name: "negative", quantity: -1},
		{name: "NaN", quantity: math.NaN()},
		{name: "positive infinity", quantity: math.Inf(1)},
		{name: "negative infinity", quantity: math.Inf(-1)},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			_, err := s.calc.Calculate(s.ctx, domain.CompanyID{}, domain.Scope1, domain.CategoryStationary, "diesel", tt.quantity, time.Time{})
			s.Error(err)
			s.True(dErrors.HasCode(err, dErrors.CodeValidation))
		})
	}
}

func (s *CalculatorSuite) TestZeroQuantityIsValid() {
	b, err := s.calc.Calculate(s.ctx, domain.CompanyID{}, domain.Scope1, domain.CategoryStationary, "diesel", 0, time.Time{})
	s.NoError(err)
	s.Zero(b.CO2e)
}

func (s *CalculatorSuite) TestUnknownActivityIsNotFound() {
	// A missing factor must surface as an error, never as a silent zero.
	_, err := s.calc.Calculate(s.ctx, domain.CompanyID{}, domain.Scope1, domain.CategoryStationary, "whale_oil", 100, time.Time{})
	s.Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

// =============================================================================
// Scope 3 Tests
// =============================================================================

func (s *CalculatorSuite) TestScope3SpendBased() {
	// Purchased goods: 100 kUSD at 0.45 tCO2e/kUSD.
	result, err := s.calc.CalculateScope3Category(s.ctx, domain.CompanyID{}, domain.CategoryPurchasedGoods, []Scope3Entry{
		{Quantity: 100},
	}, time.Time{})
	s.Require().NoError(err)

	s.Equal(45.0, result.TotalCO2e)
	s.Require().Len(result.Details, 1)
	s.Equal("spend_based", result.Details[0].Breakdown.Method)
	s.Equal("scope3/purchased_goods", result.Details[0].Breakdown.FactorID)
}

func (s *CalculatorSuite) TestScope3WasteSubFactors() {
	result, err := s.calc.CalculateScope3Category(s.ctx, domain.CompanyID{}, domain.CategoryWaste, []Scope3Entry{
		{SubType: "landfill", Quantity: 10},
		{SubType: "recycling", Quantity: 10},
	}, time.Time{})
	s.Require().NoError(err)

	s.Equal(5.7, result.ByActivityType["landfill"])
	s.Equal(0.1, result.ByActivityType["recycling"])
	s.Equal(5.8, result.TotalCO2e)
}

func (s *CalculatorSuite) TestScope3SubTypeIsMandatory() {
	// Waste defines named disposal methods; an unnamed entry must not fall
	// back to an arbitrary one.
	_, err := s.calc.CalculateScope3Category(s.ctx, domain.CompanyID{}, domain.CategoryWaste, []Scope3Entry{
		{Quantity: 10},
	}, time.Time{})
	s.Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
}

func (s *CalculatorSuite) TestScope3UnknownSubType() {
	_, err := s.calc.CalculateScope3Category(s.ctx, domain.CompanyID{}, domain.CategoryWaste, []Scope3Entry{
		{SubType: "ocean_dumping", Quantity: 10},
	}, time.Time{})
	s.Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *CalculatorSuite) TestScope3BusinessTravelDistance() {
	result, err := s.calc.CalculateScope3Category(s.ctx, domain.CompanyID{}, domain.CategoryBusinessTravel, []Scope3Entry{
		{SubType: "flight_long", Quantity: 10000},
	}, time.Time{})
	s.Require().NoError(err)

	s.Equal(1.52, result.TotalCO2e)
	s.Equal("distance_based", result.Details[0].Breakdown.Method)
}

func (s *CalculatorSuite) TestScope3BusinessTravelSpendAlternative() {
	// A positive spend switches business travel to the spend-based factor
	// and ignores the distance fields.
	result, err := s.calc.CalculateScope3Category(s.ctx, domain.CompanyID{}, domain.CategoryBusinessTravel, []Scope3Entry{
		{Spend: 50000},
	}, time.Time{})
	s.Require().NoError(err)

	s.Equal(10.0, result.TotalCO2e)
	s.Equal("spend_based", result.Details[0].Breakdown.Method)
	s.Equal("scope3/business_travel/spend", result.Details[0].Breakdown.FactorID)
}

func (s *CalculatorSuite) TestScope3NegativeSpend() {
	_, err := s.calc.CalculateScope3Category(s.ctx, domain.CompanyID{}, domain.CategoryBusinessTravel, []Scope3Entry{
		{Spend: -1},
	}, time.Time{})
	s.Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))
}

func (s *CalculatorSuite) TestScope3ZeroEmissionMode() {
	result, err := s.calc.CalculateScope3Category(s.ctx, domain.CompanyID{}, domain.CategoryEmployeeCommuting, []Scope3Entry{
		{SubType: "walking_cycling", Quantity: 5000},
	}, time.Time{})
	s.Require().NoError(err)
	s.Zero(result.TotalCO2e)
}

func (s *CalculatorSuite) TestScope3CompanyOverride() {
	companyID := domain.NewCompanyID()
	err := s.overrides.Save(s.ctx, &factors.CustomFactor{
		CompanyID:    companyID,
		Scope:        domain.Scope3,
		Category:     domain.CategoryPurchasedGoods,
		ActivityType: "",
		FactorCO2e:   0.9,
		Unit:         "kUSD",
		Source:       "supplier LCA",
	})
	s.Require().NoError(err)

	result, err := s.calc.CalculateScope3Category(s.ctx, companyID, domain.CategoryPurchasedGoods, []Scope3Entry{
		{Quantity: 100},
	}, time.Time{})
	s.Require().NoError(err)

	s.Equal(90.0, result.TotalCO2e)
	s.NotEqual(factors.CatalogueVersion, result.Details[0].Breakdown.FactorVersion)
}

// =============================================================================
// Batch Tests
// =============================================================================

func (s *CalculatorSuite) TestBatchEmptyInputIsZero() {
	result, err := s.calc.CalculateScope1Stationary(s.ctx, domain.CompanyID{}, nil, time.Time{})
	s.Require().NoError(err)
	s.Zero(result.TotalCO2e)
	s.Empty(result.Details)
}

func (s *CalculatorSuite) TestBatchSumsEntries() {
	result, err := s.calc.CalculateScope1Stationary(s.ctx, domain.CompanyID{}, []ActivityEntry{
		{ActivityType: "diesel", Quantity: 1000},
		{ActivityType: "natural_gas", Quantity: 1000},
	}, time.Time{})
	s.Require().NoError(err)

	// diesel 2.8146, natural gas 2.0748, both rounded to three decimals.
	s.Equal(2.815, result.ByActivityType["diesel"])
	s.Equal(2.075, result.ByActivityType["natural_gas"])
	s.Equal(4.89, result.TotalCO2e)
	s.Len(result.Details, 2)
}

func (s *CalculatorSuite) TestBatchFailsOnUnknownEntry() {
	_, err := s.calc.CalculateScope1Stationary(s.ctx, domain.CompanyID{}, []ActivityEntry{
		{ActivityType: "diesel", Quantity: 1000},
		{ActivityType: "whale_oil", Quantity: 1},
	}, time.Time{})
	s.Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *CalculatorSuite) TestScope2MethodLabel() {
	s.Run("defaults to location based", func() {
		result, err := s.calc.CalculateScope2Electricity(s.ctx, domain.CompanyID{}, []ActivityEntry{
			{ActivityType: "eu_average", Quantity: 1000},
		}, "", time.Time{})
		s.Require().NoError(err)
		s.Equal("location_based", result.Method)
	})

	s.Run("market based is labelled", func() {
		result, err := s.calc.CalculateScope2Electricity(s.ctx, domain.CompanyID{}, []ActivityEntry{
			{ActivityType: "renewable", Quantity: 1000},
		}, domain.Scope2MarketBased, time.Time{})
		s.Require().NoError(err)
		s.Equal("market_based", result.Method)
		s.Equal(0.01, result.TotalCO2e)
	})
}
