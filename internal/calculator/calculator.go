// Package calculator converts activity quantities into CO2e figures using
// resolved emission factors. Every function is deterministic: identical
// inputs always produce identical outputs, and nothing here touches
// storage.
package calculator

import (
	"context"
	"math"
	"time"

	"carbonledger/internal/factors"
	"carbonledger/pkg/domain"
	dErrors "carbonledger/pkg/domain-errors"
)

// AR5 global-warming potentials. Fixed constants: the GWP vintage is an
// engine property, not a per-call choice.
const (
	GWPCH4 = 25.0
	GWPN2O = 298.0
)

// Breakdown is the result of one calculation. CO2e is rounded to three
// decimals; the per-gas components are returned unrounded so the GWP
// identity can be re-verified from stored values.
type Breakdown struct {
	CO2  float64
	CH4  float64
	N2O  float64
	CO2e float64
	Unit string

	// Method labels how the figure was produced, for the audit trail.
	Method string
	Source string

	// FactorID and FactorVersion identify the exact factor used, so the
	// stored figure stays reproducible after catalogue updates.
	FactorID      string
	FactorVersion string
}

// Round3 rounds to the engine's stated output precision.
func Round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}

func validateQuantity(quantity float64) error {
	if math.IsNaN(quantity) || math.IsInf(quantity, 0) {
		return dErrors.New(dErrors.CodeValidation, "quantity must be a finite number")
	}
	if quantity < 0 {
		return dErrors.New(dErrors.CodeValidation, "quantity cannot be negative")
	}
	return nil
}

// Compute applies the factor's formula family to a quantity. Pure.
//
//   - multi-gas: co2e = co2 + 25*ch4 + 298*n2o
//   - direct GWP (fugitive refrigerants): co2e = kg * GWP / 1000
//   - single factor: co2e = quantity * factor
func Compute(f factors.Factor, quantity float64) (Breakdown, error) {
	if err := validateQuantity(quantity); err != nil {
		return Breakdown{}, err
	}

	b := Breakdown{
		Unit:          f.Unit,
		Source:        f.Source,
		FactorID:      f.ID,
		FactorVersion: f.Version,
	}

	switch f.Kind {
	case factors.KindMultiGas:
		b.CO2 = quantity * f.CO2
		b.CH4 = quantity * f.CH4
		b.N2O = quantity * f.N2O
		b.CO2e = Round3(b.CO2 + GWPCH4*b.CH4 + GWPN2O*b.N2O)
		b.Method = "multi_gas"
	case factors.KindGWP:
		// Leakage is reported in kg; factors are tCO2e, so divide by 1000.
		b.CO2e = Round3(quantity * f.GWP / 1000)
		b.Method = "direct_gwp"
	case factors.KindSingle:
		b.CO2e = Round3(quantity * f.CO2e)
		b.Method = "single_factor"
	default:
		return Breakdown{}, dErrors.Newf(dErrors.CodeInternal, "unknown factor kind %q", f.Kind)
	}
	return b, nil
}

// Calculator resolves factors through an injected table and applies the
// formulas above. It holds no mutable state.
type Calculator struct {
	table *factors.Table
}

// New constructs a Calculator over the given factor table.
func New(table *factors.Table) (*Calculator, error) {
	if table == nil {
		return nil, dErrors.New(dErrors.CodeValidation, "factor table is required")
	}
	return &Calculator{table: table}, nil
}

// Calculate resolves the factor for the triple and computes the CO2e
// breakdown. asOf selects which company overrides are active; zero time
// means now.
func (c *Calculator) Calculate(ctx context.Context, companyID domain.CompanyID, scope domain.Scope, category domain.Category, activityType string, quantity float64, asOf time.Time) (Breakdown, error) {
	if err := validateQuantity(quantity); err != nil {
		return Breakdown{}, err
	}
	if asOf.IsZero() {
		asOf = time.Now().UTC()
	}

	if scope == domain.Scope3 {
		return c.calculateScope3(ctx, companyID, category, Scope3Entry{
			SubType:  activityType,
			Quantity: quantity,
		}, asOf)
	}

	factor, err := c.table.Resolve(ctx, companyID, scope, category, activityType, asOf)
	if err != nil {
		return Breakdown{}, err
	}
	return Compute(factor, quantity)
}
