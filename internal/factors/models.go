package factors

import (
	"time"

	"github.com/google/uuid"

	"carbonledger/pkg/domain"
)

// Kind tells the calculator which formula family a factor feeds.
type Kind string

const (
	// KindMultiGas carries separate CO2/CH4/N2O factors weighted by GWP.
	KindMultiGas Kind = "multi_gas"
	// KindGWP carries a direct global-warming-potential multiplier for
	// fugitive refrigerant leakage.
	KindGWP Kind = "gwp"
	// KindSingle carries one normalized tCO2e factor.
	KindSingle Kind = "single"
)

// Factor is an immutable emission factor resolved for one
// (scope, category, activity type) triple. Consumers must not mutate it;
// the table always hands out copies.
type Factor struct {
	// ID is a stable identifier: "scope/category/activity" for catalogue
	// entries, the override row UUID for company factors. Stored on every
	// ledger record so a figure can be traced to the factor that produced it.
	ID      string
	Version string

	Scope        domain.Scope
	Category     domain.Category
	ActivityType string
	Name         string
	Unit         string

	Kind Kind
	CO2  float64 // tCO2 per unit (multi-gas)
	CH4  float64 // tCH4 per unit (multi-gas)
	N2O  float64 // tN2O per unit (multi-gas)
	GWP  float64 // direct GWP (fugitive)
	CO2e float64 // tCO2e per unit (single)

	Source string
}

// Scope3Spec describes how one Scope-3 category is calculated: its method
// family, its default factor and any named sub-factors (travel modes,
// disposal methods). Sub-factor selection is mandatory when sub-factors
// exist; there is no iteration-order fallback.
type Scope3Spec struct {
	Category      domain.Category
	Name          string
	Method        domain.Scope3Method
	Unit          string
	DefaultFactor float64
	SubFactors    map[string]float64
	// SpendFactor supports the spend-based alternative for categories that
	// accept monetary input alongside distance (business travel).
	SpendFactor float64
	SpendUnit   string
	Source      string
}

// CustomFactor is a company-specific override row from
// custom_emission_factors. An active override takes precedence over the
// global catalogue for the queried date.
type CustomFactor struct {
	ID           uuid.UUID
	CompanyID    domain.CompanyID
	Scope        domain.Scope
	Category     domain.Category
	ActivityType string
	FactorCO2    float64
	FactorCH4    float64
	FactorN2O    float64
	FactorCO2e   float64
	Unit         string
	Source       string
	ValidFrom    *time.Time
	ValidUntil   *time.Time
	CreatedAt    time.Time
}

// ActiveAt reports whether the override's validity window covers the given
// date. Open ends are unbounded.
func (f CustomFactor) ActiveAt(at time.Time) bool {
	if f.ValidFrom != nil && at.Before(*f.ValidFrom) {
		return false
	}
	if f.ValidUntil != nil && at.After(*f.ValidUntil) {
		return false
	}
	return true
}

// asFactor converts an override row into the immutable Factor value handed
// to the calculator. Overrides with per-gas factors resolve as multi-gas;
// otherwise the combined CO2e factor applies.
func (f CustomFactor) asFactor() Factor {
	kind := KindSingle
	if f.FactorCO2 != 0 || f.FactorCH4 != 0 || f.FactorN2O != 0 {
		kind = KindMultiGas
	}
	return Factor{
		ID:           f.ID.String(),
		Version:      overrideVersion,
		Scope:        f.Scope,
		Category:     f.Category,
		ActivityType: f.ActivityType,
		Unit:         f.Unit,
		Kind:         kind,
		CO2:          f.FactorCO2,
		CH4:          f.FactorCH4,
		N2O:          f.FactorN2O,
		CO2e:         f.FactorCO2e,
		Source:       f.Source,
	}
}
