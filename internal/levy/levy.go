// Package levy computes carbon-border levy liability from the accounting
// engine's output. The business rule lives here, outside the accounting
// engine: the engine provides exact totals, this package prices them.
package levy

import (
	"carbonledger/internal/calculator"
)

// DeMinimisThreshold is the covered-sector quantity (tonnes) below which
// the liability is waived, provided no excluded-sector activity exists.
const DeMinimisThreshold = 50.0

// Sector classifies an import line for the de-minimis rule.
type Sector string

const (
	SectorCement      Sector = "cement"
	SectorIronSteel   Sector = "iron_steel"
	SectorAluminium   Sector = "aluminium"
	SectorFertilizers Sector = "fertilizers"
	SectorElectricity Sector = "electricity"
	SectorHydrogen    Sector = "hydrogen"
)

// coveredSectors count toward the de-minimis quantity; excludedSectors
// disqualify the waiver entirely.
var coveredSectors = map[Sector]bool{
	SectorCement:      true,
	SectorIronSteel:   true,
	SectorAluminium:   true,
	SectorFertilizers: true,
}

var excludedSectors = map[Sector]bool{
	SectorElectricity: true,
	SectorHydrogen:    true,
}

// Covered reports whether the sector counts toward the de-minimis
// quantity.
func (s Sector) Covered() bool { return coveredSectors[s] }

// Excluded reports whether the sector disqualifies the de-minimis waiver.
func (s Sector) Excluded() bool { return excludedSectors[s] }

// ImportLine is one priced import: its sector, physical quantity in
// tonnes, embedded emissions in tCO2e, and any carbon price already paid
// at origin.
type ImportLine struct {
	Sector            Sector
	Quantity          float64
	EmbeddedEmissions float64
	CarbonPricePaid   float64
}

// Assessment is the levy outcome for one company and period.
type Assessment struct {
	Period          string
	CarbonPrice     float64
	TotalQuantity   float64
	CoveredQuantity float64
	TotalEmissions  float64
	PricePaid       float64
	// RawLiability is max(0, emissions * price - price paid), before the
	// de-minimis waiver.
	RawLiability   float64
	BelowDeMinimis bool
	Liability      float64
}

// Assess applies the liability formula and the de-minimis rule. Pure.
// totalEmissions overrides the per-line emission sum when positive; the
// caller passes the ledger's canonical total there.
func Assess(lines []ImportLine, carbonPrice, totalEmissions float64) Assessment {
	a := Assessment{CarbonPrice: carbonPrice}

	hasExcluded := false
	for _, line := range lines {
		a.TotalQuantity += line.Quantity
		a.PricePaid += line.CarbonPricePaid
		a.TotalEmissions += line.EmbeddedEmissions
		if line.Sector.Covered() {
			a.CoveredQuantity += line.Quantity
		}
		if line.Sector.Excluded() {
			hasExcluded = true
		}
	}
	if totalEmissions > 0 {
		a.TotalEmissions = totalEmissions
	}

	raw := a.TotalEmissions*carbonPrice - a.PricePaid
	if raw < 0 {
		raw = 0
	}
	a.RawLiability = calculator.Round3(raw)

	a.BelowDeMinimis = a.CoveredQuantity < DeMinimisThreshold && !hasExcluded
	if a.BelowDeMinimis {
		a.Liability = 0
	} else {
		a.Liability = a.RawLiability
	}
	return a
}
