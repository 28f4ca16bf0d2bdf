package ledger

import (
	"time"

	"carbonledger/pkg/domain"
)

// EmissionRecord is one persisted emission ledger entry. The stored CO2e is
// a point-in-time fact: it is never recomputed when the factor table
// changes. FactorID/FactorVersion identify the factor that produced it.
//
// Scope, category and activity type are immutable once persisted;
// reclassification means a new record.
type EmissionRecord struct {
	ID           domain.RecordID
	CompanyID    domain.CompanyID
	Period       string
	Scope        domain.Scope
	Category     domain.Category
	Subcategory  string
	ActivityType string
	Quantity     float64
	Unit         string

	CO2  float64
	CH4  float64
	N2O  float64
	CO2e float64

	FactorID      string
	FactorVersion string

	DataQuality domain.DataQuality
	Source      string
	Verified    bool
	VerifiedBy  string
	Notes       string

	CreatedAt time.Time
	UpdatedAt time.Time
}
