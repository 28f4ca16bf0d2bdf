package domain

import dErrors "carbonledger/pkg/domain-errors"

// Scope2Method labels the Scope-2 accounting convention for a record.
// It is recorded for audit purposes only; the arithmetic is identical
// unless a market-specific factor entry exists in the factor table.
type Scope2Method string

const (
	Scope2LocationBased Scope2Method = "location_based"
	Scope2MarketBased   Scope2Method = "market_based"
)

// ParseScope2Method constructs a Scope2Method. Empty input defaults to
// location-based, the grid-average convention.
func ParseScope2Method(s string) (Scope2Method, error) {
	switch Scope2Method(s) {
	case "":
		return Scope2LocationBased, nil
	case Scope2LocationBased, Scope2MarketBased:
		return Scope2Method(s), nil
	}
	return "", dErrors.Newf(dErrors.CodeInvalidInput, "unsupported scope 2 method %q", s)
}

// String returns the string representation of the method.
func (m Scope2Method) String() string { return string(m) }

// Scope3Method identifies the calculation method family for a Scope-3
// category. Dispatch over these variants is exhaustive; there is no
// string-keyed fallback path.
type Scope3Method string

const (
	// Scope3SpendBased multiplies monetary spend by an economic
	// input-output factor.
	Scope3SpendBased Scope3Method = "spend_based"
	// Scope3DistanceBased multiplies distance travelled by a per-mode
	// factor.
	Scope3DistanceBased Scope3Method = "distance_based"
	// Scope3WasteType multiplies waste tonnage by a per-disposal-method
	// factor.
	Scope3WasteType Scope3Method = "waste_type"
	// Scope3AverageData multiplies activity quantity by the category's
	// single default factor.
	Scope3AverageData Scope3Method = "average_data"
	// Scope3ProductSpecific requires a product-level factor supplied by
	// the caller; the catalogue carries no usable default.
	Scope3ProductSpecific Scope3Method = "product_specific"
)

var validScope3Methods = map[Scope3Method]bool{
	Scope3SpendBased:      true,
	Scope3DistanceBased:   true,
	Scope3WasteType:       true,
	Scope3AverageData:     true,
	Scope3ProductSpecific: true,
}

// ParseScope3Method constructs a Scope3Method from external input.
func ParseScope3Method(s string) (Scope3Method, error) {
	m := Scope3Method(s)
	if !validScope3Methods[m] {
		return "", dErrors.Newf(dErrors.CodeInvalidInput, "unsupported scope 3 method %q", s)
	}
	return m, nil
}

// IsValid checks if the method is one of the supported families.
func (m Scope3Method) IsValid() bool { return validScope3Methods[m] }

// String returns the string representation of the method.
func (m Scope3Method) String() string { return string(m) }
