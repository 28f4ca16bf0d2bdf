package domain

import dErrors "carbonledger/pkg/domain-errors"

// Category identifies the emission category within a scope. Categories are
// scope-specific: stationary/mobile/fugitive belong to scope 1,
// electricity/heating to scope 2, the remainder are the Scope-3 value-chain
// categories from the GHG Protocol numbering.
type Category string

const (
	CategoryStationary  Category = "stationary"
	CategoryMobile      Category = "mobile"
	CategoryFugitive    Category = "fugitive"
	CategoryElectricity Category = "electricity"
	CategoryHeating     Category = "heating"

	CategoryPurchasedGoods      Category = "purchased_goods"
	CategoryCapitalGoods        Category = "capital_goods"
	CategoryFuelEnergy          Category = "fuel_energy"
	CategoryUpstreamTransport   Category = "upstream_transport"
	CategoryWaste               Category = "waste"
	CategoryBusinessTravel      Category = "business_travel"
	CategoryEmployeeCommuting   Category = "employee_commuting"
	CategoryDownstreamTransport Category = "downstream_transport"
	CategoryUseOfSoldProducts   Category = "use_of_sold_products"
	CategoryEndOfLife           Category = "end_of_life"
)

// categoryScopes is the single source of truth for which scope each
// category belongs to.
var categoryScopes = map[Category]Scope{
	CategoryStationary:  Scope1,
	CategoryMobile:      Scope1,
	CategoryFugitive:    Scope1,
	CategoryElectricity: Scope2,
	CategoryHeating:     Scope2,

	CategoryPurchasedGoods:      Scope3,
	CategoryCapitalGoods:        Scope3,
	CategoryFuelEnergy:          Scope3,
	CategoryUpstreamTransport:   Scope3,
	CategoryWaste:               Scope3,
	CategoryBusinessTravel:      Scope3,
	CategoryEmployeeCommuting:   Scope3,
	CategoryDownstreamTransport: Scope3,
	CategoryUseOfSoldProducts:   Scope3,
	CategoryEndOfLife:           Scope3,
}

// scope3Numbers maps each Scope-3 category to its GHG Protocol category
// number, persisted in the subcategory column for disclosure reports.
var scope3Numbers = map[Category]string{
	CategoryPurchasedGoods:      "1",
	CategoryCapitalGoods:        "2",
	CategoryFuelEnergy:          "3",
	CategoryUpstreamTransport:   "4",
	CategoryWaste:               "5",
	CategoryBusinessTravel:      "6",
	CategoryEmployeeCommuting:   "7",
	CategoryDownstreamTransport: "9",
	CategoryUseOfSoldProducts:   "11",
	CategoryEndOfLife:           "12",
}

// Scope3Categories lists the supported Scope-3 categories in GHG Protocol
// numbering order.
func Scope3Categories() []Category {
	return []Category{
		CategoryPurchasedGoods,
		CategoryCapitalGoods,
		CategoryFuelEnergy,
		CategoryUpstreamTransport,
		CategoryWaste,
		CategoryBusinessTravel,
		CategoryEmployeeCommuting,
		CategoryDownstreamTransport,
		CategoryUseOfSoldProducts,
		CategoryEndOfLife,
	}
}

// ParseCategory constructs a Category from external input and verifies it
// belongs to the given scope.
//
// Errors: CodeInvalidInput when the category is unknown or does not belong
// to the scope.
func ParseCategory(scope Scope, s string) (Category, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeInvalidInput, "category cannot be empty")
	}
	c := Category(s)
	owner, ok := categoryScopes[c]
	if !ok {
		return "", dErrors.Newf(dErrors.CodeInvalidInput, "unsupported category %q", s)
	}
	if owner != scope {
		return "", dErrors.Newf(dErrors.CodeInvalidInput, "category %q does not belong to %s", s, scope)
	}
	return c, nil
}

// IsValid checks if the category is a known category of any scope.
func (c Category) IsValid() bool {
	_, ok := categoryScopes[c]
	return ok
}

// Scope returns the scope the category belongs to, or 0 if unknown.
func (c Category) Scope() Scope {
	return categoryScopes[c]
}

// Scope3Number returns the GHG Protocol category number for Scope-3
// categories, or "" for scope 1 and 2 categories.
func (c Category) Scope3Number() string {
	return scope3Numbers[c]
}

// String returns the string representation of the category.
func (c Category) String() string {
	return string(c)
}
