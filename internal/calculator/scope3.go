package calculator

import (
	"context"
	"time"

	"carbonledger/internal/factors"
	"carbonledger/pkg/domain"
	dErrors "carbonledger/pkg/domain-errors"
)

// Scope3Entry is one Scope-3 activity line. Quantity is interpreted by the
// category's method family: distance in km, waste in tonnes, spend in the
// category's monetary unit, or a plain activity quantity.
type Scope3Entry struct {
	// SubType names a sub-factor (travel mode, disposal method) for
	// categories that define them. Mandatory when sub-factors exist.
	SubType  string
	Quantity float64
	// Spend switches business travel to its spend-based alternative when
	// positive; the distance fields are then ignored.
	Spend float64
}

// calculateScope3 dispatches over the category's method family. The switch
// is exhaustive over domain.Scope3Method; there is no string-keyed
// fallback.
func (c *Calculator) calculateScope3(ctx context.Context, companyID domain.CompanyID, category domain.Category, entry Scope3Entry, asOf time.Time) (Breakdown, error) {
	if err := validateQuantity(entry.Quantity); err != nil {
		return Breakdown{}, err
	}
	if entry.Spend < 0 {
		return Breakdown{}, dErrors.New(dErrors.CodeValidation, "spend cannot be negative")
	}

	// A company override for the exact (category, sub-type) pair beats the
	// catalogue spec, same as scope 1 and 2 resolution.
	if override, err := c.resolveScope3Override(ctx, companyID, category, entry.SubType, asOf); err != nil {
		return Breakdown{}, err
	} else if override != nil {
		return Compute(*override, entry.Quantity)
	}

	spec, err := c.table.Scope3(category)
	if err != nil {
		return Breakdown{}, err
	}

	switch spec.Method {
	case domain.Scope3SpendBased, domain.Scope3AverageData, domain.Scope3ProductSpecific:
		return c.scope3Default(spec, entry)
	case domain.Scope3DistanceBased:
		if spec.SpendFactor > 0 && entry.Spend > 0 {
			return c.scope3Spend(spec, entry)
		}
		return c.scope3SubFactor(spec, entry)
	case domain.Scope3WasteType:
		return c.scope3SubFactor(spec, entry)
	}
	return Breakdown{}, dErrors.Newf(dErrors.CodeInternal, "unhandled scope 3 method %q", spec.Method)
}

func (c *Calculator) resolveScope3Override(ctx context.Context, companyID domain.CompanyID, category domain.Category, subType string, asOf time.Time) (*factors.Factor, error) {
	if companyID.IsNil() {
		return nil, nil
	}
	factor, err := c.table.Resolve(ctx, companyID, domain.Scope3, category, subType, asOf)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if factor.Version != factors.CatalogueVersion {
		return &factor, nil
	}
	// Catalogue hits fall through to the method dispatch; only company
	// overrides short-circuit here.
	return nil, nil
}

// scope3Default multiplies quantity by the category's single factor.
func (c *Calculator) scope3Default(spec factors.Scope3Spec, entry Scope3Entry) (Breakdown, error) {
	return Breakdown{
		CO2e:          Round3(entry.Quantity * spec.DefaultFactor),
		Unit:          spec.Unit,
		Method:        spec.Method.String(),
		Source:        spec.Source,
		FactorID:      scope3FactorID(spec.Category, ""),
		FactorVersion: factors.CatalogueVersion,
	}, nil
}

// scope3SubFactor multiplies quantity by a named sub-factor, or the
// category default when the category defines none.
func (c *Calculator) scope3SubFactor(spec factors.Scope3Spec, entry Scope3Entry) (Breakdown, error) {
	factor, err := c.table.SubFactor(spec.Category, entry.SubType)
	if err != nil {
		return Breakdown{}, err
	}
	return Breakdown{
		CO2e:          Round3(entry.Quantity * factor),
		Unit:          spec.Unit,
		Method:        spec.Method.String(),
		Source:        spec.Source,
		FactorID:      scope3FactorID(spec.Category, entry.SubType),
		FactorVersion: factors.CatalogueVersion,
	}, nil
}

// scope3Spend applies the spend-based alternative for categories that
// accept monetary input.
func (c *Calculator) scope3Spend(spec factors.Scope3Spec, entry Scope3Entry) (Breakdown, error) {
	return Breakdown{
		CO2e:          Round3(entry.Spend * spec.SpendFactor),
		Unit:          spec.SpendUnit,
		Method:        domain.Scope3SpendBased.String(),
		Source:        spec.Source,
		FactorID:      scope3FactorID(spec.Category, "spend"),
		FactorVersion: factors.CatalogueVersion,
	}, nil
}

func scope3FactorID(category domain.Category, subType string) string {
	id := "scope3/" + category.String()
	if subType != "" {
		id += "/" + subType
	}
	return id
}
