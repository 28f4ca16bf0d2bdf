package calculator

import (
	"context"
	"time"

	"carbonledger/pkg/domain"
)

// ActivityEntry is one activity line for the scope 1 and 2 batch
// operations.
type ActivityEntry struct {
	ActivityType string
	Quantity     float64
}

// Detail is one calculated line within a batch result.
type Detail struct {
	ActivityType string
	SubType      string
	Quantity     float64
	Breakdown    Breakdown
}

// BatchResult sums a list of activity entries. An empty input yields zero
// totals, not an error.
type BatchResult struct {
	TotalCO2e float64
	// ByActivityType accumulates CO2e per activity type (or sub-type for
	// Scope 3 categories).
	ByActivityType map[string]float64
	Details        []Detail
	// Method labels the accounting convention for the whole batch where
	// one applies (Scope 2 location/market).
	Method string
}

func newBatchResult() BatchResult {
	return BatchResult{ByActivityType: make(map[string]float64)}
}

func (r *BatchResult) add(key string, d Detail) {
	r.TotalCO2e = Round3(r.TotalCO2e + d.Breakdown.CO2e)
	r.ByActivityType[key] += d.Breakdown.CO2e
	r.Details = append(r.Details, d)
}

func (c *Calculator) batchScope12(ctx context.Context, companyID domain.CompanyID, scope domain.Scope, category domain.Category, entries []ActivityEntry, asOf time.Time) (BatchResult, error) {
	result := newBatchResult()
	for _, entry := range entries {
		b, err := c.Calculate(ctx, companyID, scope, category, entry.ActivityType, entry.Quantity, asOf)
		if err != nil {
			return BatchResult{}, err
		}
		result.add(entry.ActivityType, Detail{
			ActivityType: entry.ActivityType,
			Quantity:     entry.Quantity,
			Breakdown:    b,
		})
	}
	return result, nil
}

// CalculateScope1Stationary sums stationary combustion entries.
func (c *Calculator) CalculateScope1Stationary(ctx context.Context, companyID domain.CompanyID, entries []ActivityEntry, asOf time.Time) (BatchResult, error) {
	return c.batchScope12(ctx, companyID, domain.Scope1, domain.CategoryStationary, entries, asOf)
}

// CalculateScope1Mobile sums mobile combustion entries.
func (c *Calculator) CalculateScope1Mobile(ctx context.Context, companyID domain.CompanyID, entries []ActivityEntry, asOf time.Time) (BatchResult, error) {
	return c.batchScope12(ctx, companyID, domain.Scope1, domain.CategoryMobile, entries, asOf)
}

// CalculateScope1Fugitive sums refrigerant leakage entries (kg leaked).
func (c *Calculator) CalculateScope1Fugitive(ctx context.Context, companyID domain.CompanyID, entries []ActivityEntry, asOf time.Time) (BatchResult, error) {
	return c.batchScope12(ctx, companyID, domain.Scope1, domain.CategoryFugitive, entries, asOf)
}

// CalculateScope2Electricity sums purchased electricity entries. The
// method flag labels the result for audit; it does not change the
// arithmetic unless a market-specific factor entry exists for the grid.
func (c *Calculator) CalculateScope2Electricity(ctx context.Context, companyID domain.CompanyID, entries []ActivityEntry, method domain.Scope2Method, asOf time.Time) (BatchResult, error) {
	result, err := c.batchScope12(ctx, companyID, domain.Scope2, domain.CategoryElectricity, entries, asOf)
	if err != nil {
		return BatchResult{}, err
	}
	if method == "" {
		method = domain.Scope2LocationBased
	}
	result.Method = method.String()
	return result, nil
}

// CalculateScope2Heating sums purchased heating and steam entries.
func (c *Calculator) CalculateScope2Heating(ctx context.Context, companyID domain.CompanyID, entries []ActivityEntry, asOf time.Time) (BatchResult, error) {
	return c.batchScope12(ctx, companyID, domain.Scope2, domain.CategoryHeating, entries, asOf)
}

// CalculateScope3Category sums entries for one Scope-3 category using the
// category's method family.
func (c *Calculator) CalculateScope3Category(ctx context.Context, companyID domain.CompanyID, category domain.Category, entries []Scope3Entry, asOf time.Time) (BatchResult, error) {
	if asOf.IsZero() {
		asOf = time.Now().UTC()
	}
	result := newBatchResult()
	for _, entry := range entries {
		b, err := c.calculateScope3(ctx, companyID, category, entry, asOf)
		if err != nil {
			return BatchResult{}, err
		}
		key := entry.SubType
		if key == "" {
			key = category.String()
		}
		result.add(key, Detail{
			ActivityType: category.String(),
			SubType:      entry.SubType,
			Quantity:     entry.Quantity,
			Breakdown:    b,
		})
	}
	return result, nil
}
