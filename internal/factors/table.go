package factors

import (
	"context"
	"time"

	"carbonledger/pkg/domain"
	dErrors "carbonledger/pkg/domain-errors"
)

type tableKey struct {
	scope    domain.Scope
	category domain.Category
	activity string
}

// Table resolves emission factors for (scope, category, activity type)
// triples: an active company override wins, then the bundled catalogue.
// A miss is always reported as CodeNotFound, never as a zero factor.
//
// The table is constructed once and never mutated afterwards, so it is safe
// for concurrent use. Tests build tables from their own entries instead of
// touching shared state.
type Table struct {
	version   string
	entries   map[tableKey]Factor
	scope3    map[domain.Category]Scope3Spec
	overrides OverrideStore
}

// Option configures a Table during construction.
type Option func(*Table)

// WithOverrides attaches a company override store. Without one the table
// serves catalogue factors only.
func WithOverrides(store OverrideStore) Option {
	return func(t *Table) { t.overrides = store }
}

// WithEntries replaces the bundled catalogue with the given factors.
// Intended for tests that need a controlled factor set.
func WithEntries(entries []Factor) Option {
	return func(t *Table) {
		t.entries = make(map[tableKey]Factor, len(entries))
		for _, f := range entries {
			t.entries[tableKey{f.Scope, f.Category, f.ActivityType}] = f
		}
	}
}

// NewTable builds a factor table from the bundled catalogue.
func NewTable(opts ...Option) *Table {
	t := &Table{
		version: CatalogueVersion,
		scope3:  make(map[domain.Category]Scope3Spec, len(scope3Specs)),
	}
	WithEntries(catalogueEntries())(t)
	for _, spec := range scope3Specs {
		t.scope3[spec.Category] = spec
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Resolve returns the factor for the triple, preferring an active company
// override for the given date. companyID may be nil (catalogue only).
//
// Errors: CodeNotFound when neither an override nor a catalogue entry
// exists; CodeInternal when the override store fails.
func (t *Table) Resolve(ctx context.Context, companyID domain.CompanyID, scope domain.Scope, category domain.Category, activityType string, asOf time.Time) (Factor, error) {
	if !scope.IsValid() {
		return Factor{}, dErrors.Newf(dErrors.CodeValidation, "invalid scope %d", scope)
	}
	if category.Scope() != scope {
		return Factor{}, dErrors.Newf(dErrors.CodeValidation, "category %q does not belong to %s", category, scope)
	}

	if t.overrides != nil && !companyID.IsNil() {
		override, err := t.overrides.FindActive(ctx, companyID, scope, category, activityType, asOf)
		if err != nil && !dErrors.HasCode(err, dErrors.CodeNotFound) {
			return Factor{}, dErrors.Wrap(err, dErrors.CodeInternal, "resolve company factor override")
		}
		if override != nil {
			return override.asFactor(), nil
		}
	}

	if f, ok := t.entries[tableKey{scope, category, activityType}]; ok {
		return f, nil
	}
	return Factor{}, dErrors.Newf(dErrors.CodeNotFound,
		"no emission factor for %s/%s/%s", scope, category, activityType)
}

// Scope3 returns the calculation spec for a Scope-3 category.
//
// Errors: CodeNotFound for categories absent from the catalogue.
func (t *Table) Scope3(category domain.Category) (Scope3Spec, error) {
	spec, ok := t.scope3[category]
	if !ok {
		return Scope3Spec{}, dErrors.Newf(dErrors.CodeNotFound, "no scope 3 specification for category %q", category)
	}
	return spec, nil
}

// SubFactor resolves a named sub-factor within a Scope-3 category.
// Sub-type selection is mandatory when the category defines sub-factors;
// an empty subType is a validation error rather than an arbitrary pick.
func (t *Table) SubFactor(category domain.Category, subType string) (float64, error) {
	spec, err := t.Scope3(category)
	if err != nil {
		return 0, err
	}
	if len(spec.SubFactors) == 0 {
		return spec.DefaultFactor, nil
	}
	if subType == "" {
		return 0, dErrors.Newf(dErrors.CodeValidation,
			"category %q requires a sub-type (one of its named sub-factors)", category)
	}
	f, ok := spec.SubFactors[subType]
	if !ok {
		return 0, dErrors.Newf(dErrors.CodeNotFound, "no sub-factor %q in category %q", subType, category)
	}
	return f, nil
}

// Version reports the catalogue vintage served by this table.
func (t *Table) Version() string { return t.version }
