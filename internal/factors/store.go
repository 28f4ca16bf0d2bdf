package factors

import (
	"context"
	"time"

	"github.com/google/uuid"

	"carbonledger/pkg/domain"
)

// OverrideStore persists company-specific emission factor overrides.
// FindActive returns (nil, nil) when no override matches; implementations
// reserve errors for storage failures.
type OverrideStore interface {
	Save(ctx context.Context, factor *CustomFactor) error
	FindActive(ctx context.Context, companyID domain.CompanyID, scope domain.Scope, category domain.Category, activityType string, asOf time.Time) (*CustomFactor, error)
	ListByCompany(ctx context.Context, companyID domain.CompanyID) ([]*CustomFactor, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
