package targets

import (
	"context"

	"carbonledger/pkg/domain"
)

// Store persists reduction targets. List returns a company's targets
// ordered by target year ascending.
type Store interface {
	Save(ctx context.Context, target *Target) error
	FindByID(ctx context.Context, id domain.TargetID) (*Target, error)
	ListByCompany(ctx context.Context, companyID domain.CompanyID) ([]*Target, error)
	UpdateStatus(ctx context.Context, id domain.TargetID, status Status) error
}
