package initiatives

import (
	"context"

	"carbonledger/pkg/domain"
)

// Store persists reduction initiatives. List returns a company's
// initiatives ordered by creation time ascending.
type Store interface {
	Save(ctx context.Context, initiative *Initiative) error
	FindByID(ctx context.Context, id domain.InitiativeID) (*Initiative, error)
	ListByCompany(ctx context.Context, companyID domain.CompanyID) ([]*Initiative, error)
	Update(ctx context.Context, initiative *Initiative) error
}
