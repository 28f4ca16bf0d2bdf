package ledger

import (
	"context"

	"carbonledger/pkg/domain"
)

// Query filters GetEmissions. Nil fields match everything.
type Query struct {
	Period *string
	Scope  *domain.Scope
}

// Store persists emission records. List returns records ordered by period
// descending, then scope, then category — the ledger's canonical order.
type Store interface {
	Insert(ctx context.Context, record *EmissionRecord) error
	FindByID(ctx context.Context, id domain.RecordID) (*EmissionRecord, error)
	List(ctx context.Context, companyID domain.CompanyID, query Query) ([]*EmissionRecord, error)
	Update(ctx context.Context, record *EmissionRecord) error
	Delete(ctx context.Context, id domain.RecordID) error
}

// StoreTx runs a function as one atomic unit of work against the store.
// Bulk imports use it so a partial failure cannot leave a mixed ledger.
type StoreTx interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}
