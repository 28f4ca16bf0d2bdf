package ledger

import (
	"context"
	"sort"
	"sync"

	"carbonledger/pkg/domain"
	dErrors "carbonledger/pkg/domain-errors"
)

// InMemoryStore keeps emission records in a map guarded by a RWMutex.
// RunInTx snapshots the map so a failing bulk import rolls back cleanly.
type InMemoryStore struct {
	mu      sync.RWMutex
	records map[domain.RecordID]*EmissionRecord
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{records: make(map[domain.RecordID]*EmissionRecord)}
}

func (s *InMemoryStore) Insert(_ context.Context, record *EmissionRecord) error {
	if record == nil {
		return dErrors.New(dErrors.CodeValidation, "emission record is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.records[record.ID]; exists {
		return dErrors.New(dErrors.CodeConflict, "emission record already exists")
	}
	copied := *record
	s.records[record.ID] = &copied
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, id domain.RecordID) (*EmissionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.records[id]
	if !ok {
		return nil, dErrors.New(dErrors.CodeNotFound, "emission record not found")
	}
	copied := *record
	return &copied, nil
}

func (s *InMemoryStore) List(_ context.Context, companyID domain.CompanyID, query Query) ([]*EmissionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*EmissionRecord
	for _, record := range s.records {
		if record.CompanyID != companyID {
			continue
		}
		if query.Period != nil && record.Period != *query.Period {
			continue
		}
		if query.Scope != nil && record.Scope != *query.Scope {
			continue
		}
		copied := *record
		out = append(out, &copied)
	}

	// Canonical ledger order: period descending, then scope, then category.
	sort.Slice(out, func(i, j int) bool {
		if out[i].Period != out[j].Period {
			return out[i].Period > out[j].Period
		}
		if out[i].Scope != out[j].Scope {
			return out[i].Scope < out[j].Scope
		}
		return out[i].Category < out[j].Category
	})
	return out, nil
}

func (s *InMemoryStore) Update(_ context.Context, record *EmissionRecord) error {
	if record == nil {
		return dErrors.New(dErrors.CodeValidation, "emission record is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[record.ID]; !ok {
		return dErrors.New(dErrors.CodeNotFound, "emission record not found")
	}
	copied := *record
	s.records[record.ID] = &copied
	return nil
}

func (s *InMemoryStore) Delete(_ context.Context, id domain.RecordID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[id]; !ok {
		return dErrors.New(dErrors.CodeNotFound, "emission record not found")
	}
	delete(s.records, id)
	return nil
}

// RunInTx executes fn atomically against this store: a snapshot of the
// record map is restored when fn fails.
func (s *InMemoryStore) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "transaction aborted: context cancelled")
	}

	s.mu.Lock()
	snapshot := make(map[domain.RecordID]*EmissionRecord, len(s.records))
	for id, record := range s.records {
		copied := *record
		snapshot[id] = &copied
	}
	s.mu.Unlock()

	if err := fn(ctx); err != nil {
		s.mu.Lock()
		s.records = snapshot
		s.mu.Unlock()
		return err
	}
	return nil
}
