package initiatives

import (
	"context"
	"sort"
	"sync"

	"carbonledger/pkg/domain"
	dErrors "carbonledger/pkg/domain-errors"
)

// InMemoryStore keeps initiatives in a map. Used in tests and in
// deployments without a configured database.
type InMemoryStore struct {
	mu          sync.RWMutex
	initiatives map[domain.InitiativeID]*Initiative
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{initiatives: make(map[domain.InitiativeID]*Initiative)}
}

func (s *InMemoryStore) Save(_ context.Context, initiative *Initiative) error {
	if initiative == nil {
		return dErrors.New(dErrors.CodeValidation, "initiative is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *initiative
	s.initiatives[initiative.ID] = &copied
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, id domain.InitiativeID) (*Initiative, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	initiative, ok := s.initiatives[id]
	if !ok {
		return nil, dErrors.Newf(dErrors.CodeNotFound, "initiative %s not found", id)
	}
	copied := *initiative
	return &copied, nil
}

func (s *InMemoryStore) ListByCompany(_ context.Context, companyID domain.CompanyID) ([]*Initiative, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*Initiative
	for _, initiative := range s.initiatives {
		if initiative.CompanyID == companyID {
			copied := *initiative
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (s *InMemoryStore) Update(_ context.Context, initiative *Initiative) error {
	if initiative == nil {
		return dErrors.New(dErrors.CodeValidation, "initiative is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.initiatives[initiative.ID]; !ok {
		return dErrors.Newf(dErrors.CodeNotFound, "initiative %s not found", initiative.ID)
	}
	copied := *initiative
	s.initiatives[initiative.ID] = &copied
	return nil
}
