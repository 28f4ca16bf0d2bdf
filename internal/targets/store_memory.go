package targets

import (
	"context"
	"sort"
	"sync"

	"carbonledger/pkg/domain"
	dErrors "carbonledger/pkg/domain-errors"
)

// InMemoryStore keeps targets in a map. Used in tests and in deployments
// without a configured database.
type InMemoryStore struct {
	mu      sync.RWMutex
	targets map[domain.TargetID]*Target
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{targets: make(map[domain.TargetID]*Target)}
}

func (s *InMemoryStore) Save(_ context.Context, target *Target) error {
	if target == nil {
		return dErrors.New(dErrors.CodeValidation, "target is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *target
	s.targets[target.ID] = &copied
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, id domain.TargetID) (*Target, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	target, ok := s.targets[id]
	if !ok {
		return nil, dErrors.Newf(dErrors.CodeNotFound, "target %s not found", id)
	}
	copied := *target
	return &copied, nil
}

func (s *InMemoryStore) ListByCompany(_ context.Context, companyID domain.CompanyID) ([]*Target, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*Target
	for _, target := range s.targets {
		if target.CompanyID == companyID {
			copied := *target
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].TargetYear < out[j].TargetYear
	})
	return out, nil
}

func (s *InMemoryStore) UpdateStatus(_ context.Context, id domain.TargetID, status Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	target, ok := s.targets[id]
	if !ok {
		return dErrors.Newf(dErrors.CodeNotFound, "target %s not found", id)
	}
	target.Status = status
	return nil
}
