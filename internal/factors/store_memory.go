package factors

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"carbonledger/pkg/domain"
	dErrors "carbonledger/pkg/domain-errors"
)

// InMemoryOverrideStore keeps overrides in a map. Used in tests and in
// deployments that load overrides from configuration at startup.
type InMemoryOverrideStore struct {
	mu        sync.RWMutex
	byCompany map[domain.CompanyID][]*CustomFactor
}

func NewInMemoryOverrideStore() *InMemoryOverrideStore {
	return &InMemoryOverrideStore{byCompany: make(map[domain.CompanyID][]*CustomFactor)}
}

func (s *InMemoryOverrideStore) Save(_ context.Context, factor *CustomFactor) error {
	if factor == nil {
		return dErrors.New(dErrors.CodeValidation, "custom factor is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if factor.ID == uuid.Nil {
		factor.ID = uuid.New()
	}
	copied := *factor
	s.byCompany[factor.CompanyID] = append(s.byCompany[factor.CompanyID], &copied)
	return nil
}

func (s *InMemoryOverrideStore) FindActive(_ context.Context, companyID domain.CompanyID, scope domain.Scope, category domain.Category, activityType string, asOf time.Time) (*CustomFactor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	// Later saves win, matching the postgres store's created_at DESC order.
	overrides := s.byCompany[companyID]
	for i := len(overrides) - 1; i >= 0; i-- {
		f := overrides[i]
		if f.Scope == scope && f.Category == category && f.ActivityType == activityType && f.ActiveAt(asOf) {
			copied := *f
			return &copied, nil
		}
	}
	return nil, nil
}

func (s *InMemoryOverrideStore) ListByCompany(_ context.Context, companyID domain.CompanyID) ([]*CustomFactor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*CustomFactor, 0, len(s.byCompany[companyID]))
	for _, f := range s.byCompany[companyID] {
		copied := *f
		out = append(out, &copied)
	}
	return out, nil
}

func (s *InMemoryOverrideStore) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for companyID, overrides := range s.byCompany {
		for i, f := range overrides {
			if f.ID == id {
				s.byCompany[companyID] = append(overrides[:i], overrides[i+1:]...)
				return nil
			}
		}
	}
	return dErrors.New(dErrors.CodeNotFound, "custom factor not found")
}
