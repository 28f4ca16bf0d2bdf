package memory

import (
	"context"
	"sync"

	id "carbonledger/pkg/domain"
	audit "carbonledger/pkg/platform/audit"
)

// InMemoryStore keeps audit events per company. Used in tests and in
// single-process deployments without an external audit sink.
type InMemoryStore struct {
	mu     sync.RWMutex
	events map[id.CompanyID][]audit.Event
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{events: make(map[id.CompanyID][]audit.Event)}
}

func (s *InMemoryStore) Append(_ context.Context, event audit.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[event.CompanyID] = append(s.events[event.CompanyID], event)
	return nil
}

func (s *InMemoryStore) ListByCompany(_ context.Context, companyID id.CompanyID) ([]audit.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]audit.Event{}, s.events[companyID]...), nil
}

func (s *InMemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = make(map[id.CompanyID][]audit.Event)
}
