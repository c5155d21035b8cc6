package memory

import (
	"context"
	"sync"

	audit "hrgate/pkg/platform/audit"
)

type InMemoryStore struct {
	mu sync.RWMutex
	// byEmployee indexes events for per-employee lookups; ordered keeps the
	// global insertion order for ListRecent.
	byEmployee map[string][]audit.Event
	ordered    []audit.Event
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{byEmployee: make(map[string][]audit.Event)}
}

func (s *InMemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byEmployee = make(map[string][]audit.Event)
	s.ordered = nil
}

func (s *InMemoryStore) Append(_ context.Context, event audit.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byEmployee[event.EmployeeID] = append(s.byEmployee[event.EmployeeID], event)
	s.ordered = append(s.ordered, event)
	return nil
}

func (s *InMemoryStore) ListByEmployee(_ context.Context, employeeID string) ([]audit.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]audit.Event{}, s.byEmployee[employeeID]...), nil
}

// ListRecent returns the most recent N events across all employees.
func (s *InMemoryStore) ListRecent(_ context.Context, limit int) ([]audit.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	start := len(s.ordered) - limit
	if start < 0 {
		start = 0
	}
	recent := s.ordered[start:]

	// Newest first.
	out := make([]audit.Event, 0, len(recent))
	for i := len(recent) - 1; i >= 0; i-- {
		out = append(out, recent[i])
	}
	return out, nil
}
