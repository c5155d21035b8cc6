package profile

import (
	"context"
	"sync"

	"hrgate/internal/verify/ports"
	dErrors "hrgate/pkg/domain-errors"
)

// MemoryStore is an in-memory ProfileStore for tests and local development.
type MemoryStore struct {
	mu         sync.RWMutex
	employment map[string]ports.EmploymentRecord
	grants     map[string]ports.RoleGrant
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		employment: make(map[string]ports.EmploymentRecord),
		grants:     make(map[string]ports.RoleGrant),
	}
}

// PutEmployment seeds or replaces an employment record.
func (s *MemoryStore) PutEmployment(rec ports.EmploymentRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.employment[rec.EmployeeID] = rec
}

// PutRoleGrant seeds or replaces a role grant.
func (s *MemoryStore) PutRoleGrant(grant ports.RoleGrant) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.grants[grant.EmployeeID] = grant
}

func (s *MemoryStore) GetEmployment(_ context.Context, employeeID string) (*ports.EmploymentRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.employment[employeeID]
	if !ok {
		return nil, dErrors.Newf(dErrors.CodeNotFound, "employment record not found for %q", employeeID)
	}
	out := rec
	return &out, nil
}

func (s *MemoryStore) GetRoleGrant(_ context.Context, employeeID string) (*ports.RoleGrant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	grant, ok := s.grants[employeeID]
	if !ok {
		return nil, dErrors.Newf(dErrors.CodeNotFound, "role grant not found for %q", employeeID)
	}
	out := grant
	return &out, nil
}
