package tenant

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is an in-memory Store for tests and prototyping.
// Safe for concurrent use.
type MemoryStore struct {
	mu      sync.RWMutex
	tenants map[uuid.UUID]*Tenant
}

// NewMemoryStore creates an empty in-memory tenant store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{tenants: make(map[uuid.UUID]*Tenant)}
}

func (s *MemoryStore) GetByID(ctx context.Context, id uuid.UUID) (*Tenant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.tenants[id]
	if !ok {
		return nil, ErrTenantNotFound
	}
	cp := *t
	return &cp, nil
}

func (s *MemoryStore) GetBySlug(ctx context.Context, slug string) (*Tenant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, t := range s.tenants {
		if t.Slug == slug {
			cp := *t
			return &cp, nil
		}
	}
	return nil, ErrTenantNotFound
}

func (s *MemoryStore) GetByDomain(ctx context.Context, domain string) (*Tenant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, t := range s.tenants {
		if t.Domain == domain && t.Active {
			cp := *t
			return &cp, nil
		}
	}
	return nil, ErrTenantNotFound
}

func (s *MemoryStore) Create(ctx context.Context, t *Tenant) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.tenants {
		if existing.Slug == t.Slug {
			return ErrDuplicateTenant
		}
		if t.Domain != "" && existing.Domain == t.Domain && existing.Active {
			return ErrDuplicateTenant
		}
	}
	cp := *t
	s.tenants[t.ID] = &cp
	return nil
}

func (s *MemoryStore) Deactivate(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tenants[id]
	if !ok {
		return ErrTenantNotFound
	}
	t.Active = false
	t.UpdatedAt = time.Now()
	return nil
}

func (s *MemoryStore) UpdateSettings(ctx context.Context, id uuid.UUID, settings map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tenants[id]
	if !ok {
		return ErrTenantNotFound
	}
	t.Settings = settings
	t.UpdatedAt = time.Now()
	return nil
}
