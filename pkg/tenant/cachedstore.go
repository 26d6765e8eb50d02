package tenant

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// DefaultCacheTTL bounds how long a cached tenant may lag behind the store.
// Deactivation takes at most this long to propagate through caches.
const DefaultCacheTTL = 5 * time.Minute

// CachedStore decorates a Store with read-through caching. Lookups by id,
// slug, and domain are cached under separate keys; writes invalidate all
// keys of the affected tenant.
type CachedStore struct {
	store Store
	cache Cache
	ttl   time.Duration
}

// NewCachedStore wraps the store with the cache. A non-positive ttl falls
// back to DefaultCacheTTL.
func NewCachedStore(store Store, cache Cache, ttl time.Duration) *CachedStore {
	if store == nil {
		panic("tenant: store cannot be nil")
	}
	if cache == nil {
		cache = NoopCache{}
	}
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &CachedStore{store: store, cache: cache, ttl: ttl}
}

func (s *CachedStore) GetByID(ctx context.Context, id uuid.UUID) (*Tenant, error) {
	return s.lookup(ctx, "id:"+id.String(), func() (*Tenant, error) {
		return s.store.GetByID(ctx, id)
	})
}

func (s *CachedStore) GetBySlug(ctx context.Context, slug string) (*Tenant, error) {
	return s.lookup(ctx, "slug:"+slug, func() (*Tenant, error) {
		return s.store.GetBySlug(ctx, slug)
	})
}

func (s *CachedStore) GetByDomain(ctx context.Context, domain string) (*Tenant, error) {
	return s.lookup(ctx, "domain:"+domain, func() (*Tenant, error) {
		return s.store.GetByDomain(ctx, domain)
	})
}

func (s *CachedStore) Create(ctx context.Context, t *Tenant) error {
	if err := s.store.Create(ctx, t); err != nil {
		return err
	}
	s.invalidate(ctx, t)
	return nil
}

func (s *CachedStore) Deactivate(ctx context.Context, id uuid.UUID) error {
	// Load first so slug and domain keys can be invalidated too.
	t, err := s.store.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.store.Deactivate(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, t)
	return nil
}

func (s *CachedStore) UpdateSettings(ctx context.Context, id uuid.UUID, settings map[string]any) error {
	t, err := s.store.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.store.UpdateSettings(ctx, id, settings); err != nil {
		return err
	}
	s.invalidate(ctx, t)
	return nil
}

func (s *CachedStore) lookup(ctx context.Context, key string, load func() (*Tenant, error)) (*Tenant, error) {
	if t, ok := s.cache.Get(ctx, key); ok {
		return t, nil
	}
	t, err := load()
	if err != nil {
		return nil, err
	}
	s.cache.Set(ctx, key, t, s.ttl)
	return t, nil
}

func (s *CachedStore) invalidate(ctx context.Context, t *Tenant) {
	s.cache.Delete(ctx, "id:"+t.ID.String())
	s.cache.Delete(ctx, "slug:"+t.Slug)
	if t.Domain != "" {
		s.cache.Delete(ctx, "domain:"+t.Domain)
	}
}
