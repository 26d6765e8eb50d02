package tenant

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/tenantkit/pkg/membership"
)

// Tenant is one isolated organization sharing the platform's schema.
// Tenants are deactivated, never deleted, while rows still reference them.
type Tenant struct {
	ID        uuid.UUID      `json:"id"`
	Name      string         `json:"name"`
	Slug      string         `json:"slug"`
	Domain    string         `json:"domain,omitempty"`
	Active    bool           `json:"active"`
	Settings  map[string]any `json:"settings,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// Store is the persisted tenant directory: tenants and their hostname
// mappings. A hostname (custom domain or slug subdomain) maps to at most one
// active tenant.
type Store interface {
	// GetByID returns the tenant by id. Returns ErrTenantNotFound if none.
	GetByID(ctx context.Context, id uuid.UUID) (*Tenant, error)

	// GetBySlug returns the tenant by its unique slug.
	// Returns ErrTenantNotFound if none.
	GetBySlug(ctx context.Context, slug string) (*Tenant, error)

	// GetByDomain returns the tenant mapped to the custom domain hostname.
	// Returns ErrTenantNotFound if none.
	GetByDomain(ctx context.Context, domain string) (*Tenant, error)

	// Create inserts a new tenant. Returns ErrDuplicateTenant when the slug
	// or domain is already taken by an active tenant.
	Create(ctx context.Context, t *Tenant) error

	// Deactivate soft-disables the tenant. Rows referencing it are kept.
	Deactivate(ctx context.Context, id uuid.UUID) error

	// UpdateSettings replaces the tenant's settings blob.
	UpdateSettings(ctx context.Context, id uuid.UUID, settings map[string]any) error
}

// MembershipSource is the membership lookup the resolver needs. It is
// satisfied by membership.Store implementations.
type MembershipSource interface {
	GetMembership(ctx context.Context, userID, tenantID uuid.UUID) (*membership.Membership, error)
	ListActiveMemberships(ctx context.Context, userID uuid.UUID) ([]membership.Membership, error)
}
