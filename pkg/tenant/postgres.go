package tenant

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dmitrymomot/tenantkit/pkg/pg"
)

// PostgresStore persists the tenant directory in PostgreSQL. The hostname
// invariant (a domain maps to at most one active tenant) is enforced by a
// partial unique index on custom_domain.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a store backed by the given connection pool.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	if pool == nil {
		panic("tenant: pgx pool cannot be nil")
	}
	return &PostgresStore{pool: pool}
}

const tenantColumns = "id, name, slug, custom_domain, is_active, settings, created_at, updated_at"

func scanTenant(row pgx.Row) (*Tenant, error) {
	var t Tenant
	var domain *string
	var settings []byte
	if err := row.Scan(&t.ID, &t.Name, &t.Slug, &domain, &t.Active, &settings, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	if domain != nil {
		t.Domain = *domain
	}
	if len(settings) > 0 {
		if err := json.Unmarshal(settings, &t.Settings); err != nil {
			return nil, fmt.Errorf("decode tenant settings: %w", err)
		}
	}
	return &t, nil
}

func (s *PostgresStore) getBy(ctx context.Context, where string, arg any) (*Tenant, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+tenantColumns+` FROM tenants WHERE `+where, arg)
	t, err := scanTenant(row)
	if err != nil {
		if pg.IsNotFoundError(err) {
			return nil, ErrTenantNotFound
		}
		return nil, fmt.Errorf("get tenant: %w", err)
	}
	return t, nil
}

func (s *PostgresStore) GetByID(ctx context.Context, id uuid.UUID) (*Tenant, error) {
	return s.getBy(ctx, "id = $1", id)
}

func (s *PostgresStore) GetBySlug(ctx context.Context, slug string) (*Tenant, error) {
	return s.getBy(ctx, "slug = $1", slug)
}

func (s *PostgresStore) GetByDomain(ctx context.Context, domain string) (*Tenant, error) {
	return s.getBy(ctx, "custom_domain = $1 AND is_active", domain)
}

func (s *PostgresStore) Create(ctx context.Context, t *Tenant) error {
	settings, err := json.Marshal(t.Settings)
	if err != nil {
		return fmt.Errorf("encode tenant settings: %w", err)
	}
	var domain *string
	if t.Domain != "" {
		domain = &t.Domain
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO tenants (`+tenantColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		t.ID, t.Name, t.Slug, domain, t.Active, settings, t.CreatedAt, t.UpdatedAt)
	if err != nil {
		if pg.IsDuplicateKeyError(err) {
			return ErrDuplicateTenant
		}
		return fmt.Errorf("create tenant: %w", err)
	}
	return nil
}

func (s *PostgresStore) Deactivate(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE tenants SET is_active = false, updated_at = now() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deactivate tenant: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrTenantNotFound
	}
	return nil
}

func (s *PostgresStore) UpdateSettings(ctx context.Context, id uuid.UUID, settings map[string]any) error {
	data, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("encode tenant settings: %w", err)
	}
	tag, err := s.pool.Exec(ctx,
		`UPDATE tenants SET settings = $2, updated_at = now() WHERE id = $1`, id, data)
	if err != nil {
		return fmt.Errorf("update tenant settings: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrTenantNotFound
	}
	return nil
}
