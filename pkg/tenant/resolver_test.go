package tenant_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/tenantkit/pkg/audit"
	"github.com/dmitrymomot/tenantkit/pkg/membership"
	"github.com/dmitrymomot/tenantkit/pkg/tenant"
)

type captureStorage struct {
	mu     sync.Mutex
	events []audit.Event
}

func (s *captureStorage) Store(ctx context.Context, event audit.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

func (s *captureStorage) all() []audit.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]audit.Event(nil), s.events...)
}

type fixture struct {
	tenants     *tenant.MemoryStore
	memberships *membership.MemoryStore
	resolver    *tenant.Resolver
	auditLog    *captureStorage

	acme    *tenant.Tenant
	soloCo  *tenant.Tenant
	beta    *tenant.Tenant
	member  *tenant.Identity
	solo    *tenant.Identity
	busy    *tenant.Identity
	nobody  *tenant.Identity
	platOps *tenant.Identity
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	f := &fixture{
		tenants:     tenant.NewMemoryStore(),
		memberships: membership.NewMemoryStore(),
		auditLog:    &captureStorage{},
	}
	f.resolver = tenant.NewResolver(f.tenants, f.memberships,
		tenant.WithBaseDomain("base.example"),
		tenant.WithAuditLogger(audit.NewLogger(f.auditLog)),
	)

	now := time.Now()
	f.acme = &tenant.Tenant{ID: uuid.New(), Name: "Acme Inc", Slug: "acme", Domain: "shop.acme.com", Active: true, CreatedAt: now, UpdatedAt: now}
	f.soloCo = &tenant.Tenant{ID: uuid.New(), Name: "Solo Co", Slug: "solo-co", Active: true, CreatedAt: now, UpdatedAt: now}
	f.beta = &tenant.Tenant{ID: uuid.New(), Name: "Beta LLC", Slug: "beta", Domain: "beta.example.org", Active: false, CreatedAt: now, UpdatedAt: now}
	for _, tn := range []*tenant.Tenant{f.acme, f.soloCo, f.beta} {
		require.NoError(t, f.tenants.Create(ctx, tn))
	}

	f.member = &tenant.Identity{UserID: uuid.New()}
	f.solo = &tenant.Identity{UserID: uuid.New()}
	f.busy = &tenant.Identity{UserID: uuid.New()}
	f.nobody = &tenant.Identity{UserID: uuid.New()}
	f.platOps = &tenant.Identity{UserID: uuid.New(), Superuser: true}

	addMember := func(id *tenant.Identity, tn *tenant.Tenant, role membership.Role, active bool) {
		require.NoError(t, f.memberships.CreateMembership(ctx, &membership.Membership{
			ID: uuid.New(), TenantID: tn.ID, UserID: id.UserID, Role: role, Active: active,
			CreatedAt: now, UpdatedAt: now,
		}))
	}
	addMember(f.member, f.acme, membership.RoleManager, true)
	addMember(f.member, f.beta, membership.RoleAdmin, true)
	addMember(f.solo, f.soloCo, membership.RoleUser, true)
	addMember(f.busy, f.acme, membership.RoleUser, true)
	addMember(f.busy, f.soloCo, membership.RoleAdmin, true)

	return f
}

func TestResolverExplicitSelection(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("active member by slug", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)

		tctx, err := f.resolver.Resolve(ctx, tenant.RequestMeta{TenantID: "acme", Identity: f.member})
		require.NoError(t, err)
		require.NotNil(t, tctx)
		assert.Equal(t, f.acme.ID, tctx.Tenant().ID)
		assert.Equal(t, membership.RoleManager, tctx.Role())
		assert.False(t, tctx.Unrestricted())
	})

	t.Run("active member by id", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)

		tctx, err := f.resolver.Resolve(ctx, tenant.RequestMeta{TenantID: f.acme.ID.String(), Identity: f.member})
		require.NoError(t, err)
		assert.Equal(t, f.acme.ID, tctx.Tenant().ID)
	})

	t.Run("non-member is rejected", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)

		tctx, err := f.resolver.Resolve(ctx, tenant.RequestMeta{TenantID: "acme", Identity: f.nobody})
		require.ErrorIs(t, err, tenant.ErrNotAMember)
		assert.Nil(t, tctx)
		assert.Equal(t, tenant.CodeNotAMember, tenant.ErrorCode(err))
	})

	t.Run("unauthenticated is rejected", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)

		_, err := f.resolver.Resolve(ctx, tenant.RequestMeta{TenantID: "acme"})
		require.ErrorIs(t, err, tenant.ErrNotAMember)
	})

	t.Run("unknown tenant", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)

		_, err := f.resolver.Resolve(ctx, tenant.RequestMeta{TenantID: "ghost", Identity: f.member})
		require.ErrorIs(t, err, tenant.ErrTenantNotFound)
		assert.Equal(t, tenant.CodeTenantNotFound, tenant.ErrorCode(err))
	})

	t.Run("inactive tenant rejected before membership", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)

		// The caller holds a valid admin membership in beta; tenant state
		// still wins.
		_, err := f.resolver.Resolve(ctx, tenant.RequestMeta{TenantID: "beta", Identity: f.member})
		require.ErrorIs(t, err, tenant.ErrTenantInactive)
		assert.Equal(t, tenant.CodeTenantInactive, tenant.ErrorCode(err))
	})

	t.Run("inactive membership rejected", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		require.NoError(t, f.memberships.SetMembershipActive(ctx, f.member.UserID, f.acme.ID, false))

		_, err := f.resolver.Resolve(ctx, tenant.RequestMeta{TenantID: "acme", Identity: f.member})
		require.ErrorIs(t, err, tenant.ErrMembershipInactive)
		assert.Equal(t, tenant.CodeMembershipInactive, tenant.ErrorCode(err))
	})

	t.Run("malformed identifier", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)

		_, err := f.resolver.Resolve(ctx, tenant.RequestMeta{TenantID: "not a slug!", Identity: f.member})
		require.ErrorIs(t, err, tenant.ErrInvalidIdentifier)
	})

	t.Run("header wins over domain", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)

		// Host points at solo-co, header at acme: explicit selection wins.
		tctx, err := f.resolver.Resolve(ctx, tenant.RequestMeta{
			TenantID: "acme",
			Host:     "solo-co.base.example",
			Identity: f.member,
		})
		require.NoError(t, err)
		assert.Equal(t, f.acme.ID, tctx.Tenant().ID)
	})
}

func TestResolverDomainMapping(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("slug subdomain", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)

		tctx, err := f.resolver.Resolve(ctx, tenant.RequestMeta{Host: "acme.base.example", Identity: f.member})
		require.NoError(t, err)
		assert.Equal(t, f.acme.ID, tctx.Tenant().ID)
		assert.Equal(t, membership.RoleManager, tctx.Role())
	})

	t.Run("subdomain host with port", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)

		tctx, err := f.resolver.Resolve(ctx, tenant.RequestMeta{Host: "acme.base.example:8443", Identity: f.member})
		require.NoError(t, err)
		assert.Equal(t, f.acme.ID, tctx.Tenant().ID)
	})

	t.Run("custom domain", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)

		tctx, err := f.resolver.Resolve(ctx, tenant.RequestMeta{Host: "shop.acme.com", Identity: f.member})
		require.NoError(t, err)
		assert.Equal(t, f.acme.ID, tctx.Tenant().ID)
	})

	t.Run("membership required on mapped domain", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)

		_, err := f.resolver.Resolve(ctx, tenant.RequestMeta{Host: "acme.base.example", Identity: f.nobody})
		require.ErrorIs(t, err, tenant.ErrNotAMember)
	})

	t.Run("unmapped host falls through to default membership", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)

		tctx, err := f.resolver.Resolve(ctx, tenant.RequestMeta{Host: "app.unrelated.example", Identity: f.solo})
		require.NoError(t, err)
		require.NotNil(t, tctx)
		assert.Equal(t, f.soloCo.ID, tctx.Tenant().ID)
	})

	t.Run("base domain itself maps to nothing", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)

		tctx, err := f.resolver.Resolve(ctx, tenant.RequestMeta{Host: "base.example"})
		require.NoError(t, err)
		assert.Nil(t, tctx)
	})

	t.Run("inactive tenant behind domain is a hard failure", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)

		// beta is deactivated: even its admin gets tenant_inactive, and the
		// caller's other memberships are not consulted as a fallback.
		_, err := f.resolver.Resolve(ctx, tenant.RequestMeta{Host: "beta.base.example", Identity: f.member})
		require.ErrorIs(t, err, tenant.ErrTenantInactive)
	})
}

func TestResolverDefaultMembership(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("sole membership selected", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)

		tctx, err := f.resolver.Resolve(ctx, tenant.RequestMeta{Identity: f.solo})
		require.NoError(t, err)
		require.NotNil(t, tctx)
		assert.Equal(t, f.soloCo.ID, tctx.Tenant().ID)
		assert.Equal(t, membership.RoleUser, tctx.Role())
	})

	t.Run("multiple memberships are ambiguous", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)

		_, err := f.resolver.Resolve(ctx, tenant.RequestMeta{Identity: f.busy})
		require.ErrorIs(t, err, tenant.ErrAmbiguousTenant)
		assert.Equal(t, tenant.CodeAmbiguousTenant, tenant.ErrorCode(err))
	})

	t.Run("ambiguity resolved by explicit selection", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)

		tctx, err := f.resolver.Resolve(ctx, tenant.RequestMeta{TenantID: "solo-co", Identity: f.busy})
		require.NoError(t, err)
		assert.Equal(t, f.soloCo.ID, tctx.Tenant().ID)
		assert.Equal(t, membership.RoleAdmin, tctx.Role())
	})

	t.Run("unauthenticated resolves to no tenant", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)

		tctx, err := f.resolver.Resolve(ctx, tenant.RequestMeta{})
		require.NoError(t, err)
		assert.Nil(t, tctx)
	})

	t.Run("memberless caller resolves to no tenant", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)

		tctx, err := f.resolver.Resolve(ctx, tenant.RequestMeta{Identity: f.nobody})
		require.NoError(t, err)
		assert.Nil(t, tctx)
	})

	t.Run("inactive membership does not count as default", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		require.NoError(t, f.memberships.SetMembershipActive(ctx, f.solo.UserID, f.soloCo.ID, false))

		tctx, err := f.resolver.Resolve(ctx, tenant.RequestMeta{Identity: f.solo})
		require.NoError(t, err)
		assert.Nil(t, tctx)
	})
}

func TestResolverSuperuser(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("no selection resolves unrestricted and is audited", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)

		tctx, err := f.resolver.Resolve(ctx, tenant.RequestMeta{Identity: f.platOps})
		require.NoError(t, err)
		require.NotNil(t, tctx)
		assert.True(t, tctx.Unrestricted())
		assert.Nil(t, tctx.Tenant())

		events := f.auditLog.all()
		require.Len(t, events, 1)
		assert.Equal(t, tenant.ActionUnrestrictedAccess, events[0].Action)
		assert.Equal(t, f.platOps.UserID, events[0].UserID)
	})

	t.Run("explicit selection is scoped like a member", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)

		tctx, err := f.resolver.Resolve(ctx, tenant.RequestMeta{TenantID: "acme", Identity: f.platOps})
		require.NoError(t, err)
		require.NotNil(t, tctx)
		assert.False(t, tctx.Unrestricted())
		assert.Equal(t, f.acme.ID, tctx.Tenant().ID)
		assert.Equal(t, membership.RoleOwner, tctx.Role())
		assert.Empty(t, f.auditLog.all())
	})

	t.Run("membership role applies when the superuser has one", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		require.NoError(t, f.memberships.CreateMembership(ctx, &membership.Membership{
			ID: uuid.New(), TenantID: f.acme.ID, UserID: f.platOps.UserID,
			Role: membership.RoleReadonly, Active: true,
			CreatedAt: time.Now(), UpdatedAt: time.Now(),
		}))

		tctx, err := f.resolver.Resolve(ctx, tenant.RequestMeta{TenantID: "acme", Identity: f.platOps})
		require.NoError(t, err)
		assert.Equal(t, membership.RoleReadonly, tctx.Role())
	})

	t.Run("selecting an inactive tenant still fails", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)

		_, err := f.resolver.Resolve(ctx, tenant.RequestMeta{TenantID: "beta", Identity: f.platOps})
		require.ErrorIs(t, err, tenant.ErrTenantInactive)
	})
}
