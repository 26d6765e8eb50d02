package tenant

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/dmitrymomot/tenantkit/pkg/audit"
	"github.com/dmitrymomot/tenantkit/pkg/membership"
)

// ActionUnrestrictedAccess is the audit action recorded whenever a
// superuser resolves to the unrestricted cross-tenant context.
const ActionUnrestrictedAccess = "tenant.unrestricted_access"

// MaxIdentifierLength bounds explicit identifiers and slugs; it matches the
// DNS label limit so slugs stay usable as subdomains.
const MaxIdentifierLength = 63

// identifierPattern accepts DNS-safe identifiers: alphanumeric start,
// hyphens allowed after.
var identifierPattern = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9-]*$`)

// Resolver determines the tenant an operation belongs to. It consults the
// tenant store and the membership source and produces an immutable Context,
// a "no tenant" outcome (nil, nil), or a typed rejection. It holds no
// request state and is safe for concurrent use.
type Resolver struct {
	store       Store
	memberships MembershipSource
	baseDomain  string
	auditor     *audit.Logger
	log         *slog.Logger
}

// NewResolver creates a resolver over the tenant store and membership source.
func NewResolver(store Store, memberships MembershipSource, opts ...ResolverOption) *Resolver {
	if store == nil {
		panic("tenant: store cannot be nil")
	}
	if memberships == nil {
		panic("tenant: membership source cannot be nil")
	}

	r := &Resolver{
		store:       store,
		memberships: memberships,
		log:         slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve applies the resolution precedence to the request metadata.
// It returns (nil, nil) for the legitimate "no tenant" outcome; every error
// is a denial and must never be downgraded to an unfiltered query.
func (r *Resolver) Resolve(ctx context.Context, meta RequestMeta) (*Context, error) {
	// 1. Explicit selection wins over everything, including domain mapping.
	if id := strings.TrimSpace(meta.TenantID); id != "" {
		t, err := r.lookupIdentifier(ctx, id)
		if err != nil {
			return nil, err
		}
		return r.contextFor(ctx, t, meta.Identity)
	}

	// 2. Domain mapping. A host that maps to no tenant falls through; a host
	// that maps to a deactivated tenant is a hard failure, not a fallback.
	if host := normalizeHost(meta.Host); host != "" {
		t, err := r.lookupHost(ctx, host)
		switch {
		case err == nil:
			return r.contextFor(ctx, t, meta.Identity)
		case !errors.Is(err, ErrTenantNotFound):
			return nil, err
		}
	}

	// 5 (early). Unauthenticated callers carry no memberships to consult.
	if meta.Identity == nil {
		return nil, nil
	}

	// Superuser without a selection: unrestricted cross-tenant view.
	// This is a privileged outcome, so it always leaves an audit record.
	if meta.Identity.Superuser {
		r.auditUnrestricted(ctx, meta.Identity.UserID)
		return NewUnrestrictedContext(meta.Identity.UserID), nil
	}

	// 3 and 4. Default membership, ambiguous otherwise.
	return r.resolveDefault(ctx, meta.Identity)
}

// lookupIdentifier loads a tenant by explicit identifier, id or slug.
func (r *Resolver) lookupIdentifier(ctx context.Context, identifier string) (*Tenant, error) {
	if len(identifier) > MaxIdentifierLength {
		return nil, fmt.Errorf("%w: identifier too long", ErrInvalidIdentifier)
	}

	if id, err := uuid.Parse(identifier); err == nil {
		return r.store.GetByID(ctx, id)
	}

	if !identifierPattern.MatchString(identifier) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidIdentifier, identifier)
	}
	return r.store.GetBySlug(ctx, identifier)
}

// lookupHost maps a hostname to a tenant: slug subdomain of the configured
// base domain first, custom domain otherwise.
func (r *Resolver) lookupHost(ctx context.Context, host string) (*Tenant, error) {
	if r.baseDomain != "" {
		if slug, ok := strings.CutSuffix(host, "."+r.baseDomain); ok {
			if slug == "" || slug == "www" || strings.Contains(slug, ".") {
				return nil, ErrTenantNotFound
			}
			return r.store.GetBySlug(ctx, slug)
		}
		if host == r.baseDomain {
			return nil, ErrTenantNotFound
		}
	}
	return r.store.GetByDomain(ctx, host)
}

// contextFor validates the selected tenant and the caller's right to act on
// it. Tenant state is checked before membership so a deactivated tenant
// reports tenant_inactive regardless of who asks.
func (r *Resolver) contextFor(ctx context.Context, t *Tenant, identity *Identity) (*Context, error) {
	if !t.Active {
		return nil, ErrTenantInactive
	}
	if identity == nil {
		return nil, ErrNotAMember
	}

	m, err := r.memberships.GetMembership(ctx, identity.UserID, t.ID)
	switch {
	case errors.Is(err, membership.ErrMembershipNotFound):
		m = nil
	case err != nil:
		return nil, fmt.Errorf("membership lookup: %w", err)
	}

	if identity.Superuser {
		// An explicit selection scopes a superuser like a member. Their own
		// membership role applies when they have one; otherwise they act
		// with owner standing inside this one tenant only.
		role := membership.RoleOwner
		if m != nil && m.Active {
			role = m.Role
		}
		return NewContext(t, identity.UserID, role), nil
	}

	if m == nil {
		return nil, ErrNotAMember
	}
	if !m.Active {
		return nil, ErrMembershipInactive
	}
	return NewContext(t, identity.UserID, m.Role), nil
}

// resolveDefault scopes the caller to their sole active membership.
func (r *Resolver) resolveDefault(ctx context.Context, identity *Identity) (*Context, error) {
	members, err := r.memberships.ListActiveMemberships(ctx, identity.UserID)
	if err != nil {
		return nil, fmt.Errorf("membership lookup: %w", err)
	}

	switch len(members) {
	case 0:
		return nil, nil
	case 1:
		t, err := r.store.GetByID(ctx, members[0].TenantID)
		if err != nil {
			return nil, err
		}
		if !t.Active {
			return nil, ErrTenantInactive
		}
		return NewContext(t, identity.UserID, members[0].Role), nil
	default:
		return nil, ErrAmbiguousTenant
	}
}

func (r *Resolver) auditUnrestricted(ctx context.Context, userID uuid.UUID) {
	if r.auditor == nil {
		return
	}
	if err := r.auditor.Log(ctx, ActionUnrestrictedAccess, audit.WithUser(userID)); err != nil {
		r.log.ErrorContext(ctx, "audit log failed",
			slog.String("action", ActionUnrestrictedAccess),
			slog.Any("error", err))
	}
}
