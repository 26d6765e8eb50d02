package tenant

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/dmitrymomot/tenantkit/pkg/membership"
)

// Context is the resolved outcome of one request: the tenant, the caller,
// and the caller's role within that tenant. It is immutable and scoped to a
// single operation; construct it fresh per request and discard it after.
//
// An unrestricted context carries no tenant and no role. It is produced only
// for superusers without an explicit selection and disables tenant filtering
// downstream.
type Context struct {
	tenant       *Tenant
	userID       uuid.UUID
	role         membership.Role
	unrestricted bool
}

// NewContext creates a context scoped to the tenant with the caller's role.
func NewContext(t *Tenant, userID uuid.UUID, role membership.Role) *Context {
	if t == nil {
		panic("tenant: scoped context requires a tenant")
	}
	return &Context{tenant: t, userID: userID, role: role}
}

// NewUnrestrictedContext creates the superuser cross-tenant context.
func NewUnrestrictedContext(userID uuid.UUID) *Context {
	return &Context{userID: userID, unrestricted: true}
}

// Tenant returns the resolved tenant, nil for unrestricted contexts.
func (c *Context) Tenant() *Tenant {
	return c.tenant
}

// TenantID returns the resolved tenant id and whether one is set.
func (c *Context) TenantID() (uuid.UUID, bool) {
	if c.tenant == nil {
		return uuid.UUID{}, false
	}
	return c.tenant.ID, true
}

// UserID returns the acting user's id.
func (c *Context) UserID() uuid.UUID {
	return c.userID
}

// Role returns the caller's role in the resolved tenant. It is empty for
// unrestricted contexts.
func (c *Context) Role() membership.Role {
	return c.role
}

// Unrestricted reports whether tenant filtering is disabled.
func (c *Context) Unrestricted() bool {
	return c.unrestricted
}

// Actor returns the caller's standing for membership operations.
func (c *Context) Actor() membership.Actor {
	return membership.Actor{UserID: c.userID, Role: c.role}
}

// contextKey is a private type to prevent collisions with other context keys.
type contextKey struct{}

// WithContext attaches the resolved tenant context to the request context.
func WithContext(ctx context.Context, tc *Context) context.Context {
	return context.WithValue(ctx, contextKey{}, tc)
}

// FromContext retrieves the resolved tenant context.
// Returns nil, false if none is attached.
func FromContext(ctx context.Context) (*Context, bool) {
	tc, ok := ctx.Value(contextKey{}).(*Context)
	return tc, ok && tc != nil
}

// MustFromContext retrieves the resolved tenant context or panics. Use only
// behind RequireTenant, where absence is a programming error.
func MustFromContext(ctx context.Context) *Context {
	tc, ok := FromContext(ctx)
	if !ok {
		panic("tenant: no tenant context")
	}
	return tc
}

// LoggerExtractor returns a logger context extractor that annotates log
// records with the resolved tenant.
func LoggerExtractor() func(ctx context.Context) (slog.Attr, bool) {
	return func(ctx context.Context) (slog.Attr, bool) {
		tc, ok := FromContext(ctx)
		if !ok {
			return slog.Attr{}, false
		}
		if tc.Unrestricted() {
			return slog.String("tenant_id", "unrestricted"), true
		}
		if id, ok := tc.TenantID(); ok {
			return slog.String("tenant_id", id.String()), true
		}
		return slog.Attr{}, false
	}
}
