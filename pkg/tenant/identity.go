package tenant

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
)

// DefaultTenantHeader carries the explicit tenant selection.
const DefaultTenantHeader = "X-Tenant-ID"

// Identity is the authenticated caller as seen by the resolver.
// Authentication itself happens upstream; the resolver only reads this.
type Identity struct {
	UserID uuid.UUID

	// Superuser marks platform operators. Without an explicit selection
	// they resolve to an unrestricted context; with one they are scoped
	// like any member.
	Superuser bool
}

// RequestMeta is the request metadata resolution operates on. The core
// never parses transport details beyond these three fields.
type RequestMeta struct {
	// TenantID is the explicit tenant selection (id or slug), usually the
	// X-Tenant-ID header value. Empty means no explicit selection.
	TenantID string

	// Host is the request host, with or without port.
	Host string

	// Identity is the authenticated caller, nil when unauthenticated.
	Identity *Identity
}

// MetaFromRequest extracts resolution metadata from an HTTP request.
func MetaFromRequest(r *http.Request, identity *Identity) RequestMeta {
	return RequestMeta{
		TenantID: strings.TrimSpace(r.Header.Get(DefaultTenantHeader)),
		Host:     r.Host,
		Identity: identity,
	}
}

// normalizeHost lowercases the host and strips any port.
func normalizeHost(host string) string {
	host = strings.ToLower(strings.TrimSpace(host))
	if idx := strings.LastIndex(host, ":"); idx != -1 {
		host = host[:idx]
	}
	return host
}
