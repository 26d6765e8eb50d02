package tenant

import (
	"log/slog"
	"strings"

	"github.com/dmitrymomot/tenantkit/pkg/audit"
)

// ResolverOption configures the Resolver.
type ResolverOption func(*Resolver)

// WithBaseDomain enables slug-subdomain mapping: a host of the form
// <slug>.<base-domain> resolves to the tenant owning the slug.
func WithBaseDomain(domain string) ResolverOption {
	return func(r *Resolver) {
		r.baseDomain = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(domain), "."))
	}
}

// WithAuditLogger records unrestricted-mode access to the audit trail.
// Production deployments should always set this; unrestricted access is
// deliberately never a silent default.
func WithAuditLogger(l *audit.Logger) ResolverOption {
	return func(r *Resolver) {
		if l != nil {
			r.auditor = l
		}
	}
}

// WithLogger sets the resolver's structured logger.
func WithLogger(log *slog.Logger) ResolverOption {
	return func(r *Resolver) {
		if log != nil {
			r.log = log
		}
	}
}
