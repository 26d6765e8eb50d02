// Package tenant resolves which tenant an inbound operation belongs to and
// carries that decision through the request as an immutable context.
//
// Resolution follows a fixed precedence, first match wins:
//
//  1. Explicit selection (X-Tenant-ID header): the tenant must exist and be
//     active, and the caller must hold an active membership in it (platform
//     superusers are exempt from the membership requirement).
//  2. Domain mapping: a custom domain or <slug>.<base-domain> host pointing
//     at an active tenant, with the same membership requirement.
//  3. Default membership: a caller with exactly one active membership is
//     scoped to that tenant.
//  4. More than one active membership without an explicit selection fails
//     with ErrAmbiguousTenant; the caller must disambiguate.
//  5. Unauthenticated or memberless callers resolve to no tenant at all.
//
// A superuser who selects nothing resolves to an unrestricted context that
// applies no tenant filter; the access is recorded to the audit trail. A
// superuser who does select a tenant is scoped exactly like a member, which
// supports impersonation without quietly disabling isolation elsewhere.
//
// Every failure is a denial: resolution never falls back to "no filter".
// Rejections map to stable string codes via ErrorCode for the transport
// layer to surface.
//
// # Usage
//
//	store := tenant.NewPostgresStore(pool)
//	resolver := tenant.NewResolver(store, membershipStore,
//		tenant.WithBaseDomain("app.example.com"),
//		tenant.WithAuditLogger(auditor),
//	)
//
//	mw := tenant.Middleware(resolver, identityFromSession)
//	r.Use(mw)
//
//	// In a handler:
//	tctx := tenant.MustFromContext(r.Context())
//	scoped, err := enforcer.Select(tctx, q)
//
// The resolved Context is immutable and request-scoped. It must be passed
// explicitly (via context.Context or arguments), never stored in a global:
// a process-wide "current tenant" leaks one request's tenant into another
// under concurrency.
package tenant
