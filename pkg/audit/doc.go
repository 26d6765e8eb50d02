// Package audit records security-relevant events: unrestricted cross-tenant
// access, membership mutations, and invitation lifecycle changes.
//
// Events flow through a Logger into a Storage implementation. SlogStorage is
// provided for deployments that ship audit records through the regular log
// pipeline; production systems typically plug in an append-only store.
//
//	auditor := audit.NewLogger(audit.NewSlogStorage(log))
//	_ = auditor.Log(ctx, "tenant.unrestricted_access",
//		audit.WithUser(identity.UserID),
//	)
//
// Logging an event never panics; storage failures are returned to the caller
// to decide whether the operation should proceed.
package audit
