package tenant

import "errors"

var (
	// ErrTenantNotFound is returned when no tenant matches the identifier.
	ErrTenantNotFound = errors.New("tenant not found")

	// ErrTenantInactive is returned when the tenant exists but is deactivated.
	ErrTenantInactive = errors.New("tenant is inactive")

	// ErrNotAMember is returned when the caller holds no membership in the
	// selected tenant and is not a platform superuser.
	ErrNotAMember = errors.New("caller is not a member of this tenant")

	// ErrAmbiguousTenant is returned when the caller belongs to several
	// tenants and selected none explicitly.
	ErrAmbiguousTenant = errors.New("ambiguous tenant: explicit selection required")

	// ErrMembershipInactive is returned when the caller's membership in the
	// selected tenant is deactivated.
	ErrMembershipInactive = errors.New("membership is inactive")

	// ErrInvalidIdentifier is returned for malformed tenant identifiers.
	ErrInvalidIdentifier = errors.New("invalid tenant identifier")

	// ErrNoTenantInContext is returned when a tenant-required code path runs
	// without a resolved tenant context.
	ErrNoTenantInContext = errors.New("no tenant in context")

	// ErrDuplicateTenant is returned when a slug or domain is already taken.
	ErrDuplicateTenant = errors.New("tenant slug or domain already taken")
)

// Stable error codes for the transport boundary. Every rejected resolution
// maps to an access-denied class response carrying one of these.
const (
	CodeTenantNotFound     = "tenant_not_found"
	CodeTenantInactive     = "tenant_inactive"
	CodeNotAMember         = "not_a_member"
	CodeAmbiguousTenant    = "ambiguous_tenant"
	CodeMembershipInactive = "membership_inactive"
	CodeInvalidIdentifier  = "invalid_identifier"
	CodeTenantRequired     = "tenant_required"
)

// ErrorCode maps a resolution error to its stable string code. Unknown
// errors return an empty string.
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrTenantNotFound):
		return CodeTenantNotFound
	case errors.Is(err, ErrTenantInactive):
		return CodeTenantInactive
	case errors.Is(err, ErrNotAMember):
		return CodeNotAMember
	case errors.Is(err, ErrAmbiguousTenant):
		return CodeAmbiguousTenant
	case errors.Is(err, ErrMembershipInactive):
		return CodeMembershipInactive
	case errors.Is(err, ErrInvalidIdentifier):
		return CodeInvalidIdentifier
	case errors.Is(err, ErrNoTenantInContext):
		return CodeTenantRequired
	default:
		return ""
	}
}
