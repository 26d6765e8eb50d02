package isolation

import "errors"

var (
	// ErrNoTenant is returned when a tenant-required query is attempted
	// without a resolved tenant. The gate fails closed; it never widens a
	// missing tenant into an unfiltered query.
	ErrNoTenant = errors.New("no tenant to scope query to")

	// ErrReadOnlyRole is returned when a readonly member attempts a mutation.
	ErrReadOnlyRole = errors.New("role does not permit mutations")

	// ErrTenantColumnManaged is returned when an insert supplies a value for
	// the tenant column; the gate stamps it from the context exclusively.
	ErrTenantColumnManaged = errors.New("tenant column is managed by the enforcer")

	// ErrInvalidIdentifier is returned for unsafe table or column names.
	ErrInvalidIdentifier = errors.New("invalid sql identifier")

	// ErrEmptyQuery is returned when a query names no table or, for inserts,
	// no values.
	ErrEmptyQuery = errors.New("empty query")
)
