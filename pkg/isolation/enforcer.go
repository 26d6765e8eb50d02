package isolation

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/dmitrymomot/tenantkit/pkg/tenant"
)

// DefaultTenantColumn is the tenant reference column business tables carry.
const DefaultTenantColumn = "tenant_id"

// Enforcer is the sole factory of runnable queries over tenant-bearing
// tables. It is stateless and safe for concurrent use; one instance serves
// the whole process.
type Enforcer struct {
	column string
}

// Option configures the Enforcer.
type Option func(*Enforcer)

// WithTenantColumn overrides the tenant reference column name.
// Panics on unsafe identifiers to fail at startup, not at query time.
func WithTenantColumn(name string) Option {
	if !validIdentifier(name) {
		panic(fmt.Sprintf("isolation: invalid tenant column %q", name))
	}
	return func(e *Enforcer) { e.column = name }
}

// New creates an enforcer scoping queries on the tenant column.
func New(opts ...Option) *Enforcer {
	e := &Enforcer{column: DefaultTenantColumn}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Select scopes a read. For a tenant context the tenant constraint is
// appended; for an unrestricted context the query passes through unchanged
// and returns the union of all tenants' rows; without a tenant the call
// fails closed.
func (e *Enforcer) Select(tctx *tenant.Context, q Query) (Scoped, error) {
	if err := q.validate(); err != nil {
		return Scoped{}, err
	}
	tenantID, unrestricted, err := e.scopeOf(tctx)
	if err != nil {
		return Scoped{}, err
	}

	var b sqlBuilder
	b.write("SELECT ")
	if len(q.columns) == 0 {
		b.write("*")
	} else {
		b.write(strings.Join(q.columns, ", "))
	}
	b.write(" FROM ")
	b.write(q.table)
	b.writeConds(q.conds, e.tenantCond(tenantID, unrestricted))
	if q.orderBy != "" {
		b.write(" ORDER BY ")
		b.write(q.orderBy)
	}
	if q.limit > 0 {
		b.write(" LIMIT ")
		b.write(strconv.Itoa(q.limit))
	}

	return Scoped{sql: b.sb.String(), args: b.args, unrestricted: unrestricted}, nil
}

// Update scopes a mutation setting the given columns on the query's table.
// The caller's role must be writable; the tenant column cannot be assigned.
func (e *Enforcer) Update(tctx *tenant.Context, q Query, set Set) (Scoped, error) {
	if err := q.validate(); err != nil {
		return Scoped{}, err
	}
	if err := set.validate(); err != nil {
		return Scoped{}, err
	}
	if _, ok := set[e.column]; ok {
		return Scoped{}, ErrTenantColumnManaged
	}
	tenantID, unrestricted, err := e.mutationScopeOf(tctx)
	if err != nil {
		return Scoped{}, err
	}

	var b sqlBuilder
	b.write("UPDATE ")
	b.write(q.table)
	b.write(" SET ")
	for i, col := range set.sortedColumns() {
		if i > 0 {
			b.write(", ")
		}
		b.write(col)
		b.write(" = ")
		b.writeArg(set[col])
	}
	b.writeConds(q.conds, e.tenantCond(tenantID, unrestricted))

	return Scoped{sql: b.sb.String(), args: b.args, unrestricted: unrestricted}, nil
}

// Delete scopes a row deletion on the query's table.
func (e *Enforcer) Delete(tctx *tenant.Context, q Query) (Scoped, error) {
	if err := q.validate(); err != nil {
		return Scoped{}, err
	}
	tenantID, unrestricted, err := e.mutationScopeOf(tctx)
	if err != nil {
		return Scoped{}, err
	}

	var b sqlBuilder
	b.write("DELETE FROM ")
	b.write(q.table)
	b.writeConds(q.conds, e.tenantCond(tenantID, unrestricted))

	return Scoped{sql: b.sb.String(), args: b.args, unrestricted: unrestricted}, nil
}

// Insert builds an insert with the tenant column stamped from the context.
// A caller-supplied tenant value is rejected, and an unrestricted context
// cannot insert: rows are always born into exactly one tenant.
func (e *Enforcer) Insert(tctx *tenant.Context, table string, values Set) (Scoped, error) {
	if !validIdentifier(table) {
		return Scoped{}, fmt.Errorf("%w: table %q", ErrInvalidIdentifier, table)
	}
	if err := values.validate(); err != nil {
		return Scoped{}, err
	}
	if _, ok := values[e.column]; ok {
		return Scoped{}, ErrTenantColumnManaged
	}

	if tctx == nil {
		return Scoped{}, ErrNoTenant
	}
	tenantID, ok := tctx.TenantID()
	if !ok {
		return Scoped{}, ErrNoTenant
	}
	if !tctx.Unrestricted() && !tctx.Role().Writable() {
		return Scoped{}, ErrReadOnlyRole
	}

	stamped := make(Set, len(values)+1)
	for col, v := range values {
		stamped[col] = v
	}
	stamped[e.column] = tenantID

	var b sqlBuilder
	b.write("INSERT INTO ")
	b.write(table)
	b.write(" (")
	cols := stamped.sortedColumns()
	b.write(strings.Join(cols, ", "))
	b.write(") VALUES (")
	for i, col := range cols {
		if i > 0 {
			b.write(", ")
		}
		b.writeArg(stamped[col])
	}
	b.write(")")

	return Scoped{sql: b.sb.String(), args: b.args}, nil
}

// scopeOf extracts the tenant scope of a context, failing closed when there
// is neither a tenant nor the unrestricted flag.
func (e *Enforcer) scopeOf(tctx *tenant.Context) (uuid.UUID, bool, error) {
	if tctx == nil {
		return uuid.UUID{}, false, ErrNoTenant
	}
	if tctx.Unrestricted() {
		return uuid.UUID{}, true, nil
	}
	id, ok := tctx.TenantID()
	if !ok {
		return uuid.UUID{}, false, ErrNoTenant
	}
	return id, false, nil
}

// mutationScopeOf additionally rejects readonly roles. The unrestricted
// context carries no role and is not subject to the role gate.
func (e *Enforcer) mutationScopeOf(tctx *tenant.Context) (uuid.UUID, bool, error) {
	id, unrestricted, err := e.scopeOf(tctx)
	if err != nil {
		return id, unrestricted, err
	}
	if !unrestricted && !tctx.Role().Writable() {
		return uuid.UUID{}, false, ErrReadOnlyRole
	}
	return id, unrestricted, nil
}

// tenantCond returns the extra WHERE writer for the tenant constraint, or
// nil for the unrestricted passthrough.
func (e *Enforcer) tenantCond(tenantID uuid.UUID, unrestricted bool) func(*sqlBuilder) {
	if unrestricted {
		return nil
	}
	return func(b *sqlBuilder) {
		b.write(e.column)
		b.write(" = ")
		b.writeArg(tenantID)
	}
}

// Visible is the in-process counterpart of the SQL constraint: it reports
// whether a row with the given tenant reference may be observed through the
// context. Rows with a NULL tenant reference belong to no tenant and are
// visible only to the unrestricted context.
func Visible(tctx *tenant.Context, rowTenant uuid.NullUUID) bool {
	if tctx == nil {
		return false
	}
	if tctx.Unrestricted() {
		return true
	}
	id, ok := tctx.TenantID()
	if !ok {
		return false
	}
	return rowTenant.Valid && rowTenant.UUID == id
}
