// Package isolation is the mandatory gate between business code and
// tenant-bearing storage. It is the only way to obtain a runnable query over
// tenant data: the Scoped handle has unexported fields and no constructor
// outside this package, so an unscoped query is a compile-time impossibility
// rather than a filter someone forgot to apply.
//
// The enforcer rewrites every query with an equality constraint on the
// tenant column of the resolved context. Three outcomes exist:
//
//   - scoped context: the constraint is appended, the query can only touch
//     the context's tenant rows;
//   - unrestricted superuser context: the query passes through unchanged
//     and sees the union of all tenants' rows;
//   - no context / no tenant: the call fails closed with ErrNoTenant. There
//     is no outcome that silently means "all rows".
//
// Mutations additionally require a writable role; readonly members cannot
// update, delete, or insert through the gate no matter which endpoint calls
// it. Inserts always stamp the tenant column from the context and reject
// caller-supplied tenant values.
//
//	e := isolation.New()
//	scoped, err := e.Select(tctx, isolation.From("orders", "id", "total").
//		Where("status = ?", "open"))
//	if err != nil {
//		return err // fail closed
//	}
//	rows, err := scoped.Query(ctx, pool)
//
// Rows with a NULL tenant reference belong to no tenant: the equality
// constraint never matches them, and Visible reports them as inaccessible
// from any scoped context.
package isolation
