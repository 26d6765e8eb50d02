package isolation

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Querier is the subset of pgx the scoped handle runs against. It is
// satisfied by *pgxpool.Pool, pgx.Conn, and pgx.Tx.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Scoped is a query that already carries its tenant constraint (or the
// audited unrestricted passthrough). It can only be produced by an Enforcer;
// holding one is the capability to touch tenant-bearing storage.
type Scoped struct {
	sql          string
	args         []any
	unrestricted bool
}

// SQL returns the final statement with numbered placeholders.
func (s Scoped) SQL() string {
	return s.sql
}

// Args returns the bound arguments, tenant constraint included.
func (s Scoped) Args() []any {
	return s.args
}

// Unrestricted reports whether the query runs without a tenant constraint.
func (s Scoped) Unrestricted() bool {
	return s.unrestricted
}

// Query runs the statement and returns the rows.
func (s Scoped) Query(ctx context.Context, db Querier) (pgx.Rows, error) {
	return db.Query(ctx, s.sql, s.args...)
}

// QueryRow runs the statement expecting at most one row.
func (s Scoped) QueryRow(ctx context.Context, db Querier) pgx.Row {
	return db.QueryRow(ctx, s.sql, s.args...)
}

// Exec runs the statement and returns its command tag.
func (s Scoped) Exec(ctx context.Context, db Querier) (pgconn.CommandTag, error) {
	return db.Exec(ctx, s.sql, s.args...)
}
