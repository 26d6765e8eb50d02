package isolation

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// identifierPattern accepts plain SQL identifiers, optionally qualified.
var identifierPattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*(\.[a-zA-Z_][a-zA-Z0-9_]*)?$`)

func validIdentifier(name string) bool {
	return identifierPattern.MatchString(name)
}

// Query describes a read or the where-part of a mutation over one
// tenant-bearing table. Conditions use ? placeholders; the enforcer numbers
// them together with the tenant constraint when it builds the final SQL.
// Query values are immutable; each method returns a derived copy.
type Query struct {
	table   string
	columns []string
	conds   []condition
	orderBy string
	limit   int
}

type condition struct {
	expr string
	args []any
}

// From starts a query over the table selecting the given columns.
// Selecting no columns means "*".
func From(table string, columns ...string) Query {
	return Query{table: table, columns: columns}
}

// Where appends a condition; conditions are combined with AND.
// Use ? for argument placeholders.
func (q Query) Where(expr string, args ...any) Query {
	conds := make([]condition, len(q.conds), len(q.conds)+1)
	copy(conds, q.conds)
	q.conds = append(conds, condition{expr: expr, args: args})
	return q
}

// OrderBy sets the ordering expression.
func (q Query) OrderBy(expr string) Query {
	q.orderBy = expr
	return q
}

// Limit caps the number of returned rows. Non-positive means no limit.
func (q Query) Limit(n int) Query {
	q.limit = n
	return q
}

func (q Query) validate() error {
	if q.table == "" {
		return ErrEmptyQuery
	}
	if !validIdentifier(q.table) {
		return fmt.Errorf("%w: table %q", ErrInvalidIdentifier, q.table)
	}
	for _, col := range q.columns {
		if !validIdentifier(col) {
			return fmt.Errorf("%w: column %q", ErrInvalidIdentifier, col)
		}
	}
	return nil
}

// Set holds column assignments for updates and inserts. Columns are emitted
// in sorted order so generated SQL is deterministic.
type Set map[string]any

func (s Set) sortedColumns() []string {
	cols := make([]string, 0, len(s))
	for col := range s {
		cols = append(cols, col)
	}
	sort.Strings(cols)
	return cols
}

func (s Set) validate() error {
	if len(s) == 0 {
		return ErrEmptyQuery
	}
	for col := range s {
		if !validIdentifier(col) {
			return fmt.Errorf("%w: column %q", ErrInvalidIdentifier, col)
		}
	}
	return nil
}

// sqlBuilder accumulates SQL text and numbered arguments.
type sqlBuilder struct {
	sb   strings.Builder
	args []any
}

func (b *sqlBuilder) write(s string) {
	b.sb.WriteString(s)
}

// writeExpr copies expr, replacing each ? with the next $n placeholder.
func (b *sqlBuilder) writeExpr(expr string, args []any) {
	argIdx := 0
	for _, r := range expr {
		if r == '?' && argIdx < len(args) {
			b.args = append(b.args, args[argIdx])
			argIdx++
			fmt.Fprintf(&b.sb, "$%d", len(b.args))
			continue
		}
		b.sb.WriteRune(r)
	}
}

// writeArg appends the value and writes its $n placeholder.
func (b *sqlBuilder) writeArg(v any) {
	b.args = append(b.args, v)
	fmt.Fprintf(&b.sb, "$%d", len(b.args))
}

func (b *sqlBuilder) writeConds(conds []condition, extra func(*sqlBuilder)) {
	wrote := false
	for _, c := range conds {
		if wrote {
			b.write(" AND ")
		} else {
			b.write(" WHERE ")
			wrote = true
		}
		b.write("(")
		b.writeExpr(c.expr, c.args)
		b.write(")")
	}
	if extra != nil {
		if wrote {
			b.write(" AND ")
		} else {
			b.write(" WHERE ")
		}
		extra(b)
	}
}
