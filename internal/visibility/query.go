// Package visibility decides what each principal can see and touch.
// It produces SQL predicate fragments for list endpoints and pure
// yes/no checks for single-document access, so every repository query
// is scoped the same way.
package visibility

import (
	"strconv"
	"strings"
)

// Query accumulates WHERE conditions with positional placeholders.
// Conditions are written with `?` and rewritten to $1..$n on build,
// so callers compose predicates without tracking argument offsets.
type Query struct {
	conds []string
	args  []any
}

func NewQuery() *Query { return &Query{} }

func (q *Query) Where(expr string, args ...any) *Query {
	q.conds = append(q.conds, expr)
	q.args = append(q.args, args...)
	return q
}

// Deny makes the query match nothing. Out-of-scope listings return
// empty results rather than errors.
func (q *Query) Deny() *Query {
	q.conds = append(q.conds, "FALSE")
	return q
}

// Clause renders " WHERE ..." with placeholders numbered from start,
// or "" when no conditions were added. start is 1 unless the caller
// already bound arguments before the predicate.
func (q *Query) Clause(start int) string {
	if len(q.conds) == 0 {
		return ""
	}
	joined := strings.Join(q.conds, " AND ")
	var b strings.Builder
	n := start
	for _, r := range joined {
		if r == '?' {
			b.WriteString("$")
			b.WriteString(strconv.Itoa(n))
			n++
			continue
		}
		b.WriteRune(r)
	}
	return " WHERE " + b.String()
}

func (q *Query) Args() []any { return q.args }
