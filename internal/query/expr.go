package query

import (
	"strconv"
	"strings"
)

// Expr is a rendered boolean predicate fragment. SQL uses '?' as a
// positional placeholder (matching the convention used by the
// sqlcache-style query builders in the retrieved pack); Args holds the
// bind values in order. Store callers call Rebind before handing the
// final WHERE clause to lib/pq, which expects $1, $2, ... placeholders.
type Expr struct {
	SQL  string
	Args []any
}

// True is the tautological predicate, the identity for And.
func True() Expr { return Expr{SQL: "TRUE"} }

// False is the predicate matching nothing, the identity for Or.
func False() Expr { return Expr{SQL: "FALSE"} }

// And joins exprs with AND, parenthesizing each multi-term child so
// precedence survives composition.
func And(exprs ...Expr) Expr { return join(exprs, " AND ", True()) }

// Or joins exprs with OR, parenthesizing each multi-term child.
func Or(exprs ...Expr) Expr { return join(exprs, " OR ", False()) }

func join(exprs []Expr, sep string, identity Expr) Expr {
	switch len(exprs) {
	case 0:
		return identity
	case 1:
		return exprs[0]
	}
	var sql strings.Builder
	var args []any
	for i, e := range exprs {
		if i > 0 {
			sql.WriteString(sep)
		}
		sql.WriteByte('(')
		sql.WriteString(e.SQL)
		sql.WriteByte(')')
		args = append(args, e.Args...)
	}
	return Expr{SQL: sql.String(), Args: args}
}

// Rebind rewrites every '?' placeholder in e.SQL to a PostgreSQL
// $1, $2, ... positional parameter, as required by lib/pq.
func Rebind(e Expr) string {
	var b strings.Builder
	b.Grow(len(e.SQL) + len(e.Args)*2)
	n := 0
	for i := 0; i < len(e.SQL); i++ {
		if e.SQL[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(e.SQL[i])
	}
	return b.String()
}
