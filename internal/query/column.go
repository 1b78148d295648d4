package query

import (
	"fmt"
	"time"

	"github.com/trustify-project/catalogd/internal/query/token"
)

// ColumnKind identifies how a Column's DSL values are parsed and how
// its SQL predicates are shaped (spec.md §4.B).
type ColumnKind int

const (
	String ColumnKind = iota
	Enum
	Integer
	Float
	Timestamp
	Date
	UUID
	Boolean
	JSON
	ArrayOfString
	Computed
)

// TranslateFunc rewrites a {field, op, value} triple into a DSL
// sub-query string to be reparsed and built recursively, for computed
// or aliased fields that desugar into multiple constraints.
type TranslateFunc func(field string, op token.Operator, value string) (string, bool)

// Column describes one addressable field in a Column Registry.
type Column struct {
	// Name is the DSL-visible identifier.
	Name string
	Kind ColumnKind
	// SQL is the base SQL expression this column addresses, already
	// quoted/qualified (e.g. `"sbom_group"."name"`, or an arbitrary
	// computed expression for Kind == Computed).
	SQL string
	// Variants lists the valid case-insensitive values for Kind == Enum.
	Variants []string
	// EnumType is the Postgres type to CAST both sides to, so ordering
	// and equality use the index rather than falling back to lexical
	// text comparison (spec.md §9).
	EnumType string
	// fullText overrides whether this column participates in full-text
	// expansion (query.Columns.Strings). When nil, String and
	// ArrayOfString kinds participate; NoFullText sets it to false.
	fullText *bool
	// JSONFullTextPaths lists the JSON sub-paths (Kind == JSON) that
	// contribute scalar text to full-text expansion.
	JSONFullTextPaths []string
	// Translate optionally rewrites a constraint into a sub-query.
	Translate TranslateFunc
}

func (c Column) includeInFullText() bool {
	if c.fullText != nil {
		return *c.fullText
	}
	return c.Kind == String || c.Kind == ArrayOfString
}

// NoFullText returns a copy of c excluded from full-text expansion.
func (c Column) NoFullText() Column {
	f := false
	c.fullText = &f
	return c
}

// Columns is an ordered, named registry of Column definitions for one
// entity. Order is preserved for deterministic, testable full-text SQL
// (spec.md §4.E).
type Columns struct {
	order  []Column
	byName map[string]int

	// Clock resolves human-time phrases (spec.md §4.A) against the
	// server's local wall clock. Tests override it to freeze time.
	Clock func() time.Time
}

// NewColumns builds a registry from an ordered list of columns.
func NewColumns(cols ...Column) *Columns {
	c := &Columns{order: cols, byName: make(map[string]int, len(cols)), Clock: time.Now}
	for i, col := range cols {
		c.byName[col.Name] = i
	}
	return c
}

func (c *Columns) lookup(name string) (Column, bool) {
	i, ok := c.byName[name]
	if !ok {
		return Column{}, false
	}
	return c.order[i], true
}

// TranslateField implements the Registry.translate hook (spec.md §4.B):
// for computed/aliased fields it returns a DSL sub-query to reparse.
func (c *Columns) TranslateField(field string, op token.Operator, value string) (string, bool) {
	col, ok := c.lookup(field)
	if !ok || col.Translate == nil {
		return "", false
	}
	return col.Translate(field, op, value)
}

// Expression builds a typed predicate for field (optionally addressing
// a JSON sub-path via subKey) op value. Errors are UnknownField,
// UnsupportedOperator, or ValueParse as described in spec.md §4.B.
func (c *Columns) Expression(field, subKey string, op token.Operator, raw string) (Expr, error) {
	col, ok := c.lookup(field)
	if !ok {
		return Expr{}, fmt.Errorf("unknown field %q", field)
	}
	return buildColumnExpr(col, subKey, op, raw, c.Clock)
}

// Strings yields a case-insensitive substring predicate for every
// column contributing to full-text search, in declaration order
// (spec.md §4.B/§4.E).
func (c *Columns) Strings(term string) []Expr {
	escaped := escapeLike(term)
	var exprs []Expr
	for _, col := range c.order {
		switch {
		case col.Kind == JSON && len(col.JSONFullTextPaths) > 0:
			for _, path := range col.JSONFullTextPaths {
				exprs = append(exprs, Expr{
					SQL:  fmt.Sprintf("(%s ->> '%s') ILIKE ?", col.SQL, path),
					Args: []any{"%" + escaped + "%"},
				})
			}
		case col.Kind == ArrayOfString && col.includeInFullText():
			exprs = append(exprs, Expr{
				SQL:  fmt.Sprintf("array_to_string(%s, '|') ILIKE ?", col.SQL),
				Args: []any{"%" + escaped + "%"},
			})
		case col.includeInFullText():
			exprs = append(exprs, Expr{
				SQL:  fmt.Sprintf("%s ILIKE ?", col.SQL),
				Args: []any{"%" + escaped + "%"},
			})
		}
	}
	return exprs
}
