package query

import "github.com/trustify-project/catalogd/internal/query/token"

// Node is a node in a parsed query tree (see package doc). The parser
// only ever produces an *All at the root with Constraint/FullText
// leaves, but All/Any are both modeled so the filter builder can be
// exercised independently of the parser (e.g. from tests, or from a
// future syntax that nests disjunctions explicitly).
type Node interface {
	node()
}

// All is a conjunction of children.
type All struct {
	Children []Node
}

func (*All) node() {}

// Any is a disjunction of children.
type Any struct {
	Children []Node
}

func (*Any) node() {}

// Constraint is a leaf of the form {field}{op}{value}('|'{value})*.
type Constraint struct {
	Field  string
	SubKey string // JSON sub-path ("field:subkey"), empty if not addressed
	Op     token.Operator
	Values []string
	Pos    token.Pos
}

func (*Constraint) node() {}

// FullText is a leaf for a bare term with no field/operator, expanded
// by the registry across every string-like column.
type FullText struct {
	Values []string
	Pos    token.Pos
}

func (*FullText) node() {}
