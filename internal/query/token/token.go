// Package token defines source positions and comparison operators for
// the filter DSL (see the package doc of query).
package token

import "fmt"

// Pos is a byte offset into the original DSL string, used to annotate
// parse errors.
type Pos int

// Operator is one of the DSL's comparison operators.
type Operator int

const (
	Equal Operator = iota
	NotEqual
	Like
	NotLike
	LessThan
	LessThanOrEqual
	GreaterThan
	GreaterThanOrEqual
)

func (o Operator) String() string {
	switch o {
	case Equal:
		return "="
	case NotEqual:
		return "!="
	case Like:
		return "~"
	case NotLike:
		return "!~"
	case LessThan:
		return "<"
	case LessThanOrEqual:
		return "<="
	case GreaterThan:
		return ">"
	case GreaterThanOrEqual:
		return ">="
	default:
		return "?"
	}
}

// OpMatch pairs an operator's literal text with its Operator value.
type OpMatch struct {
	Text string
	Op   Operator
}

// Operators lists the recognized operator texts, longest match first so
// "!=" is tried before "!" could be mistaken for part of "!~", and
// two-character operators are tried before their one-character prefixes.
var Operators = []OpMatch{
	{"!=", NotEqual},
	{"!~", NotLike},
	{">=", GreaterThanOrEqual},
	{"<=", LessThanOrEqual},
	{"=", Equal},
	{"~", Like},
	{"<", LessThan},
	{">", GreaterThan},
}

// Error represents a parse error with a position in the original input.
type Error struct {
	Pos     Pos
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("position %d: %s", e.Pos, e.Message)
}
