package query

import (
	"fmt"

	"github.com/trustify-project/catalogd/internal/query/token"
)

// Build recursively translates a parsed query tree into a typed
// predicate against cols (spec.md §4.D). Unknown fields, unsupported
// operators, and value-parse failures surface as errors annotated with
// the offending node's position.
func Build(n Node, cols *Columns) (Expr, error) {
	switch v := n.(type) {
	case *All:
		return buildChildren(v.Children, cols, And, True())
	case *Any:
		return buildChildren(v.Children, cols, Or, False())
	case *Constraint:
		return buildConstraint(v, cols)
	case *FullText:
		return buildFullText(v, cols), nil
	default:
		return Expr{}, fmt.Errorf("unsupported node type %T", n)
	}
}

func buildChildren(children []Node, cols *Columns, combine func(...Expr) Expr, identity Expr) (Expr, error) {
	if len(children) == 0 {
		return identity, nil
	}
	exprs := make([]Expr, 0, len(children))
	for _, child := range children {
		e, err := Build(child, cols)
		if err != nil {
			return Expr{}, err
		}
		exprs = append(exprs, e)
	}
	return combine(exprs...), nil
}

func buildConstraint(c *Constraint, cols *Columns) (Expr, error) {
	exprs := make([]Expr, 0, len(c.Values))
	for _, v := range c.Values {
		if sub, ok := cols.TranslateField(c.Field, c.Op, v); ok {
			tree, err := Parse(sub)
			if err != nil {
				return Expr{}, wrapPos(c.Pos, err)
			}
			e, err := Build(tree, cols)
			if err != nil {
				return Expr{}, wrapPos(c.Pos, err)
			}
			exprs = append(exprs, e)
			continue
		}

		e, err := cols.Expression(c.Field, c.SubKey, c.Op, v)
		if err != nil {
			return Expr{}, wrapPos(c.Pos, err)
		}
		exprs = append(exprs, e)
	}

	// De Morgan: "not any of" means every value must individually fail
	// to match, so NotEqual/NotLike combine with AND; every other
	// operator means "matches any of", so it combines with OR.
	if c.Op == token.NotEqual || c.Op == token.NotLike {
		return And(exprs...), nil
	}
	return Or(exprs...), nil
}

func buildFullText(f *FullText, cols *Columns) Expr {
	perValue := make([]Expr, 0, len(f.Values))
	for _, v := range f.Values {
		perValue = append(perValue, Or(cols.Strings(v)...))
	}
	return Or(perValue...)
}

func wrapPos(pos token.Pos, err error) error {
	if _, ok := err.(*token.Error); ok {
		return err
	}
	return &token.Error{Pos: pos, Message: err.Error()}
}
