// Package query implements the filter DSL described in spec.md §4
// (Value Parsers, Column Registry, DSL Parser, Filter Builder,
// Full-Text Expander, Limiter/Pagination): a small grammar of
// {field}{op}{value} constraints and bare full-text terms, AND-joined
// at the top level via '&', with '|' only ever meaning "one of these
// values" inside a single constraint or full-text atom.
package query

import (
	"github.com/trustify-project/catalogd/internal/query/token"
)

// Parse turns a raw DSL string into a query tree. Parse performs only
// grammar-level validation (escape sequences); field/operator/value
// errors are raised later by Build, once a Columns registry is
// available to check them against (spec.md §4.B/§4.D).
func Parse(raw string) (Node, error) {
	if err := validateEscapes(raw); err != nil {
		return nil, err
	}
	if raw == "" {
		return &All{}, nil
	}

	var offset int
	var children []Node
	for _, atom := range splitUnescaped(raw, '&') {
		children = append(children, parseAtom(atom, token.Pos(offset)))
		offset += len(atom) + 1 // +1 for the '&' consumed between atoms
	}
	return &All{Children: children}, nil
}

// parseAtom parses a single '&'-delimited atom into a Constraint (if a
// field and recognized operator are present) or a FullText leaf.
func parseAtom(atom string, pos token.Pos) Node {
	i := 0
	for i < len(atom) && isIdentByte(atom[i]) {
		i++
	}

	fieldEnd := i
	subKey := ""
	if i < len(atom) && atom[i] == ':' {
		j := i + 1
		for j < len(atom) && isIdentByte(atom[j]) {
			j++
		}
		if j > i+1 {
			subKey = atom[i+1 : j]
			fieldEnd = j
		}
	}

	if fieldEnd > 0 {
		if op, width, ok := matchOperator(atom[fieldEnd:]); ok {
			rawValues := splitUnescaped(atom[fieldEnd+width:], '|')
			values := make([]string, len(rawValues))
			for k, v := range rawValues {
				values[k] = unescape(v)
			}
			return &Constraint{
				Field:  atom[:i],
				SubKey: subKey,
				Op:     op,
				Values: values,
				Pos:    pos,
			}
		}
	}

	rawValues := splitUnescaped(atom, '|')
	values := make([]string, len(rawValues))
	for k, v := range rawValues {
		values[k] = unescape(v)
	}
	return &FullText{Values: values, Pos: pos}
}

// matchOperator reports the longest recognized operator token.Operators
// entry matching a literal prefix of s, along with its byte width.
func matchOperator(s string) (token.Operator, int, bool) {
	for _, m := range token.Operators {
		if len(s) >= len(m.Text) && s[:len(m.Text)] == m.Text {
			return m.Op, len(m.Text), true
		}
	}
	return 0, 0, false
}
