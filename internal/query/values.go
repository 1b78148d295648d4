package query

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/trustify-project/catalogd/internal/query/token"
)

// isNullSentinel reports whether raw is the NULL sentinel (spec.md
// §4.A): the literal "null" in any case. This check happens before any
// type-specific parsing so it can override casts.
func isNullSentinel(raw string) bool {
	return strings.EqualFold(raw, "null")
}

// EscapeDSLValue backslash-escapes every DSL delimiter in raw (spec.md
// §4.C's escapable set) so a Column.Translate hook can splice an
// arbitrary user-supplied value into the sub-query string it returns
// without the value being reparsed as structure.
func EscapeDSLValue(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for i := 0; i < len(raw); i++ {
		if strings.IndexByte(escapable, raw[i]) >= 0 {
			b.WriteByte('\\')
		}
		b.WriteByte(raw[i])
	}
	return b.String()
}

// escapeLike escapes '%', '_' and the escape character itself so a raw
// substring can be embedded between '%' wildcards in an ILIKE pattern.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "%", `\%`)
	s = strings.ReplaceAll(s, "_", `\_`)
	return s
}

func opSymbol(op token.Operator) (string, bool) {
	switch op {
	case token.Equal:
		return "=", true
	case token.NotEqual:
		return "<>", true
	case token.LessThan:
		return "<", true
	case token.LessThanOrEqual:
		return "<=", true
	case token.GreaterThan:
		return ">", true
	case token.GreaterThanOrEqual:
		return ">=", true
	default:
		return "", false
	}
}

func buildColumnExpr(col Column, subKey string, op token.Operator, raw string, clock func() time.Time) (Expr, error) {
	target := col.SQL
	if subKey != "" {
		if col.Kind != JSON {
			return Expr{}, fmt.Errorf("field %q does not support a JSON sub-path", col.Name)
		}
		target = fmt.Sprintf("(%s ->> '%s')", col.SQL, subKey)
	}

	if isNullSentinel(raw) {
		switch op {
		case token.Equal:
			return Expr{SQL: target + " IS NULL"}, nil
		case token.NotEqual:
			return Expr{SQL: target + " IS NOT NULL"}, nil
		default:
			return Expr{}, fmt.Errorf("operator %s does not support the null sentinel", op)
		}
	}

	switch col.Kind {
	case Enum:
		return buildEnumExpr(col, op, raw)
	case Integer:
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return Expr{}, fmt.Errorf("invalid integer %q: %w", raw, err)
		}
		sym, ok := opSymbol(op)
		if !ok {
			return Expr{}, fmt.Errorf("operator %s is not supported for integer fields", op)
		}
		return Expr{SQL: target + " " + sym + " ?", Args: []any{n}}, nil
	case Float:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return Expr{}, fmt.Errorf("invalid float %q: %w", raw, err)
		}
		sym, ok := opSymbol(op)
		if !ok {
			return Expr{}, fmt.Errorf("operator %s is not supported for float fields", op)
		}
		return Expr{SQL: target + " " + sym + " ?", Args: []any{f}}, nil
	case Boolean:
		var b bool
		switch strings.ToLower(raw) {
		case "true":
			b = true
		case "false":
			b = false
		default:
			return Expr{}, fmt.Errorf("invalid boolean %q", raw)
		}
		sym, ok := opSymbol(op)
		if !ok || (op != token.Equal && op != token.NotEqual) {
			return Expr{}, fmt.Errorf("operator %s is not supported for boolean fields", op)
		}
		return Expr{SQL: target + " " + sym + " ?", Args: []any{b}}, nil
	case UUID:
		id, err := uuid.Parse(raw)
		if err != nil {
			return Expr{}, fmt.Errorf("invalid uuid %q: %w", raw, err)
		}
		sym, ok := opSymbol(op)
		if !ok {
			return Expr{}, fmt.Errorf("operator %s is not supported for uuid fields", op)
		}
		return Expr{SQL: target + " " + sym + " ?", Args: []any{id.String()}}, nil
	case Timestamp, Date:
		return buildTimeExpr(target, op, raw, col.Kind == Date, clock)
	case ArrayOfString:
		return buildArrayExpr(col, target, op, raw)
	default: // String, JSON (scalar), Computed
		return buildTextExpr(target, op, raw)
	}
}

func buildEnumExpr(col Column, op token.Operator, raw string) (Expr, error) {
	var canonical string
	for _, v := range col.Variants {
		if strings.EqualFold(v, raw) {
			canonical = v
			break
		}
	}
	if canonical == "" {
		return Expr{}, fmt.Errorf("invalid value %q for enum field %q", raw, col.Name)
	}
	sym, ok := opSymbol(op)
	if !ok {
		return Expr{}, fmt.Errorf("operator %s is not supported for enum fields", op)
	}
	cast := fmt.Sprintf("(CAST(? AS %s))", col.EnumType)
	return Expr{SQL: col.SQL + " " + sym + " " + cast, Args: []any{canonical}}, nil
}

func buildTextExpr(target string, op token.Operator, raw string) (Expr, error) {
	switch op {
	case token.Like:
		return Expr{SQL: target + " ILIKE ?", Args: []any{"%" + escapeLike(raw) + "%"}}, nil
	case token.NotLike:
		return Expr{SQL: target + " NOT ILIKE ?", Args: []any{"%" + escapeLike(raw) + "%"}}, nil
	default:
		sym, ok := opSymbol(op)
		if !ok {
			return Expr{}, fmt.Errorf("operator %s is not supported", op)
		}
		return Expr{SQL: target + " " + sym + " ?", Args: []any{raw}}, nil
	}
}

func buildArrayExpr(col Column, target string, op token.Operator, raw string) (Expr, error) {
	switch op {
	case token.Equal:
		// membership: spec.md §4.D, `value = ANY(column)`.
		return Expr{SQL: "? = ANY(" + target + ")", Args: []any{raw}}, nil
	case token.NotEqual:
		// Open question in spec.md §9: != semantics for array columns
		// aren't specified beyond "inconsistent with equality"; we
		// pick negated membership for symmetry with Equal.
		return Expr{SQL: "NOT (? = ANY(" + target + "))", Args: []any{raw}}, nil
	case token.Like:
		joined := fmt.Sprintf("array_to_string(%s, '|')", target)
		return Expr{SQL: joined + " ILIKE ?", Args: []any{"%" + escapeLike(raw) + "%"}}, nil
	case token.NotLike:
		joined := fmt.Sprintf("array_to_string(%s, '|')", target)
		return Expr{SQL: joined + " NOT ILIKE ?", Args: []any{"%" + escapeLike(raw) + "%"}}, nil
	default:
		return Expr{}, fmt.Errorf("operator %s is not supported for array fields", op)
	}
}
