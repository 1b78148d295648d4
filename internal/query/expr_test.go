package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAndOrIdentities(t *testing.T) {
	assert.Equal(t, True(), And())
	assert.Equal(t, False(), Or())
}

func TestAndOrSingleChildPassthrough(t *testing.T) {
	e := Expr{SQL: `"name" = ?`, Args: []any{"foo"}}
	assert.Equal(t, e, And(e))
	assert.Equal(t, e, Or(e))
}

func TestAndJoinsAndParenthesizes(t *testing.T) {
	a := Expr{SQL: `"name" = ?`, Args: []any{"foo"}}
	b := Expr{SQL: `"id" = ?`, Args: []any{"bar"}}
	got := And(a, b)
	assert.Equal(t, `("name" = ?) AND ("id" = ?)`, got.SQL)
	assert.Equal(t, []any{"foo", "bar"}, got.Args)
}

func TestOrJoinsAndParenthesizes(t *testing.T) {
	a := Expr{SQL: `"name" = ?`, Args: []any{"foo"}}
	b := Expr{SQL: `"name" = ?`, Args: []any{"bar"}}
	c := Expr{SQL: `"name" = ?`, Args: []any{"baz"}}
	got := Or(a, b, c)
	assert.Equal(t, `("name" = ?) OR ("name" = ?) OR ("name" = ?)`, got.SQL)
	assert.Equal(t, []any{"foo", "bar", "baz"}, got.Args)
}

func TestRebindRewritesPositionalPlaceholders(t *testing.T) {
	e := Expr{SQL: `"name" = ? AND "id" = ?`, Args: []any{"foo", "bar"}}
	assert.Equal(t, `"name" = $1 AND "id" = $2`, Rebind(e))
}

func TestRebindNoPlaceholders(t *testing.T) {
	assert.Equal(t, "TRUE", Rebind(True()))
}
