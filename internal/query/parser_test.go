package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trustify-project/catalogd/internal/query/token"
)

func TestParseEmptyYieldsEmptyAll(t *testing.T) {
	n, err := Parse("")
	require.NoError(t, err)
	all, ok := n.(*All)
	require.True(t, ok)
	assert.Empty(t, all.Children)
}

func TestParseSingleConstraint(t *testing.T) {
	n, err := Parse("location=foo")
	require.NoError(t, err)
	all := n.(*All)
	require.Len(t, all.Children, 1)
	c := all.Children[0].(*Constraint)
	assert.Equal(t, "location", c.Field)
	assert.Equal(t, token.Equal, c.Op)
	assert.Equal(t, []string{"foo"}, c.Values)
}

func TestParseJSONSubPath(t *testing.T) {
	n, err := Parse("labels:team=catalog")
	require.NoError(t, err)
	c := n.(*All).Children[0].(*Constraint)
	assert.Equal(t, "labels", c.Field)
	assert.Equal(t, "team", c.SubKey)
	assert.Equal(t, token.Equal, c.Op)
	assert.Equal(t, []string{"catalog"}, c.Values)
}

func TestParseValueListSplitsOnPipe(t *testing.T) {
	n, err := Parse("location=a|b|c")
	require.NoError(t, err)
	c := n.(*All).Children[0].(*Constraint)
	assert.Equal(t, []string{"a", "b", "c"}, c.Values)
}

func TestParseConjunctionSplitsOnAmpersand(t *testing.T) {
	n, err := Parse("location=foo&published>yesterday")
	require.NoError(t, err)
	all := n.(*All)
	require.Len(t, all.Children, 2)
	assert.Equal(t, "location", all.Children[0].(*Constraint).Field)
	assert.Equal(t, "published", all.Children[1].(*Constraint).Field)
}

func TestParseBareWordIsFullText(t *testing.T) {
	n, err := Parse("foo")
	require.NoError(t, err)
	ft := n.(*All).Children[0].(*FullText)
	assert.Equal(t, []string{"foo"}, ft.Values)
}

func TestParseFullTextValueList(t *testing.T) {
	n, err := Parse("foo|bar")
	require.NoError(t, err)
	ft := n.(*All).Children[0].(*FullText)
	assert.Equal(t, []string{"foo", "bar"}, ft.Values)
}

func TestParseEscapedOperatorStaysLiteral(t *testing.T) {
	// location~foo\~bar: value parameter is literally "foo~bar".
	n, err := Parse(`location~foo\~bar`)
	require.NoError(t, err)
	c := n.(*All).Children[0].(*Constraint)
	assert.Equal(t, token.Like, c.Op)
	assert.Equal(t, []string{"foo~bar"}, c.Values)
}

func TestParseEscapedPipeStaysInSingleValue(t *testing.T) {
	n, err := Parse(`location=a\|b`)
	require.NoError(t, err)
	c := n.(*All).Children[0].(*Constraint)
	assert.Equal(t, []string{"a|b"}, c.Values)
}

func TestParseEscapedAmpersandStaysInSingleAtom(t *testing.T) {
	n, err := Parse(`location=a\&b`)
	require.NoError(t, err)
	all := n.(*All)
	require.Len(t, all.Children, 1)
	c := all.Children[0].(*Constraint)
	assert.Equal(t, []string{"a&b"}, c.Values)
}

func TestParseInvalidEscapeIsError(t *testing.T) {
	_, err := Parse(`location\xfoo`)
	require.Error(t, err)
	var tokErr *token.Error
	require.ErrorAs(t, err, &tokErr)
}

func TestParseEscapeAtEndOfInputIsError(t *testing.T) {
	_, err := Parse(`location=foo\`)
	require.Error(t, err)
}

func TestParseAllOperators(t *testing.T) {
	cases := map[string]token.Operator{
		"f=v":  token.Equal,
		"f!=v": token.NotEqual,
		"f~v":  token.Like,
		"f!~v": token.NotLike,
		"f<v":  token.LessThan,
		"f<=v": token.LessThanOrEqual,
		"f>v":  token.GreaterThan,
		"f>=v": token.GreaterThanOrEqual,
	}
	for raw, want := range cases {
		n, err := Parse(raw)
		require.NoError(t, err, raw)
		c := n.(*All).Children[0].(*Constraint)
		assert.Equal(t, want, c.Op, raw)
	}
}

func TestParseNotEqualBeforeNotLikeDisambiguation(t *testing.T) {
	// Ensure "!=" isn't mistaken for "!~"'s prefix or vice versa.
	n, err := Parse("f!=a")
	require.NoError(t, err)
	assert.Equal(t, token.NotEqual, n.(*All).Children[0].(*Constraint).Op)

	n, err = Parse("f!~a")
	require.NoError(t, err)
	assert.Equal(t, token.NotLike, n.(*All).Children[0].(*Constraint).Op)
}
