package query

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trustify-project/catalogd/internal/query/token"
)

// scenarioColumns backs the end-to-end scenarios in spec.md §8.
func scenarioColumns() *Columns {
	c := NewColumns(
		Column{Name: "location", Kind: String, SQL: `"location"`},
		Column{Name: "name", Kind: String, SQL: `"name"`},
		Column{Name: "published", Kind: Timestamp, SQL: `"published"`},
		Column{Name: "tags", Kind: ArrayOfString, SQL: `"tags"`},
	)
	c.Clock = func() time.Time { return refNow }
	return c
}

func buildDSL(t *testing.T, raw string) Expr {
	t.Helper()
	tree, err := Parse(raw)
	require.NoError(t, err)
	e, err := Build(tree, scenarioColumns())
	require.NoError(t, err)
	return e
}

// Scenario 1: foo=bar where foo is unknown => UnknownField.
func TestScenarioUnknownField(t *testing.T) {
	tree, err := Parse("foo=bar")
	require.NoError(t, err)
	_, err = Build(tree, scenarioColumns())
	require.Error(t, err)
}

// Scenario 2: location=foo => "location" = 'foo'.
func TestScenarioSimpleEquality(t *testing.T) {
	e := buildDSL(t, "location=foo")
	assert.Equal(t, `"location" = ?`, e.SQL)
	assert.Equal(t, []any{"foo"}, e.Args)
}

// Scenario 3: location~foo\~bar => substring match, literal "foo~bar".
func TestScenarioEscapedSubstringMatch(t *testing.T) {
	e := buildDSL(t, `location~foo\~bar`)
	assert.Equal(t, `"location" ILIKE ?`, e.SQL)
	assert.Equal(t, []any{"%foo~bar%"}, e.Args)
}

// Scenario 4: location=a|b|c => OR of equalities; != => AND of inequalities.
func TestScenarioValueListEqualityIsOr(t *testing.T) {
	e := buildDSL(t, "location=a|b|c")
	assert.Equal(t, `("location" = ?) OR ("location" = ?) OR ("location" = ?)`, e.SQL)
	assert.Equal(t, []any{"a", "b", "c"}, e.Args)
}

func TestScenarioValueListNotEqualIsAnd(t *testing.T) {
	e := buildDSL(t, "location!=a|b|c")
	assert.Equal(t, `("location" <> ?) AND ("location" <> ?) AND ("location" <> ?)`, e.SQL)
}

// Scenario 5: published=null => IS NULL; published!=NULL => IS NOT NULL.
func TestScenarioNullSentinel(t *testing.T) {
	e := buildDSL(t, "published=null")
	assert.Equal(t, `"published" IS NULL`, e.SQL)

	e = buildDSL(t, "published!=NULL")
	assert.Equal(t, `"published" IS NOT NULL`, e.SQL)
}

// Scenario 6: published>yesterday => "published" > <yesterday-as-date>.
func TestScenarioHumanTimeComparison(t *testing.T) {
	e := buildDSL(t, "published>yesterday")
	assert.Equal(t, `"published"::date > ?`, e.SQL)
	assert.Equal(t, []any{refNow.AddDate(0, 0, -1).Format("2006-01-02")}, e.Args)
}

// Scenario 7: full-text "foo" => OR across every string-like column in
// declaration order with ILIKE '%foo%'.
func TestScenarioFullTextExpansion(t *testing.T) {
	e := buildDSL(t, "foo")
	assert.Equal(t, `("location" ILIKE ?) OR ("name" ILIKE ?) OR (array_to_string("tags", '|') ILIKE ?)`, e.SQL)
	assert.Equal(t, []any{"%foo%", "%foo%", "%foo%"}, e.Args)
}

func TestFullTextParenthesizedAlongsideConjunction(t *testing.T) {
	e := buildDSL(t, "foo&location=bar")
	// FullText's internal OR is parenthesized before being AND-joined with
	// the sibling constraint (spec.md §4.D/§9).
	assert.Contains(t, e.SQL, "OR")
	assert.Contains(t, e.SQL, "AND")
	assert.True(t, e.SQL[0] == '(')
}

func TestEmptyQueryBuildsToTrue(t *testing.T) {
	e := buildDSL(t, "")
	assert.Equal(t, "TRUE", e.SQL)
}

func TestBuildArrayMembership(t *testing.T) {
	e := buildDSL(t, "tags=urgent")
	assert.Equal(t, `? = ANY("tags")`, e.SQL)
}

func TestBuildRejectsUnsupportedOperatorForBoolean(t *testing.T) {
	cols := NewColumns(Column{Name: "active", Kind: Boolean, SQL: `"active"`})
	tree, err := Parse("active<true")
	require.NoError(t, err)
	_, err = Build(tree, cols)
	require.Error(t, err)
}

func TestBuildTranslateRecursesIntoSubQuery(t *testing.T) {
	cols := NewColumns(
		Column{Name: "name", Kind: String, SQL: `"name"`},
		Column{Name: "alias", Kind: Computed, Translate: func(field string, op token.Operator, value string) (string, bool) {
			return "name" + op.String() + EscapeDSLValue(value), true
		}},
	)
	tree, err := Parse("alias=Acme")
	require.NoError(t, err)
	e, err := Build(tree, cols)
	require.NoError(t, err)
	assert.Equal(t, `"name" = ?`, e.SQL)
	assert.Equal(t, []any{"Acme"}, e.Args)
}

func TestBuildDeterministicAcrossRuns(t *testing.T) {
	tree, err := Parse("location=a|b&published>yesterday")
	require.NoError(t, err)
	cols := scenarioColumns()
	e1, err := Build(tree, cols)
	require.NoError(t, err)
	e2, err := Build(tree, cols)
	require.NoError(t, err)
	assert.Equal(t, e1, e2)
}

func TestBuildAnyDisjunction(t *testing.T) {
	a, err := scenarioColumns().Expression("location", "", token.Equal, "foo")
	require.NoError(t, err)
	b, err := scenarioColumns().Expression("name", "", token.Equal, "bar")
	require.NoError(t, err)
	e, err := Build(&Any{Children: []Node{
		&Constraint{Field: "location", Op: token.Equal, Values: []string{"foo"}},
		&Constraint{Field: "name", Op: token.Equal, Values: []string{"bar"}},
	}}, scenarioColumns())
	require.NoError(t, err)
	assert.Contains(t, e.SQL, "OR")
	_ = a
	_ = b
}
