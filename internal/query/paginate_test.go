package query

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trustify-project/catalogd/internal/dbtest"
)

func scanName(rows *sql.Rows) (string, error) {
	var s string
	err := rows.Scan(&s)
	return s, err
}

func TestLimiterTotal(t *testing.T) {
	db, mock := dbtest.New(t)
	l := &Limiter{Q: db, BaseQuery: `SELECT "name" FROM "widget"`}

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM \(SELECT "name" FROM "widget"\) AS counted`).
		WillReturnRows(mock.NewRows([]string{"count"}).AddRow(7))

	n, err := l.Total(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(7), n)
}

func TestFetchAppliesLimitAndOffset(t *testing.T) {
	db, mock := dbtest.New(t)
	l := &Limiter{Q: db, BaseQuery: `SELECT "name" FROM "widget"`, OrderBy: `ORDER BY "name" ASC`}

	mock.ExpectQuery(`SELECT "name" FROM "widget" ORDER BY "name" ASC LIMIT 10 OFFSET 5`).
		WillReturnRows(mock.NewRows([]string{"name"}).AddRow("a").AddRow("b"))

	items, err := Fetch(context.Background(), l, Paginated{Offset: 5, Limit: 10}, scanName)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, items)
}

func TestFetchZeroLimitIsUnbounded(t *testing.T) {
	db, mock := dbtest.New(t)
	l := &Limiter{Q: db, BaseQuery: `SELECT "name" FROM "widget"`}

	mock.ExpectQuery(`SELECT "name" FROM "widget"$`).
		WillReturnRows(mock.NewRows([]string{"name"}).AddRow("a"))

	items, err := Fetch(context.Background(), l, Paginated{Limit: 0}, scanName)
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, items)
}

func TestFetchPageCombinesTotalAndItems(t *testing.T) {
	db, mock := dbtest.New(t)
	l := &Limiter{Q: db, BaseQuery: `SELECT "name" FROM "widget"`}

	mock.ExpectQuery(`SELECT COUNT\(\*\)`).WillReturnRows(mock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(`SELECT "name" FROM "widget"$`).WillReturnRows(mock.NewRows([]string{"name"}).AddRow("a"))

	page, err := FetchPage(context.Background(), l, Paginated{}, scanName)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), page.Total)
	assert.Equal(t, []string{"a"}, page.Items)
}
