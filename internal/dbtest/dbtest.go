// Package dbtest provides a sqlmock-backed *sql.DB for exercising the
// store and service layers without a real Postgres instance, the same
// role lightweight DB fakes play in the retrieved pack's store tests.
package dbtest

import (
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

// New returns a *sql.DB backed by sqlmock along with the mock handle
// used to set expectations, and registers t.Cleanup to assert every
// expectation was met and close the connection.
func New(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, mock.ExpectationsWereMet())
		require.NoError(t, db.Close())
	})
	return db, mock
}
