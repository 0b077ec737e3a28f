// Package testutil provides shared fixtures for repository tests.
package testutil

import (
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

// SetupMockDB opens a sqlmock-backed connection pool and returns it together
// with the mock handle and a cleanup func that closes the pool.
func SetupMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock, func()) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	return db, mock, func() { db.Close() }
}
