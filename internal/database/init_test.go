package database

import (
	"errors"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hookline/hookline/internal/database/schema"
)

func TestInitializeDatabase(t *testing.T) {
	t.Run("runs every schema statement", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		for range schema.TableDefinitions {
			mock.ExpectExec(".*").WillReturnResult(sqlmock.NewResult(0, 0))
		}

		require.NoError(t, InitializeDatabase(db))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("stops on the first failing statement", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectExec(".*").WillReturnError(errors.New("permission denied"))

		err = InitializeDatabase(db)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to create table")
	})
}

func TestSchemaShape(t *testing.T) {
	all := strings.Join(schema.TableDefinitions, "\n")

	// The chain uniqueness constraint and the cascades are what the delivery
	// pipeline relies on.
	assert.Contains(t, all, "UNIQUE (webhook_id, attempt_number)")
	assert.Equal(t, 3, strings.Count(all, "ON DELETE CASCADE"))
	assert.Contains(t, all, "USING GIN (event_types)")
}
