package repository

import (
	"context"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hookline/hookline/internal/domain"
	"github.com/hookline/hookline/internal/repository/testutil"
)

func subscriptionRows(subs ...*domain.Subscription) *sqlmock.Rows {
	rows := sqlmock.NewRows([]string{
		"id", "target_url", "secret", "event_types", "is_active", "created_at", "updated_at",
	})
	for _, s := range subs {
		eventTypes, _ := json.Marshal(s.EventTypes)
		rows.AddRow(s.ID, s.TargetURL, s.Secret, eventTypes, s.IsActive, s.CreatedAt, s.UpdatedAt)
	}
	return rows
}

func TestSubscriptionRepository_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("successfully creates subscription", func(t *testing.T) {
		db, mock, cleanup := testutil.SetupMockDB(t)
		defer cleanup()

		repo := NewSubscriptionRepository(db)

		sub := &domain.Subscription{
			TargetURL:  "https://example.com/hooks",
			Secret:     "super_secret_1",
			EventTypes: []string{"order.created"},
			IsActive:   true,
		}

		mock.ExpectQuery(`INSERT INTO subscriptions`).
			WithArgs(
				sub.TargetURL, sub.Secret, sqlmock.AnyArg(), sub.IsActive,
				sqlmock.AnyArg(), sqlmock.AnyArg(),
			).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(42)))

		err := repo.Create(ctx, sub)
		require.NoError(t, err)
		assert.Equal(t, int64(42), sub.ID)
		assert.False(t, sub.CreatedAt.IsZero())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns error on insert failure", func(t *testing.T) {
		db, mock, cleanup := testutil.SetupMockDB(t)
		defer cleanup()

		repo := NewSubscriptionRepository(db)

		mock.ExpectQuery(`INSERT INTO subscriptions`).
			WillReturnError(errors.New("connection refused"))

		err := repo.Create(ctx, &domain.Subscription{
			TargetURL:  "https://example.com/hooks",
			Secret:     "super_secret_1",
			EventTypes: []string{"order.created"},
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to create subscription")
	})
}

func TestSubscriptionRepository_GetByID(t *testing.T) {
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	t.Run("successfully gets subscription", func(t *testing.T) {
		db, mock, cleanup := testutil.SetupMockDB(t)
		defer cleanup()

		repo := NewSubscriptionRepository(db)

		want := &domain.Subscription{
			ID:         7,
			TargetURL:  "https://example.com/hooks",
			Secret:     "super_secret_1",
			EventTypes: []string{"order.created", "order.updated"},
			IsActive:   true,
			CreatedAt:  now,
			UpdatedAt:  now,
		}

		mock.ExpectQuery(`SELECT (.+) FROM subscriptions`).
			WithArgs(int64(7)).
			WillReturnRows(subscriptionRows(want))

		got, err := repo.GetByID(ctx, 7)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})

	t.Run("returns ErrNotFound for missing subscription", func(t *testing.T) {
		db, mock, cleanup := testutil.SetupMockDB(t)
		defer cleanup()

		repo := NewSubscriptionRepository(db)

		mock.ExpectQuery(`SELECT (.+) FROM subscriptions`).
			WithArgs(int64(99)).
			WillReturnRows(subscriptionRows())

		got, err := repo.GetByID(ctx, 99)
		assert.Nil(t, got)
		assert.True(t, domain.IsNotFound(err))
	})
}

func TestSubscriptionRepository_List(t *testing.T) {
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	t.Run("returns all subscriptions", func(t *testing.T) {
		db, mock, cleanup := testutil.SetupMockDB(t)
		defer cleanup()

		repo := NewSubscriptionRepository(db)

		first := &domain.Subscription{
			ID: 1, TargetURL: "https://a.example.com", Secret: "secret_aaa",
			EventTypes: []string{"a.b"}, IsActive: true, CreatedAt: now, UpdatedAt: now,
		}
		second := &domain.Subscription{
			ID: 2, TargetURL: "https://b.example.com", Secret: "secret_bbb",
			EventTypes: []string{"c.d"}, IsActive: false, CreatedAt: now, UpdatedAt: now,
		}

		mock.ExpectQuery(`SELECT (.+) FROM subscriptions`).
			WillReturnRows(subscriptionRows(first, second))

		got, err := repo.List(ctx)
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, first, got[0])
		assert.Equal(t, second, got[1])
	})

	t.Run("returns empty list when no rows", func(t *testing.T) {
		db, mock, cleanup := testutil.SetupMockDB(t)
		defer cleanup()

		repo := NewSubscriptionRepository(db)

		mock.ExpectQuery(`SELECT (.+) FROM subscriptions`).
			WillReturnRows(subscriptionRows())

		got, err := repo.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, got)
	})
}

func TestSubscriptionRepository_Update(t *testing.T) {
	ctx := context.Background()

	sub := &domain.Subscription{
		ID:         5,
		TargetURL:  "https://example.com/hooks",
		Secret:     "super_secret_1",
		EventTypes: []string{"order.created"},
		IsActive:   false,
	}

	updateArgs := []driver.Value{
		sub.TargetURL, sub.Secret, sqlmock.AnyArg(), sub.IsActive,
		sqlmock.AnyArg(), sub.ID,
	}

	t.Run("successfully updates subscription", func(t *testing.T) {
		db, mock, cleanup := testutil.SetupMockDB(t)
		defer cleanup()

		repo := NewSubscriptionRepository(db)

		mock.ExpectExec(`UPDATE subscriptions`).
			WithArgs(updateArgs...).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.Update(ctx, sub)
		require.NoError(t, err)
		assert.False(t, sub.UpdatedAt.IsZero())
	})

	t.Run("returns ErrNotFound when no rows affected", func(t *testing.T) {
		db, mock, cleanup := testutil.SetupMockDB(t)
		defer cleanup()

		repo := NewSubscriptionRepository(db)

		mock.ExpectExec(`UPDATE subscriptions`).
			WithArgs(updateArgs...).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.Update(ctx, sub)
		assert.True(t, domain.IsNotFound(err))
	})
}

func TestSubscriptionRepository_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("successfully deletes subscription", func(t *testing.T) {
		db, mock, cleanup := testutil.SetupMockDB(t)
		defer cleanup()

		repo := NewSubscriptionRepository(db)

		mock.ExpectExec(`DELETE FROM subscriptions`).
			WithArgs(int64(5)).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.Delete(ctx, 5)
		assert.NoError(t, err)
	})

	t.Run("returns ErrNotFound for missing subscription", func(t *testing.T) {
		db, mock, cleanup := testutil.SetupMockDB(t)
		defer cleanup()

		repo := NewSubscriptionRepository(db)

		mock.ExpectExec(`DELETE FROM subscriptions`).
			WithArgs(int64(99)).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.Delete(ctx, 99)
		assert.True(t, domain.IsNotFound(err))
	})
}
