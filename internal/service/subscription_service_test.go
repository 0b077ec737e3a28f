package service

import (
	"context"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hookline/hookline/internal/domain"
	"github.com/hookline/hookline/internal/domain/mocks"
	"github.com/hookline/hookline/pkg/logger"
)

func newSubscriptionService(t *testing.T, ctrl *gomock.Controller) (*SubscriptionService, *mocks.MockSubscriptionRepository, *mocks.MockSubscriptionCache) {
	t.Helper()

	repo := mocks.NewMockSubscriptionRepository(ctrl)
	cache := mocks.NewMockSubscriptionCache(ctrl)
	return NewSubscriptionService(repo, cache, logger.NewTestLogger(t)), repo, cache
}

func TestSubscriptionService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("creates active subscription", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		svc, repo, _ := newSubscriptionService(t, ctrl)

		repo.EXPECT().Create(ctx, gomock.Any()).
			DoAndReturn(func(_ context.Context, sub *domain.Subscription) error {
				sub.ID = 1
				return nil
			})

		sub, err := svc.Create(ctx, &domain.CreateSubscriptionRequest{
			TargetURL:  "https://example.com/hooks",
			Secret:     "super_secret_1",
			EventTypes: []string{"order.created"},
		})
		require.NoError(t, err)
		assert.Equal(t, int64(1), sub.ID)
		assert.True(t, sub.IsActive)
	})

	t.Run("rejects invalid request without touching the store", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		svc, _, _ := newSubscriptionService(t, ctrl)

		sub, err := svc.Create(ctx, &domain.CreateSubscriptionRequest{
			TargetURL:  "https://example.com/hooks",
			Secret:     "short",
			EventTypes: []string{"order.created"},
		})
		assert.Nil(t, sub)
		assert.True(t, domain.IsValidationError(err))
	})

	t.Run("rejects empty event types", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		svc, _, _ := newSubscriptionService(t, ctrl)

		_, err := svc.Create(ctx, &domain.CreateSubscriptionRequest{
			TargetURL: "https://example.com/hooks",
			Secret:    "super_secret_1",
		})
		assert.True(t, domain.IsValidationError(err))
	})
}

func TestSubscriptionService_Update(t *testing.T) {
	ctx := context.Background()

	existing := func() *domain.Subscription {
		return &domain.Subscription{
			ID:         5,
			TargetURL:  "https://example.com/hooks",
			Secret:     "super_secret_1",
			EventTypes: []string{"order.created"},
			IsActive:   true,
		}
	}

	t.Run("applies partial update and invalidates cache", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		svc, repo, cache := newSubscriptionService(t, ctrl)

		repo.EXPECT().GetByID(ctx, int64(5)).Return(existing(), nil)

		var updated *domain.Subscription
		repo.EXPECT().Update(ctx, gomock.Any()).
			DoAndReturn(func(_ context.Context, sub *domain.Subscription) error {
				updated = sub
				return nil
			})
		cache.EXPECT().Invalidate(ctx, int64(5)).Return(nil)

		inactive := false
		sub, err := svc.Update(ctx, 5, &domain.UpdateSubscriptionRequest{IsActive: &inactive})
		require.NoError(t, err)
		assert.False(t, sub.IsActive)

		// Untouched fields survive.
		require.NotNil(t, updated)
		assert.Equal(t, "https://example.com/hooks", updated.TargetURL)
		assert.Equal(t, []string{"order.created"}, updated.EventTypes)
	})

	t.Run("re-validates touched fields", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		svc, _, _ := newSubscriptionService(t, ctrl)

		badSecret := "nope"
		sub, err := svc.Update(ctx, 5, &domain.UpdateSubscriptionRequest{Secret: &badSecret})
		assert.Nil(t, sub)
		assert.True(t, domain.IsValidationError(err))
	})

	t.Run("propagates not found", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		svc, repo, _ := newSubscriptionService(t, ctrl)

		repo.EXPECT().GetByID(ctx, int64(99)).
			Return(nil, &domain.ErrNotFound{Entity: "subscription", ID: 99})

		_, err := svc.Update(ctx, 99, &domain.UpdateSubscriptionRequest{})
		assert.True(t, domain.IsNotFound(err))
	})

	t.Run("succeeds even when cache invalidation fails", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		svc, repo, cache := newSubscriptionService(t, ctrl)

		repo.EXPECT().GetByID(ctx, int64(5)).Return(existing(), nil)
		repo.EXPECT().Update(ctx, gomock.Any()).Return(nil)
		cache.EXPECT().Invalidate(ctx, int64(5)).Return(assert.AnError)

		url := "https://other.example.com/hooks"
		_, err := svc.Update(ctx, 5, &domain.UpdateSubscriptionRequest{TargetURL: &url})
		assert.NoError(t, err)
	})
}

func TestSubscriptionService_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("deletes and invalidates cache", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		svc, repo, cache := newSubscriptionService(t, ctrl)

		repo.EXPECT().Delete(ctx, int64(5)).Return(nil)
		cache.EXPECT().Invalidate(ctx, int64(5)).Return(nil)

		assert.NoError(t, svc.Delete(ctx, 5))
	})

	t.Run("propagates not found without invalidating", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		svc, repo, _ := newSubscriptionService(t, ctrl)

		repo.EXPECT().Delete(ctx, int64(99)).
			Return(&domain.ErrNotFound{Entity: "subscription", ID: 99})

		assert.True(t, domain.IsNotFound(svc.Delete(ctx, 99)))
	})
}
