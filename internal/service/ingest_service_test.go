package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hookline/hookline/internal/domain"
	"github.com/hookline/hookline/internal/domain/mocks"
	"github.com/hookline/hookline/pkg/logger"
)

type ingestMocks struct {
	subscriptionRepo *mocks.MockSubscriptionRepository
	webhookRepo      *mocks.MockWebhookRepository
	queue            *mocks.MockQueue
}

func newIngestService(t *testing.T, ctrl *gomock.Controller) (*IngestService, ingestMocks) {
	t.Helper()

	m := ingestMocks{
		subscriptionRepo: mocks.NewMockSubscriptionRepository(ctrl),
		webhookRepo:      mocks.NewMockWebhookRepository(ctrl),
		queue:            mocks.NewMockQueue(ctrl),
	}
	return NewIngestService(m.subscriptionRepo, m.webhookRepo, m.queue, logger.NewTestLogger(t)), m
}

func ingestSubscription() *domain.Subscription {
	return &domain.Subscription{
		ID:         3,
		TargetURL:  "https://example.com/hooks",
		Secret:     "super_secret_1",
		EventTypes: []string{"order.created", "order.updated"},
		IsActive:   true,
	}
}

func TestIngestService_Ingest(t *testing.T) {
	ctx := context.Background()

	validRequest := func() *domain.IngestRequest {
		return &domain.IngestRequest{
			EventType: "order.created",
			Payload:   json.RawMessage(`{"order_id":123}`),
		}
	}

	t.Run("persists webhook then enqueues first attempt", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		svc, m := newIngestService(t, ctrl)

		m.subscriptionRepo.EXPECT().GetByID(ctx, int64(3)).Return(ingestSubscription(), nil)

		createDone := false
		m.webhookRepo.EXPECT().Create(ctx, gomock.Any()).
			DoAndReturn(func(_ context.Context, webhook *domain.Webhook) error {
				webhook.ID = 11
				createDone = true
				return nil
			})
		m.queue.EXPECT().Enqueue(ctx, domain.LaneDeliver,
			domain.DeliveryTask{WebhookID: 11, AttemptNumber: 1}, time.Duration(0)).
			DoAndReturn(func(_ context.Context, _ string, _ interface{}, _ time.Duration) error {
				// The row must be durable before the task exists.
				assert.True(t, createDone)
				return nil
			})

		webhook, err := svc.Ingest(ctx, 3, validRequest())
		require.NoError(t, err)
		assert.Equal(t, int64(11), webhook.ID)
		assert.Equal(t, int64(3), webhook.SubscriptionID)
		assert.Equal(t, "order.created", webhook.EventType)
	})

	t.Run("rejects missing subscription", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		svc, m := newIngestService(t, ctrl)

		m.subscriptionRepo.EXPECT().GetByID(ctx, int64(99)).
			Return(nil, &domain.ErrNotFound{Entity: "subscription", ID: 99})

		webhook, err := svc.Ingest(ctx, 99, validRequest())
		assert.Nil(t, webhook)
		assert.True(t, domain.IsNotFound(err))
	})

	t.Run("rejects inactive subscription", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		svc, m := newIngestService(t, ctrl)

		sub := ingestSubscription()
		sub.IsActive = false
		m.subscriptionRepo.EXPECT().GetByID(ctx, int64(3)).Return(sub, nil)

		_, err := svc.Ingest(ctx, 3, validRequest())
		assert.ErrorIs(t, err, domain.ErrSubscriptionInactive)
	})

	t.Run("rejects unsubscribed event type", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		svc, m := newIngestService(t, ctrl)

		m.subscriptionRepo.EXPECT().GetByID(ctx, int64(3)).Return(ingestSubscription(), nil)

		req := validRequest()
		req.EventType = "invoice.paid"
		_, err := svc.Ingest(ctx, 3, req)
		assert.ErrorIs(t, err, domain.ErrUnknownEventType)
	})

	t.Run("rejects malformed payload before touching the store", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		svc, _ := newIngestService(t, ctrl)

		req := &domain.IngestRequest{
			EventType: "order.created",
			Payload:   json.RawMessage(`{"broken`),
		}
		_, err := svc.Ingest(ctx, 3, req)
		assert.True(t, domain.IsValidationError(err))
	})

	t.Run("propagates persistence failure", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		svc, m := newIngestService(t, ctrl)

		m.subscriptionRepo.EXPECT().GetByID(ctx, int64(3)).Return(ingestSubscription(), nil)
		m.webhookRepo.EXPECT().Create(ctx, gomock.Any()).Return(assert.AnError)

		_, err := svc.Ingest(ctx, 3, validRequest())
		assert.Error(t, err)
	})

	t.Run("propagates enqueue failure after the row is committed", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		svc, m := newIngestService(t, ctrl)

		m.subscriptionRepo.EXPECT().GetByID(ctx, int64(3)).Return(ingestSubscription(), nil)
		m.webhookRepo.EXPECT().Create(ctx, gomock.Any()).
			DoAndReturn(func(_ context.Context, webhook *domain.Webhook) error {
				webhook.ID = 11
				return nil
			})
		m.queue.EXPECT().Enqueue(ctx, domain.LaneDeliver, gomock.Any(), time.Duration(0)).
			Return(assert.AnError)

		_, err := svc.Ingest(ctx, 3, validRequest())
		assert.Error(t, err)
	})
}
