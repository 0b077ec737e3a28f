package service

import (
	"context"
	"fmt"

	"github.com/hookline/hookline/internal/domain"
	"github.com/hookline/hookline/pkg/logger"
)

// IngestService accepts inbound events and hands them to the delivery
// pipeline
type IngestService struct {
	subscriptionRepo domain.SubscriptionRepository
	webhookRepo      domain.WebhookRepository
	queue            domain.Queue
	logger           logger.Logger
}

// NewIngestService creates a new ingest service
func NewIngestService(
	subscriptionRepo domain.SubscriptionRepository,
	webhookRepo domain.WebhookRepository,
	queue domain.Queue,
	logger logger.Logger,
) *IngestService {
	return &IngestService{
		subscriptionRepo: subscriptionRepo,
		webhookRepo:      webhookRepo,
		queue:            queue,
		logger:           logger,
	}
}

// Ingest validates the event against the subscription, persists the webhook
// and enqueues its first delivery attempt. The webhook row is committed
// before the enqueue; if the enqueue fails the row remains and the caller
// sees an error, which keeps the pipeline at-least-once.
//
// Validation reads the store directly rather than the cache so a
// just-deactivated subscription cannot accept events for another TTL.
func (s *IngestService) Ingest(ctx context.Context, subscriptionID int64, req *domain.IngestRequest) (*domain.Webhook, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	sub, err := s.subscriptionRepo.GetByID(ctx, subscriptionID)
	if err != nil {
		return nil, err
	}
	if !sub.IsActive {
		return nil, domain.ErrSubscriptionInactive
	}
	if !sub.HasEventType(req.EventType) {
		return nil, domain.ErrUnknownEventType
	}

	webhook := &domain.Webhook{
		SubscriptionID: subscriptionID,
		EventType:      req.EventType,
		Payload:        req.Payload,
	}
	if err := s.webhookRepo.Create(ctx, webhook); err != nil {
		return nil, fmt.Errorf("failed to persist webhook: %w", err)
	}

	task := domain.DeliveryTask{WebhookID: webhook.ID, AttemptNumber: 1}
	if err := s.queue.Enqueue(ctx, domain.LaneDeliver, task, 0); err != nil {
		return nil, fmt.Errorf("failed to enqueue delivery: %w", err)
	}

	s.logger.WithFields(map[string]interface{}{
		"webhook_id":      webhook.ID,
		"subscription_id": subscriptionID,
		"event_type":      req.EventType,
	}).Info("Webhook accepted")

	return webhook, nil
}
