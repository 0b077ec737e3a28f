package service

import (
	"context"

	"github.com/hookline/hookline/internal/domain"
	"github.com/hookline/hookline/pkg/logger"
)

const (
	// DefaultAttemptPageSize is used when the caller does not specify a limit.
	DefaultAttemptPageSize = 10
	// MaxAttemptPageSize caps the delivery history page size.
	MaxAttemptPageSize = 100
)

// DeliveryAttemptService exposes the delivery history
type DeliveryAttemptService struct {
	attemptRepo      domain.DeliveryAttemptRepository
	subscriptionRepo domain.SubscriptionRepository
	logger           logger.Logger
}

// NewDeliveryAttemptService creates a new delivery attempt service
func NewDeliveryAttemptService(
	attemptRepo domain.DeliveryAttemptRepository,
	subscriptionRepo domain.SubscriptionRepository,
	logger logger.Logger,
) *DeliveryAttemptService {
	return &DeliveryAttemptService{
		attemptRepo:      attemptRepo,
		subscriptionRepo: subscriptionRepo,
		logger:           logger,
	}
}

// ListBySubscription returns a page of attempts for a subscription, newest
// first. The limit is clamped to [1, MaxAttemptPageSize] with
// DefaultAttemptPageSize when unset; a negative skip becomes zero.
func (s *DeliveryAttemptService) ListBySubscription(ctx context.Context, subscriptionID int64, skip, limit int) ([]*domain.DeliveryAttempt, error) {
	if _, err := s.subscriptionRepo.GetByID(ctx, subscriptionID); err != nil {
		return nil, err
	}

	if skip < 0 {
		skip = 0
	}
	if limit <= 0 {
		limit = DefaultAttemptPageSize
	}
	if limit > MaxAttemptPageSize {
		limit = MaxAttemptPageSize
	}

	return s.attemptRepo.ListBySubscription(ctx, subscriptionID, skip, limit)
}

// Get retrieves a single delivery attempt by ID
func (s *DeliveryAttemptService) Get(ctx context.Context, id int64) (*domain.DeliveryAttempt, error) {
	return s.attemptRepo.GetByID(ctx, id)
}
