package service

import (
	"context"
	"fmt"

	"github.com/hookline/hookline/internal/domain"
	"github.com/hookline/hookline/pkg/logger"
)

// SubscriptionService handles subscription business logic
type SubscriptionService struct {
	repo   domain.SubscriptionRepository
	cache  domain.SubscriptionCache
	logger logger.Logger
}

// NewSubscriptionService creates a new subscription service
func NewSubscriptionService(
	repo domain.SubscriptionRepository,
	cache domain.SubscriptionCache,
	logger logger.Logger,
) *SubscriptionService {
	return &SubscriptionService{
		repo:   repo,
		cache:  cache,
		logger: logger,
	}
}

// Create validates and stores a new subscription. New subscriptions start
// active.
func (s *SubscriptionService) Create(ctx context.Context, req *domain.CreateSubscriptionRequest) (*domain.Subscription, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	sub := &domain.Subscription{
		TargetURL:  req.TargetURL,
		Secret:     req.Secret,
		EventTypes: req.EventTypes,
		IsActive:   true,
	}

	if err := s.repo.Create(ctx, sub); err != nil {
		return nil, fmt.Errorf("failed to create subscription: %w", err)
	}

	s.logger.WithField("subscription_id", sub.ID).Info("Subscription created")
	return sub, nil
}

// Get retrieves a subscription by ID
func (s *SubscriptionService) Get(ctx context.Context, id int64) (*domain.Subscription, error) {
	return s.repo.GetByID(ctx, id)
}

// List retrieves all subscriptions
func (s *SubscriptionService) List(ctx context.Context) ([]*domain.Subscription, error) {
	return s.repo.List(ctx)
}

// Update applies a partial update and invalidates the cached snapshot so the
// delivery worker picks up the change within one cache TTL at the latest.
func (s *SubscriptionService) Update(ctx context.Context, id int64, req *domain.UpdateSubscriptionRequest) (*domain.Subscription, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	sub, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.TargetURL != nil {
		sub.TargetURL = *req.TargetURL
	}
	if req.Secret != nil {
		sub.Secret = *req.Secret
	}
	if req.EventTypes != nil {
		sub.EventTypes = req.EventTypes
	}
	if req.IsActive != nil {
		sub.IsActive = *req.IsActive
	}

	if err := s.repo.Update(ctx, sub); err != nil {
		return nil, fmt.Errorf("failed to update subscription: %w", err)
	}

	s.invalidate(ctx, id)

	s.logger.WithField("subscription_id", id).Info("Subscription updated")
	return sub, nil
}

// Delete removes a subscription along with its webhooks and delivery attempts
func (s *SubscriptionService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.invalidate(ctx, id)

	s.logger.WithField("subscription_id", id).Info("Subscription deleted")
	return nil
}

// invalidate drops the cached snapshot. A failed invalidation only extends
// staleness by one TTL, so it is logged and not propagated.
func (s *SubscriptionService) invalidate(ctx context.Context, id int64) {
	if err := s.cache.Invalidate(ctx, id); err != nil {
		s.logger.WithField("subscription_id", id).Warn(fmt.Sprintf("Failed to invalidate subscription cache: %v", err))
	}
}
