package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/hookline/hookline/internal/domain"
	"github.com/hookline/hookline/pkg/logger"
)

// subscriptionCache is a read-through Redis cache over the subscription
// repository. Cache failures degrade to a direct repository read so a Redis
// outage never blocks deliveries.
type subscriptionCache struct {
	client *redis.Client
	repo   domain.SubscriptionRepository
	ttl    time.Duration
	logger logger.Logger
}

// NewSubscriptionCache creates a Redis-backed subscription cache
func NewSubscriptionCache(client *redis.Client, repo domain.SubscriptionRepository, ttl time.Duration, log logger.Logger) domain.SubscriptionCache {
	return &subscriptionCache{
		client: client,
		repo:   repo,
		ttl:    ttl,
		logger: log,
	}
}

func subscriptionKey(id int64) string {
	return fmt.Sprintf("subscription:%d", id)
}

// Get returns the subscription snapshot, from Redis when present, otherwise
// from the repository with the result cached for one TTL.
func (c *subscriptionCache) Get(ctx context.Context, id int64) (*domain.Subscription, error) {
	key := subscriptionKey(id)

	cached, err := c.client.Get(ctx, key).Result()
	if err == nil {
		var sub domain.Subscription
		if unmarshalErr := json.Unmarshal([]byte(cached), &sub); unmarshalErr == nil {
			return &sub, nil
		}
		// Undecodable entry, fall through to the repository and overwrite it.
		c.logger.WithField("subscription_id", id).Warn("Discarding undecodable subscription cache entry")
	} else if err != redis.Nil {
		c.logger.WithField("subscription_id", id).Warn(fmt.Sprintf("Subscription cache read failed, falling back to store: %v", err))
	}

	sub, err := c.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if data, marshalErr := json.Marshal(sub); marshalErr == nil {
		if setErr := c.client.Set(ctx, key, data, c.ttl).Err(); setErr != nil {
			c.logger.WithField("subscription_id", id).Warn(fmt.Sprintf("Subscription cache write failed: %v", setErr))
		}
	}

	return sub, nil
}

// Invalidate drops the cached snapshot. Callers invoke it on every
// subscription mutation.
func (c *subscriptionCache) Invalidate(ctx context.Context, id int64) error {
	if err := c.client.Del(ctx, subscriptionKey(id)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate subscription %d: %w", id, err)
	}
	return nil
}
