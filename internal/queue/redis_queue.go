package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/hookline/hookline/internal/domain"
	"github.com/hookline/hookline/pkg/logger"
)

// pollInterval bounds how long Consume blocks on an empty lane before it
// re-checks the delayed and processing sets.
const pollInterval = time.Second

// promoteBatchSize caps how many due or expired message ids a single Consume
// call moves back to the ready list.
const promoteBatchSize = 100

// redisQueue implements domain.Queue on Redis.
//
// Per lane it keeps five structures:
//
//	queue:{lane}:ready      LIST of message ids, consumable now
//	queue:{lane}:delayed    ZSET of message ids scored by ready-at time
//	queue:{lane}:processing LIST of message ids owned by a consumer
//	queue:{lane}:leases     ZSET of message ids scored by lease expiry
//	queue:{lane}:msg:{id}   STRING holding the serialized message
//
// Consuming moves the id from ready to processing with a single BLMove, so
// the id always lives in exactly one of the two lists even if the consumer
// dies between the move and the lease write. A processing id without a lease
// score is given one by the reaper; an expired lease pushes the id back to
// ready. Ack deletes the message. This is what makes delivery at-least-once.
type redisQueue struct {
	client            *redis.Client
	visibilityTimeout time.Duration
	logger            logger.Logger
}

// NewRedisQueue creates a Redis-backed task queue
func NewRedisQueue(client *redis.Client, visibilityTimeout time.Duration, log logger.Logger) domain.Queue {
	return &redisQueue{
		client:            client,
		visibilityTimeout: visibilityTimeout,
		logger:            log,
	}
}

func readyKey(lane string) string      { return "queue:" + lane + ":ready" }
func delayedKey(lane string) string    { return "queue:" + lane + ":delayed" }
func processingKey(lane string) string { return "queue:" + lane + ":processing" }
func leaseKey(lane string) string      { return "queue:" + lane + ":leases" }
func messageKey(lane, id string) string {
	return "queue:" + lane + ":msg:" + id
}

// Enqueue serializes the payload into a TaskMessage and makes it consumable
// on the lane once the delay elapses.
func (q *redisQueue) Enqueue(ctx context.Context, lane string, payload interface{}, delay time.Duration) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal task payload: %w", err)
	}

	msg := domain.TaskMessage{
		ID:       uuid.New().String(),
		Lane:     lane,
		Body:     body,
		Enqueued: time.Now().UTC(),
	}

	raw, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal task message: %w", err)
	}

	pipe := q.client.TxPipeline()
	pipe.Set(ctx, messageKey(lane, msg.ID), raw, 0)
	if delay > 0 {
		readyAt := float64(time.Now().Add(delay).UnixMilli())
		pipe.ZAdd(ctx, delayedKey(lane), redis.Z{Score: readyAt, Member: msg.ID})
	} else {
		pipe.LPush(ctx, readyKey(lane), msg.ID)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to enqueue task: %w", err)
	}

	return nil
}

// Consume blocks until a message is available or the context is done. The
// returned message holds a lease of visibilityTimeout; the caller must Ack or
// Nack it.
func (q *redisQueue) Consume(ctx context.Context, lane string) (*domain.TaskMessage, error) {
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if err := q.promoteDue(ctx, lane); err != nil {
			return nil, err
		}
		if err := q.reapExpired(ctx, lane); err != nil {
			return nil, err
		}

		id, err := q.client.BLMove(ctx, readyKey(lane), processingKey(lane), "RIGHT", "LEFT", pollInterval).Result()
		if err == redis.Nil {
			continue
		}
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, fmt.Errorf("failed to pop from lane %s: %w", lane, err)
		}

		msg, err := q.claim(ctx, lane, id)
		if err != nil {
			return nil, err
		}
		if msg == nil {
			// The message body is gone; another consumer acked it.
			continue
		}
		return msg, nil
	}
}

// claim writes the lease for an id already sitting on the processing list and
// loads its message body.
func (q *redisQueue) claim(ctx context.Context, lane, id string) (*domain.TaskMessage, error) {
	raw, err := q.client.Get(ctx, messageKey(lane, id)).Result()
	if err == redis.Nil {
		if removeErr := q.remove(ctx, lane, id); removeErr != nil {
			return nil, removeErr
		}
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load task message %s: %w", id, err)
	}

	expiry := float64(time.Now().Add(q.visibilityTimeout).UnixMilli())
	if err := q.client.ZAdd(ctx, leaseKey(lane), redis.Z{Score: expiry, Member: id}).Err(); err != nil {
		return nil, fmt.Errorf("failed to lease task message %s: %w", id, err)
	}

	var msg domain.TaskMessage
	if err := json.Unmarshal([]byte(raw), &msg); err != nil {
		// A corrupt message would loop forever between ready and processing,
		// so drop it.
		q.logger.WithField("message_id", id).Error(fmt.Sprintf("Dropping undecodable task message: %v", err))
		if removeErr := q.remove(ctx, lane, id); removeErr != nil {
			return nil, removeErr
		}
		return nil, nil
	}

	return &msg, nil
}

// Ack removes the message permanently.
func (q *redisQueue) Ack(ctx context.Context, msg *domain.TaskMessage) error {
	if err := q.remove(ctx, msg.Lane, msg.ID); err != nil {
		return fmt.Errorf("failed to ack task message %s: %w", msg.ID, err)
	}
	return nil
}

// Nack releases the lease and pushes the message back for immediate redelivery.
func (q *redisQueue) Nack(ctx context.Context, msg *domain.TaskMessage) error {
	pipe := q.client.TxPipeline()
	pipe.LRem(ctx, processingKey(msg.Lane), 1, msg.ID)
	pipe.ZRem(ctx, leaseKey(msg.Lane), msg.ID)
	pipe.LPush(ctx, readyKey(msg.Lane), msg.ID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to nack task message %s: %w", msg.ID, err)
	}
	return nil
}

func (q *redisQueue) remove(ctx context.Context, lane, id string) error {
	pipe := q.client.TxPipeline()
	pipe.LRem(ctx, processingKey(lane), 1, id)
	pipe.ZRem(ctx, leaseKey(lane), id)
	pipe.Del(ctx, messageKey(lane, id))
	_, err := pipe.Exec(ctx)
	return err
}

// promoteDue moves delayed message ids whose ready-at time has passed onto
// the ready list.
func (q *redisQueue) promoteDue(ctx context.Context, lane string) error {
	now := strconv.FormatInt(time.Now().UnixMilli(), 10)
	ids, err := q.client.ZRangeByScore(ctx, delayedKey(lane), &redis.ZRangeBy{
		Min:   "-inf",
		Max:   now,
		Count: promoteBatchSize,
	}).Result()
	if err != nil {
		return fmt.Errorf("failed to scan %s: %w", delayedKey(lane), err)
	}

	for _, id := range ids {
		// ZRem first so two consumers cannot both promote the same id.
		removed, err := q.client.ZRem(ctx, delayedKey(lane), id).Result()
		if err != nil {
			return fmt.Errorf("failed to remove %s from %s: %w", id, delayedKey(lane), err)
		}
		if removed == 0 {
			continue
		}
		if err := q.client.LPush(ctx, readyKey(lane), id).Err(); err != nil {
			return fmt.Errorf("failed to promote %s on lane %s: %w", id, lane, err)
		}
	}

	return nil
}

// reapExpired first grants a lease to any processing id that lacks one, which
// adopts tasks orphaned by a consumer dying right after the BLMove, then
// returns ids with expired leases to the ready list. This is how a task
// survives a consumer crash.
func (q *redisQueue) reapExpired(ctx context.Context, lane string) error {
	ids, err := q.client.LRange(ctx, processingKey(lane), 0, promoteBatchSize-1).Result()
	if err != nil {
		return fmt.Errorf("failed to scan %s: %w", processingKey(lane), err)
	}
	for _, id := range ids {
		if _, err := q.client.ZScore(ctx, leaseKey(lane), id).Result(); err == redis.Nil {
			// NX keeps a racing consumer's own lease intact.
			expiry := float64(time.Now().Add(q.visibilityTimeout).UnixMilli())
			if err := q.client.ZAddNX(ctx, leaseKey(lane), redis.Z{Score: expiry, Member: id}).Err(); err != nil {
				return fmt.Errorf("failed to adopt orphaned task %s: %w", id, err)
			}
		} else if err != nil {
			return fmt.Errorf("failed to check lease for %s: %w", id, err)
		}
	}

	now := strconv.FormatInt(time.Now().UnixMilli(), 10)
	expired, err := q.client.ZRangeByScore(ctx, leaseKey(lane), &redis.ZRangeBy{
		Min:   "-inf",
		Max:   now,
		Count: promoteBatchSize,
	}).Result()
	if err != nil {
		return fmt.Errorf("failed to scan %s: %w", leaseKey(lane), err)
	}

	for _, id := range expired {
		// ZRem first so two consumers cannot both requeue the same id.
		removed, err := q.client.ZRem(ctx, leaseKey(lane), id).Result()
		if err != nil {
			return fmt.Errorf("failed to remove %s from %s: %w", id, leaseKey(lane), err)
		}
		if removed == 0 {
			continue
		}
		pipe := q.client.TxPipeline()
		pipe.LRem(ctx, processingKey(lane), 1, id)
		pipe.LPush(ctx, readyKey(lane), id)
		if _, err := pipe.Exec(ctx); err != nil {
			return fmt.Errorf("failed to requeue %s on lane %s: %w", id, lane, err)
		}
	}

	return nil
}
