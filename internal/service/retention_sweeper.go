package service

import (
	"context"
	"fmt"
	"time"

	"github.com/hookline/hookline/internal/domain"
	"github.com/hookline/hookline/pkg/logger"
)

// RetentionSweeper consumes cleanup tasks and deletes delivery attempts that
// fell out of the retention window. Webhook rows are kept; only the attempt
// history is purged.
type RetentionSweeper struct {
	attemptRepo domain.DeliveryAttemptRepository
	queue       domain.Queue
	window      time.Duration
	batchSize   int
	logger      logger.Logger
}

// NewRetentionSweeper creates a new retention sweeper
func NewRetentionSweeper(
	attemptRepo domain.DeliveryAttemptRepository,
	queue domain.Queue,
	window time.Duration,
	batchSize int,
	logger logger.Logger,
) *RetentionSweeper {
	return &RetentionSweeper{
		attemptRepo: attemptRepo,
		queue:       queue,
		window:      window,
		batchSize:   batchSize,
		logger:      logger,
	}
}

// Start consumes the cleanup lane until the context is cancelled
func (s *RetentionSweeper) Start(ctx context.Context) {
	s.logger.WithFields(map[string]interface{}{
		"window":     s.window.String(),
		"batch_size": s.batchSize,
	}).Info("Starting retention sweeper")

	for {
		msg, err := s.queue.Consume(ctx, domain.LaneCleanup)
		if err != nil {
			if ctx.Err() != nil {
				s.logger.Info("Retention sweeper stopped")
				return
			}
			s.logger.Error(fmt.Sprintf("Failed to consume cleanup task: %v", err))
			select {
			case <-ctx.Done():
				s.logger.Info("Retention sweeper stopped")
				return
			case <-time.After(consumeRetryDelay):
			}
			continue
		}

		if err := s.sweep(ctx); err != nil {
			s.logger.Error(fmt.Sprintf("Retention sweep failed: %v", err))
			if nackErr := s.queue.Nack(ctx, msg); nackErr != nil {
				s.logger.Error(fmt.Sprintf("Failed to nack cleanup task: %v", nackErr))
			}
			continue
		}

		if err := s.queue.Ack(ctx, msg); err != nil {
			s.logger.Error(fmt.Sprintf("Failed to ack cleanup task: %v", err))
		}
	}
}

// sweep deletes expired attempts in bounded batches until none remain. The
// cutoff is fixed up front so a long sweep does not chase a moving target.
func (s *RetentionSweeper) sweep(ctx context.Context) error {
	cutoff := time.Now().UTC().Add(-s.window)
	var total int64

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		deleted, err := s.attemptRepo.DeleteOlderThan(ctx, cutoff, s.batchSize)
		if err != nil {
			return err
		}
		total += deleted
		if deleted == 0 {
			break
		}
	}

	s.logger.WithFields(map[string]interface{}{
		"deleted": total,
		"cutoff":  cutoff.Format(time.RFC3339),
	}).Info("Retention sweep complete")

	return nil
}
