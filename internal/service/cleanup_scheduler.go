package service

import (
	"context"
	"fmt"
	"time"

	"github.com/hookline/hookline/internal/domain"
	"github.com/hookline/hookline/pkg/logger"
)

// CleanupScheduler periodically enqueues a retention sweep task. The task is
// idempotent, so overlapping ticks from several worker processes are safe.
type CleanupScheduler struct {
	queue    domain.Queue
	interval time.Duration
	logger   logger.Logger
}

// NewCleanupScheduler creates a new cleanup scheduler
func NewCleanupScheduler(queue domain.Queue, interval time.Duration, logger logger.Logger) *CleanupScheduler {
	return &CleanupScheduler{
		queue:    queue,
		interval: interval,
		logger:   logger,
	}
}

// Start runs the scheduling loop until the context is cancelled
func (s *CleanupScheduler) Start(ctx context.Context) {
	s.logger.WithField("interval", s.interval.String()).Info("Starting cleanup scheduler")

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Cleanup scheduler stopped")
			return
		case <-ticker.C:
			task := domain.CleanupTask{RequestedAt: time.Now().UTC()}
			if err := s.queue.Enqueue(ctx, domain.LaneCleanup, task, 0); err != nil {
				s.logger.Error(fmt.Sprintf("Failed to enqueue cleanup task: %v", err))
				continue
			}
			s.logger.Debug("Cleanup task enqueued")
		}
	}
}
