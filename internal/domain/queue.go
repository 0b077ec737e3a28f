package domain

//go:generate mockgen -destination mocks/mock_queue.go -package mocks github.com/hookline/hookline/internal/domain Queue

import (
	"context"
	"encoding/json"
	"time"
)

// Queue lanes. Delivery tasks and cleanup tasks never share a lane so a
// retention sweep cannot starve deliveries.
const (
	LaneDeliver = "deliver"
	LaneCleanup = "cleanup"
)

// DeliveryTask is the payload carried on the deliver lane.
type DeliveryTask struct {
	WebhookID     int64 `json:"webhook_id"`
	AttemptNumber int   `json:"attempt_number"`
}

// CleanupTask is the payload carried on the cleanup lane. The task is
// idempotent; two concurrent sweeps delete disjoint row sets.
type CleanupTask struct {
	RequestedAt time.Time `json:"requested_at"`
}

// TaskMessage is one queued task with its acknowledgement token.
type TaskMessage struct {
	ID       string          `json:"id"`
	Lane     string          `json:"lane"`
	Body     json.RawMessage `json:"body"`
	Enqueued time.Time       `json:"enqueued"`
}

// Queue is a durable at-least-once task queue with delayed visibility.
// Unacked messages reappear after the visibility timeout.
type Queue interface {
	// Enqueue makes the payload consumable on the lane after the delay.
	Enqueue(ctx context.Context, lane string, payload interface{}, delay time.Duration) error
	// Consume blocks until a message is available or the context is done.
	Consume(ctx context.Context, lane string) (*TaskMessage, error)
	// Ack removes the message permanently.
	Ack(ctx context.Context, msg *TaskMessage) error
	// Nack returns the message to the lane for immediate redelivery.
	Nack(ctx context.Context, msg *TaskMessage) error
}
