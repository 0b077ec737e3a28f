package domain

//go:generate mockgen -destination mocks/mock_delivery_attempt_repository.go -package mocks github.com/hookline/hookline/internal/domain DeliveryAttemptRepository

import (
	"context"
	"net/http"
	"time"
)

// DeliveryAttempt records one outbound HTTP POST and its outcome.
// (webhook_id, attempt_number) is unique; the chain for a webhook is a
// gapless prefix 1..k.
type DeliveryAttempt struct {
	ID             int64     `json:"id"`
	SubscriptionID int64     `json:"subscription_id"`
	WebhookID      int64     `json:"webhook_id"`
	AttemptNumber  int       `json:"attempt_number"`
	StatusCode     *int      `json:"status_code,omitempty"`
	ResponseBody   *string   `json:"response_body,omitempty"`
	ErrorMessage   *string   `json:"error_message,omitempty"`
	IsSuccess      bool      `json:"is_success"`
	CreatedAt      time.Time `json:"created_at"`
}

// Outcome classifies a delivery attempt for retry purposes.
type Outcome int

const (
	// OutcomeSuccess is a 2xx response; the chain terminates.
	OutcomeSuccess Outcome = iota
	// OutcomeRetryable covers transport errors, timeouts, 408, 429 and 5xx;
	// the attempt is retried while attempts remain.
	OutcomeRetryable
	// OutcomePermanent covers the remaining 4xx responses; the target
	// explicitly rejected the payload and the chain terminates.
	OutcomePermanent
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeRetryable:
		return "retryable"
	case OutcomePermanent:
		return "permanent"
	default:
		return "unknown"
	}
}

// ClassifyStatus maps an HTTP status code to a delivery outcome.
// Transport errors carry no status and are always retryable.
func ClassifyStatus(statusCode int) Outcome {
	switch {
	case statusCode >= 200 && statusCode < 300:
		return OutcomeSuccess
	case statusCode == http.StatusRequestTimeout, statusCode == http.StatusTooManyRequests:
		return OutcomeRetryable
	case statusCode >= 500:
		return OutcomeRetryable
	default:
		return OutcomePermanent
	}
}

// DeliveryAttemptRepository defines the interface for delivery attempt data access
type DeliveryAttemptRepository interface {
	// Create inserts an attempt row. A duplicate (webhook_id, attempt_number)
	// pair returns ErrDuplicateAttempt.
	Create(ctx context.Context, attempt *DeliveryAttempt) error
	GetByID(ctx context.Context, id int64) (*DeliveryAttempt, error)
	ListBySubscription(ctx context.Context, subscriptionID int64, offset, limit int) ([]*DeliveryAttempt, error)
	// DeleteOlderThan removes up to batchSize attempts created before the
	// cutoff and returns the number deleted.
	DeleteOlderThan(ctx context.Context, cutoff time.Time, batchSize int) (int64, error)
}
