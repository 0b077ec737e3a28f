package domain

//go:generate mockgen -destination mocks/mock_webhook_repository.go -package mocks github.com/hookline/hookline/internal/domain WebhookRepository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/tidwall/gjson"
)

// Webhook is one ingested event bound to a subscription. Rows are created
// exactly once by ingest and never mutated; they disappear only when the
// owning subscription is deleted.
type Webhook struct {
	ID             int64           `json:"id"`
	SubscriptionID int64           `json:"subscription_id"`
	EventType      string          `json:"event_type"`
	Payload        json.RawMessage `json:"payload"`
	CreatedAt      time.Time       `json:"created_at"`
}

// IngestRequest is the body of POST /ingest/{subscription_id}.
// The payload is kept as raw bytes; the only operation the pipeline performs
// on it is canonical serialization for signing.
type IngestRequest struct {
	EventType string          `json:"event_type"`
	Payload   json.RawMessage `json:"payload"`
}

// Validate checks the ingest request shape.
func (r *IngestRequest) Validate() error {
	if r.EventType == "" {
		return NewValidationError("event_type is required")
	}
	if len(r.Payload) == 0 {
		return NewValidationError("payload is required")
	}
	if !gjson.ValidBytes(r.Payload) {
		return NewValidationError("payload is not valid JSON")
	}
	return nil
}

// WebhookRepository defines the interface for webhook data access
type WebhookRepository interface {
	Create(ctx context.Context, webhook *Webhook) error
	GetByID(ctx context.Context, id int64) (*Webhook, error)
}
