package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/hookline/hookline/internal/domain"
)

// webhookRepository implements domain.WebhookRepository for PostgreSQL
type webhookRepository struct {
	db *sql.DB
}

// NewWebhookRepository creates a new PostgreSQL webhook repository
func NewWebhookRepository(db *sql.DB) domain.WebhookRepository {
	return &webhookRepository{db: db}
}

// Create inserts a new webhook row and fills in its generated ID.
// Webhook rows are immutable after this point.
func (r *webhookRepository) Create(ctx context.Context, webhook *domain.Webhook) error {
	webhook.CreatedAt = time.Now().UTC()

	query := `
		INSERT INTO webhooks (
			subscription_id, event_type, payload, created_at
		) VALUES (
			$1, $2, $3, $4
		)
		RETURNING id
	`

	err := r.db.QueryRowContext(ctx, query,
		webhook.SubscriptionID,
		webhook.EventType,
		[]byte(webhook.Payload),
		webhook.CreatedAt,
	).Scan(&webhook.ID)

	if err != nil {
		return fmt.Errorf("failed to create webhook: %w", err)
	}

	return nil
}

// GetByID retrieves a webhook by ID
func (r *webhookRepository) GetByID(ctx context.Context, id int64) (*domain.Webhook, error) {
	query := `
		SELECT id, subscription_id, event_type, payload, created_at
		FROM webhooks
		WHERE id = $1
	`

	var webhook domain.Webhook
	var payload []byte

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&webhook.ID,
		&webhook.SubscriptionID,
		&webhook.EventType,
		&payload,
		&webhook.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, &domain.ErrNotFound{Entity: "webhook", ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get webhook: %w", err)
	}

	webhook.Payload = payload
	return &webhook, nil
}
