package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hookline/hookline/internal/domain"
)

// subscriptionRepository implements domain.SubscriptionRepository for PostgreSQL
type subscriptionRepository struct {
	db *sql.DB
}

// NewSubscriptionRepository creates a new PostgreSQL subscription repository
func NewSubscriptionRepository(db *sql.DB) domain.SubscriptionRepository {
	return &subscriptionRepository{db: db}
}

// Create inserts a new subscription and fills in its generated ID and timestamps
func (r *subscriptionRepository) Create(ctx context.Context, sub *domain.Subscription) error {
	now := time.Now().UTC()
	sub.CreatedAt = now
	sub.UpdatedAt = now

	eventTypesJSON, err := json.Marshal(sub.EventTypes)
	if err != nil {
		return fmt.Errorf("failed to marshal event types: %w", err)
	}

	query := `
		INSERT INTO subscriptions (
			target_url, secret, event_types, is_active, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6
		)
		RETURNING id
	`

	err = r.db.QueryRowContext(ctx, query,
		sub.TargetURL,
		sub.Secret,
		eventTypesJSON,
		sub.IsActive,
		sub.CreatedAt,
		sub.UpdatedAt,
	).Scan(&sub.ID)

	if err != nil {
		return fmt.Errorf("failed to create subscription: %w", err)
	}

	return nil
}

// GetByID retrieves a subscription by ID
func (r *subscriptionRepository) GetByID(ctx context.Context, id int64) (*domain.Subscription, error) {
	query := `
		SELECT id, target_url, secret, event_types, is_active, created_at, updated_at
		FROM subscriptions
		WHERE id = $1
	`

	row := r.db.QueryRowContext(ctx, query, id)
	sub, err := scanSubscription(row)
	if err == sql.ErrNoRows {
		return nil, &domain.ErrNotFound{Entity: "subscription", ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get subscription: %w", err)
	}

	return sub, nil
}

// List retrieves all subscriptions, newest first
func (r *subscriptionRepository) List(ctx context.Context) ([]*domain.Subscription, error) {
	query := `
		SELECT id, target_url, secret, event_types, is_active, created_at, updated_at
		FROM subscriptions
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list subscriptions: %w", err)
	}
	defer rows.Close()

	var subscriptions []*domain.Subscription
	for rows.Next() {
		sub, err := scanSubscription(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan subscription: %w", err)
		}
		subscriptions = append(subscriptions, sub)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating subscription rows: %w", err)
	}

	return subscriptions, nil
}

// Update persists the mutable fields of a subscription
func (r *subscriptionRepository) Update(ctx context.Context, sub *domain.Subscription) error {
	sub.UpdatedAt = time.Now().UTC()

	eventTypesJSON, err := json.Marshal(sub.EventTypes)
	if err != nil {
		return fmt.Errorf("failed to marshal event types: %w", err)
	}

	query := `
		UPDATE subscriptions
		SET target_url = $1, secret = $2, event_types = $3, is_active = $4, updated_at = $5
		WHERE id = $6
	`

	result, err := r.db.ExecContext(ctx, query,
		sub.TargetURL,
		sub.Secret,
		eventTypesJSON,
		sub.IsActive,
		sub.UpdatedAt,
		sub.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update subscription: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return &domain.ErrNotFound{Entity: "subscription", ID: sub.ID}
	}

	return nil
}

// Delete removes a subscription. Webhooks and delivery attempts cascade.
func (r *subscriptionRepository) Delete(ctx context.Context, id int64) error {
	query := `DELETE FROM subscriptions WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete subscription: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return &domain.ErrNotFound{Entity: "subscription", ID: id}
	}

	return nil
}

// scanner abstracts *sql.Row and *sql.Rows for the scan helpers
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanSubscription(s scanner) (*domain.Subscription, error) {
	var sub domain.Subscription
	var eventTypesJSON []byte

	err := s.Scan(
		&sub.ID,
		&sub.TargetURL,
		&sub.Secret,
		&eventTypesJSON,
		&sub.IsActive,
		&sub.CreatedAt,
		&sub.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(eventTypesJSON, &sub.EventTypes); err != nil {
		return nil, fmt.Errorf("failed to unmarshal event types: %w", err)
	}

	return &sub, nil
}
