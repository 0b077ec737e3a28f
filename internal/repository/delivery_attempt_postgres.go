package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/hookline/hookline/internal/domain"
)

var deliveryAttemptPsql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// deliveryAttemptRepository implements domain.DeliveryAttemptRepository for PostgreSQL
type deliveryAttemptRepository struct {
	db *sql.DB
}

// NewDeliveryAttemptRepository creates a new PostgreSQL delivery attempt repository
func NewDeliveryAttemptRepository(db *sql.DB) domain.DeliveryAttemptRepository {
	return &deliveryAttemptRepository{db: db}
}

// Create inserts an attempt row. The unique constraint on
// (webhook_id, attempt_number) surfaces as domain.ErrDuplicateAttempt so the
// worker can recognize a redelivered task.
func (r *deliveryAttemptRepository) Create(ctx context.Context, attempt *domain.DeliveryAttempt) error {
	attempt.CreatedAt = time.Now().UTC()

	query := `
		INSERT INTO delivery_attempts (
			subscription_id, webhook_id, attempt_number,
			status_code, response_body, error_message,
			is_success, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8
		)
		RETURNING id
	`

	err := r.db.QueryRowContext(ctx, query,
		attempt.SubscriptionID,
		attempt.WebhookID,
		attempt.AttemptNumber,
		nullableInt(attempt.StatusCode),
		nullableString(attempt.ResponseBody),
		nullableString(attempt.ErrorMessage),
		attempt.IsSuccess,
		attempt.CreatedAt,
	).Scan(&attempt.ID)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return domain.ErrDuplicateAttempt
		}
		return fmt.Errorf("failed to create delivery attempt: %w", err)
	}

	return nil
}

// GetByID retrieves a delivery attempt by ID
func (r *deliveryAttemptRepository) GetByID(ctx context.Context, id int64) (*domain.DeliveryAttempt, error) {
	query := `
		SELECT id, subscription_id, webhook_id, attempt_number,
			status_code, response_body, error_message,
			is_success, created_at
		FROM delivery_attempts
		WHERE id = $1
	`

	row := r.db.QueryRowContext(ctx, query, id)
	attempt, err := scanDeliveryAttempt(row)
	if err == sql.ErrNoRows {
		return nil, &domain.ErrNotFound{Entity: "delivery attempt", ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get delivery attempt: %w", err)
	}

	return attempt, nil
}

// ListBySubscription retrieves attempts for a subscription, newest first
func (r *deliveryAttemptRepository) ListBySubscription(ctx context.Context, subscriptionID int64, offset, limit int) ([]*domain.DeliveryAttempt, error) {
	query, args, err := deliveryAttemptPsql.
		Select(
			"id", "subscription_id", "webhook_id", "attempt_number",
			"status_code", "response_body", "error_message",
			"is_success", "created_at",
		).
		From("delivery_attempts").
		Where(sq.Eq{"subscription_id": subscriptionID}).
		OrderBy("created_at DESC", "id DESC").
		Offset(uint64(offset)).
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list delivery attempts: %w", err)
	}
	defer rows.Close()

	var attempts []*domain.DeliveryAttempt
	for rows.Next() {
		attempt, err := scanDeliveryAttempt(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan delivery attempt: %w", err)
		}
		attempts = append(attempts, attempt)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating delivery attempt rows: %w", err)
	}

	return attempts, nil
}

// DeleteOlderThan removes up to batchSize attempts created before the cutoff.
// The subselect keeps each DELETE bounded so the sweeper never holds a long
// transaction over a large table.
func (r *deliveryAttemptRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time, batchSize int) (int64, error) {
	query := `
		DELETE FROM delivery_attempts
		WHERE id IN (
			SELECT id FROM delivery_attempts
			WHERE created_at < $1
			ORDER BY id
			LIMIT $2
		)
	`

	result, err := r.db.ExecContext(ctx, query, cutoff, batchSize)
	if err != nil {
		return 0, fmt.Errorf("failed to delete delivery attempts: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get affected rows: %w", err)
	}

	return affected, nil
}

func scanDeliveryAttempt(s scanner) (*domain.DeliveryAttempt, error) {
	var attempt domain.DeliveryAttempt
	var statusCode sql.NullInt64
	var responseBody, errorMessage sql.NullString

	err := s.Scan(
		&attempt.ID,
		&attempt.SubscriptionID,
		&attempt.WebhookID,
		&attempt.AttemptNumber,
		&statusCode,
		&responseBody,
		&errorMessage,
		&attempt.IsSuccess,
		&attempt.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if statusCode.Valid {
		code := int(statusCode.Int64)
		attempt.StatusCode = &code
	}
	if responseBody.Valid {
		attempt.ResponseBody = &responseBody.String
	}
	if errorMessage.Valid {
		attempt.ErrorMessage = &errorMessage.String
	}

	return &attempt, nil
}

func nullableInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

func nullableString(v *string) sql.NullString {
	if v == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *v, Valid: true}
}
