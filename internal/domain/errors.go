package domain

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates a missing entity.
type ErrNotFound struct {
	Entity string
	ID     int64
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found with ID: %d", e.Entity, e.ID)
}

// IsNotFound reports whether err is an ErrNotFound.
func IsNotFound(err error) bool {
	var notFound *ErrNotFound
	return errors.As(err, &notFound)
}

// Sentinel errors surfaced by the ingest path.
var (
	// ErrSubscriptionInactive is returned when ingesting for a deactivated
	// subscription.
	ErrSubscriptionInactive = errors.New("subscription is not active")

	// ErrUnknownEventType is returned when the event type is not in the
	// subscription's set.
	ErrUnknownEventType = errors.New("event type is not subscribed")

	// ErrDuplicateAttempt is returned when an attempt row collides on
	// (webhook_id, attempt_number). The worker treats it as a terminal
	// duplicate of a redelivered task.
	ErrDuplicateAttempt = errors.New("delivery attempt already recorded")
)

// ValidationError represents an error that occurs due to invalid input or parameters
type ValidationError struct {
	Message string
}

// Error implements the error interface
func (e ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s", e.Message)
}

// NewValidationError creates a new validation error with the given message
func NewValidationError(message string) error {
	return ValidationError{
		Message: message,
	}
}

// IsValidationError reports whether err is a ValidationError.
func IsValidationError(err error) bool {
	var ve ValidationError
	return errors.As(err, &ve)
}
