package domain

//go:generate mockgen -destination mocks/mock_subscription_repository.go -package mocks github.com/hookline/hookline/internal/domain SubscriptionRepository
//go:generate mockgen -destination mocks/mock_subscription_cache.go -package mocks github.com/hookline/hookline/internal/domain SubscriptionCache

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/asaskevich/govalidator"
)

const (
	SecretMinLength = 8
	SecretMaxLength = 64
	MaxEventTypes   = 10
)

const (
	secretPattern    = `^[a-zA-Z0-9_\-]+$`
	eventTypePattern = `^[a-zA-Z0-9_\-\.]+$`
)

// Subscription is a registered receiver: a target URL, a signing secret and
// the set of event types it wants delivered.
type Subscription struct {
	ID         int64     `json:"id"`
	TargetURL  string    `json:"target_url"`
	Secret     string    `json:"secret,omitempty"`
	EventTypes []string  `json:"event_types"`
	IsActive   bool      `json:"is_active"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// HasEventType reports whether the subscription accepts the given event type.
// Membership is tested exactly, no wildcard matching.
func (s *Subscription) HasEventType(eventType string) bool {
	for _, t := range s.EventTypes {
		if t == eventType {
			return true
		}
	}
	return false
}

// CreateSubscriptionRequest is the payload for creating a subscription
type CreateSubscriptionRequest struct {
	TargetURL  string   `json:"target_url"`
	Secret     string   `json:"secret"`
	EventTypes []string `json:"event_types"`
}

// Validate checks the create request and returns a ValidationError describing
// the first violation found.
func (r *CreateSubscriptionRequest) Validate() error {
	if err := validateTargetURL(r.TargetURL); err != nil {
		return err
	}
	if err := validateSecret(r.Secret); err != nil {
		return err
	}
	return validateEventTypes(r.EventTypes)
}

// UpdateSubscriptionRequest is the payload for a partial subscription update.
// Nil fields are left unchanged.
type UpdateSubscriptionRequest struct {
	TargetURL  *string  `json:"target_url,omitempty"`
	Secret     *string  `json:"secret,omitempty"`
	EventTypes []string `json:"event_types,omitempty"`
	IsActive   *bool    `json:"is_active,omitempty"`
}

// Validate checks only the fields the update touches.
func (r *UpdateSubscriptionRequest) Validate() error {
	if r.TargetURL != nil {
		if err := validateTargetURL(*r.TargetURL); err != nil {
			return err
		}
	}
	if r.Secret != nil {
		if err := validateSecret(*r.Secret); err != nil {
			return err
		}
	}
	if r.EventTypes != nil {
		if err := validateEventTypes(r.EventTypes); err != nil {
			return err
		}
	}
	return nil
}

func validateTargetURL(rawURL string) error {
	if rawURL == "" {
		return NewValidationError("target_url is required")
	}
	if !govalidator.IsRequestURL(rawURL) {
		return NewValidationError(fmt.Sprintf("target_url is not a valid URL: %s", rawURL))
	}
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return NewValidationError(fmt.Sprintf("target_url is not a valid URL: %s", rawURL))
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return NewValidationError("target_url must use http or https scheme")
	}
	if parsed.Host == "" {
		return NewValidationError("target_url must have a host")
	}
	return nil
}

func validateSecret(secret string) error {
	if len(secret) < SecretMinLength || len(secret) > SecretMaxLength {
		return NewValidationError(fmt.Sprintf("secret must be between %d and %d characters", SecretMinLength, SecretMaxLength))
	}
	if !govalidator.Matches(secret, secretPattern) {
		return NewValidationError("secret must contain only alphanumeric characters, underscores, and hyphens")
	}
	return nil
}

func validateEventTypes(eventTypes []string) error {
	if len(eventTypes) == 0 {
		return NewValidationError("at least one event type is required")
	}
	if len(eventTypes) > MaxEventTypes {
		return NewValidationError(fmt.Sprintf("at most %d event types are allowed", MaxEventTypes))
	}
	for _, t := range eventTypes {
		if !govalidator.Matches(t, eventTypePattern) {
			return NewValidationError(fmt.Sprintf("invalid event type: %s", t))
		}
	}
	return nil
}

// SubscriptionRepository defines the interface for subscription data access
type SubscriptionRepository interface {
	Create(ctx context.Context, sub *Subscription) error
	GetByID(ctx context.Context, id int64) (*Subscription, error)
	List(ctx context.Context) ([]*Subscription, error)
	Update(ctx context.Context, sub *Subscription) error
	Delete(ctx context.Context, id int64) error
}

// SubscriptionCache is a read-through, write-invalidated cache of
// subscription snapshots. Snapshots may be stale for up to one TTL after a
// missed invalidation; the delivery worker tolerates that.
type SubscriptionCache interface {
	Get(ctx context.Context, id int64) (*Subscription, error)
	Invalidate(ctx context.Context, id int64) error
}
