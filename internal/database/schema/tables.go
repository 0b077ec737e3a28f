// Package schema defines the database schema.
package schema

// TableDefinitions contains all the SQL statements to create the database
// tables and their indexes, in dependency order.
var TableDefinitions = []string{
	`CREATE TABLE IF NOT EXISTS subscriptions (
		id BIGSERIAL PRIMARY KEY,
		target_url TEXT NOT NULL,
		secret VARCHAR(64) NOT NULL,
		event_types JSONB NOT NULL,
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_subscriptions_is_active ON subscriptions(is_active)`,
	`CREATE INDEX IF NOT EXISTS idx_subscriptions_event_types ON subscriptions USING GIN (event_types)`,

	`CREATE TABLE IF NOT EXISTS webhooks (
		id BIGSERIAL PRIMARY KEY,
		subscription_id BIGINT NOT NULL REFERENCES subscriptions(id) ON DELETE CASCADE,
		event_type VARCHAR(255) NOT NULL,
		payload JSONB NOT NULL,
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_webhooks_subscription_id ON webhooks(subscription_id)`,
	`CREATE INDEX IF NOT EXISTS idx_webhooks_event_type ON webhooks(event_type)`,
	`CREATE INDEX IF NOT EXISTS idx_webhooks_created_at ON webhooks(created_at)`,

	`CREATE TABLE IF NOT EXISTS delivery_attempts (
		id BIGSERIAL PRIMARY KEY,
		subscription_id BIGINT NOT NULL REFERENCES subscriptions(id) ON DELETE CASCADE,
		webhook_id BIGINT NOT NULL REFERENCES webhooks(id) ON DELETE CASCADE,
		attempt_number INTEGER NOT NULL,
		status_code INTEGER,
		response_body TEXT,
		error_message TEXT,
		is_success BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL,
		UNIQUE (webhook_id, attempt_number)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_delivery_attempts_subscription_id ON delivery_attempts(subscription_id)`,
	`CREATE INDEX IF NOT EXISTS idx_delivery_attempts_webhook_id ON delivery_attempts(webhook_id)`,
	`CREATE INDEX IF NOT EXISTS idx_delivery_attempts_created_at ON delivery_attempts(created_at)`,
	`CREATE INDEX IF NOT EXISTS idx_delivery_attempts_is_success ON delivery_attempts(is_success)`,
}
