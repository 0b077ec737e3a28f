package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := LoadWithOptions(LoadOptions{})
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, "hookline", cfg.Database.DBName)
	assert.Equal(t, 20, cfg.Database.MaxOpenConns)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)

	assert.Equal(t, 5, cfg.Delivery.MaxAttempts)
	assert.Equal(t, []time.Duration{
		10 * time.Second,
		30 * time.Second,
		60 * time.Second,
		300 * time.Second,
		900 * time.Second,
	}, cfg.Delivery.BackoffSchedule)
	assert.Equal(t, 10*time.Second, cfg.Delivery.RequestTimeout)
	assert.Equal(t, 4096, cfg.Delivery.ResponseBodyCapture)
	assert.Equal(t, int64(200), cfg.Delivery.OutboundConcurrency)
	assert.Equal(t, 300*time.Second, cfg.Delivery.CacheTTL)

	assert.Equal(t, 72*time.Hour, cfg.Retention.Window)
	assert.Equal(t, 60*time.Minute, cfg.Retention.CleanupInterval)
	assert.Equal(t, 1000, cfg.Retention.BatchSize)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("MAX_ATTEMPTS", "3")
	t.Setenv("BACKOFF_SCHEDULE_SECONDS", "5,15,45")
	t.Setenv("RETENTION_HOURS", "24")

	cfg, err := LoadWithOptions(LoadOptions{})
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 3, cfg.Delivery.MaxAttempts)
	assert.Equal(t, []time.Duration{5 * time.Second, 15 * time.Second, 45 * time.Second}, cfg.Delivery.BackoffSchedule)
	assert.Equal(t, 24*time.Hour, cfg.Retention.Window)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	t.Run("zero max attempts", func(t *testing.T) {
		t.Setenv("MAX_ATTEMPTS", "0")

		_, err := LoadWithOptions(LoadOptions{})
		assert.Error(t, err)
	})

	t.Run("malformed backoff schedule", func(t *testing.T) {
		t.Setenv("BACKOFF_SCHEDULE_SECONDS", "10,abc,60")

		_, err := LoadWithOptions(LoadOptions{})
		assert.Error(t, err)
	})

	t.Run("negative backoff delay", func(t *testing.T) {
		t.Setenv("BACKOFF_SCHEDULE_SECONDS", "10,-30")

		_, err := LoadWithOptions(LoadOptions{})
		assert.Error(t, err)
	})
}

func TestDeliveryConfigBackoff(t *testing.T) {
	cfg := DeliveryConfig{
		BackoffSchedule: []time.Duration{10 * time.Second, 30 * time.Second, 60 * time.Second},
	}

	assert.Equal(t, 10*time.Second, cfg.Backoff(1))
	assert.Equal(t, 30*time.Second, cfg.Backoff(2))
	assert.Equal(t, 60*time.Second, cfg.Backoff(3))
	// Past the end of the schedule the last delay is reused.
	assert.Equal(t, 60*time.Second, cfg.Backoff(7))

	assert.Equal(t, time.Duration(0), DeliveryConfig{}.Backoff(1))
}

func TestDatabaseConfigDSN(t *testing.T) {
	cfg := DatabaseConfig{
		Host:     "db.internal",
		Port:     5433,
		User:     "hookline",
		Password: "secret",
		DBName:   "hooks",
		SSLMode:  "require",
	}

	assert.Equal(t,
		"host=db.internal port=5433 user=hookline password=secret dbname=hooks sslmode=require",
		cfg.DSN())
}
