package ratelimiter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRateLimiter_Allow(t *testing.T) {
	t.Run("allows up to the policy limit", func(t *testing.T) {
		rl := NewRateLimiter()
		defer rl.Stop()
		rl.SetPolicy("ingest", 3, time.Minute)

		for i := 0; i < 3; i++ {
			assert.True(t, rl.Allow("ingest", "10.0.0.1"))
		}
		assert.False(t, rl.Allow("ingest", "10.0.0.1"))
	})

	t.Run("keys are counted independently", func(t *testing.T) {
		rl := NewRateLimiter()
		defer rl.Stop()
		rl.SetPolicy("ingest", 1, time.Minute)

		assert.True(t, rl.Allow("ingest", "10.0.0.1"))
		assert.False(t, rl.Allow("ingest", "10.0.0.1"))
		assert.True(t, rl.Allow("ingest", "10.0.0.2"))
	})

	t.Run("scopes are counted independently", func(t *testing.T) {
		rl := NewRateLimiter()
		defer rl.Stop()
		rl.SetPolicy("ingest", 1, time.Minute)
		rl.SetPolicy("subscriptions", 1, time.Minute)

		assert.True(t, rl.Allow("ingest", "10.0.0.1"))
		assert.True(t, rl.Allow("subscriptions", "10.0.0.1"))
		assert.False(t, rl.Allow("ingest", "10.0.0.1"))
	})

	t.Run("denies unconfigured scope", func(t *testing.T) {
		rl := NewRateLimiter()
		defer rl.Stop()

		assert.False(t, rl.Allow("unknown", "10.0.0.1"))
	})

	t.Run("window expiry frees the budget", func(t *testing.T) {
		rl := NewRateLimiter()
		defer rl.Stop()
		rl.SetPolicy("ingest", 1, 20*time.Millisecond)

		assert.True(t, rl.Allow("ingest", "10.0.0.1"))
		assert.False(t, rl.Allow("ingest", "10.0.0.1"))

		time.Sleep(30 * time.Millisecond)
		assert.True(t, rl.Allow("ingest", "10.0.0.1"))
	})
}

func TestRateLimiter_RetryAfter(t *testing.T) {
	t.Run("returns zero when not limited", func(t *testing.T) {
		rl := NewRateLimiter()
		defer rl.Stop()
		rl.SetPolicy("ingest", 5, time.Minute)

		assert.Zero(t, rl.RetryAfter("ingest", "10.0.0.1"))
	})

	t.Run("returns seconds until the window opens", func(t *testing.T) {
		rl := NewRateLimiter()
		defer rl.Stop()
		rl.SetPolicy("ingest", 1, time.Minute)

		assert.True(t, rl.Allow("ingest", "10.0.0.1"))
		retryAfter := rl.RetryAfter("ingest", "10.0.0.1")
		assert.Greater(t, retryAfter, 0)
		assert.LessOrEqual(t, retryAfter, 61)
	})

	t.Run("returns zero for unconfigured scope", func(t *testing.T) {
		rl := NewRateLimiter()
		defer rl.Stop()

		assert.Zero(t, rl.RetryAfter("unknown", "10.0.0.1"))
	})
}

func TestRateLimiter_StopIsIdempotent(t *testing.T) {
	rl := NewRateLimiter()
	rl.Stop()
	rl.Stop()
}
