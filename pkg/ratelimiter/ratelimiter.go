package ratelimiter

import (
	"strings"
	"sync"
	"time"
)

// RatePolicy is the per-scope limit: at most MaxRequests within Window.
type RatePolicy struct {
	MaxRequests int
	Window      time.Duration
}

// RateLimiter is an in-memory sliding-window limiter. Requests are counted
// per scope:key pair, where the scope names a route group and the key
// identifies the caller.
//
// A scope with no configured policy denies every request.
type RateLimiter struct {
	mu       sync.Mutex
	requests map[string][]time.Time
	policies map[string]RatePolicy
	stop     chan struct{}
	stopOnce sync.Once
}

// NewRateLimiter creates a rate limiter and starts its background sweep of
// stale entries. Call Stop when the limiter is no longer needed.
func NewRateLimiter() *RateLimiter {
	rl := &RateLimiter{
		requests: make(map[string][]time.Time),
		policies: make(map[string]RatePolicy),
		stop:     make(chan struct{}),
	}

	go rl.sweep()

	return rl
}

// SetPolicy configures the limit for a scope. Call it during setup, before
// Allow is used for that scope.
func (rl *RateLimiter) SetPolicy(scope string, maxRequests int, window time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.policies[scope] = RatePolicy{
		MaxRequests: maxRequests,
		Window:      window,
	}
}

// Allow records a request for scope and key and reports whether it fits
// inside the policy window. Unconfigured scopes fail closed.
func (rl *RateLimiter) Allow(scope, key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	policy, ok := rl.policies[scope]
	if !ok {
		return false
	}

	now := time.Now()
	cutoff := now.Add(-policy.Window)
	entry := scope + ":" + key

	valid := rl.requests[entry][:0]
	for _, t := range rl.requests[entry] {
		if t.After(cutoff) {
			valid = append(valid, t)
		}
	}

	if len(valid) >= policy.MaxRequests {
		rl.requests[entry] = valid
		return false
	}

	rl.requests[entry] = append(valid, now)
	return true
}

// RetryAfter returns the number of seconds until the oldest counted request
// for scope and key leaves the window, rounded up. It returns 0 when the
// caller is not currently limited.
func (rl *RateLimiter) RetryAfter(scope, key string) int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	policy, ok := rl.policies[scope]
	if !ok {
		return 0
	}

	cutoff := time.Now().Add(-policy.Window)

	var oldest time.Time
	for _, t := range rl.requests[scope+":"+key] {
		if t.After(cutoff) && (oldest.IsZero() || t.Before(oldest)) {
			oldest = t
		}
	}
	if oldest.IsZero() {
		return 0
	}

	remaining := time.Until(oldest.Add(policy.Window))
	if remaining <= 0 {
		return 0
	}
	return int(remaining.Seconds()) + 1
}

// Stop terminates the background sweep goroutine
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() {
		close(rl.stop)
	})
}

// sweep periodically drops entries whose every request has left its window,
// keeping the map bounded.
func (rl *RateLimiter) sweep() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-rl.stop:
			return
		case <-ticker.C:
			rl.mu.Lock()
			now := time.Now()
			for entry, times := range rl.requests {
				scope, _, _ := strings.Cut(entry, ":")
				policy, ok := rl.policies[scope]
				if !ok {
					delete(rl.requests, entry)
					continue
				}
				cutoff := now.Add(-policy.Window)
				live := false
				for _, t := range times {
					if t.After(cutoff) {
						live = true
						break
					}
				}
				if !live {
					delete(rl.requests, entry)
				}
			}
			rl.mu.Unlock()
		}
	}
}
