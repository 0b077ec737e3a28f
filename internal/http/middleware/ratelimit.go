package middleware

import (
	"net"
	"net/http"
	"strconv"

	"github.com/hookline/hookline/pkg/ratelimiter"
)

// RateLimit applies a per-client limit for one route scope. The client key is
// the remote IP; limited requests get a 429 with a Retry-After header.
func RateLimit(rl *ratelimiter.RateLimiter, scope string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := clientIP(r)
			if !rl.Allow(scope, key) {
				if retryAfter := rl.RetryAfter(scope, key); retryAfter > 0 {
					w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
				}
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				_, _ = w.Write([]byte(`{"error":"Rate limit exceeded"}`))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// clientIP extracts the caller address, stripping the port
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
