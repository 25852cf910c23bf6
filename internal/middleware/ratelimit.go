package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/aiox-platform/travelbot/internal/metrics"
)

// RateLimiter is a fixed-window request counter per client IP, kept in Redis
// so that every replica shares the same budget.
type RateLimiter struct {
	client  redis.Cmdable
	scope   string
	maxReqs int
	window  time.Duration
	now     func() time.Time
}

// NewRateLimiter allows maxReqs requests per windowSec seconds for each
// client IP within scope.
func NewRateLimiter(client redis.Cmdable, scope string, maxReqs, windowSec int) *RateLimiter {
	return &RateLimiter{
		client:  client,
		scope:   scope,
		maxReqs: maxReqs,
		window:  time.Duration(windowSec) * time.Second,
		now:     time.Now,
	}
}

// Middleware rejects requests over budget with 429. Redis errors let the
// request through.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r)

		count, resetIn, err := rl.hit(r.Context(), ip)
		if err != nil {
			slog.Warn("rate limiter unavailable, allowing request", "error", err, "ip", ip)
			next.ServeHTTP(w, r)
			return
		}

		remaining := max(rl.maxReqs-int(count), 0)
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(rl.maxReqs))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))

		if count > int64(rl.maxReqs) {
			w.Header().Set("Retry-After", strconv.Itoa(int(resetIn.Seconds())))
			metrics.RateLimitedTotal.WithLabelValues(rl.scope).Inc()
			http.Error(w, "too many requests", http.StatusTooManyRequests)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// hit counts one request in the current window and returns the count so far
// and the time until the window resets.
func (rl *RateLimiter) hit(ctx context.Context, ip string) (int64, time.Duration, error) {
	now := rl.now()
	windowStart := now.Truncate(rl.window)
	key := fmt.Sprintf("ratelimit:%s:%s:%d", rl.scope, ip, windowStart.Unix())

	pipe := rl.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, rl.window+time.Second)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, 0, err
	}

	resetIn := windowStart.Add(rl.window).Sub(now)
	if resetIn < time.Second {
		resetIn = time.Second
	}
	return incr.Val(), resetIn, nil
}

func clientIP(r *http.Request) string {
	// The first X-Forwarded-For hop is the client behind the proxy.
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
