package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var limiterClock = time.Date(2025, 5, 2, 8, 0, 15, 0, time.UTC)

func setupRateLimiter(t *testing.T, maxReqs, windowSec int) (*RateLimiter, *miniredis.Miniredis, http.Handler) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	rl := NewRateLimiter(client, "webhook", maxReqs, windowSec)
	rl.now = func() time.Time { return limiterClock }
	handler := rl.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	return rl, mr, handler
}

func hitFrom(handler http.Handler, remoteAddr string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/travel_assistant", nil)
	req.RemoteAddr = remoteAddr
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestRateLimiter_AllowsUnderLimit(t *testing.T) {
	_, _, handler := setupRateLimiter(t, 5, 60)

	for i := 0; i < 5; i++ {
		rec := hitFrom(handler, "192.168.1.1:12345")
		require.Equal(t, http.StatusOK, rec.Code, "request %d", i+1)
		assert.Equal(t, "5", rec.Header().Get("X-RateLimit-Limit"))
	}
}

func TestRateLimiter_BlocksOverLimit(t *testing.T) {
	_, _, handler := setupRateLimiter(t, 3, 60)

	for i := 0; i < 3; i++ {
		require.Equal(t, http.StatusOK, hitFrom(handler, "10.0.0.1:12345").Code)
	}

	rec := hitFrom(handler, "10.0.0.1:12345")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))
	// 15s into a 60s window
	assert.Equal(t, "45", rec.Header().Get("Retry-After"))
}

func TestRateLimiter_NewWindowResetsBudget(t *testing.T) {
	rl, _, handler := setupRateLimiter(t, 1, 60)

	require.Equal(t, http.StatusOK, hitFrom(handler, "10.0.0.9:1").Code)
	require.Equal(t, http.StatusTooManyRequests, hitFrom(handler, "10.0.0.9:1").Code)

	rl.now = func() time.Time { return limiterClock.Add(time.Minute) }
	assert.Equal(t, http.StatusOK, hitFrom(handler, "10.0.0.9:1").Code)
}

func TestRateLimiter_DifferentIPsIndependent(t *testing.T) {
	_, _, handler := setupRateLimiter(t, 2, 60)

	hitFrom(handler, "1.1.1.1:1")
	hitFrom(handler, "1.1.1.1:1")

	assert.Equal(t, http.StatusOK, hitFrom(handler, "2.2.2.2:1").Code)
}

func TestRateLimiter_FailsOpenOnRedisError(t *testing.T) {
	_, mr, handler := setupRateLimiter(t, 1, 60)
	mr.Close()

	assert.Equal(t, http.StatusOK, hitFrom(handler, "3.3.3.3:1").Code)
}

func TestRateLimiter_UsesFirstForwardedHop(t *testing.T) {
	_, mr, handler := setupRateLimiter(t, 1, 60)

	req := httptest.NewRequest(http.MethodPost, "/api/travel_assistant", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.2")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	key := "ratelimit:webhook:203.0.113.7:" + "1746172800"
	assert.True(t, mr.Exists(key), "keys: %v", mr.Keys())
	assert.Greater(t, mr.TTL(key), time.Duration(0))
}
