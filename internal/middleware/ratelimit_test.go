package middleware

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func newLimiterContext(t *testing.T) *gin.Context {
	t.Helper()
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/api/v1/documents/1", nil)
	c.Request.RemoteAddr = "10.1.2.3:52000"
	return c
}

func TestRateLimiterBlocksAboveThreshold(t *testing.T) {
	gin.SetMode(gin.TestMode)
	now := time.Now()
	limiter := &rateLimiter{
		window:        15 * time.Minute,
		max:           100,
		buckets:       make(map[string]*rateWindow),
		sweepInterval: 15 * time.Minute,
		now:           func() time.Time { return now },
	}

	for i := 0; i < 100; i++ {
		c := newLimiterContext(t)
		limiter.handle(c)
		require.False(t, c.IsAborted(), "request %d should pass", i+1)
	}

	c := newLimiterContext(t)
	limiter.handle(c)
	require.True(t, c.IsAborted(), "request 101 must be rejected")
	require.Equal(t, 429, c.Writer.Status())
}

func TestRateLimiterWindowReset(t *testing.T) {
	gin.SetMode(gin.TestMode)
	now := time.Now()
	limiter := &rateLimiter{
		window:        15 * time.Minute,
		max:           1,
		buckets:       make(map[string]*rateWindow),
		sweepInterval: 15 * time.Minute,
		now:           func() time.Time { return now },
	}

	c := newLimiterContext(t)
	limiter.handle(c)
	require.False(t, c.IsAborted())

	c = newLimiterContext(t)
	limiter.handle(c)
	require.True(t, c.IsAborted())

	now = now.Add(15*time.Minute + time.Second)
	c = newLimiterContext(t)
	limiter.handle(c)
	require.False(t, c.IsAborted(), "a fresh window must open once the old one elapses")
}

func TestRateLimiterIsolatesClients(t *testing.T) {
	gin.SetMode(gin.TestMode)
	now := time.Now()
	limiter := &rateLimiter{
		window:        15 * time.Minute,
		max:           1,
		buckets:       make(map[string]*rateWindow),
		sweepInterval: 15 * time.Minute,
		now:           func() time.Time { return now },
	}

	c := newLimiterContext(t)
	limiter.handle(c)
	require.False(t, c.IsAborted())

	other := newLimiterContext(t)
	other.Request.RemoteAddr = "10.9.9.9:41000"
	limiter.handle(other)
	require.False(t, other.IsAborted(), "limits are scoped per client IP")
}

func TestRateLimiterSweepDropsExpiredBuckets(t *testing.T) {
	base := time.Now()
	limiter := &rateLimiter{
		window:        15 * time.Minute,
		max:           100,
		buckets:       make(map[string]*rateWindow),
		sweepInterval: 15 * time.Minute,
		now:           time.Now,
	}
	limiter.buckets["expired"] = &rateWindow{start: base.Add(-20 * time.Minute), count: 50}
	limiter.buckets["active"] = &rateWindow{start: base.Add(-2 * time.Minute), count: 3}

	limiter.mu.Lock()
	limiter.maybeSweepLocked(base)
	limiter.mu.Unlock()

	require.NotContains(t, limiter.buckets, "expired")
	require.Contains(t, limiter.buckets, "active")
	require.False(t, limiter.lastSweep.IsZero())
}
