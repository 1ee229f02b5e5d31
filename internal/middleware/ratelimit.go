package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/veridoc-app/veridoc/internal/pkg/response"
)

const rateLimitMessage = "Trop de requêtes, veuillez réessayer plus tard"

type rateWindow struct {
	start time.Time
	count int
}

type rateLimiter struct {
	mu            sync.Mutex
	window        time.Duration
	max           int
	buckets       map[string]*rateWindow
	sweepInterval time.Duration
	lastSweep     time.Time
	now           func() time.Time
}

// RateLimit enforces a sliding window per client IP. The window resets once
// the elapsed time since its start exceeds the window length.
func RateLimit(window time.Duration, max int) gin.HandlerFunc {
	limiter := &rateLimiter{
		window:        window,
		max:           max,
		buckets:       make(map[string]*rateWindow),
		sweepInterval: window,
		now:           time.Now,
	}
	return limiter.handle
}

func (l *rateLimiter) handle(c *gin.Context) {
	if l.window <= 0 || l.max <= 0 {
		c.Next()
		return
	}
	ip := c.ClientIP()
	now := l.now()

	l.mu.Lock()
	l.maybeSweepLocked(now)
	bucket, exists := l.buckets[ip]
	if !exists || now.Sub(bucket.start) >= l.window {
		l.buckets[ip] = &rateWindow{start: now, count: 1}
		l.mu.Unlock()
		c.Next()
		return
	}
	if bucket.count >= l.max {
		l.mu.Unlock()
		logutil.GetLogger(c.Request.Context()).Warn("rate limit hit",
			zap.String("ip", ip),
			zap.String("path", c.Request.URL.Path),
		)
		response.Error(c, http.StatusTooManyRequests, rateLimitMessage)
		c.Abort()
		return
	}
	bucket.count++
	l.mu.Unlock()
	c.Next()
}

func (l *rateLimiter) maybeSweepLocked(now time.Time) {
	if !l.lastSweep.IsZero() && now.Sub(l.lastSweep) < l.sweepInterval {
		return
	}
	for key, bucket := range l.buckets {
		if now.Sub(bucket.start) >= l.window {
			delete(l.buckets, key)
		}
	}
	l.lastSweep = now
}
