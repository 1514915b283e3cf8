package http

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jaldrishti/jaldrishti"
	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"
)

// RateLimitConfig holds configuration for per-IP rate limiting.
type RateLimitConfig struct {
	// PerMinute is the sustained request rate per client IP.
	PerMinute float64

	// Burst is the number of requests allowed at once.
	Burst int

	// CleanupInterval is how often idle limiters are dropped.
	CleanupInterval time.Duration

	// IdleTimeout is how long a limiter may go unused before it is dropped.
	IdleTimeout time.Duration
}

// DefaultRateLimitConfig returns the limits applied to image analysis.
func DefaultRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		PerMinute:       30,
		Burst:           10,
		CleanupInterval: time.Hour,
		IdleTimeout:     time.Hour,
	}
}

// RateLimiter tracks a token bucket per client IP.
//
// The client IP comes from c.RealIP(). Behind a proxy, configure Echo's
// IPExtractor so forged X-Forwarded-For headers cannot rotate identities.
type RateLimiter struct {
	limiters sync.Map // IP address -> *limiterEntry
	logger   *slog.Logger
	config   RateLimitConfig
	ctx      context.Context
	cancel   context.CancelFunc
}

type limiterEntry struct {
	limiter    *rate.Limiter
	lastAccess atomic.Int64 // Unix timestamp in seconds
}

// NewRateLimiter creates a rate limiter and starts its cleanup goroutine.
// Call Shutdown to stop it.
func NewRateLimiter(logger *slog.Logger, config RateLimitConfig) *RateLimiter {
	ctx, cancel := context.WithCancel(context.Background())

	if config.CleanupInterval <= 0 {
		config.CleanupInterval = time.Hour
	}
	if config.IdleTimeout <= 0 {
		config.IdleTimeout = time.Hour
	}

	rl := &RateLimiter{
		logger: logger,
		config: config,
		ctx:    ctx,
		cancel: cancel,
	}

	go rl.cleanupOldLimiters()

	return rl
}

// Middleware rejects requests over the limit with 429 and a Retry-After hint.
// A non-positive rate disables limiting.
func (rl *RateLimiter) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if rl.config.PerMinute <= 0 {
				return next(c)
			}

			ip := c.RealIP()
			limiter := rl.GetLimiter(ip)
			limit := fmt.Sprintf("%.0f", rl.config.PerMinute)

			if !limiter.Allow() {
				rl.logger.Warn("rate limit exceeded",
					slog.String("ip", ip),
					slog.String("path", c.Path()),
					slog.String("method", c.Request().Method))

				retryAfter := int(math.Ceil(60 / rl.config.PerMinute))
				c.Response().Header().Set("Retry-After", fmt.Sprintf("%d", max(retryAfter, 1)))
				c.Response().Header().Set("X-RateLimit-Limit", limit)
				c.Response().Header().Set("X-RateLimit-Remaining", "0")

				return jaldrishti.Errorf(jaldrishti.ERATELIMIT, "Too many analysis requests, please try again later.")
			}

			c.Response().Header().Set("X-RateLimit-Limit", limit)
			return next(c)
		}
	}
}

// GetLimiter returns the limiter for ip, creating it on first use.
func (rl *RateLimiter) GetLimiter(ip string) *rate.Limiter {
	now := time.Now().Unix()
	if entry, exists := rl.limiters.Load(ip); exists {
		limEntry := entry.(*limiterEntry)
		limEntry.lastAccess.Store(now)
		return limEntry.limiter
	}

	entry := &limiterEntry{
		limiter: rate.NewLimiter(rate.Limit(rl.config.PerMinute/60), rl.config.Burst),
	}
	entry.lastAccess.Store(now)
	actual, _ := rl.limiters.LoadOrStore(ip, entry)
	return actual.(*limiterEntry).limiter
}

// cleanupOldLimiters periodically drops limiters idle longer than IdleTimeout.
func (rl *RateLimiter) cleanupOldLimiters() {
	ticker := time.NewTicker(rl.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if removed := rl.sweep(time.Now()); removed > 0 {
				rl.logger.Info("cleaned up old rate limiters", slog.Int("removed", removed))
			}
		case <-rl.ctx.Done():
			rl.logger.Debug("rate limiter cleanup goroutine stopping")
			return
		}
	}
}

func (rl *RateLimiter) sweep(now time.Time) int {
	var removed int
	threshold := int64(rl.config.IdleTimeout.Seconds())
	rl.limiters.Range(func(key, value any) bool {
		entry := value.(*limiterEntry)
		if now.Unix()-entry.lastAccess.Load() > threshold {
			rl.limiters.Delete(key)
			removed++
		}
		return true
	})
	return removed
}

// Shutdown stops the cleanup goroutine.
func (rl *RateLimiter) Shutdown() {
	if rl.cancel != nil {
		rl.cancel()
	}
}
