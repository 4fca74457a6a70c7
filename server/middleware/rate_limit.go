package middleware

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"

	"github.com/hrygo/folio/server/internal/observability"
)

// DefaultIdleTimeout is how long a client may stay silent before its limiter is dropped.
const DefaultIdleTimeout = 10 * time.Minute

// RateLimiter provides per-client rate limiting.
type RateLimiter struct {
	mu     sync.Mutex
	limits map[string]*clientLimiter

	limit       rate.Limit
	burst       int
	idleTimeout time.Duration
	lastSweep   time.Time
	now         func() time.Time
}

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter creates a rate limiter allowing perSecond requests per client with the given burst.
func NewRateLimiter(perSecond float64, burst int) *RateLimiter {
	return &RateLimiter{
		limits:      make(map[string]*clientLimiter),
		limit:       rate.Limit(perSecond),
		burst:       burst,
		idleTimeout: DefaultIdleTimeout,
		lastSweep:   time.Now(),
		now:         time.Now,
	}
}

// getLimiter gets or creates a limiter for the given key.
// Limiters idle for longer than idleTimeout are swept at most once per idleTimeout.
func (rl *RateLimiter) getLimiter(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	if now.Sub(rl.lastSweep) >= rl.idleTimeout {
		for k, client := range rl.limits {
			if now.Sub(client.lastSeen) >= rl.idleTimeout {
				delete(rl.limits, k)
			}
		}
		rl.lastSweep = now
	}

	client, ok := rl.limits[key]
	if !ok {
		client = &clientLimiter{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.limits[key] = client
	}
	client.lastSeen = now
	return client.limiter
}

// Allow checks if a request is allowed for the given key.
func (rl *RateLimiter) Allow(key string) bool {
	return rl.getLimiter(key).Allow()
}

// Len returns the number of clients currently tracked.
func (rl *RateLimiter) Len() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.limits)
}

// Middleware rejects requests over the client's budget with 429. Clients are keyed by real IP.
// When prefixes are given, only request paths under one of them are limited.
func (rl *RateLimiter) Middleware(prefixes ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !limited(c.Request().URL.Path, prefixes) {
				return next(c)
			}
			if !rl.Allow(c.RealIP()) {
				observability.RateLimitRejections.Inc()
				return c.JSON(http.StatusTooManyRequests, map[string]string{"message": "rate limit exceeded"})
			}
			return next(c)
		}
	}
}

func limited(path string, prefixes []string) bool {
	if len(prefixes) == 0 {
		return true
	}
	for _, prefix := range prefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}
