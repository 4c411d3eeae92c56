package serverutils

import (
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

const minLimiterIdle = time.Minute

// RateLimiter keeps one token bucket per authenticated user. Buckets idle
// longer than a full refill are evicted; a fresh bucket is equivalent.
type RateLimiter struct {
	mu     sync.Mutex
	limits *cache.Cache
	every  time.Duration
	burst  int
}

func NewRateLimiter(perMinute, burst int) *RateLimiter {
	if perMinute <= 0 {
		perMinute = 1
	}
	if burst <= 0 {
		burst = 1
	}
	every := time.Minute / time.Duration(perMinute)
	idle := every * time.Duration(burst)
	if idle < minLimiterIdle {
		idle = minLimiterIdle
	}
	return newRateLimiter(every, burst, idle)
}

func newRateLimiter(every time.Duration, burst int, idle time.Duration) *RateLimiter {
	return &RateLimiter{
		limits: cache.New(idle, idle),
		every:  every,
		burst:  burst,
	}
}

func (rl *RateLimiter) getLimiter(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	limiter, ok := rl.limits.Get(key)
	if !ok {
		limiter = rate.NewLimiter(rate.Every(rl.every), rl.burst)
	}
	// Sliding expiry: every hit restarts the idle window.
	rl.limits.SetDefault(key, limiter)
	return limiter.(*rate.Limiter)
}

func (rl *RateLimiter) Allow(key string) bool {
	return rl.getLimiter(key).Allow()
}

// Middleware must run after JwtMiddleware; it keys buckets by user id.
func (rl *RateLimiter) Middleware(ctx *fiber.Ctx) error {
	userId, err := UserID(ctx)
	if err != nil {
		return err
	}
	if !rl.Allow(userId) {
		return TooManyRequests("Too many requests. Please slow down and try again in a moment.", nil)
	}
	return ctx.Next()
}
