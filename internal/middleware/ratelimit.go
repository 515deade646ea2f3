package middleware

import (
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/gofiber/fiber/v3"
)

// RateLimitConfig caps requests per key within a fixed window.
type RateLimitConfig struct {
	Max    int
	Window time.Duration
	KeyFn  func(c fiber.Ctx) string
}

// Route limits. User-keyed limits sit behind RequireAuth.
var (
	FeedLimit     = RateLimitConfig{Max: 60, Window: time.Minute, KeyFn: KeyByUserID}
	ViewLimit     = RateLimitConfig{Max: 120, Window: time.Minute, KeyFn: KeyByUserID}
	BookmarkLimit = RateLimitConfig{Max: 30, Window: time.Minute, KeyFn: KeyByUserID}
	TargetLimit   = RateLimitConfig{Max: 100, Window: time.Minute, KeyFn: KeyByIP}
)

type window struct {
	count int
	ends  time.Time
}

// RateLimiter counts requests per key in memory. Counts are per process.
type RateLimiter struct {
	cfg RateLimitConfig

	mu      sync.Mutex
	windows map[string]*window
}

func NewRateLimiter(cfg RateLimitConfig) *RateLimiter {
	rl := &RateLimiter{cfg: cfg, windows: make(map[string]*window)}
	go rl.sweep(5 * time.Minute)
	return rl
}

// take counts one request for key and returns how many remain (negative once
// over the limit) and when the current window ends.
func (rl *RateLimiter) take(key string, now time.Time) (int, time.Time) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	w, ok := rl.windows[key]
	if !ok || now.After(w.ends) {
		w = &window{ends: now.Add(rl.cfg.Window)}
		rl.windows[key] = w
	}
	w.count++
	return rl.cfg.Max - w.count, w.ends
}

// Allow reports whether one more request for key fits in the current window.
func (rl *RateLimiter) Allow(key string) bool {
	remaining, _ := rl.take(key, time.Now())
	return remaining >= 0
}

// Handler rejects over-limit requests with 429 and a Retry-After header.
func (rl *RateLimiter) Handler() fiber.Handler {
	return func(c fiber.Ctx) error {
		now := time.Now()
		remaining, ends := rl.take(rl.cfg.KeyFn(c), now)

		c.Set("X-RateLimit-Limit", strconv.Itoa(rl.cfg.Max))
		c.Set("X-RateLimit-Remaining", strconv.Itoa(max(remaining, 0)))
		c.Set("X-RateLimit-Reset", strconv.FormatInt(ends.Unix(), 10))

		if remaining < 0 {
			retryAfter := int(ends.Sub(now).Seconds()) + 1
			c.Set(fiber.HeaderRetryAfter, strconv.Itoa(retryAfter))
			return ErrorResponse(c, fiber.StatusTooManyRequests, "RATE_LIMITED",
				fmt.Sprintf("Too many requests. Try again in %d seconds.", retryAfter))
		}
		return c.Next()
	}
}

func (rl *RateLimiter) sweep(every time.Duration) {
	ticker := time.NewTicker(every)
	for now := range ticker.C {
		rl.mu.Lock()
		for key, w := range rl.windows {
			if now.After(w.ends) {
				delete(rl.windows, key)
			}
		}
		rl.mu.Unlock()
	}
}

func KeyByIP(c fiber.Ctx) string {
	return "ip:" + c.IP()
}

// KeyByUserID keys on the token subject, or the client IP if there is none.
func KeyByUserID(c fiber.Ctx) string {
	if id, ok := UserID(c); ok {
		return "user:" + id.String()
	}
	return KeyByIP(c)
}
