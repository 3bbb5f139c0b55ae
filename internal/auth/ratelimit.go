package auth

import (
	"sync"
	"time"
)

// RateLimiter provides per-username login rate limiting using a sliding
// window. It is the only lock-holding state in the package; everything
// else delegates consistency to the stores.
type RateLimiter struct {
	mu      sync.Mutex
	windows map[string]*window
	limit   int           // max attempts per window
	window  time.Duration // window size
}

type window struct {
	count   int
	resetAt time.Time
}

// NewRateLimiter creates a rate limiter.
// Example: NewRateLimiter(10, time.Minute) → 10 attempts per minute per
// username.
func NewRateLimiter(limit int, windowSize time.Duration) *RateLimiter {
	return &RateLimiter{
		windows: make(map[string]*window),
		limit:   limit,
		window:  windowSize,
	}
}

// Allow checks if an attempt for the given key is allowed.
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	w, ok := rl.windows[key]
	if !ok || now.After(w.resetAt) {
		rl.windows[key] = &window{count: 1, resetAt: now.Add(rl.window)}
		return true
	}

	if w.count >= rl.limit {
		return false
	}

	w.count++
	return true
}
