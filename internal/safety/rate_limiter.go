package safety

import (
	"context"
	"sync"
	"time"
)

// RateLimiter implements token bucket rate limiting for venue calls.
type RateLimiter struct {
	capacity   int
	tokens     int
	refillRate int // tokens added per second
	lastRefill time.Time
	mutex      sync.Mutex
	name       string
}

// NewRateLimiter creates a full bucket with the given capacity and refill
// rate per second.
func NewRateLimiter(name string, capacity, refillRate int) *RateLimiter {
	return &RateLimiter{
		capacity:   capacity,
		tokens:     capacity,
		refillRate: refillRate,
		lastRefill: time.Now(),
		name:       name,
	}
}

// Allow reports whether one operation may proceed now.
func (rl *RateLimiter) Allow() bool {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()

	rl.refill()
	if rl.tokens >= 1 {
		rl.tokens--
		return true
	}
	return false
}

// Wait blocks until an operation is allowed or the context is done.
func (rl *RateLimiter) Wait(ctx context.Context) error {
	for {
		if rl.Allow() {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(rl.retryInterval()):
		}
	}
}

func (rl *RateLimiter) refill() {
	now := time.Now()
	elapsed := now.Sub(rl.lastRefill)
	if elapsed < time.Second {
		return
	}

	add := int(elapsed.Seconds()) * rl.refillRate
	if add > 0 {
		rl.tokens += add
		if rl.tokens > rl.capacity {
			rl.tokens = rl.capacity
		}
		rl.lastRefill = now
	}
}

func (rl *RateLimiter) retryInterval() time.Duration {
	if rl.refillRate <= 0 {
		return time.Second
	}
	return time.Second / time.Duration(rl.refillRate)
}
