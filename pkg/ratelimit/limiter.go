package ratelimit

import (
	"sync"
	"time"
)

// Limiter defines the interface for rate limiting
type Limiter interface {
	// Allow checks if a request is allowed under the current rate limit
	Allow() bool
	// Wait blocks until the rate limit allows another request
	Wait()
	// Reset resets the rate limiter state
	Reset()
}

// TokenBucket implements a token bucket rate limiter
type TokenBucket struct {
	capacity     int           // Maximum number of tokens
	tokens       int           // Current number of tokens
	refillPeriod time.Duration // Period after which bucket is refilled
	lastRefill   time.Time     // Last time the bucket was refilled
	now          func() time.Time
	sleep        func(time.Duration)
	mu           sync.Mutex
}

// NewTokenBucket creates a new token bucket rate limiter
func NewTokenBucket(capacity int, refillPeriod time.Duration) *TokenBucket {
	return newTokenBucket(capacity, refillPeriod, time.Now, time.Sleep)
}

// NewHourlyBudget returns a bucket allowing requestsPerHour simulated
// requests per hour, or nil when the budget is disabled (<= 0).
func NewHourlyBudget(requestsPerHour int) Limiter {
	if requestsPerHour <= 0 {
		return nil
	}
	return NewTokenBucket(requestsPerHour, time.Hour)
}

func newTokenBucket(capacity int, refillPeriod time.Duration, now func() time.Time, sleep func(time.Duration)) *TokenBucket {
	return &TokenBucket{
		capacity:     capacity,
		tokens:       capacity,
		refillPeriod: refillPeriod,
		lastRefill:   now(),
		now:          now,
		sleep:        sleep,
	}
}

// Allow checks if a request can proceed
func (tb *TokenBucket) Allow() bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	tb.refill()

	if tb.tokens > 0 {
		tb.tokens--
		return true
	}

	return false
}

// Wait blocks until a token is available
func (tb *TokenBucket) Wait() {
	for !tb.Allow() {
		tb.sleep(tb.UntilRefill())
	}
}

// UntilRefill returns the time left before the bucket is refilled
func (tb *TokenBucket) UntilRefill() time.Duration {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	remaining := tb.refillPeriod - tb.now().Sub(tb.lastRefill)
	if remaining <= 0 {
		// Small sleep to prevent busy waiting
		return 100 * time.Millisecond
	}
	return remaining
}

// Remaining returns the tokens left in the current period
func (tb *TokenBucket) Remaining() int {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	tb.refill()
	return tb.tokens
}

// Reset resets the token bucket to full capacity
func (tb *TokenBucket) Reset() {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	tb.tokens = tb.capacity
	tb.lastRefill = tb.now()
}

// refill adds tokens based on elapsed time
func (tb *TokenBucket) refill() {
	now := tb.now()
	elapsed := now.Sub(tb.lastRefill)

	if elapsed >= tb.refillPeriod {
		tb.tokens = tb.capacity
		tb.lastRefill = now
	}
}
