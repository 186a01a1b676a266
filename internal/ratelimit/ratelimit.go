package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Limiter enforces a minimum delay between actions sharing a key. It backs
// the OTP resend cooldown (one key per channel) and keeps alert polling from
// hammering the API (one shared key).
type Limiter struct {
	mu       sync.Mutex
	lastCall map[string]time.Time
	minDelay time.Duration
	now      func() time.Time
}

// NewLimiter creates a limiter that enforces minDelay between consecutive
// actions for the same key.
func NewLimiter(minDelay time.Duration) *Limiter {
	return &Limiter{
		lastCall: make(map[string]time.Time),
		minDelay: minDelay,
		now:      time.Now,
	}
}

// Allow records the action and returns true when the key is not cooling down.
// Otherwise it returns false and the time left before the next allowed action.
func (r *Limiter) Allow(key string) (bool, time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	if last, ok := r.lastCall[key]; ok {
		if elapsed := now.Sub(last); elapsed < r.minDelay {
			return false, r.minDelay - elapsed
		}
	}
	r.lastCall[key] = now
	return true, 0
}

// Remaining returns how long the key still has to wait, without recording anything.
func (r *Limiter) Remaining(key string) time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()

	last, ok := r.lastCall[key]
	if !ok {
		return 0
	}
	if elapsed := r.now().Sub(last); elapsed < r.minDelay {
		return r.minDelay - elapsed
	}
	return 0
}

// Reset forgets the key so the next action is allowed immediately.
func (r *Limiter) Reset(key string) {
	r.mu.Lock()
	delete(r.lastCall, key)
	r.mu.Unlock()
}

// Wait blocks until enough time has passed since the last action for key.
// Returns an error if the context is cancelled while waiting.
func (r *Limiter) Wait(ctx context.Context, key string) error {
	r.mu.Lock()
	last, ok := r.lastCall[key]
	now := r.now()

	if !ok || now.Sub(last) >= r.minDelay {
		r.lastCall[key] = now
		r.mu.Unlock()
		return nil
	}

	remaining := r.minDelay - now.Sub(last)
	r.mu.Unlock()

	select {
	case <-ctx.Done():
		return fmt.Errorf("rate limiter wait for %s: %w", key, ctx.Err())
	case <-time.After(remaining):
	}

	r.mu.Lock()
	r.lastCall[key] = r.now()
	r.mu.Unlock()

	return nil
}
