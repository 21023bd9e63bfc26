package services

import (
	"context"
	"sync"
	"time"
)

const (
	DefaultRateLimitMessages = 10
	DefaultRateLimitWindow   = 60 * time.Second
)

// RateLimiter is a sliding-window log: at most Limit sends in any rolling
// Window per user. A permitted call consumes its slot immediately.
type RateLimiter struct {
	Limit  int
	Window time.Duration

	mu   sync.Mutex
	hits map[string][]time.Time
	now  func() time.Time
}

func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	if limit <= 0 {
		limit = DefaultRateLimitMessages
	}
	if window <= 0 {
		window = DefaultRateLimitWindow
	}
	return &RateLimiter{
		Limit:  limit,
		Window: window,
		hits:   make(map[string][]time.Time),
		now:    time.Now,
	}
}

// Allow reports whether userID may send now. When it may not, retryAfter is
// the time until the oldest send in the window expires.
func (r *RateLimiter) Allow(userID string) (bool, time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	recent := prune(r.hits[userID], now.Add(-r.Window))

	if len(recent) >= r.Limit {
		r.hits[userID] = recent
		return false, recent[0].Add(r.Window).Sub(now)
	}

	r.hits[userID] = append(recent, now)
	return true, 0
}

func prune(hits []time.Time, cutoff time.Time) []time.Time {
	i := 0
	for i < len(hits) && !hits[i].After(cutoff) {
		i++
	}
	return hits[i:]
}

// Sweep drops users with no sends inside the window.
func (r *RateLimiter) Sweep() {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := r.now().Add(-r.Window)
	for user, hits := range r.hits {
		if recent := prune(hits, cutoff); len(recent) == 0 {
			delete(r.hits, user)
		} else {
			r.hits[user] = recent
		}
	}
}

// Run sweeps once per window until ctx is done.
func (r *RateLimiter) Run(ctx context.Context) {
	ticker := time.NewTicker(r.Window)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Sweep()
		}
	}
}
