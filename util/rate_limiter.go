// api/util/rate_limiter.go
package util

import (
	"sync"
	"time"
)

// RateLimitResult is the outcome of one fixed-window check.
type RateLimitResult struct {
	Allowed   bool
	Remaining int
	ResetIn   time.Duration
}

type principalWindow struct {
	start time.Time
	count int
}

// FixedWindowLimiter counts requests per principal in fixed windows. The
// state is process-local and not shared across replicas, so a deployment
// with N instances effectively multiplies the configured limit by N; that
// is an accepted, documented property of this limiter, not a bug. Construct
// one instance per process (or per test) and inject it.
type FixedWindowLimiter struct {
	mu      sync.Mutex
	windows map[string]*principalWindow
	now     func() time.Time
}

func NewFixedWindowLimiter() *FixedWindowLimiter {
	return &FixedWindowLimiter{
		windows: make(map[string]*principalWindow),
		now:     time.Now,
	}
}

// Check counts one request for the principal. The first request in a window
// initializes the counter; once count exceeds limit, further requests are
// denied until the window resets. The read-modify-write runs under the
// limiter's lock so parallel bursts cannot under-count.
func (l *FixedWindowLimiter) Check(principalID string, limit int, window time.Duration) RateLimitResult {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	w, exists := l.windows[principalID]
	if !exists || now.Sub(w.start) >= window {
		w = &principalWindow{start: now}
		l.windows[principalID] = w
	}

	w.count++
	resetIn := window - now.Sub(w.start)

	remaining := limit - w.count
	if remaining < 0 {
		remaining = 0
	}

	return RateLimitResult{
		Allowed:   w.count <= limit,
		Remaining: remaining,
		ResetIn:   resetIn,
	}
}
