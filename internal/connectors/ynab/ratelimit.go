package ynab

import (
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/custodia-labs/budget-mcp/internal/core/domain"
)

const (
	// HeaderRateLimit reports upstream usage as "used/limit".
	HeaderRateLimit = "X-Rate-Limit"

	// HeaderRetryAfter is the retry-after header (seconds or HTTP date).
	HeaderRetryAfter = "Retry-After"
)

// RateLimiter is a fixed-window request budget.
// At most limit calls are admitted per window; the window restarts at the
// first call after it has elapsed.
type RateLimiter struct {
	mu          sync.Mutex
	limit       int
	window      time.Duration
	windowStart time.Time
	calls       int
	now         func() time.Time
}

// NewRateLimiter creates a limiter admitting limit calls per window.
// Non-positive values select the upstream defaults.
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	if limit <= 0 {
		limit = domain.DefaultRateLimit
	}
	if window <= 0 {
		window = domain.DefaultRateWindow
	}
	return &RateLimiter{
		limit:  limit,
		window: window,
		now:    time.Now,
	}
}

// SetClock replaces the time source. Used by tests.
func (r *RateLimiter) SetClock(now func() time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.now = now
}

// TryAcquire admits one call if the budget allows it.
// Rolling the window and the check-and-increment happen under one lock.
func (r *RateLimiter) TryAcquire() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.roll(r.now())
	if r.calls >= r.limit {
		return false
	}
	r.calls++
	return true
}

// TimeUntilReset returns how long until the current window ends.
func (r *RateLimiter) TimeUntilReset() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	r.roll(now)
	return r.windowStart.Add(r.window).Sub(now)
}

// Snapshot returns the current budget.
func (r *RateLimiter) Snapshot() domain.RateBudget {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.roll(r.now())
	return domain.RateBudget{
		WindowStart:    r.windowStart,
		WindowDuration: r.window,
		CallsMade:      r.calls,
		Limit:          r.limit,
	}
}

// ObserveUsage reconciles with usage reported by upstream.
// The local count is only ever raised, never lowered. A stricter upstream limit
// tightens the local one.
func (r *RateLimiter) ObserveUsage(used, limit int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.roll(r.now())
	if limit > 0 && limit < r.limit {
		r.limit = limit
	}
	if used > r.limit {
		used = r.limit
	}
	if used > r.calls {
		r.calls = used
	}
}

func (r *RateLimiter) roll(now time.Time) {
	if r.windowStart.IsZero() || !now.Before(r.windowStart.Add(r.window)) {
		r.windowStart = now
		r.calls = 0
	}
}

// parseRateLimitHeader parses "used/limit".
func parseRateLimitHeader(v string) (used, limit int, ok bool) {
	usedStr, limitStr, found := strings.Cut(strings.TrimSpace(v), "/")
	if !found {
		return 0, 0, false
	}
	used, err := strconv.Atoi(strings.TrimSpace(usedStr))
	if err != nil || used < 0 {
		return 0, 0, false
	}
	limit, err = strconv.Atoi(strings.TrimSpace(limitStr))
	if err != nil || limit <= 0 {
		return 0, 0, false
	}
	return used, limit, true
}
