package domain

import "time"

// Upstream quota defaults.
const (
	DefaultRateLimit  = 200
	DefaultRateWindow = time.Hour
)

// RateBudget is a snapshot of the upstream request budget.
type RateBudget struct {
	WindowStart    time.Time     `json:"window_start"`
	WindowDuration time.Duration `json:"window_duration"`
	CallsMade      int           `json:"calls_made"`
	Limit          int           `json:"limit"`
}

// Remaining returns the calls left in the window.
func (b RateBudget) Remaining() int {
	if b.CallsMade >= b.Limit {
		return 0
	}
	return b.Limit - b.CallsMade
}

// ResetsAt returns when the window rolls over.
func (b RateBudget) ResetsAt() time.Time {
	return b.WindowStart.Add(b.WindowDuration)
}
