package driven

import (
	"time"

	"github.com/custodia-labs/budget-mcp/internal/core/domain"
)

// AuthRequestStore holds pending authorization requests keyed by state token.
// Implementations must be safe for concurrent use.
type AuthRequestStore interface {
	// Add stores a request. Returns false without storing if the state is already live.
	Add(req domain.AuthorizationRequest) bool

	// Take removes and returns the request for state in one step.
	// Concurrent callers with the same state see at most one success.
	Take(state string) (*domain.AuthorizationRequest, bool)

	// Prune removes requests created at or before cutoff and returns how many were removed.
	Prune(cutoff time.Time) int

	// Len returns the number of pending requests.
	Len() int

	// Clear removes all pending requests.
	Clear()
}
