package memory

import (
	"sync"
	"time"

	"github.com/custodia-labs/budget-mcp/internal/core/domain"
	"github.com/custodia-labs/budget-mcp/internal/core/ports/driven"
)

// Ensure AuthRequestStore implements the interface.
var _ driven.AuthRequestStore = (*AuthRequestStore)(nil)

// AuthRequestStore is an in-memory implementation of driven.AuthRequestStore.
type AuthRequestStore struct {
	mu       sync.Mutex
	requests map[string]domain.AuthorizationRequest
}

// NewAuthRequestStore creates a new in-memory authorization request store.
func NewAuthRequestStore() *AuthRequestStore {
	return &AuthRequestStore{
		requests: make(map[string]domain.AuthorizationRequest),
	}
}

// Add stores req unless its state is already pending.
func (s *AuthRequestStore) Add(req domain.AuthorizationRequest) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.requests[req.State]; exists {
		return false
	}
	s.requests[req.State] = req
	return true
}

// Take removes and returns the request for state.
func (s *AuthRequestStore) Take(state string) (*domain.AuthorizationRequest, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	req, ok := s.requests[state]
	if !ok {
		return nil, false
	}
	delete(s.requests, state)
	return &req, true
}

// Prune removes requests created at or before cutoff.
func (s *AuthRequestStore) Prune(cutoff time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for state, req := range s.requests {
		if !req.CreatedAt.After(cutoff) {
			delete(s.requests, state)
			removed++
		}
	}
	return removed
}

// Len returns the number of pending requests.
func (s *AuthRequestStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.requests)
}

// Clear removes all pending requests.
func (s *AuthRequestStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = make(map[string]domain.AuthorizationRequest)
}
