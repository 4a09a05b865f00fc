package driven

import (
	"context"

	"github.com/custodia-labs/budget-mcp/internal/core/domain"
)

// TokenStore holds the current session's credential.
// There is at most one credential; Save replaces any previous one.
type TokenStore interface {
	// Save stores the credential, replacing the current one.
	Save(ctx context.Context, cred domain.Credential) error

	// Get returns the current credential.
	// Returns nil and no error if none is stored.
	Get(ctx context.Context) (*domain.Credential, error)

	// Clear removes the current credential.
	Clear(ctx context.Context) error
}
