package driven

import (
	"context"

	"github.com/custodia-labs/budget-mcp/internal/core/domain"
)

// TokenExchanger talks to the upstream OAuth server.
type TokenExchanger interface {
	// AuthCodeURL builds the upstream authorization URL for a pending request.
	AuthCodeURL(req *domain.AuthorizationRequest) string

	// Exchange trades an authorization code for a credential.
	// Fails with a token_exchange error if upstream rejects the code.
	Exchange(ctx context.Context, req *domain.AuthorizationRequest, code string) (*domain.Credential, error)

	// Refresh obtains a new credential with grant_type=refresh_token.
	// Fails with a refresh error if upstream rejects the refresh token.
	Refresh(ctx context.Context, cred *domain.Credential) (*domain.Credential, error)
}
