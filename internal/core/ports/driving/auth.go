package driving

import (
	"context"

	"github.com/custodia-labs/budget-mcp/internal/core/domain"
)

// AuthorizationService drives the OAuth2 authorization-code lifecycle.
type AuthorizationService interface {
	// BeginAuthorization starts a flow and returns the pending request together
	// with the upstream URL the user must visit. An empty redirectURI selects
	// the configured default.
	BeginAuthorization(
		ctx context.Context,
		scope domain.Scope,
		redirectURI string,
	) (*domain.AuthorizationRequest, string, error)

	// CompleteAuthorization consumes the pending request for state and
	// exchanges code for a credential, which becomes the session credential.
	CompleteAuthorization(ctx context.Context, state, code string) (*domain.Credential, error)

	// Credential returns a usable session credential.
	// Fails with credential_expired when the user must authorize again.
	Credential(ctx context.Context) (*domain.Credential, error)

	// IsValid reports whether cred is usable now.
	IsValid(cred *domain.Credential) bool

	// Refresh exchanges cred's refresh token for a new credential.
	Refresh(ctx context.Context, cred *domain.Credential) (*domain.Credential, error)

	// Invalidate marks the session credential unusable after upstream rejected
	// the credential with ID credID. A credential stored since then is kept.
	Invalidate(ctx context.Context, credID string) error

	// Revoke discards the session credential.
	Revoke(ctx context.Context) error

	// State reports where the session is in the authorization lifecycle.
	State(ctx context.Context) domain.AuthState
}
