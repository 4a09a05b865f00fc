package domain

import "time"

// DefaultAuthRequestTTL bounds how long a pending authorization stays valid.
const DefaultAuthRequestTTL = 10 * time.Minute

// AuthorizationRequest is a pending OAuth authorization-code flow.
// It is created when a flow begins and consumed by the matching callback.
type AuthorizationRequest struct {
	// State is the single-use anti-CSRF token echoed back by the callback.
	State string `json:"state"`
	// RedirectURI is where the upstream sends the browser after approval.
	RedirectURI string `json:"redirect_uri"`
	// Scope is the access level requested.
	Scope Scope `json:"scope"`
	// CodeVerifier is the PKCE verifier, empty when PKCE is disabled.
	CodeVerifier string `json:"-"`
	// CreatedAt is when the flow began.
	CreatedAt time.Time `json:"created_at"`
}

// IsExpiredAt returns true if the request is older than ttl at the given instant.
func (r *AuthorizationRequest) IsExpiredAt(now time.Time, ttl time.Duration) bool {
	return !now.Before(r.CreatedAt.Add(ttl))
}

// AuthState is the lifecycle state of the session's authorization.
type AuthState string

// Authorization states.
const (
	// AuthStateInit means no flow is pending and no credential exists.
	AuthStateInit AuthState = "INIT"
	// AuthStateAwaitingCallback means a flow has begun and awaits the redirect.
	AuthStateAwaitingCallback AuthState = "AWAITING_CALLBACK"
	// AuthStateExchanging means a code is being exchanged for tokens.
	AuthStateExchanging AuthState = "EXCHANGING"
	// AuthStateAuthorized means a usable credential exists.
	AuthStateAuthorized AuthState = "AUTHORIZED"
	// AuthStateExpired means the credential exists but can no longer be used.
	AuthStateExpired AuthState = "EXPIRED"
)

// String returns the string representation.
func (s AuthState) String() string {
	return string(s)
}

// Description returns a human-readable description of the state.
func (s AuthState) Description() string {
	switch s {
	case AuthStateInit:
		return "Not authorized"
	case AuthStateAwaitingCallback:
		return "Waiting for browser approval"
	case AuthStateExchanging:
		return "Exchanging authorization code"
	case AuthStateAuthorized:
		return "Authorized"
	case AuthStateExpired:
		return "Authorization expired, sign in again"
	default:
		return "Unknown"
	}
}
