package domain

import "time"

// Scope is the access level requested from the upstream OAuth server.
type Scope string

// Supported scopes.
const (
	// ScopeReadOnly grants read access only.
	ScopeReadOnly Scope = "read-only"
	// ScopeReadWrite grants read and write access.
	ScopeReadWrite Scope = "read-write"
)

// IsValid returns true if the scope is recognised.
func (s Scope) IsValid() bool {
	return s == ScopeReadOnly || s == ScopeReadWrite
}

// String returns the string representation.
func (s Scope) String() string {
	return string(s)
}

// Credential is the session's access credential.
// There is at most one per process; it is never shared across sessions.
type Credential struct {
	// ID is the unique identifier (UUID).
	ID string `json:"id"`
	// AccessToken is the bearer token for API access.
	AccessToken string `json:"access_token"`
	// RefreshToken is used to obtain new access tokens. Upstream may not issue one.
	RefreshToken string `json:"refresh_token,omitempty"`
	// TokenType is typically "Bearer".
	TokenType string `json:"token_type"`
	// Scope is the granted access level.
	Scope Scope `json:"scope"`
	// IssuedAt is when the token was obtained.
	IssuedAt time.Time `json:"issued_at"`
	// ExpiresAt is when the access token stops being usable.
	ExpiresAt time.Time `json:"expires_at"`
}

// IsValidAt returns true if the credential is usable at the given instant.
func (c *Credential) IsValidAt(now time.Time) bool {
	if c == nil || c.AccessToken == "" {
		return false
	}
	return now.Before(c.ExpiresAt)
}

// IsExpired returns true if the credential is no longer usable.
func (c *Credential) IsExpired() bool {
	return !c.IsValidAt(time.Now())
}

// HasRefreshToken returns true if a refresh token is available.
func (c *Credential) HasRefreshToken() bool {
	return c != nil && c.RefreshToken != ""
}

// CanWrite returns true if the credential permits modifying data.
func (c *Credential) CanWrite() bool {
	return c != nil && c.Scope == ScopeReadWrite
}

// Validate checks the credential's invariants.
func (c *Credential) Validate() error {
	if c.AccessToken == "" {
		return NewError(KindValidation, "credential has no access token")
	}
	if !c.ExpiresAt.After(c.IssuedAt) {
		return NewError(KindValidation, "credential expires before it was issued")
	}
	return nil
}
