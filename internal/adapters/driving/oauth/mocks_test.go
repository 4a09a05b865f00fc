package oauth

import (
	"context"
	"sync"

	"github.com/custodia-labs/budget-mcp/internal/core/domain"
	"github.com/custodia-labs/budget-mcp/internal/core/ports/driving"
)

// mockAuth is a scripted AuthorizationService.
type mockAuth struct {
	mu          sync.Mutex
	beginScope  domain.Scope
	beginErr    error
	completeErr error
	gotState    string
	gotCode     string
	completions int
}

var _ driving.AuthorizationService = (*mockAuth)(nil)

func (m *mockAuth) BeginAuthorization(
	ctx context.Context,
	scope domain.Scope,
	redirectURI string,
) (*domain.AuthorizationRequest, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.beginScope = scope
	if m.beginErr != nil {
		return nil, "", m.beginErr
	}
	return &domain.AuthorizationRequest{State: "st"}, "https://auth.example.com/oauth/authorize?state=st", nil
}

func (m *mockAuth) CompleteAuthorization(ctx context.Context, state, code string) (*domain.Credential, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.completions++
	m.gotState, m.gotCode = state, code
	if m.completeErr != nil {
		return nil, m.completeErr
	}
	return &domain.Credential{ID: "c1", AccessToken: "secret-token", Scope: domain.ScopeReadOnly}, nil
}

func (m *mockAuth) Credential(ctx context.Context) (*domain.Credential, error) {
	return nil, domain.ErrCredentialExpired
}

func (m *mockAuth) IsValid(cred *domain.Credential) bool { return false }

func (m *mockAuth) Refresh(ctx context.Context, cred *domain.Credential) (*domain.Credential, error) {
	return nil, domain.ErrRefresh
}

func (m *mockAuth) Invalidate(ctx context.Context, credID string) error { return nil }

func (m *mockAuth) Revoke(ctx context.Context) error { return nil }

func (m *mockAuth) State(ctx context.Context) domain.AuthState { return domain.AuthStateInit }
