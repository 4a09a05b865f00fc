package oauth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"

	"github.com/custodia-labs/budget-mcp/internal/core/domain"
)

// tokenServer fakes the upstream token endpoint and records the last form.
type tokenServer struct {
	*httptest.Server
	hits     atomic.Int32
	lastForm url.Values
	status   int
	response map[string]any
}

func newTokenServer(t *testing.T) *tokenServer {
	t.Helper()
	ts := &tokenServer{
		status: http.StatusOK,
		response: map[string]any{
			"access_token":  "new-access",
			"refresh_token": "new-refresh",
			"token_type":    "Bearer",
			"expires_in":    7200,
		},
	}
	ts.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ts.hits.Add(1)
		require.NoError(t, r.ParseForm())
		ts.lastForm = r.PostForm
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(ts.status)
		_ = json.NewEncoder(w).Encode(ts.response)
	}))
	t.Cleanup(ts.Close)
	return ts
}

func newTestExchanger(ts *tokenServer) *Exchanger {
	e := NewExchanger(Config{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		AuthorizeURL: "https://auth.example.com/oauth/authorize",
		TokenURL:     ts.URL + "/oauth/token",
	})
	e.SetHTTPClient(ts.Client())
	return e
}

func TestExchanger_AuthCodeURL(t *testing.T) {
	e := NewExchanger(Config{ClientID: "client-id", AuthorizeURL: "https://auth.example.com/oauth/authorize"})

	t.Run("read-only request", func(t *testing.T) {
		raw := e.AuthCodeURL(&domain.AuthorizationRequest{
			State:       "state-1",
			RedirectURI: "http://localhost:8000/oauth/callback",
			Scope:       domain.ScopeReadOnly,
		})

		u, err := url.Parse(raw)
		require.NoError(t, err)
		q := u.Query()
		assert.Equal(t, "auth.example.com", u.Host)
		assert.Equal(t, "client-id", q.Get("client_id"))
		assert.Equal(t, "code", q.Get("response_type"))
		assert.Equal(t, "http://localhost:8000/oauth/callback", q.Get("redirect_uri"))
		assert.Equal(t, "state-1", q.Get("state"))
		assert.Equal(t, "read-only", q.Get("scope"))
		assert.Empty(t, q.Get("code_challenge"))
	})

	t.Run("read-write omits scope", func(t *testing.T) {
		raw := e.AuthCodeURL(&domain.AuthorizationRequest{State: "s", RedirectURI: "http://x/cb", Scope: domain.ScopeReadWrite})

		u, err := url.Parse(raw)
		require.NoError(t, err)
		assert.False(t, u.Query().Has("scope"))
	})

	t.Run("pkce adds S256 challenge", func(t *testing.T) {
		verifier := oauth2.GenerateVerifier()
		raw := e.AuthCodeURL(&domain.AuthorizationRequest{
			State: "s", RedirectURI: "http://x/cb", Scope: domain.ScopeReadOnly, CodeVerifier: verifier,
		})

		u, err := url.Parse(raw)
		require.NoError(t, err)
		assert.Equal(t, "S256", u.Query().Get("code_challenge_method"))
		assert.NotEmpty(t, u.Query().Get("code_challenge"))
		assert.NotEqual(t, verifier, u.Query().Get("code_challenge"))
	})
}

func TestExchanger_Exchange(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		ts := newTokenServer(t)
		e := newTestExchanger(ts)
		now := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)
		e.now = func() time.Time { return now }

		cred, err := e.Exchange(ctx, &domain.AuthorizationRequest{
			State: "s", RedirectURI: "http://localhost/cb", Scope: domain.ScopeReadOnly, CodeVerifier: "verifier",
		}, "the-code")

		require.NoError(t, err)
		assert.NotEmpty(t, cred.ID)
		assert.Equal(t, "new-access", cred.AccessToken)
		assert.Equal(t, "new-refresh", cred.RefreshToken)
		assert.Equal(t, domain.ScopeReadOnly, cred.Scope)
		assert.Equal(t, now, cred.IssuedAt)
		assert.True(t, cred.ExpiresAt.After(cred.IssuedAt))

		assert.Equal(t, "authorization_code", ts.lastForm.Get("grant_type"))
		assert.Equal(t, "the-code", ts.lastForm.Get("code"))
		assert.Equal(t, "http://localhost/cb", ts.lastForm.Get("redirect_uri"))
		assert.Equal(t, "client-id", ts.lastForm.Get("client_id"))
		assert.Equal(t, "client-secret", ts.lastForm.Get("client_secret"))
		assert.Equal(t, "verifier", ts.lastForm.Get("code_verifier"))
	})

	t.Run("missing expires_in uses default lifetime", func(t *testing.T) {
		ts := newTokenServer(t)
		delete(ts.response, "expires_in")
		e := newTestExchanger(ts)
		now := time.Now()
		e.now = func() time.Time { return now }

		cred, err := e.Exchange(ctx, &domain.AuthorizationRequest{RedirectURI: "http://x/cb"}, "code")

		require.NoError(t, err)
		assert.Equal(t, now.Add(DefaultTokenLifetime), cred.ExpiresAt)
		assert.Equal(t, domain.ScopeReadWrite, cred.Scope)
	})

	t.Run("rejected code", func(t *testing.T) {
		ts := newTokenServer(t)
		ts.status = http.StatusBadRequest
		ts.response = map[string]any{"error": "invalid_grant", "error_description": "code expired"}
		e := newTestExchanger(ts)

		_, err := e.Exchange(ctx, &domain.AuthorizationRequest{RedirectURI: "http://x/cb"}, "code")

		assert.ErrorIs(t, err, domain.ErrTokenExchange)
		assert.Contains(t, err.Error(), "invalid_grant")
		assert.Equal(t, int32(1), ts.hits.Load())
	})
}

func TestExchanger_Refresh(t *testing.T) {
	ctx := context.Background()
	cred := &domain.Credential{
		ID:           "old",
		AccessToken:  "old-access",
		RefreshToken: "old-refresh",
		Scope:        domain.ScopeReadWrite,
	}

	t.Run("success", func(t *testing.T) {
		ts := newTokenServer(t)
		e := newTestExchanger(ts)

		refreshed, err := e.Refresh(ctx, cred)

		require.NoError(t, err)
		assert.NotEqual(t, "old", refreshed.ID)
		assert.Equal(t, "new-access", refreshed.AccessToken)
		assert.Equal(t, domain.ScopeReadWrite, refreshed.Scope)
		assert.Equal(t, "refresh_token", ts.lastForm.Get("grant_type"))
		assert.Equal(t, "old-refresh", ts.lastForm.Get("refresh_token"))
	})

	t.Run("keeps refresh token when none returned", func(t *testing.T) {
		ts := newTokenServer(t)
		delete(ts.response, "refresh_token")
		e := newTestExchanger(ts)

		refreshed, err := e.Refresh(ctx, cred)

		require.NoError(t, err)
		assert.Equal(t, "old-refresh", refreshed.RefreshToken)
	})

	t.Run("rejected refresh", func(t *testing.T) {
		ts := newTokenServer(t)
		ts.status = http.StatusUnauthorized
		ts.response = map[string]any{"error": "invalid_grant"}
		e := newTestExchanger(ts)

		_, err := e.Refresh(ctx, cred)

		assert.ErrorIs(t, err, domain.ErrRefresh)
		assert.Equal(t, int32(1), ts.hits.Load(), "never retried")
	})

	t.Run("unreachable endpoint is upstream unavailable", func(t *testing.T) {
		ts := newTokenServer(t)
		e := newTestExchanger(ts)
		ts.Close()

		_, err := e.Refresh(ctx, cred)

		assert.ErrorIs(t, err, domain.ErrUpstreamUnavailable)
		assert.NotErrorIs(t, err, domain.ErrRefresh)
	})

	t.Run("no refresh token", func(t *testing.T) {
		ts := newTokenServer(t)
		e := newTestExchanger(ts)

		_, err := e.Refresh(ctx, &domain.Credential{AccessToken: "a"})

		assert.ErrorIs(t, err, domain.ErrRefresh)
		assert.Equal(t, int32(0), ts.hits.Load())
	})
}
