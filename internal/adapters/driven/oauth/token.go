// Package oauth talks to the upstream OAuth2 authorization server.
//
// It builds authorization URLs, exchanges authorization codes and refreshes
// tokens with golang.org/x/oauth2, and turns the results into session
// credentials.
package oauth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"github.com/custodia-labs/budget-mcp/internal/core/domain"
	"github.com/custodia-labs/budget-mcp/internal/core/ports/driven"
)

// Ensure Exchanger implements the interface.
var _ driven.TokenExchanger = (*Exchanger)(nil)

const (
	// DefaultAuthorizeURL is the upstream authorization endpoint.
	DefaultAuthorizeURL = "https://app.ynab.com/oauth/authorize"

	// DefaultTokenURL is the upstream token endpoint.
	DefaultTokenURL = "https://app.ynab.com/oauth/token"

	// DefaultTokenLifetime is assumed when the token response omits expires_in.
	DefaultTokenLifetime = 2 * time.Hour

	// tokenTimeout bounds each token endpoint request.
	tokenTimeout = 30 * time.Second
)

// Config holds the OAuth client registration.
type Config struct {
	ClientID     string
	ClientSecret string
	AuthorizeURL string
	TokenURL     string
}

// Exchanger implements driven.TokenExchanger with golang.org/x/oauth2.
type Exchanger struct {
	base       oauth2.Config
	httpClient *http.Client
	now        func() time.Time
}

// NewExchanger creates a token exchanger for the given client registration.
func NewExchanger(cfg Config) *Exchanger {
	if cfg.AuthorizeURL == "" {
		cfg.AuthorizeURL = DefaultAuthorizeURL
	}
	if cfg.TokenURL == "" {
		cfg.TokenURL = DefaultTokenURL
	}
	return &Exchanger{
		base: oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Endpoint: oauth2.Endpoint{
				AuthURL:  cfg.AuthorizeURL,
				TokenURL: cfg.TokenURL,
				// client_id and client_secret go in the form body
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		httpClient: &http.Client{Timeout: tokenTimeout},
		now:        time.Now,
	}
}

// SetHTTPClient replaces the client used for token requests.
func (e *Exchanger) SetHTTPClient(c *http.Client) {
	e.httpClient = c
}

// AuthCodeURL builds the upstream authorization URL for req.
func (e *Exchanger) AuthCodeURL(req *domain.AuthorizationRequest) string {
	cfg := e.configFor(req.RedirectURI, req.Scope)
	var opts []oauth2.AuthCodeOption
	if req.CodeVerifier != "" {
		opts = append(opts, oauth2.S256ChallengeOption(req.CodeVerifier))
	}
	return cfg.AuthCodeURL(req.State, opts...)
}

// Exchange trades an authorization code for a credential.
func (e *Exchanger) Exchange(
	ctx context.Context,
	req *domain.AuthorizationRequest,
	code string,
) (*domain.Credential, error) {
	cfg := e.configFor(req.RedirectURI, req.Scope)
	var opts []oauth2.AuthCodeOption
	if req.CodeVerifier != "" {
		opts = append(opts, oauth2.VerifierOption(req.CodeVerifier))
	}

	tok, err := cfg.Exchange(e.clientContext(ctx), code, opts...)
	if err != nil {
		return nil, tokenError(domain.KindTokenExchange, domain.KindTokenExchange, "token exchange", err)
	}
	return e.credentialFrom(tok, req.Scope), nil
}

// Refresh obtains a new credential with grant_type=refresh_token.
func (e *Exchanger) Refresh(ctx context.Context, cred *domain.Credential) (*domain.Credential, error) {
	if !cred.HasRefreshToken() {
		return nil, domain.NewError(domain.KindRefresh, "no refresh token available")
	}

	cfg := e.base
	// An already expired token forces the source to refresh.
	src := cfg.TokenSource(e.clientContext(ctx), &oauth2.Token{
		RefreshToken: cred.RefreshToken,
		Expiry:       e.now().Add(-time.Minute),
	})
	tok, err := src.Token()
	if err != nil {
		return nil, tokenError(domain.KindRefresh, domain.KindUpstreamUnavailable, "token refresh", err)
	}

	refreshed := e.credentialFrom(tok, cred.Scope)
	if refreshed.RefreshToken == "" {
		refreshed.RefreshToken = cred.RefreshToken
	}
	return refreshed, nil
}

// configFor returns a copy of the base config for one flow.
// Upstream grants read-write access unless the read-only scope is requested.
func (e *Exchanger) configFor(redirectURI string, scope domain.Scope) oauth2.Config {
	cfg := e.base
	cfg.RedirectURL = redirectURI
	if scope == domain.ScopeReadOnly {
		cfg.Scopes = []string{string(domain.ScopeReadOnly)}
	}
	return cfg
}

func (e *Exchanger) clientContext(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, e.httpClient)
}

func (e *Exchanger) credentialFrom(tok *oauth2.Token, requested domain.Scope) *domain.Credential {
	now := e.now()
	expiresAt := tok.Expiry
	if expiresAt.IsZero() || !expiresAt.After(now) {
		expiresAt = now.Add(DefaultTokenLifetime)
	}

	scope := requested
	if granted, ok := tok.Extra("scope").(string); ok && domain.Scope(granted).IsValid() {
		scope = domain.Scope(granted)
	}
	if scope == "" {
		scope = domain.ScopeReadWrite
	}

	tokenType := tok.TokenType
	if tokenType == "" {
		tokenType = "Bearer"
	}

	return &domain.Credential{
		ID:           uuid.NewString(),
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		TokenType:    tokenType,
		Scope:        scope,
		IssuedAt:     now,
		ExpiresAt:    expiresAt,
	}
}

// tokenError classifies a token endpoint failure. An error response from the
// endpoint is rejected; anything else (transport, malformed body) is
// unreachable. The upstream error code is kept in the message; the body is not.
func tokenError(rejected, unreachable domain.ErrorKind, op string, err error) error {
	var rErr *oauth2.RetrieveError
	if errors.As(err, &rErr) {
		msg := fmt.Sprintf("%s rejected", op)
		if rErr.ErrorCode != "" {
			msg = fmt.Sprintf("%s rejected: %s", op, rErr.ErrorCode)
			if rErr.ErrorDescription != "" {
				msg += " (" + rErr.ErrorDescription + ")"
			}
		} else if rErr.Response != nil {
			msg = fmt.Sprintf("%s rejected with status %d", op, rErr.Response.StatusCode)
		}
		derr := domain.WrapError(rejected, err, msg)
		if rErr.Response != nil {
			derr.StatusCode = rErr.Response.StatusCode
		}
		return derr
	}
	return domain.WrapError(unreachable, err, op+" failed")
}
