package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/custodia-labs/budget-mcp/internal/core/domain"
	"github.com/custodia-labs/budget-mcp/internal/core/ports/driven"
	"github.com/custodia-labs/budget-mcp/internal/core/ports/driving"
	"github.com/custodia-labs/budget-mcp/internal/logger"
)

// Ensure AuthorizationService implements the interface.
var _ driving.AuthorizationService = (*AuthorizationService)(nil)

// maxStateAttempts bounds state regeneration on collision.
const maxStateAttempts = 3

// AuthorizationConfig configures the authorization flow.
type AuthorizationConfig struct {
	// RedirectURI is used when BeginAuthorization is called without one.
	RedirectURI string
	// RequestTTL bounds how long a pending request can be completed.
	RequestTTL time.Duration
	// UsePKCE attaches an S256 code challenge to every flow.
	UsePKCE bool
}

// AuthorizationService orchestrates the OAuth authorization-code flow
// and owns the session credential.
type AuthorizationService struct {
	exchanger driven.TokenExchanger
	tokens    driven.TokenStore
	pending   driven.AuthRequestStore
	cfg       AuthorizationConfig
	now       func() time.Time

	// exchanging counts code exchanges in flight.
	exchanging atomic.Int32

	// refreshMu serialises refreshes so concurrent callers share one result.
	refreshMu sync.Mutex

	mu sync.RWMutex
	// invalidatedID is the ID of a stored credential rejected upstream.
	invalidatedID string
}

// NewAuthorizationService creates a new authorization service.
func NewAuthorizationService(
	exchanger driven.TokenExchanger,
	tokens driven.TokenStore,
	pending driven.AuthRequestStore,
	cfg AuthorizationConfig,
) *AuthorizationService {
	if cfg.RequestTTL <= 0 {
		cfg.RequestTTL = domain.DefaultAuthRequestTTL
	}
	return &AuthorizationService{
		exchanger: exchanger,
		tokens:    tokens,
		pending:   pending,
		cfg:       cfg,
		now:       time.Now,
	}
}

// SetClock replaces the time source. Used by tests.
func (s *AuthorizationService) SetClock(now func() time.Time) {
	s.now = now
}

// BeginAuthorization starts a new flow.
func (s *AuthorizationService) BeginAuthorization(
	ctx context.Context,
	scope domain.Scope,
	redirectURI string,
) (*domain.AuthorizationRequest, string, error) {
	if scope == "" {
		scope = domain.ScopeReadOnly
	}
	if !scope.IsValid() {
		return nil, "", domain.Errorf(domain.KindValidation,
			"invalid scope %q: must be read-only or read-write", scope)
	}
	if redirectURI == "" {
		redirectURI = s.cfg.RedirectURI
	}
	if redirectURI == "" {
		return nil, "", domain.NewError(domain.KindValidation, "no redirect URI configured")
	}

	now := s.now()
	if n := s.pending.Prune(now.Add(-s.cfg.RequestTTL)); n > 0 {
		logger.Debug("Pruned %d expired authorization requests", n)
	}

	var verifier string
	if s.cfg.UsePKCE {
		v, err := generateCodeVerifier()
		if err != nil {
			return nil, "", domain.WrapError(domain.KindInternal, err, "generate code verifier")
		}
		verifier = v
	}

	for attempt := 0; attempt < maxStateAttempts; attempt++ {
		state, err := generateState()
		if err != nil {
			return nil, "", domain.WrapError(domain.KindInternal, err, "generate state")
		}

		req := domain.AuthorizationRequest{
			State:        state,
			RedirectURI:  redirectURI,
			Scope:        scope,
			CodeVerifier: verifier,
			CreatedAt:    now,
		}
		if !s.pending.Add(req) {
			logger.Warn("State collision, regenerating")
			continue
		}

		logger.Info("Authorization started (scope=%s, redirect=%s)", scope, redirectURI)
		return &req, s.exchanger.AuthCodeURL(&req), nil
	}

	return nil, "", domain.NewError(domain.KindInternal, "could not allocate a unique state")
}

// CompleteAuthorization consumes the pending request for state and exchanges code.
// The request is consumed even when the exchange fails.
func (s *AuthorizationService) CompleteAuthorization(
	ctx context.Context,
	state, code string,
) (*domain.Credential, error) {
	if state == "" {
		return nil, domain.NewError(domain.KindInvalidState, "missing state parameter")
	}

	req, ok := s.pending.Take(state)
	if !ok {
		logger.Warn("Callback with unknown or reused state")
		return nil, domain.NewError(domain.KindInvalidState, "unknown or already used state")
	}
	if req.IsExpiredAt(s.now(), s.cfg.RequestTTL) {
		logger.Warn("Callback for expired authorization request")
		return nil, domain.NewError(domain.KindInvalidState, "authorization request expired, start again")
	}
	if code == "" {
		return nil, domain.NewError(domain.KindTokenExchange, "missing authorization code")
	}

	s.exchanging.Add(1)
	defer s.exchanging.Add(-1)

	cred, err := s.exchanger.Exchange(ctx, req, code)
	if err != nil {
		logger.Warn("Token exchange failed: %v", err)
		return nil, asKind(domain.KindTokenExchange, err, "token exchange failed")
	}
	if cred.Scope == "" {
		cred.Scope = req.Scope
	}
	if err := cred.Validate(); err != nil {
		return nil, domain.WrapError(domain.KindTokenExchange, err, "token endpoint returned an unusable credential")
	}

	if err := s.tokens.Save(ctx, *cred); err != nil {
		return nil, domain.WrapError(domain.KindInternal, err, "save credential")
	}
	s.setInvalidated("")

	logger.Info("Authorization complete (scope=%s, expires=%s)", cred.Scope, cred.ExpiresAt.Format(time.RFC3339))
	return cred, nil
}

// Credential returns a usable session credential, refreshing once if it has expired.
func (s *AuthorizationService) Credential(ctx context.Context) (*domain.Credential, error) {
	cred, err := s.tokens.Get(ctx)
	if err != nil {
		return nil, domain.WrapError(domain.KindInternal, err, "load credential")
	}
	if cred == nil {
		return nil, domain.NewError(domain.KindCredentialExpired,
			"not authorized: call the authorize tool and approve access in the browser")
	}
	if s.usable(cred) {
		return cred, nil
	}

	if cred.HasRefreshToken() {
		logger.Debug("Credential expired, refreshing")
		return s.Refresh(ctx, cred)
	}
	return nil, domain.NewError(domain.KindCredentialExpired,
		"authorization expired: call the authorize tool to sign in again")
}

// IsValid reports whether cred is usable now.
func (s *AuthorizationService) IsValid(cred *domain.Credential) bool {
	return cred.IsValidAt(s.now())
}

// Refresh exchanges cred's refresh token for a new credential.
// If the token endpoint rejects the refresh token the stored credential is
// discarded. Other failures leave it in place for a later attempt.
func (s *AuthorizationService) Refresh(ctx context.Context, cred *domain.Credential) (*domain.Credential, error) {
	if !cred.HasRefreshToken() {
		return nil, domain.NewError(domain.KindRefresh, "no refresh token available")
	}

	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()

	// Double-check after acquiring the lock: another caller may have refreshed.
	current, err := s.tokens.Get(ctx)
	if err != nil {
		return nil, domain.WrapError(domain.KindInternal, err, "load credential")
	}
	if current != nil && current.ID != cred.ID && s.usable(current) {
		return current, nil
	}

	refreshed, err := s.exchanger.Refresh(ctx, cred)
	if err != nil && domain.KindOf(err) != domain.KindRefresh {
		logger.Warn("Token refresh unavailable, keeping credential: %v", err)
		return nil, asKind(domain.KindUpstreamUnavailable, err, "token endpoint unavailable")
	}
	if err != nil {
		logger.Warn("Token refresh failed, discarding credential: %v", err)
		if clearErr := s.tokens.Clear(ctx); clearErr != nil {
			logger.Error("Failed to clear credential: %v", clearErr)
		}
		s.setInvalidated("")
		return nil, asKind(domain.KindRefresh, err, "token refresh failed")
	}
	if refreshed.RefreshToken == "" {
		refreshed.RefreshToken = cred.RefreshToken
	}
	if refreshed.Scope == "" {
		refreshed.Scope = cred.Scope
	}
	if err := refreshed.Validate(); err != nil {
		return nil, domain.WrapError(domain.KindRefresh, err, "token endpoint returned an unusable credential")
	}

	if err := s.tokens.Save(ctx, *refreshed); err != nil {
		return nil, domain.WrapError(domain.KindInternal, err, "save credential")
	}
	s.setInvalidated("")

	logger.Info("Credential refreshed (expires=%s)", refreshed.ExpiresAt.Format(time.RFC3339))
	return refreshed, nil
}

// Invalidate marks the stored credential unusable if it is the one with
// ID credID. A credential saved after that one was sent is left alone.
// A refresh token, if any, is kept so the next Credential call can recover.
func (s *AuthorizationService) Invalidate(ctx context.Context, credID string) error {
	cred, err := s.tokens.Get(ctx)
	if err != nil {
		return fmt.Errorf("load credential: %w", err)
	}
	if cred == nil || cred.ID != credID {
		logger.Debug("Rejected credential already replaced, keeping current")
		return nil
	}
	s.setInvalidated(cred.ID)
	logger.Warn("Credential rejected upstream, marked invalid")
	return nil
}

// Revoke discards the session credential.
func (s *AuthorizationService) Revoke(ctx context.Context) error {
	if err := s.tokens.Clear(ctx); err != nil {
		return fmt.Errorf("clear credential: %w", err)
	}
	s.setInvalidated("")
	logger.Info("Credential revoked")
	return nil
}

// State reports where the session is in the authorization lifecycle.
func (s *AuthorizationService) State(ctx context.Context) domain.AuthState {
	cred, err := s.tokens.Get(ctx)
	if err != nil {
		logger.Warn("Failed to load credential: %v", err)
	}
	if cred != nil {
		if s.usable(cred) {
			return domain.AuthStateAuthorized
		}
		return domain.AuthStateExpired
	}
	if s.exchanging.Load() > 0 {
		return domain.AuthStateExchanging
	}
	s.pending.Prune(s.now().Add(-s.cfg.RequestTTL))
	if s.pending.Len() > 0 {
		return domain.AuthStateAwaitingCallback
	}
	return domain.AuthStateInit
}

// Close discards all pending authorization requests.
func (s *AuthorizationService) Close() {
	s.pending.Clear()
}

func (s *AuthorizationService) usable(cred *domain.Credential) bool {
	if !s.IsValid(cred) {
		return false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.invalidatedID == "" || s.invalidatedID != cred.ID
}

func (s *AuthorizationService) setInvalidated(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.invalidatedID = id
}

// asKind keeps err's classification if it has one, otherwise wraps it as kind.
func asKind(kind domain.ErrorKind, err error, message string) error {
	var de *domain.Error
	if errors.As(err, &de) {
		return err
	}
	return domain.WrapError(kind, err, message)
}
