// Package mcp provides the MCP (Model Context Protocol) server adapter for
// budget-mcp. It exposes authorization and budget queries as tools and
// resources for AI assistants.
package mcp

import (
	"context"
	"errors"

	"github.com/custodia-labs/budget-mcp/internal/core/domain"
	"github.com/custodia-labs/budget-mcp/internal/logger"
)

// ErrMissingAuthService is returned when the authorization service is not provided.
var ErrMissingAuthService = errors.New("mcp: authorization service is required")

// ErrMissingBudgetService is returned when the budget service is not provided.
var ErrMissingBudgetService = errors.New("mcp: budget service is required")

// toolError converts err into the error a tool reports to the client.
// Classified errors keep their kind and message; anything else is logged
// and reported as internal so causes never reach the client.
// cred is the credential the failed call used, nil if none was sent.
func (s *Server) toolError(ctx context.Context, cred *domain.Credential, tool string, err error) error {
	var de *domain.Error
	if !errors.As(err, &de) {
		logger.Error("%s: %v", tool, err)
		return domain.NewError(domain.KindInternal, "request failed")
	}

	// Upstream refused the token: stop treating it as authorized.
	if de.Kind == domain.KindCredentialExpired && cred != nil {
		if ierr := s.ports.Auth.Invalidate(ctx, cred.ID); ierr != nil {
			logger.Warn("invalidating credential: %v", ierr)
		}
	}
	logger.Debug("%s: %v", tool, de)
	return de
}
