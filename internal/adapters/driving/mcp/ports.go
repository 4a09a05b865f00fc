package mcp

import (
	"github.com/custodia-labs/budget-mcp/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Auth manages the session's authorization.
	Auth driving.AuthorizationService

	// Budget runs budget queries and updates.
	Budget driving.BudgetService
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Auth == nil {
		return ErrMissingAuthService
	}
	if p.Budget == nil {
		return ErrMissingBudgetService
	}
	return nil
}
