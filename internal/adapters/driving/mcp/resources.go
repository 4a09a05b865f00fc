package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	// uriScheme is the custom URI scheme for budget-mcp resources.
	uriScheme = "budget://"

	authStatusURI = uriScheme + "auth/status"
	budgetsURI    = uriScheme + "budgets"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         authStatusURI,
		Name:        "auth-status",
		Description: "Authorization state of the session and the remaining request budget",
		MIMEType:    "application/json",
	}, s.handleAuthStatusResource)

	s.server.AddResource(&mcp.Resource{
		URI:         budgetsURI,
		Name:        "budgets",
		Description: "The user's budgets",
		MIMEType:    "application/json",
	}, s.handleBudgetsResource)
}

// handleAuthStatusResource returns the same document as the auth_status tool.
func (s *Server) handleAuthStatusResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	return jsonResource(req.Params.URI, s.authStatus(ctx))
}

// handleBudgetsResource lists budgets. It requires authorization.
func (s *Server) handleBudgetsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	_, out, err := s.handleGetBudgets(ctx, nil, BudgetsInput{})
	if err != nil {
		return nil, err
	}
	return jsonResource(req.Params.URI, out)
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling %s: %w", uri, err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}
