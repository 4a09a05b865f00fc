// Package domain defines the core business entities for budget-mcp.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Credential: The session's access token and its validity window
//   - AuthorizationRequest: A pending OAuth authorization-code flow
//   - Transaction, Account, Category, Payee: Read-only upstream mirrors
//   - FilterSpec: Optional predicates over a transaction collection
//   - RateBudget: The upstream request quota for the current window
//   - Error: Classified failures carrying a stable Kind
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
