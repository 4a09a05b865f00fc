// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - TokenStore: Holds the session credential (memory or SQLite)
//   - AuthRequestStore: Holds pending authorization requests keyed by state
//   - TokenExchanger: Talks to the upstream OAuth authorize/token endpoints
//   - BudgetAPI: Rate-limited, authenticated access to the upstream REST API
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter, connector, or normaliser package
package driven
