// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// The two central pieces are the AuthorizationService, which owns the
// OAuth authorization-code lifecycle, and the query planner used by
// BudgetService to answer filtered transaction queries with a single
// upstream call.
//
// Services are pure Go with no CGO or external dependencies.
package services
