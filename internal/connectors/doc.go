// Package connectors holds clients for upstream data providers.
//
// Each connector implements a driven port from internal/core/ports/driven
// and owns the provider's wire format, authentication header, retry policy
// and rate limiting. The ynab connector implements driven.BudgetAPI.
package connectors
