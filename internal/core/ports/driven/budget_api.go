package driven

import (
	"context"

	"github.com/custodia-labs/budget-mcp/internal/core/domain"
)

// BudgetAPI is the upstream REST surface.
// Every method performs exactly one rate-limited upstream request
// (retries of a transient failure excepted) and never caches.
type BudgetAPI interface {
	// ListBudgets returns the user's budgets, with their accounts when
	// includeAccounts is set.
	ListBudgets(ctx context.Context, cred *domain.Credential, includeAccounts bool) ([]domain.BudgetSummary, error)

	// GetBudget returns a budget with entity counts.
	GetBudget(ctx context.Context, cred *domain.Credential, budgetID string) (*domain.BudgetDetail, error)

	// ListAccounts returns the accounts of a budget.
	ListAccounts(ctx context.Context, cred *domain.Credential, budgetID string) ([]domain.Account, error)

	// GetAccount returns a single account.
	GetAccount(ctx context.Context, cred *domain.Credential, budgetID, accountID string) (*domain.Account, error)

	// ListCategories returns the categories of a budget, flattened across groups.
	ListCategories(ctx context.Context, cred *domain.Credential, budgetID string) ([]domain.Category, error)

	// ListPayees returns the payees of a budget.
	ListPayees(ctx context.Context, cred *domain.Credential, budgetID string) ([]domain.Payee, error)

	// ListTransactions calls the transaction endpoint for scope.
	// scopeID is ignored for ScopeBudget.
	ListTransactions(
		ctx context.Context,
		cred *domain.Credential,
		budgetID string,
		scope domain.TransactionScope,
		scopeID string,
		query domain.TransactionQuery,
	) ([]domain.Transaction, error)

	// UpdateTransaction applies an update and returns the saved transaction.
	UpdateTransaction(
		ctx context.Context,
		cred *domain.Credential,
		budgetID, transactionID string,
		update domain.TransactionUpdate,
	) (*domain.Transaction, error)

	// RateBudget returns a snapshot of the local request budget.
	RateBudget() domain.RateBudget
}
