package driving

import (
	"context"

	"github.com/custodia-labs/budget-mcp/internal/core/domain"
)

// BudgetService exposes the read and update operations offered as tools.
// Every operation takes the caller's credential explicitly.
type BudgetService interface {
	// ListBudgets returns the user's budgets, with their accounts when
	// includeAccounts is set.
	ListBudgets(ctx context.Context, cred *domain.Credential, includeAccounts bool) ([]domain.BudgetSummary, error)

	// GetBudget returns a budget summary with entity counts.
	GetBudget(ctx context.Context, cred *domain.Credential, budgetID string) (*domain.BudgetDetail, error)

	// ListAccounts returns the accounts of a budget.
	ListAccounts(ctx context.Context, cred *domain.Credential, budgetID string) ([]domain.Account, error)

	// GetAccount returns a single account.
	GetAccount(ctx context.Context, cred *domain.Credential, budgetID, accountID string) (*domain.Account, error)

	// ListCategories returns the visible categories of a budget.
	ListCategories(ctx context.Context, cred *domain.Credential, budgetID string) ([]domain.Category, error)

	// ListPayees returns the payees of a budget.
	ListPayees(ctx context.Context, cred *domain.Credential, budgetID string) ([]domain.Payee, error)

	// FindPayees returns payees whose name contains term, case-insensitively.
	FindPayees(ctx context.Context, cred *domain.Credential, budgetID, term string) ([]domain.Payee, error)

	// GetTransactions plans and runs a filtered transaction query.
	GetTransactions(
		ctx context.Context,
		cred *domain.Credential,
		budgetID string,
		filters domain.FilterSpec,
	) (*domain.TransactionResult, error)

	// UpdateTransaction changes fields of a transaction.
	UpdateTransaction(
		ctx context.Context,
		cred *domain.Credential,
		budgetID, transactionID string,
		update domain.TransactionUpdate,
	) (*domain.Transaction, error)

	// RateBudget reports the local upstream request budget.
	RateBudget() domain.RateBudget
}
