package services

import (
	"context"
	"strings"

	"github.com/custodia-labs/budget-mcp/internal/core/domain"
	"github.com/custodia-labs/budget-mcp/internal/core/ports/driven"
	"github.com/custodia-labs/budget-mcp/internal/core/ports/driving"
	"github.com/custodia-labs/budget-mcp/internal/logger"
)

// Ensure BudgetService implements the interface.
var _ driving.BudgetService = (*BudgetService)(nil)

// BudgetService answers budget queries against the upstream API.
// It holds no state of its own: every call goes upstream.
type BudgetService struct {
	api      driven.BudgetAPI
	readOnly bool
}

// NewBudgetService creates a new budget service.
// When readOnly is set, updates are refused regardless of the credential's scope.
func NewBudgetService(api driven.BudgetAPI, readOnly bool) *BudgetService {
	return &BudgetService{api: api, readOnly: readOnly}
}

// ListBudgets returns the user's budgets. Included accounts skip deleted ones.
func (s *BudgetService) ListBudgets(
	ctx context.Context,
	cred *domain.Credential,
	includeAccounts bool,
) ([]domain.BudgetSummary, error) {
	budgets, err := s.api.ListBudgets(ctx, cred, includeAccounts)
	if err != nil {
		return nil, err
	}
	for i := range budgets {
		if !includeAccounts {
			budgets[i].Accounts = nil
			continue
		}
		kept := make([]domain.Account, 0, len(budgets[i].Accounts))
		for _, a := range budgets[i].Accounts {
			if !a.Deleted {
				kept = append(kept, a)
			}
		}
		budgets[i].Accounts = kept
	}
	return budgets, nil
}

// GetBudget returns a budget summary with entity counts.
func (s *BudgetService) GetBudget(
	ctx context.Context,
	cred *domain.Credential,
	budgetID string,
) (*domain.BudgetDetail, error) {
	return s.api.GetBudget(ctx, cred, budgetOrDefault(budgetID))
}

// ListAccounts returns the open and closed accounts of a budget.
func (s *BudgetService) ListAccounts(
	ctx context.Context,
	cred *domain.Credential,
	budgetID string,
) ([]domain.Account, error) {
	accounts, err := s.api.ListAccounts(ctx, cred, budgetOrDefault(budgetID))
	if err != nil {
		return nil, err
	}
	out := accounts[:0]
	for _, a := range accounts {
		if !a.Deleted {
			out = append(out, a)
		}
	}
	return out, nil
}

// GetAccount returns a single account.
func (s *BudgetService) GetAccount(
	ctx context.Context,
	cred *domain.Credential,
	budgetID, accountID string,
) (*domain.Account, error) {
	if accountID == "" {
		return nil, domain.NewError(domain.KindValidation, "account_id is required")
	}
	return s.api.GetAccount(ctx, cred, budgetOrDefault(budgetID), accountID)
}

// ListCategories returns the categories that are neither hidden nor deleted.
func (s *BudgetService) ListCategories(
	ctx context.Context,
	cred *domain.Credential,
	budgetID string,
) ([]domain.Category, error) {
	categories, err := s.api.ListCategories(ctx, cred, budgetOrDefault(budgetID))
	if err != nil {
		return nil, err
	}
	out := categories[:0]
	for _, c := range categories {
		if !c.Hidden && !c.Deleted {
			out = append(out, c)
		}
	}
	return out, nil
}

// ListPayees returns the payees of a budget.
func (s *BudgetService) ListPayees(
	ctx context.Context,
	cred *domain.Credential,
	budgetID string,
) ([]domain.Payee, error) {
	payees, err := s.api.ListPayees(ctx, cred, budgetOrDefault(budgetID))
	if err != nil {
		return nil, err
	}
	out := payees[:0]
	for _, p := range payees {
		if !p.Deleted {
			out = append(out, p)
		}
	}
	return out, nil
}

// FindPayees returns payees whose name contains term, ignoring case.
func (s *BudgetService) FindPayees(
	ctx context.Context,
	cred *domain.Credential,
	budgetID, term string,
) ([]domain.Payee, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, domain.NewError(domain.KindValidation, "name is required")
	}
	payees, err := s.ListPayees(ctx, cred, budgetID)
	if err != nil {
		return nil, err
	}
	needle := strings.ToLower(term)
	out := make([]domain.Payee, 0)
	for _, p := range payees {
		if strings.Contains(strings.ToLower(p.Name), needle) {
			out = append(out, p)
		}
	}
	return out, nil
}

// GetTransactions plans the query, makes exactly one upstream call and
// applies the residual filters in memory.
func (s *BudgetService) GetTransactions(
	ctx context.Context,
	cred *domain.Credential,
	budgetID string,
	filters domain.FilterSpec,
) (*domain.TransactionResult, error) {
	if err := filters.Validate(); err != nil {
		return nil, err
	}
	budgetID = budgetOrDefault(budgetID)

	plan := PlanTransactions(filters)
	logger.Debug("Transaction plan: rule=%s scope=%s residual=%v", plan.Rule, plan.Scope, plan.Residual)

	txs, err := s.api.ListTransactions(ctx, cred, budgetID, plan.Scope, plan.ScopeID, plan.Native)
	if err != nil {
		return nil, err
	}

	filtered := applyResidual(txs, &filters, &plan)
	logger.Debug("Transactions: fetched=%d kept=%d", len(txs), len(filtered))

	return &domain.TransactionResult{
		BudgetID:     budgetID,
		Filters:      filters,
		Plan:         plan,
		Fetched:      len(txs),
		Transactions: filtered,
	}, nil
}

// UpdateTransaction validates the update and sends it upstream.
func (s *BudgetService) UpdateTransaction(
	ctx context.Context,
	cred *domain.Credential,
	budgetID, transactionID string,
	update domain.TransactionUpdate,
) (*domain.Transaction, error) {
	if s.readOnly {
		return nil, domain.NewError(domain.KindValidation, "server is running in read-only mode")
	}
	if transactionID == "" {
		return nil, domain.NewError(domain.KindValidation, "transaction_id is required")
	}
	if err := update.Validate(); err != nil {
		return nil, err
	}
	if !cred.CanWrite() {
		return nil, domain.NewError(domain.KindValidation,
			"credential is read-only: authorize again with scope read-write")
	}
	return s.api.UpdateTransaction(ctx, cred, budgetOrDefault(budgetID), transactionID, update)
}

// RateBudget reports the local upstream request budget.
func (s *BudgetService) RateBudget() domain.RateBudget {
	return s.api.RateBudget()
}

func budgetOrDefault(id string) string {
	if id == "" {
		return domain.LastUsedBudget
	}
	return id
}
