package ynab

import (
	"context"
	"encoding/json"
	"net/url"

	"github.com/custodia-labs/budget-mcp/internal/core/domain"
	"github.com/custodia-labs/budget-mcp/internal/core/ports/driven"
)

// Ensure Client implements the interface.
var _ driven.BudgetAPI = (*Client)(nil)

// ListBudgets returns the user's budgets, asking upstream for their accounts
// when includeAccounts is set.
func (c *Client) ListBudgets(
	ctx context.Context,
	cred *domain.Credential,
	includeAccounts bool,
) ([]domain.BudgetSummary, error) {
	var resp struct {
		Budgets []domain.BudgetSummary `json:"budgets"`
	}
	var query url.Values
	if includeAccounts {
		query = url.Values{"include_accounts": {"true"}}
	}
	if err := c.get(ctx, cred, "/budgets", query, &resp); err != nil {
		return nil, err
	}
	return resp.Budgets, nil
}

// GetBudget returns a budget with entity counts.
// Upstream returns the full export; only the counts are kept.
func (c *Client) GetBudget(ctx context.Context, cred *domain.Credential, budgetID string) (*domain.BudgetDetail, error) {
	var resp struct {
		Budget struct {
			domain.BudgetSummary
			Accounts     []json.RawMessage `json:"accounts"`
			Categories   []json.RawMessage `json:"categories"`
			Payees       []json.RawMessage `json:"payees"`
			Transactions []json.RawMessage `json:"transactions"`
		} `json:"budget"`
		ServerKnowledge int64 `json:"server_knowledge"`
	}
	if err := c.get(ctx, cred, budgetPath(budgetID), nil, &resp); err != nil {
		return nil, err
	}
	return &domain.BudgetDetail{
		BudgetSummary:    resp.Budget.BudgetSummary,
		AccountCount:     len(resp.Budget.Accounts),
		CategoryCount:    len(resp.Budget.Categories),
		PayeeCount:       len(resp.Budget.Payees),
		TransactionCount: len(resp.Budget.Transactions),
		ServerKnowledge:  resp.ServerKnowledge,
	}, nil
}

// ListAccounts returns the accounts of a budget.
func (c *Client) ListAccounts(ctx context.Context, cred *domain.Credential, budgetID string) ([]domain.Account, error) {
	var resp struct {
		Accounts []domain.Account `json:"accounts"`
	}
	if err := c.get(ctx, cred, budgetPath(budgetID)+"/accounts", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Accounts, nil
}

// GetAccount returns a single account.
func (c *Client) GetAccount(
	ctx context.Context,
	cred *domain.Credential,
	budgetID, accountID string,
) (*domain.Account, error) {
	var resp struct {
		Account domain.Account `json:"account"`
	}
	endpoint := budgetPath(budgetID) + "/accounts/" + url.PathEscape(accountID)
	if err := c.get(ctx, cred, endpoint, nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Account, nil
}

// ListCategories returns the categories of a budget flattened across groups.
// Each category carries its group's name; a hidden group hides its categories.
func (c *Client) ListCategories(ctx context.Context, cred *domain.Credential, budgetID string) ([]domain.Category, error) {
	var resp struct {
		CategoryGroups []domain.CategoryGroup `json:"category_groups"`
	}
	if err := c.get(ctx, cred, budgetPath(budgetID)+"/categories", nil, &resp); err != nil {
		return nil, err
	}

	var out []domain.Category
	for _, group := range resp.CategoryGroups {
		for _, cat := range group.Categories {
			cat.CategoryGroupName = group.Name
			if cat.CategoryGroupID == "" {
				cat.CategoryGroupID = group.ID
			}
			cat.Hidden = cat.Hidden || group.Hidden
			cat.Deleted = cat.Deleted || group.Deleted
			out = append(out, cat)
		}
	}
	return out, nil
}

// ListPayees returns the payees of a budget.
func (c *Client) ListPayees(ctx context.Context, cred *domain.Credential, budgetID string) ([]domain.Payee, error) {
	var resp struct {
		Payees []domain.Payee `json:"payees"`
	}
	if err := c.get(ctx, cred, budgetPath(budgetID)+"/payees", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Payees, nil
}

// RateBudget returns a snapshot of the local request budget.
func (c *Client) RateBudget() domain.RateBudget {
	return c.limiter.Snapshot()
}

func budgetPath(budgetID string) string {
	if budgetID == "" {
		budgetID = domain.LastUsedBudget
	}
	return "/budgets/" + url.PathEscape(budgetID)
}
