package ynab

import (
	"context"
	"net/http"
	"net/url"

	"github.com/custodia-labs/budget-mcp/internal/core/domain"
)

// transactionsPath returns the endpoint for a transaction scope.
func transactionsPath(budgetID string, scope domain.TransactionScope, scopeID string) (string, error) {
	base := budgetPath(budgetID)
	switch scope {
	case domain.ScopeBudget, "":
		return base + "/transactions", nil
	case domain.ScopeAccount:
		return base + "/accounts/" + url.PathEscape(scopeID) + "/transactions", nil
	case domain.ScopeCategory:
		return base + "/categories/" + url.PathEscape(scopeID) + "/transactions", nil
	case domain.ScopePayee:
		return base + "/payees/" + url.PathEscape(scopeID) + "/transactions", nil
	default:
		return "", domain.Errorf(domain.KindValidation, "unknown transaction scope %q", scope)
	}
}

// ListTransactions calls the transaction endpoint for scope with the native filters.
func (c *Client) ListTransactions(
	ctx context.Context,
	cred *domain.Credential,
	budgetID string,
	scope domain.TransactionScope,
	scopeID string,
	query domain.TransactionQuery,
) ([]domain.Transaction, error) {
	if scope != domain.ScopeBudget && scope != "" && scopeID == "" {
		return nil, domain.Errorf(domain.KindValidation, "%s scope requires an id", scope)
	}
	endpoint, err := transactionsPath(budgetID, scope, scopeID)
	if err != nil {
		return nil, err
	}

	params := url.Values{}
	if query.SinceDate != "" {
		params.Set("since_date", query.SinceDate)
	}
	if query.Type != "" {
		params.Set("type", string(query.Type))
	}

	var resp struct {
		Transactions []domain.Transaction `json:"transactions"`
	}
	if err := c.get(ctx, cred, endpoint, params, &resp); err != nil {
		return nil, err
	}
	return resp.Transactions, nil
}

// UpdateTransaction applies update and returns the saved transaction.
func (c *Client) UpdateTransaction(
	ctx context.Context,
	cred *domain.Credential,
	budgetID, transactionID string,
	update domain.TransactionUpdate,
) (*domain.Transaction, error) {
	endpoint := budgetPath(budgetID) + "/transactions/" + url.PathEscape(transactionID)
	body := struct {
		Transaction domain.TransactionUpdate `json:"transaction"`
	}{Transaction: update}

	data, err := c.Call(ctx, http.MethodPut, endpoint, cred, nil, body)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Transaction domain.Transaction `json:"transaction"`
	}
	if err := decode(data, &resp); err != nil {
		return nil, err
	}
	return &resp.Transaction, nil
}
