package mcp

import (
	"context"
	"errors"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/budget-mcp/internal/core/domain"
	"github.com/custodia-labs/budget-mcp/internal/logger"
	"github.com/custodia-labs/budget-mcp/internal/normalisers/currency"
)

// EmptyInput is the input of tools without parameters.
type EmptyInput struct{}

// BudgetInput selects a budget.
type BudgetInput struct {
	BudgetID string `json:"budget_id,omitempty" jsonschema:"budget ID; defaults to last-used"`
}

// AuthorizeInput is the input schema for the authorize tool.
type AuthorizeInput struct {
	Scope string `json:"scope,omitempty" jsonschema:"read-only (default) or read-write"`
}

// AuthorizeOutput tells the user where to approve access.
type AuthorizeOutput struct {
	AuthorizationURL string `json:"authorization_url"`
	Scope            string `json:"scope"`
	Instructions     string `json:"instructions"`
}

// RateLimitOutput reports the local request budget.
type RateLimitOutput struct {
	CallsMade int    `json:"calls_made"`
	Limit     int    `json:"limit"`
	Remaining int    `json:"remaining"`
	ResetsAt  string `json:"resets_at"`
}

// AuthStatusOutput reports the session's authorization.
type AuthStatusOutput struct {
	State       string          `json:"state"`
	Description string          `json:"description"`
	Scope       string          `json:"scope,omitempty"`
	ExpiresAt   string          `json:"expires_at,omitempty"`
	RateLimit   RateLimitOutput `json:"rate_limit"`
}

// BudgetsInput is the input schema for get_budgets.
type BudgetsInput struct {
	IncludeAccounts bool `json:"include_accounts,omitempty" jsonschema:"include account summaries for each budget"`
}

// BudgetsOutput is the output schema for get_budgets.
type BudgetsOutput struct {
	Budgets []currency.BudgetView `json:"budgets"`
	Count   int                   `json:"count"`
}

// AccountInput selects one account.
type AccountInput struct {
	BudgetID  string `json:"budget_id,omitempty" jsonschema:"budget ID; defaults to last-used"`
	AccountID string `json:"account_id" jsonschema:"account ID"`
}

// AccountsOutput is the output schema for get_accounts.
type AccountsOutput struct {
	Accounts []currency.AccountView `json:"accounts"`
	Count    int                    `json:"count"`
}

// CategoriesOutput is the output schema for get_categories.
type CategoriesOutput struct {
	Categories []currency.CategoryView `json:"categories"`
	Count      int                     `json:"count"`
}

// PayeesOutput is the output schema for get_payees and find_payee_by_name.
type PayeesOutput struct {
	Payees     []domain.Payee `json:"payees"`
	Count      int            `json:"count"`
	SearchTerm string         `json:"search_term,omitempty"`
}

// FindPayeeInput is the input schema for find_payee_by_name.
type FindPayeeInput struct {
	BudgetID  string `json:"budget_id,omitempty" jsonschema:"budget ID; defaults to last-used"`
	PayeeName string `json:"payee_name" jsonschema:"name or part of a name, matched case-insensitively"`
}

// TransactionsInput is the input schema for get_transactions.
type TransactionsInput struct {
	BudgetID        string `json:"budget_id,omitempty" jsonschema:"budget ID; defaults to last-used"`
	AccountID       string `json:"account_id,omitempty" jsonschema:"only transactions in this account"`
	PayeeID         string `json:"payee_id,omitempty" jsonschema:"only transactions with this payee"`
	CategoryID      string `json:"category_id,omitempty" jsonschema:"only transactions in this category"`
	SinceDate       string `json:"since_date,omitempty" jsonschema:"only transactions on or after this date (YYYY-MM-DD)"`
	TransactionType string `json:"transaction_type,omitempty" jsonschema:"uncategorized or unapproved"`
	EmptyMemo       *bool  `json:"empty_memo,omitempty" jsonschema:"true for transactions without a memo, false for those with one"`
}

// TransactionsOutput is the output schema for get_transactions.
// The plan fields show which upstream endpoint served the query and which
// filters were applied afterwards.
type TransactionsOutput struct {
	BudgetID        string                     `json:"budget_id"`
	Rule            string                     `json:"rule"`
	Endpoint        string                     `json:"endpoint"`
	ScopeID         string                     `json:"scope_id,omitempty"`
	NativeFilters   domain.TransactionQuery    `json:"native_filters"`
	ResidualFilters []string                   `json:"residual_filters"`
	Fetched         int                        `json:"fetched"`
	Count           int                        `json:"count"`
	Transactions    []currency.TransactionView `json:"transactions"`
}

// UpdateTransactionInput is the input schema for update_transaction.
type UpdateTransactionInput struct {
	BudgetID      string  `json:"budget_id,omitempty" jsonschema:"budget ID; defaults to last-used"`
	TransactionID string  `json:"transaction_id" jsonschema:"transaction ID"`
	Memo          *string `json:"memo,omitempty" jsonschema:"memo, at most 500 characters"`
	Amount        *string `json:"amount,omitempty" jsonschema:"amount in currency units, e.g. -12.50 for an outflow"`
	PayeeID       *string `json:"payee_id,omitempty" jsonschema:"payee ID"`
	PayeeName     *string `json:"payee_name,omitempty" jsonschema:"payee name, used instead of payee_id"`
	CategoryID    *string `json:"category_id,omitempty" jsonschema:"category ID"`
	Cleared       *string `json:"cleared,omitempty" jsonschema:"cleared, uncleared or reconciled"`
	Approved      *bool   `json:"approved,omitempty" jsonschema:"whether the transaction is approved"`
	FlagColor     *string `json:"flag_color,omitempty" jsonschema:"red, orange, yellow, green, blue or purple"`
	Date          *string `json:"date,omitempty" jsonschema:"date (YYYY-MM-DD)"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	readOnly := &mcp.ToolAnnotations{ReadOnlyHint: true}

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "authorize",
		Description: "Start authorization with YNAB and return the URL the user must open",
	}, s.handleAuthorize)
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "auth_status",
		Description: "Report whether the session is authorized and the remaining request budget",
		Annotations: readOnly,
	}, s.handleAuthStatus)
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "revoke_authorization",
		Description: "Forget the session's access token",
	}, s.handleRevoke)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "get_budgets",
		Description: "List the user's budgets, optionally with account summaries",
		Annotations: readOnly,
	}, s.handleGetBudgets)
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "get_budget",
		Description: "Get a budget summary with account, category, payee and transaction counts",
		Annotations: readOnly,
	}, s.handleGetBudget)
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "get_accounts",
		Description: "List the accounts of a budget with balances",
		Annotations: readOnly,
	}, s.handleGetAccounts)
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "get_account",
		Description: "Get one account with balances",
		Annotations: readOnly,
	}, s.handleGetAccount)
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "get_categories",
		Description: "List the visible categories of a budget with budgeted, activity and balance amounts",
		Annotations: readOnly,
	}, s.handleGetCategories)
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "get_payees",
		Description: "List the payees of a budget",
		Annotations: readOnly,
	}, s.handleGetPayees)
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "find_payee_by_name",
		Description: "Find payees whose name contains the given text, ignoring case",
		Annotations: readOnly,
	}, s.handleFindPayee)
	mcp.AddTool(s.server, &mcp.Tool{
		Name: "get_transactions",
		Description: "Get transactions filtered by any combination of account, payee, category, " +
			"since date, type and empty memo. One upstream request is made per call.",
		Annotations: readOnly,
	}, s.handleGetTransactions)
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "update_transaction",
		Description: "Change fields of a transaction. Requires read-write authorization.",
	}, s.handleUpdateTransaction)
}

func (s *Server) handleAuthorize(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AuthorizeInput,
) (*mcp.CallToolResult, AuthorizeOutput, error) {
	req, authURL, err := s.ports.Auth.BeginAuthorization(ctx, domain.Scope(input.Scope), "")
	if err != nil {
		return nil, AuthorizeOutput{}, s.toolError(ctx, nil, "authorize", err)
	}
	return nil, AuthorizeOutput{
		AuthorizationURL: authURL,
		Scope:            req.Scope.String(),
		Instructions:     "Open the URL in a browser and approve access, then call auth_status.",
	}, nil
}

func (s *Server) handleAuthStatus(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ EmptyInput,
) (*mcp.CallToolResult, AuthStatusOutput, error) {
	return nil, s.authStatus(ctx), nil
}

// authStatus never refreshes: a credential is only read when already usable.
func (s *Server) authStatus(ctx context.Context) AuthStatusOutput {
	state := s.ports.Auth.State(ctx)
	out := AuthStatusOutput{
		State:       state.String(),
		Description: state.Description(),
		RateLimit:   rateLimitOutput(s.ports.Budget.RateBudget()),
	}
	if state == domain.AuthStateAuthorized {
		if cred, err := s.ports.Auth.Credential(ctx); err == nil {
			out.Scope = cred.Scope.String()
			out.ExpiresAt = cred.ExpiresAt.UTC().Format(time.RFC3339)
		}
	}
	return out
}

func rateLimitOutput(b domain.RateBudget) RateLimitOutput {
	return RateLimitOutput{
		CallsMade: b.CallsMade,
		Limit:     b.Limit,
		Remaining: b.Remaining(),
		ResetsAt:  b.ResetsAt().UTC().Format(time.RFC3339),
	}
}

func (s *Server) handleRevoke(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ EmptyInput,
) (*mcp.CallToolResult, AuthStatusOutput, error) {
	if err := s.ports.Auth.Revoke(ctx); err != nil {
		return nil, AuthStatusOutput{}, s.toolError(ctx, nil, "revoke_authorization", err)
	}
	return nil, s.authStatus(ctx), nil
}

func (s *Server) handleGetBudgets(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input BudgetsInput,
) (*mcp.CallToolResult, BudgetsOutput, error) {
	cred, err := s.credential(ctx)
	if err != nil {
		return nil, BudgetsOutput{}, err
	}
	budgets, err := s.ports.Budget.ListBudgets(ctx, cred, input.IncludeAccounts)
	if err != nil {
		return nil, BudgetsOutput{}, s.toolError(ctx, cred, "get_budgets", err)
	}
	return nil, BudgetsOutput{Budgets: currency.Budgets(budgets), Count: len(budgets)}, nil
}

func (s *Server) handleGetBudget(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input BudgetInput,
) (*mcp.CallToolResult, domain.BudgetDetail, error) {
	cred, err := s.credential(ctx)
	if err != nil {
		return nil, domain.BudgetDetail{}, err
	}
	budget, err := s.ports.Budget.GetBudget(ctx, cred, input.BudgetID)
	if err != nil {
		return nil, domain.BudgetDetail{}, s.toolError(ctx, cred, "get_budget", err)
	}
	return nil, *budget, nil
}

func (s *Server) handleGetAccounts(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input BudgetInput,
) (*mcp.CallToolResult, AccountsOutput, error) {
	cred, err := s.credential(ctx)
	if err != nil {
		return nil, AccountsOutput{}, err
	}
	accounts, err := s.ports.Budget.ListAccounts(ctx, cred, input.BudgetID)
	if err != nil {
		return nil, AccountsOutput{}, s.toolError(ctx, cred, "get_accounts", err)
	}
	return nil, AccountsOutput{Accounts: currency.Accounts(accounts), Count: len(accounts)}, nil
}

func (s *Server) handleGetAccount(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AccountInput,
) (*mcp.CallToolResult, currency.AccountView, error) {
	cred, err := s.credential(ctx)
	if err != nil {
		return nil, currency.AccountView{}, err
	}
	account, err := s.ports.Budget.GetAccount(ctx, cred, input.BudgetID, input.AccountID)
	if err != nil {
		return nil, currency.AccountView{}, s.toolError(ctx, cred, "get_account", err)
	}
	return nil, currency.Account(account), nil
}

func (s *Server) handleGetCategories(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input BudgetInput,
) (*mcp.CallToolResult, CategoriesOutput, error) {
	cred, err := s.credential(ctx)
	if err != nil {
		return nil, CategoriesOutput{}, err
	}
	categories, err := s.ports.Budget.ListCategories(ctx, cred, input.BudgetID)
	if err != nil {
		return nil, CategoriesOutput{}, s.toolError(ctx, cred, "get_categories", err)
	}
	return nil, CategoriesOutput{Categories: currency.Categories(categories), Count: len(categories)}, nil
}

func (s *Server) handleGetPayees(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input BudgetInput,
) (*mcp.CallToolResult, PayeesOutput, error) {
	cred, err := s.credential(ctx)
	if err != nil {
		return nil, PayeesOutput{}, err
	}
	payees, err := s.ports.Budget.ListPayees(ctx, cred, input.BudgetID)
	if err != nil {
		return nil, PayeesOutput{}, s.toolError(ctx, cred, "get_payees", err)
	}
	return nil, payeesOutput(payees, ""), nil
}

func (s *Server) handleFindPayee(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input FindPayeeInput,
) (*mcp.CallToolResult, PayeesOutput, error) {
	cred, err := s.credential(ctx)
	if err != nil {
		return nil, PayeesOutput{}, err
	}
	payees, err := s.ports.Budget.FindPayees(ctx, cred, input.BudgetID, input.PayeeName)
	if err != nil {
		return nil, PayeesOutput{}, s.toolError(ctx, cred, "find_payee_by_name", err)
	}
	return nil, payeesOutput(payees, input.PayeeName), nil
}

func payeesOutput(payees []domain.Payee, term string) PayeesOutput {
	if payees == nil {
		payees = []domain.Payee{}
	}
	return PayeesOutput{Payees: payees, Count: len(payees), SearchTerm: term}
}

func (s *Server) handleGetTransactions(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input TransactionsInput,
) (*mcp.CallToolResult, TransactionsOutput, error) {
	cred, err := s.credential(ctx)
	if err != nil {
		return nil, TransactionsOutput{}, err
	}

	filters := domain.FilterSpec{
		AccountID:       input.AccountID,
		PayeeID:         input.PayeeID,
		CategoryID:      input.CategoryID,
		SinceDate:       input.SinceDate,
		TransactionType: domain.TransactionType(input.TransactionType),
		EmptyMemo:       input.EmptyMemo,
	}
	result, err := s.ports.Budget.GetTransactions(ctx, cred, input.BudgetID, filters)
	if err != nil {
		return nil, TransactionsOutput{}, s.toolError(ctx, cred, "get_transactions", err)
	}

	residual := make([]string, len(result.Plan.Residual))
	for i, f := range result.Plan.Residual {
		residual[i] = string(f)
	}
	return nil, TransactionsOutput{
		BudgetID:        result.BudgetID,
		Rule:            result.Plan.Rule,
		Endpoint:        result.Plan.Scope.String(),
		ScopeID:         result.Plan.ScopeID,
		NativeFilters:   result.Plan.Native,
		ResidualFilters: residual,
		Fetched:         result.Fetched,
		Count:           len(result.Transactions),
		Transactions:    currency.Transactions(result.Transactions),
	}, nil
}

func (s *Server) handleUpdateTransaction(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input UpdateTransactionInput,
) (*mcp.CallToolResult, currency.TransactionView, error) {
	update, err := transactionUpdate(&input)
	if err != nil {
		return nil, currency.TransactionView{}, s.toolError(ctx, nil, "update_transaction", err)
	}

	cred, err := s.credential(ctx)
	if err != nil {
		return nil, currency.TransactionView{}, err
	}
	tx, err := s.ports.Budget.UpdateTransaction(ctx, cred, input.BudgetID, input.TransactionID, update)
	if err != nil {
		return nil, currency.TransactionView{}, s.toolError(ctx, cred, "update_transaction", err)
	}
	return nil, currency.Transaction(tx), nil
}

func transactionUpdate(input *UpdateTransactionInput) (domain.TransactionUpdate, error) {
	update := domain.TransactionUpdate{
		Memo:       input.Memo,
		PayeeID:    input.PayeeID,
		PayeeName:  input.PayeeName,
		CategoryID: input.CategoryID,
		Approved:   input.Approved,
		Date:       input.Date,
	}
	if input.Amount != nil {
		m, err := currency.ParseAmount(*input.Amount)
		if err != nil {
			return domain.TransactionUpdate{}, err
		}
		update.Amount = &m
	}
	if input.Cleared != nil {
		c := domain.ClearedStatus(*input.Cleared)
		update.Cleared = &c
	}
	if input.FlagColor != nil {
		f := domain.FlagColor(*input.FlagColor)
		update.FlagColor = &f
	}
	return update, nil
}

// credential returns the session credential or the error telling the client
// to authorize.
func (s *Server) credential(ctx context.Context) (*domain.Credential, error) {
	cred, err := s.ports.Auth.Credential(ctx)
	if err != nil {
		var de *domain.Error
		if errors.As(err, &de) {
			return nil, de
		}
		logger.Error("loading credential: %v", err)
		return nil, domain.NewError(domain.KindInternal, "request failed")
	}
	return cred, nil
}
