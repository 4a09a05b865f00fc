package mcp

import (
	"context"
	"sync"
	"time"

	"github.com/custodia-labs/budget-mcp/internal/core/domain"
	"github.com/custodia-labs/budget-mcp/internal/core/ports/driving"
)

// mockAuthService is a mock implementation of driving.AuthorizationService.
type mockAuthService struct {
	mu            sync.Mutex
	cred          *domain.Credential
	credErr       error
	state         domain.AuthState
	beginErr      error
	beginScope    domain.Scope
	invalidated   int
	invalidatedID string
	revoked       int
}

var _ driving.AuthorizationService = (*mockAuthService)(nil)

func authorized(scope domain.Scope) *mockAuthService {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	return &mockAuthService{
		state: domain.AuthStateAuthorized,
		cred: &domain.Credential{
			ID:          "cred",
			AccessToken: "tok",
			Scope:       scope,
			IssuedAt:    now,
			ExpiresAt:   now.Add(2 * time.Hour),
		},
	}
}

func (m *mockAuthService) BeginAuthorization(
	_ context.Context,
	scope domain.Scope,
	redirectURI string,
) (*domain.AuthorizationRequest, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.beginErr != nil {
		return nil, "", m.beginErr
	}
	if scope == "" {
		scope = domain.ScopeReadOnly
	}
	m.beginScope = scope
	req := &domain.AuthorizationRequest{State: "st", Scope: scope, RedirectURI: "http://localhost:8000/oauth/callback"}
	return req, "https://app.ynab.com/oauth/authorize?state=st", nil
}

func (m *mockAuthService) CompleteAuthorization(_ context.Context, _, _ string) (*domain.Credential, error) {
	return nil, domain.ErrInvalidState
}

func (m *mockAuthService) Credential(_ context.Context) (*domain.Credential, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.credErr != nil {
		return nil, m.credErr
	}
	if m.cred == nil {
		return nil, domain.NewError(domain.KindCredentialExpired, "not authorized")
	}
	return m.cred, nil
}

func (m *mockAuthService) IsValid(cred *domain.Credential) bool {
	return cred != nil
}

func (m *mockAuthService) Refresh(_ context.Context, _ *domain.Credential) (*domain.Credential, error) {
	return nil, domain.ErrRefresh
}

func (m *mockAuthService) Invalidate(_ context.Context, credID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.invalidated++
	m.invalidatedID = credID
	m.state = domain.AuthStateExpired
	return nil
}

func (m *mockAuthService) Revoke(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.revoked++
	m.cred = nil
	m.state = domain.AuthStateInit
	return nil
}

func (m *mockAuthService) State(_ context.Context) domain.AuthState {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == "" {
		return domain.AuthStateInit
	}
	return m.state
}

// mockBudgetService is a mock implementation of driving.BudgetService.
type mockBudgetService struct {
	budgets      []domain.BudgetSummary
	accounts     []domain.Account
	categories   []domain.Category
	payees       []domain.Payee
	result       *domain.TransactionResult
	updated      *domain.Transaction
	err          error
	lastFilters  domain.FilterSpec
	lastUpdate   domain.TransactionUpdate
	lastBudgetID string

	lastIncludeAccounts bool
}

var _ driving.BudgetService = (*mockBudgetService)(nil)

func (m *mockBudgetService) ListBudgets(
	_ context.Context,
	_ *domain.Credential,
	includeAccounts bool,
) ([]domain.BudgetSummary, error) {
	m.lastIncludeAccounts = includeAccounts
	return m.budgets, m.err
}

func (m *mockBudgetService) GetBudget(
	_ context.Context,
	_ *domain.Credential,
	budgetID string,
) (*domain.BudgetDetail, error) {
	m.lastBudgetID = budgetID
	if m.err != nil {
		return nil, m.err
	}
	return &domain.BudgetDetail{BudgetSummary: domain.BudgetSummary{ID: "b1", Name: "Home"}, AccountCount: 2}, nil
}

func (m *mockBudgetService) ListAccounts(
	_ context.Context,
	_ *domain.Credential,
	budgetID string,
) ([]domain.Account, error) {
	m.lastBudgetID = budgetID
	return m.accounts, m.err
}

func (m *mockBudgetService) GetAccount(
	_ context.Context,
	_ *domain.Credential,
	budgetID, accountID string,
) (*domain.Account, error) {
	m.lastBudgetID = budgetID
	if m.err != nil {
		return nil, m.err
	}
	for i := range m.accounts {
		if m.accounts[i].ID == accountID {
			return &m.accounts[i], nil
		}
	}
	return nil, domain.NewError(domain.KindNotFound, "account not found")
}

func (m *mockBudgetService) ListCategories(
	_ context.Context,
	_ *domain.Credential,
	_ string,
) ([]domain.Category, error) {
	return m.categories, m.err
}

func (m *mockBudgetService) ListPayees(_ context.Context, _ *domain.Credential, _ string) ([]domain.Payee, error) {
	return m.payees, m.err
}

func (m *mockBudgetService) FindPayees(
	_ context.Context,
	_ *domain.Credential,
	_, _ string,
) ([]domain.Payee, error) {
	return m.payees, m.err
}

func (m *mockBudgetService) GetTransactions(
	_ context.Context,
	_ *domain.Credential,
	budgetID string,
	filters domain.FilterSpec,
) (*domain.TransactionResult, error) {
	m.lastBudgetID = budgetID
	m.lastFilters = filters
	if m.err != nil {
		return nil, m.err
	}
	return m.result, nil
}

func (m *mockBudgetService) UpdateTransaction(
	_ context.Context,
	_ *domain.Credential,
	_, _ string,
	update domain.TransactionUpdate,
) (*domain.Transaction, error) {
	m.lastUpdate = update
	if m.err != nil {
		return nil, m.err
	}
	return m.updated, nil
}

func (m *mockBudgetService) RateBudget() domain.RateBudget {
	return domain.RateBudget{
		WindowStart:    time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
		WindowDuration: time.Hour,
		CallsMade:      15,
		Limit:          200,
	}
}
