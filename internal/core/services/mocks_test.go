package services

import (
	"context"
	"sync"
	"time"

	"github.com/custodia-labs/budget-mcp/internal/core/domain"
	"github.com/custodia-labs/budget-mcp/internal/core/ports/driven"
)

// mockExchanger is a TokenExchanger that counts calls.
type mockExchanger struct {
	mu            sync.Mutex
	exchangeCalls int
	refreshCalls  int
	lastCode      string
	lastVerifier  string

	exchangeErr error
	refreshErr  error
	lifetime    time.Duration
	now         func() time.Time
	// block, when set, holds Exchange until it is closed.
	block chan struct{}
}

var _ driven.TokenExchanger = (*mockExchanger)(nil)

func newMockExchanger() *mockExchanger {
	return &mockExchanger{lifetime: 2 * time.Hour, now: time.Now}
}

func (m *mockExchanger) AuthCodeURL(req *domain.AuthorizationRequest) string {
	return "https://auth.example.com/oauth/authorize?state=" + req.State
}

func (m *mockExchanger) Exchange(
	ctx context.Context,
	req *domain.AuthorizationRequest,
	code string,
) (*domain.Credential, error) {
	m.mu.Lock()
	m.exchangeCalls++
	m.lastCode = code
	m.lastVerifier = req.CodeVerifier
	block := m.block
	m.mu.Unlock()

	if block != nil {
		<-block
	}
	if m.exchangeErr != nil {
		return nil, m.exchangeErr
	}
	now := m.now()
	return &domain.Credential{
		ID:           "cred-" + code,
		AccessToken:  "access-" + code,
		RefreshToken: "refresh-" + code,
		TokenType:    "Bearer",
		IssuedAt:     now,
		ExpiresAt:    now.Add(m.lifetime),
	}, nil
}

func (m *mockExchanger) Refresh(ctx context.Context, cred *domain.Credential) (*domain.Credential, error) {
	m.mu.Lock()
	m.refreshCalls++
	m.mu.Unlock()

	if m.refreshErr != nil {
		return nil, m.refreshErr
	}
	now := m.now()
	return &domain.Credential{
		ID:          cred.ID + "-refreshed",
		AccessToken: cred.AccessToken + "-refreshed",
		TokenType:   "Bearer",
		IssuedAt:    now,
		ExpiresAt:   now.Add(m.lifetime),
	}, nil
}

func (m *mockExchanger) calls() (exchange, refresh int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.exchangeCalls, m.refreshCalls
}

// listCall records one ListTransactions invocation.
type listCall struct {
	budgetID string
	scope    domain.TransactionScope
	scopeID  string
	query    domain.TransactionQuery
}

// mockBudgetAPI serves canned data and records transaction calls.
type mockBudgetAPI struct {
	mu sync.Mutex

	budgets      []domain.BudgetSummary
	accounts     []domain.Account
	categories   []domain.Category
	payees       []domain.Payee
	transactions []domain.Transaction
	err          error

	listCalls   []listCall
	updateCalls int
	lastUpdate  domain.TransactionUpdate
	budgetIDs   []string

	includeAccounts bool
}

var _ driven.BudgetAPI = (*mockBudgetAPI)(nil)

func (m *mockBudgetAPI) record(budgetID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.budgetIDs = append(m.budgetIDs, budgetID)
}

func (m *mockBudgetAPI) ListBudgets(
	ctx context.Context,
	cred *domain.Credential,
	includeAccounts bool,
) ([]domain.BudgetSummary, error) {
	m.mu.Lock()
	m.includeAccounts = includeAccounts
	m.mu.Unlock()
	return append([]domain.BudgetSummary(nil), m.budgets...), m.err
}

func (m *mockBudgetAPI) GetBudget(
	ctx context.Context,
	cred *domain.Credential,
	budgetID string,
) (*domain.BudgetDetail, error) {
	m.record(budgetID)
	if m.err != nil {
		return nil, m.err
	}
	return &domain.BudgetDetail{
		BudgetSummary: domain.BudgetSummary{ID: budgetID, Name: "Budget"},
		AccountCount:  len(m.accounts),
	}, nil
}

func (m *mockBudgetAPI) ListAccounts(
	ctx context.Context,
	cred *domain.Credential,
	budgetID string,
) ([]domain.Account, error) {
	m.record(budgetID)
	return append([]domain.Account(nil), m.accounts...), m.err
}

func (m *mockBudgetAPI) GetAccount(
	ctx context.Context,
	cred *domain.Credential,
	budgetID, accountID string,
) (*domain.Account, error) {
	m.record(budgetID)
	if m.err != nil {
		return nil, m.err
	}
	for _, a := range m.accounts {
		if a.ID == accountID {
			return &a, nil
		}
	}
	return nil, domain.NewError(domain.KindNotFound, "resource not found")
}

func (m *mockBudgetAPI) ListCategories(
	ctx context.Context,
	cred *domain.Credential,
	budgetID string,
) ([]domain.Category, error) {
	m.record(budgetID)
	return append([]domain.Category(nil), m.categories...), m.err
}

func (m *mockBudgetAPI) ListPayees(
	ctx context.Context,
	cred *domain.Credential,
	budgetID string,
) ([]domain.Payee, error) {
	m.record(budgetID)
	return append([]domain.Payee(nil), m.payees...), m.err
}

// ListTransactions applies the scope the way upstream does, ignoring native params.
func (m *mockBudgetAPI) ListTransactions(
	ctx context.Context,
	cred *domain.Credential,
	budgetID string,
	scope domain.TransactionScope,
	scopeID string,
	query domain.TransactionQuery,
) ([]domain.Transaction, error) {
	m.mu.Lock()
	m.listCalls = append(m.listCalls, listCall{budgetID: budgetID, scope: scope, scopeID: scopeID, query: query})
	m.mu.Unlock()

	if m.err != nil {
		return nil, m.err
	}

	var out []domain.Transaction
	for _, tx := range m.transactions {
		switch scope {
		case domain.ScopeAccount:
			if tx.AccountID != scopeID {
				continue
			}
		case domain.ScopeCategory:
			if tx.CategoryID != scopeID {
				continue
			}
		case domain.ScopePayee:
			if tx.PayeeID != scopeID {
				continue
			}
		}
		out = append(out, tx)
	}
	return out, nil
}

func (m *mockBudgetAPI) UpdateTransaction(
	ctx context.Context,
	cred *domain.Credential,
	budgetID, transactionID string,
	update domain.TransactionUpdate,
) (*domain.Transaction, error) {
	m.mu.Lock()
	m.updateCalls++
	m.lastUpdate = update
	m.mu.Unlock()

	if m.err != nil {
		return nil, m.err
	}
	tx := domain.Transaction{ID: transactionID}
	if update.Memo != nil {
		tx.Memo = *update.Memo
	}
	return &tx, nil
}

func (m *mockBudgetAPI) RateBudget() domain.RateBudget {
	return domain.RateBudget{Limit: domain.DefaultRateLimit, WindowDuration: domain.DefaultRateWindow}
}
