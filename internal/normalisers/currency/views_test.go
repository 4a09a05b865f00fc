package currency

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/budget-mcp/internal/core/domain"
)

func TestTransaction(t *testing.T) {
	tx := domain.Transaction{
		ID:        "t1",
		Date:      "2025-03-01",
		Amount:    -45670,
		Cleared:   domain.ClearedStatusCleared,
		Approved:  true,
		AccountID: "a1",
		PayeeName: "Grocer",
		Subtransactions: []domain.SubTransaction{
			{ID: "s1", Amount: -40000, CategoryID: "c1"},
			{ID: "s2", Amount: -5670, Deleted: true},
		},
	}

	v := Transaction(&tx)

	assert.Equal(t, "2025-03-01", v.Date)
	assert.Equal(t, int64(-45670), v.AmountMilliunits)
	assert.Equal(t, "-45.67", v.AmountFormatted)
	require.Len(t, v.Subtransactions, 1)
	assert.Equal(t, "-40.00", v.Subtransactions[0].AmountFormatted)

	data, err := json.Marshal(v)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"amount_milliunits":-45670`)
	assert.Contains(t, string(data), `"amount_formatted":"-45.67"`)
}

func TestAccountAndCategory(t *testing.T) {
	a := Account(&domain.Account{ID: "a1", Balance: 1234560, ClearedBalance: 1000000, UnclearedBalance: 234560})
	assert.Equal(t, "1234.56", a.BalanceFormatted)
	assert.Equal(t, "1000.00", a.ClearedBalanceFormatted)
	assert.Equal(t, "234.56", a.UnclearedBalanceFormatted)

	goal := int64(300000)
	c := Category(&domain.Category{ID: "c1", Budgeted: 250000, Activity: -120500, Balance: 129500, GoalTarget: &goal})
	assert.Equal(t, "250.00", c.BudgetedFormatted)
	assert.Equal(t, "-120.50", c.ActivityFormatted)
	assert.Equal(t, "129.50", c.BalanceFormatted)
	require.NotNil(t, c.GoalTargetFormatted)
	assert.Equal(t, "300.00", *c.GoalTargetFormatted)

	assert.Nil(t, Category(&domain.Category{ID: "c2"}).GoalTargetFormatted)
}

func TestCollectionsNeverNil(t *testing.T) {
	assert.NotNil(t, Transactions(nil))
	assert.NotNil(t, Accounts(nil))
	assert.NotNil(t, Budgets(nil))
	assert.NotNil(t, Categories(nil))
}

func TestBudget(t *testing.T) {
	plain := Budget(&domain.BudgetSummary{ID: "b1", Name: "Home"})
	assert.Nil(t, plain.Accounts)

	data, err := json.Marshal(plain)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "accounts")

	withAccounts := Budget(&domain.BudgetSummary{
		ID:       "b1",
		Accounts: []domain.Account{{ID: "a1", Balance: 1500}},
	})
	require.Len(t, withAccounts.Accounts, 1)
	assert.Equal(t, int64(1500), withAccounts.Accounts[0].BalanceMilliunits)
	assert.Equal(t, "1.50", withAccounts.Accounts[0].BalanceFormatted)
}
