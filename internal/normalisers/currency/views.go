package currency

import "github.com/custodia-labs/budget-mcp/internal/core/domain"

// TransactionView is a transaction with its amount in both units.
type TransactionView struct {
	ID                string               `json:"id"`
	Date              string               `json:"date"`
	AmountMilliunits  int64                `json:"amount_milliunits"`
	AmountFormatted   string               `json:"amount_formatted"`
	Memo              string               `json:"memo,omitempty"`
	Cleared           domain.ClearedStatus `json:"cleared"`
	Approved          bool                 `json:"approved"`
	FlagColor         domain.FlagColor     `json:"flag_color,omitempty"`
	AccountID         string               `json:"account_id"`
	AccountName       string               `json:"account_name,omitempty"`
	PayeeID           string               `json:"payee_id,omitempty"`
	PayeeName         string               `json:"payee_name,omitempty"`
	CategoryID        string               `json:"category_id,omitempty"`
	CategoryName      string               `json:"category_name,omitempty"`
	TransferAccountID string               `json:"transfer_account_id,omitempty"`
	ImportID          string               `json:"import_id,omitempty"`
	Subtransactions   []SubTransactionView `json:"subtransactions,omitempty"`
}

// SubTransactionView is one part of a split transaction.
type SubTransactionView struct {
	ID               string `json:"id"`
	AmountMilliunits int64  `json:"amount_milliunits"`
	AmountFormatted  string `json:"amount_formatted"`
	Memo             string `json:"memo,omitempty"`
	PayeeID          string `json:"payee_id,omitempty"`
	PayeeName        string `json:"payee_name,omitempty"`
	CategoryID       string `json:"category_id,omitempty"`
	CategoryName     string `json:"category_name,omitempty"`
}

// AccountView is an account with balances in both units.
type AccountView struct {
	ID                         string `json:"id"`
	Name                       string `json:"name"`
	Type                       string `json:"type"`
	OnBudget                   bool   `json:"on_budget"`
	Closed                     bool   `json:"closed"`
	Note                       string `json:"note,omitempty"`
	BalanceMilliunits          int64  `json:"balance_milliunits"`
	BalanceFormatted           string `json:"balance_formatted"`
	ClearedBalanceMilliunits   int64  `json:"cleared_balance_milliunits"`
	ClearedBalanceFormatted    string `json:"cleared_balance_formatted"`
	UnclearedBalanceMilliunits int64  `json:"uncleared_balance_milliunits"`
	UnclearedBalanceFormatted  string `json:"uncleared_balance_formatted"`
	LastReconciledAt           string `json:"last_reconciled_at,omitempty"`
}

// BudgetView is a budget summary with its accounts, when requested, in both units.
type BudgetView struct {
	ID             string                 `json:"id"`
	Name           string                 `json:"name"`
	LastModifiedOn string                 `json:"last_modified_on,omitempty"`
	FirstMonth     string                 `json:"first_month,omitempty"`
	LastMonth      string                 `json:"last_month,omitempty"`
	CurrencyFormat *domain.CurrencyFormat `json:"currency_format,omitempty"`
	Accounts       []AccountView          `json:"accounts,omitempty"`
}

// CategoryView is a category with amounts in both units.
type CategoryView struct {
	ID                  string  `json:"id"`
	Name                string  `json:"name"`
	CategoryGroupID     string  `json:"category_group_id"`
	CategoryGroupName   string  `json:"category_group_name,omitempty"`
	Note                string  `json:"note,omitempty"`
	BudgetedMilliunits  int64   `json:"budgeted_milliunits"`
	BudgetedFormatted   string  `json:"budgeted_formatted"`
	ActivityMilliunits  int64   `json:"activity_milliunits"`
	ActivityFormatted   string  `json:"activity_formatted"`
	BalanceMilliunits   int64   `json:"balance_milliunits"`
	BalanceFormatted    string  `json:"balance_formatted"`
	GoalType            string  `json:"goal_type,omitempty"`
	GoalTargetFormatted *string `json:"goal_target_formatted,omitempty"`
}

// Transaction builds the view for tx. Dates pass through unchanged.
func Transaction(tx *domain.Transaction) TransactionView {
	v := TransactionView{
		ID:                tx.ID,
		Date:              tx.Date,
		AmountMilliunits:  tx.Amount,
		AmountFormatted:   Format(tx.Amount),
		Memo:              tx.Memo,
		Cleared:           tx.Cleared,
		Approved:          tx.Approved,
		FlagColor:         tx.FlagColor,
		AccountID:         tx.AccountID,
		AccountName:       tx.AccountName,
		PayeeID:           tx.PayeeID,
		PayeeName:         tx.PayeeName,
		CategoryID:        tx.CategoryID,
		CategoryName:      tx.CategoryName,
		TransferAccountID: tx.TransferAccountID,
		ImportID:          tx.ImportID,
	}
	for i := range tx.Subtransactions {
		sub := &tx.Subtransactions[i]
		if sub.Deleted {
			continue
		}
		v.Subtransactions = append(v.Subtransactions, SubTransactionView{
			ID:               sub.ID,
			AmountMilliunits: sub.Amount,
			AmountFormatted:  Format(sub.Amount),
			Memo:             sub.Memo,
			PayeeID:          sub.PayeeID,
			PayeeName:        sub.PayeeName,
			CategoryID:       sub.CategoryID,
			CategoryName:     sub.CategoryName,
		})
	}
	return v
}

// Transactions builds views for txs. The result is never nil.
func Transactions(txs []domain.Transaction) []TransactionView {
	out := make([]TransactionView, 0, len(txs))
	for i := range txs {
		out = append(out, Transaction(&txs[i]))
	}
	return out
}

// Account builds the view for a.
func Account(a *domain.Account) AccountView {
	return AccountView{
		ID:                         a.ID,
		Name:                       a.Name,
		Type:                       a.Type,
		OnBudget:                   a.OnBudget,
		Closed:                     a.Closed,
		Note:                       a.Note,
		BalanceMilliunits:          a.Balance,
		BalanceFormatted:           Format(a.Balance),
		ClearedBalanceMilliunits:   a.ClearedBalance,
		ClearedBalanceFormatted:    Format(a.ClearedBalance),
		UnclearedBalanceMilliunits: a.UnclearedBalance,
		UnclearedBalanceFormatted:  Format(a.UnclearedBalance),
		LastReconciledAt:           a.LastReconciledAt,
	}
}

// Accounts builds views for accounts. The result is never nil.
func Accounts(accounts []domain.Account) []AccountView {
	out := make([]AccountView, 0, len(accounts))
	for i := range accounts {
		out = append(out, Account(&accounts[i]))
	}
	return out
}

// Budget builds the view for b. Accounts stay nil when b carries none.
func Budget(b *domain.BudgetSummary) BudgetView {
	v := BudgetView{
		ID:             b.ID,
		Name:           b.Name,
		LastModifiedOn: b.LastModifiedOn,
		FirstMonth:     b.FirstMonth,
		LastMonth:      b.LastMonth,
		CurrencyFormat: b.CurrencyFormat,
	}
	if b.Accounts != nil {
		v.Accounts = Accounts(b.Accounts)
	}
	return v
}

// Budgets builds views for budgets. The result is never nil.
func Budgets(budgets []domain.BudgetSummary) []BudgetView {
	out := make([]BudgetView, 0, len(budgets))
	for i := range budgets {
		out = append(out, Budget(&budgets[i]))
	}
	return out
}

// Category builds the view for c.
func Category(c *domain.Category) CategoryView {
	v := CategoryView{
		ID:                 c.ID,
		Name:               c.Name,
		CategoryGroupID:    c.CategoryGroupID,
		CategoryGroupName:  c.CategoryGroupName,
		Note:               c.Note,
		BudgetedMilliunits: c.Budgeted,
		BudgetedFormatted:  Format(c.Budgeted),
		ActivityMilliunits: c.Activity,
		ActivityFormatted:  Format(c.Activity),
		BalanceMilliunits:  c.Balance,
		BalanceFormatted:   Format(c.Balance),
		GoalType:           c.GoalType,
	}
	if c.GoalTarget != nil {
		s := Format(*c.GoalTarget)
		v.GoalTargetFormatted = &s
	}
	return v
}

// Categories builds views for categories. The result is never nil.
func Categories(categories []domain.Category) []CategoryView {
	out := make([]CategoryView, 0, len(categories))
	for i := range categories {
		out = append(out, Category(&categories[i]))
	}
	return out
}
