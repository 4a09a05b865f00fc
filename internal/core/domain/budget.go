package domain

// LastUsedBudget is the upstream alias for the most recently used budget.
const LastUsedBudget = "last-used"

// CurrencyFormat describes how a budget displays amounts.
type CurrencyFormat struct {
	ISOCode          string `json:"iso_code"`
	ExampleFormat    string `json:"example_format"`
	DecimalDigits    int    `json:"decimal_digits"`
	DecimalSeparator string `json:"decimal_separator"`
	SymbolFirst      bool   `json:"symbol_first"`
	GroupSeparator   string `json:"group_separator"`
	CurrencySymbol   string `json:"currency_symbol"`
	DisplaySymbol    bool   `json:"display_symbol"`
}

// BudgetSummary is the top-level information about a budget.
type BudgetSummary struct {
	ID             string          `json:"id"`
	Name           string          `json:"name"`
	LastModifiedOn string          `json:"last_modified_on,omitempty"`
	FirstMonth     string          `json:"first_month,omitempty"`
	LastMonth      string          `json:"last_month,omitempty"`
	CurrencyFormat *CurrencyFormat `json:"currency_format,omitempty"`

	// Accounts is only populated when requested from the budget list.
	Accounts []Account `json:"accounts,omitempty"`
}

// BudgetDetail is a budget with entity counts, used when a full
// export would be too large to return.
type BudgetDetail struct {
	BudgetSummary
	AccountCount     int   `json:"account_count"`
	CategoryCount    int   `json:"category_count"`
	PayeeCount       int   `json:"payee_count"`
	TransactionCount int   `json:"transaction_count"`
	ServerKnowledge  int64 `json:"server_knowledge"`
}

// Account is a budget account. Balances are in milliunits.
type Account struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	Type             string `json:"type"`
	OnBudget         bool   `json:"on_budget"`
	Closed           bool   `json:"closed"`
	Note             string `json:"note,omitempty"`
	Balance          int64  `json:"balance"`
	ClearedBalance   int64  `json:"cleared_balance"`
	UnclearedBalance int64  `json:"uncleared_balance"`
	TransferPayeeID  string `json:"transfer_payee_id,omitempty"`
	LastReconciledAt string `json:"last_reconciled_at,omitempty"`
	Deleted          bool   `json:"deleted"`
}

// Category is a budget category. Amounts are in milliunits.
type Category struct {
	ID                string `json:"id"`
	CategoryGroupID   string `json:"category_group_id"`
	CategoryGroupName string `json:"category_group_name,omitempty"`
	Name              string `json:"name"`
	Hidden            bool   `json:"hidden"`
	Note              string `json:"note,omitempty"`
	Budgeted          int64  `json:"budgeted"`
	Activity          int64  `json:"activity"`
	Balance           int64  `json:"balance"`
	GoalType          string `json:"goal_type,omitempty"`
	GoalTarget        *int64 `json:"goal_target,omitempty"`
	Deleted           bool   `json:"deleted"`
}

// CategoryGroup groups categories as returned upstream.
type CategoryGroup struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Hidden     bool       `json:"hidden"`
	Deleted    bool       `json:"deleted"`
	Categories []Category `json:"categories"`
}

// Payee is a transaction counterparty.
type Payee struct {
	ID                string `json:"id"`
	Name              string `json:"name"`
	TransferAccountID string `json:"transfer_account_id,omitempty"`
	Deleted           bool   `json:"deleted"`
}

// IsTransfer returns true if the payee represents a transfer between accounts.
func (p *Payee) IsTransfer() bool {
	return p.TransferAccountID != ""
}
