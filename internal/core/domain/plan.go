package domain

// FilterName identifies a FilterSpec predicate.
type FilterName string

// Filter names, matching the FilterSpec JSON fields.
const (
	FilterAccount         FilterName = "account_id"
	FilterPayee           FilterName = "payee_id"
	FilterCategory        FilterName = "category_id"
	FilterSinceDate       FilterName = "since_date"
	FilterTransactionType FilterName = "transaction_type"
	FilterEmptyMemo       FilterName = "empty_memo"
)

// QueryPlan is the decision for one transaction query: a single upstream
// endpoint, the filters it applies natively, and the residual filters
// applied in memory afterwards.
type QueryPlan struct {
	// Rule is the name of the planner rule that matched.
	Rule string `json:"rule"`
	// Scope is the upstream endpoint family.
	Scope TransactionScope `json:"scope"`
	// ScopeID is the account, category or payee ID; empty for ScopeBudget.
	ScopeID string `json:"scope_id,omitempty"`
	// Native holds the filters sent as upstream query parameters.
	Native TransactionQuery `json:"native"`
	// Residual lists the filters applied in memory, in application order.
	Residual []FilterName `json:"residual_filters"`
}

// HasResidual returns true if the plan applies the named filter in memory.
func (p *QueryPlan) HasResidual(name FilterName) bool {
	for _, r := range p.Residual {
		if r == name {
			return true
		}
	}
	return false
}

// TransactionResult is the outcome of a planned transaction query.
type TransactionResult struct {
	BudgetID     string        `json:"budget_id"`
	Filters      FilterSpec    `json:"filters"`
	Plan         QueryPlan     `json:"plan"`
	Fetched      int           `json:"fetched"`
	Transactions []Transaction `json:"transactions"`
}
