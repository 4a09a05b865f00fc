package services

import "github.com/custodia-labs/budget-mcp/internal/core/domain"

// planRule maps a combination of filters to one upstream endpoint.
// Rules are evaluated in order and the first match wins.
type planRule struct {
	name    string
	matches func(f *domain.FilterSpec) bool
	build   func(f *domain.FilterSpec) domain.QueryPlan
}

// planRules is ordered by selectivity. The account endpoint is preferred
// because it is the narrowest scope upstream can serve; category beats
// payee when both are set.
var planRules = []planRule{
	{
		name:    "account",
		matches: func(f *domain.FilterSpec) bool { return f.AccountID != "" },
		build: func(f *domain.FilterSpec) domain.QueryPlan {
			return domain.QueryPlan{
				Scope:   domain.ScopeAccount,
				ScopeID: f.AccountID,
				Residual: present(f,
					domain.FilterPayee,
					domain.FilterCategory,
					domain.FilterSinceDate,
					domain.FilterTransactionType,
				),
			}
		},
	},
	{
		name:    "category+payee",
		matches: func(f *domain.FilterSpec) bool { return f.CategoryID != "" && f.PayeeID != "" },
		build: func(f *domain.FilterSpec) domain.QueryPlan {
			return domain.QueryPlan{
				Scope:   domain.ScopeCategory,
				ScopeID: f.CategoryID,
				Residual: present(f,
					domain.FilterPayee,
					domain.FilterSinceDate,
					domain.FilterTransactionType,
				),
			}
		},
	},
	{
		name:    "category",
		matches: func(f *domain.FilterSpec) bool { return f.CategoryID != "" },
		build: func(f *domain.FilterSpec) domain.QueryPlan {
			return domain.QueryPlan{
				Scope:    domain.ScopeCategory,
				ScopeID:  f.CategoryID,
				Residual: present(f, domain.FilterSinceDate, domain.FilterTransactionType),
			}
		},
	},
	{
		name:    "payee",
		matches: func(f *domain.FilterSpec) bool { return f.PayeeID != "" },
		build: func(f *domain.FilterSpec) domain.QueryPlan {
			return domain.QueryPlan{
				Scope:    domain.ScopePayee,
				ScopeID:  f.PayeeID,
				Residual: present(f, domain.FilterSinceDate, domain.FilterTransactionType),
			}
		},
	},
	{
		name:    "budget",
		matches: func(*domain.FilterSpec) bool { return true },
		build: func(f *domain.FilterSpec) domain.QueryPlan {
			return domain.QueryPlan{
				Scope: domain.ScopeBudget,
				Native: domain.TransactionQuery{
					SinceDate: f.SinceDate,
					Type:      f.TransactionType,
				},
			}
		},
	},
}

// PlanTransactions chooses the single upstream endpoint for a filter set.
// Filters the chosen endpoint cannot apply become residual filters,
// evaluated in memory over its response. The plan is a pure function of
// the filters, so identical inputs always produce identical plans.
func PlanTransactions(filters domain.FilterSpec) domain.QueryPlan {
	for _, rule := range planRules {
		if !rule.matches(&filters) {
			continue
		}
		plan := rule.build(&filters)
		plan.Rule = rule.name
		if filters.EmptyMemo != nil {
			plan.Residual = append(plan.Residual, domain.FilterEmptyMemo)
		}
		if plan.Residual == nil {
			plan.Residual = []domain.FilterName{}
		}
		return plan
	}
	// unreachable: the budget rule matches everything
	return domain.QueryPlan{Rule: "budget", Scope: domain.ScopeBudget, Residual: []domain.FilterName{}}
}

// present returns the subset of names whose filter is set, in order.
func present(f *domain.FilterSpec, names ...domain.FilterName) []domain.FilterName {
	var out []domain.FilterName
	for _, name := range names {
		if isSet(f, name) {
			out = append(out, name)
		}
	}
	return out
}

func isSet(f *domain.FilterSpec, name domain.FilterName) bool {
	switch name {
	case domain.FilterAccount:
		return f.AccountID != ""
	case domain.FilterPayee:
		return f.PayeeID != ""
	case domain.FilterCategory:
		return f.CategoryID != ""
	case domain.FilterSinceDate:
		return f.SinceDate != ""
	case domain.FilterTransactionType:
		return f.TransactionType != ""
	case domain.FilterEmptyMemo:
		return f.EmptyMemo != nil
	default:
		return false
	}
}
