package services

import "github.com/custodia-labs/budget-mcp/internal/core/domain"

// applyResidual keeps the transactions that satisfy every residual filter
// in plan. Deleted transactions are always dropped.
func applyResidual(txs []domain.Transaction, filters *domain.FilterSpec, plan *domain.QueryPlan) []domain.Transaction {
	out := make([]domain.Transaction, 0, len(txs))
	for i := range txs {
		tx := &txs[i]
		if tx.Deleted {
			continue
		}
		if matchesAll(tx, filters, plan.Residual) {
			out = append(out, *tx)
		}
	}
	return out
}

func matchesAll(tx *domain.Transaction, f *domain.FilterSpec, residual []domain.FilterName) bool {
	for _, name := range residual {
		if !matches(tx, f, name) {
			return false
		}
	}
	return true
}

func matches(tx *domain.Transaction, f *domain.FilterSpec, name domain.FilterName) bool {
	switch name {
	case domain.FilterAccount:
		return tx.AccountID == f.AccountID
	case domain.FilterPayee:
		return tx.PayeeID == f.PayeeID
	case domain.FilterCategory:
		return tx.CategoryID == f.CategoryID
	case domain.FilterSinceDate:
		// ISO dates order lexicographically.
		return tx.Date >= f.SinceDate
	case domain.FilterTransactionType:
		return f.TransactionType.Matches(tx)
	case domain.FilterEmptyMemo:
		return domain.IsBlankMemo(tx.Memo) == *f.EmptyMemo
	default:
		return true
	}
}
