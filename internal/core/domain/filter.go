package domain

import "strings"

// TransactionType selects transactions by a derived predicate.
type TransactionType string

// Transaction types.
const (
	// TransactionTypeUncategorized matches transactions without a category.
	TransactionTypeUncategorized TransactionType = "uncategorized"
	// TransactionTypeUnapproved matches transactions whose approved flag is false.
	// Cleared status plays no part: an approved but uncleared transaction does not match.
	TransactionTypeUnapproved TransactionType = "unapproved"
)

// IsValid returns true if the type is recognised.
func (t TransactionType) IsValid() bool {
	return t == TransactionTypeUncategorized || t == TransactionTypeUnapproved
}

// Matches reports whether tx satisfies the type predicate.
func (t TransactionType) Matches(tx *Transaction) bool {
	switch t {
	case TransactionTypeUncategorized:
		return tx.CategoryID == ""
	case TransactionTypeUnapproved:
		return !tx.Approved
	default:
		return false
	}
}

// FilterSpec holds optional predicates over a transaction collection.
// Any subset may be set, including none.
type FilterSpec struct {
	AccountID       string          `json:"account_id,omitempty"`
	PayeeID         string          `json:"payee_id,omitempty"`
	CategoryID      string          `json:"category_id,omitempty"`
	SinceDate       string          `json:"since_date,omitempty"`
	TransactionType TransactionType `json:"transaction_type,omitempty"`

	// EmptyMemo selects transactions with (true) or without (false) a blank memo.
	EmptyMemo *bool `json:"empty_memo,omitempty"`
}

// IsEmpty returns true if no predicate is set.
func (f *FilterSpec) IsEmpty() bool {
	return f.AccountID == "" && f.PayeeID == "" && f.CategoryID == "" &&
		f.SinceDate == "" && f.TransactionType == "" && f.EmptyMemo == nil
}

// Validate checks predicate values. IDs are opaque and not checked here.
func (f *FilterSpec) Validate() error {
	if f.SinceDate != "" {
		if err := ValidateDate(f.SinceDate); err != nil {
			return err
		}
	}
	if f.TransactionType != "" && !f.TransactionType.IsValid() {
		return Errorf(KindValidation,
			"invalid transaction_type %q: must be uncategorized or unapproved", f.TransactionType)
	}
	return nil
}

// IsBlankMemo returns true if the memo is empty or only whitespace.
func IsBlankMemo(memo string) bool {
	return strings.TrimSpace(memo) == ""
}

// TransactionScope names the upstream transaction endpoint family.
type TransactionScope string

// Transaction scopes, from the whole budget down to a single dimension.
const (
	ScopeBudget   TransactionScope = "budget"
	ScopeAccount  TransactionScope = "account"
	ScopeCategory TransactionScope = "category"
	ScopePayee    TransactionScope = "payee"
)

// String returns the string representation.
func (s TransactionScope) String() string {
	return string(s)
}

// TransactionQuery holds the filters an upstream transaction endpoint applies natively.
type TransactionQuery struct {
	SinceDate string          `json:"since_date,omitempty"`
	Type      TransactionType `json:"type,omitempty"`
}
