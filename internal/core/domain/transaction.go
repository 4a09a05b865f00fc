package domain

import (
	"time"
	"unicode/utf8"
)

// DateLayout is the ISO-8601 calendar date format used for all dates.
const DateLayout = "2006-01-02"

// MaxMemoLength is the longest memo upstream accepts.
const MaxMemoLength = 500

// ClearedStatus is the reconciliation state of a transaction.
type ClearedStatus string

// Cleared statuses.
const (
	ClearedStatusCleared    ClearedStatus = "cleared"
	ClearedStatusUncleared  ClearedStatus = "uncleared"
	ClearedStatusReconciled ClearedStatus = "reconciled"
)

// IsValid returns true if the status is recognised.
func (s ClearedStatus) IsValid() bool {
	switch s {
	case ClearedStatusCleared, ClearedStatusUncleared, ClearedStatusReconciled:
		return true
	default:
		return false
	}
}

// FlagColor is a visual marker on a transaction.
type FlagColor string

// Flag colours.
const (
	FlagRed    FlagColor = "red"
	FlagOrange FlagColor = "orange"
	FlagYellow FlagColor = "yellow"
	FlagGreen  FlagColor = "green"
	FlagBlue   FlagColor = "blue"
	FlagPurple FlagColor = "purple"
)

// IsValid returns true if the colour is recognised.
func (c FlagColor) IsValid() bool {
	switch c {
	case FlagRed, FlagOrange, FlagYellow, FlagGreen, FlagBlue, FlagPurple:
		return true
	default:
		return false
	}
}

// Transaction is a read-only mirror of an upstream transaction.
// Amount is in milliunits and is always integral.
type Transaction struct {
	ID                string           `json:"id"`
	Date              string           `json:"date"`
	Amount            int64            `json:"amount"`
	Memo              string           `json:"memo,omitempty"`
	Cleared           ClearedStatus    `json:"cleared"`
	Approved          bool             `json:"approved"`
	FlagColor         FlagColor        `json:"flag_color,omitempty"`
	AccountID         string           `json:"account_id"`
	AccountName       string           `json:"account_name,omitempty"`
	PayeeID           string           `json:"payee_id,omitempty"`
	PayeeName         string           `json:"payee_name,omitempty"`
	CategoryID        string           `json:"category_id,omitempty"`
	CategoryName      string           `json:"category_name,omitempty"`
	TransferAccountID string           `json:"transfer_account_id,omitempty"`
	ImportID          string           `json:"import_id,omitempty"`
	Deleted           bool             `json:"deleted"`
	Subtransactions   []SubTransaction `json:"subtransactions,omitempty"`
}

// IsSplit returns true if the transaction is divided into subtransactions.
func (t *Transaction) IsSplit() bool {
	return len(t.Subtransactions) > 0
}

// SubTransaction is one part of a split transaction.
type SubTransaction struct {
	ID            string `json:"id"`
	TransactionID string `json:"transaction_id"`
	Amount        int64  `json:"amount"`
	Memo          string `json:"memo,omitempty"`
	PayeeID       string `json:"payee_id,omitempty"`
	PayeeName     string `json:"payee_name,omitempty"`
	CategoryID    string `json:"category_id,omitempty"`
	CategoryName  string `json:"category_name,omitempty"`
	Deleted       bool   `json:"deleted"`
}

// TransactionUpdate holds the fields to change on a transaction.
// Nil fields are left untouched upstream.
type TransactionUpdate struct {
	Memo       *string        `json:"memo,omitempty"`
	Amount     *int64         `json:"amount,omitempty"`
	PayeeID    *string        `json:"payee_id,omitempty"`
	PayeeName  *string        `json:"payee_name,omitempty"`
	CategoryID *string        `json:"category_id,omitempty"`
	Cleared    *ClearedStatus `json:"cleared,omitempty"`
	Approved   *bool          `json:"approved,omitempty"`
	FlagColor  *FlagColor     `json:"flag_color,omitempty"`
	Date       *string        `json:"date,omitempty"`
}

// IsEmpty returns true if no field is set.
func (u *TransactionUpdate) IsEmpty() bool {
	return u.Memo == nil && u.Amount == nil && u.PayeeID == nil && u.PayeeName == nil &&
		u.CategoryID == nil && u.Cleared == nil && u.Approved == nil &&
		u.FlagColor == nil && u.Date == nil
}

// Validate checks field values before anything is sent upstream.
func (u *TransactionUpdate) Validate() error {
	if u.IsEmpty() {
		return NewError(KindValidation, "no fields to update")
	}
	if u.Memo != nil && utf8.RuneCountInString(*u.Memo) > MaxMemoLength {
		return Errorf(KindValidation, "memo exceeds %d characters", MaxMemoLength)
	}
	if u.Cleared != nil && !u.Cleared.IsValid() {
		return Errorf(KindValidation,
			"invalid cleared status %q: must be one of cleared, uncleared, reconciled", *u.Cleared)
	}
	if u.FlagColor != nil && !u.FlagColor.IsValid() {
		return Errorf(KindValidation,
			"invalid flag color %q: must be one of red, orange, yellow, green, blue, purple", *u.FlagColor)
	}
	if u.Date != nil {
		if err := ValidateDate(*u.Date); err != nil {
			return err
		}
	}
	return nil
}

// ValidateDate checks that s is a YYYY-MM-DD calendar date.
func ValidateDate(s string) error {
	if _, err := time.Parse(DateLayout, s); err != nil {
		return Errorf(KindValidation, "invalid date %q: expected YYYY-MM-DD", s)
	}
	return nil
}
