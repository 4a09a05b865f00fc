package currency

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/custodia-labs/budget-mcp/internal/core/domain"
)

// MilliunitsPerUnit is the number of milliunits in one currency unit.
const MilliunitsPerUnit = 1000

// displayPlaces is the number of decimal places in Display strings.
const displayPlaces = 2

var thousand = decimal.NewFromInt(MilliunitsPerUnit)

// Money is one amount in both representations.
type Money struct {
	Milliunits int64           `json:"milliunits"`
	Amount     decimal.Decimal `json:"amount"`
	Display    string          `json:"display"`
}

// Amount converts milliunits to Money. Amount is exactly m/1000.
func Amount(m int64) Money {
	amount := decimal.New(m, -3)
	return Money{
		Milliunits: m,
		Amount:     amount,
		Display:    amount.StringFixed(displayPlaces),
	}
}

// Format returns the fixed two-place display string for m.
func Format(m int64) string {
	return decimal.New(m, -3).StringFixed(displayPlaces)
}

// Milliunits converts a currency amount back to milliunits, rounding to the
// nearest milliunit.
func Milliunits(amount decimal.Decimal) int64 {
	return amount.Mul(thousand).Round(0).IntPart()
}

// ParseAmount parses a decimal currency string such as "-12.5" into
// milliunits. More than three decimal places cannot be represented.
func ParseAmount(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, domain.NewError(domain.KindValidation, "amount is empty")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, domain.Errorf(domain.KindValidation, "invalid amount %q", s)
	}
	scaled := d.Mul(thousand)
	if !scaled.Equal(scaled.Truncate(0)) {
		return 0, domain.Errorf(domain.KindValidation, "amount %q has more than 3 decimal places", s)
	}
	if !scaled.BigInt().IsInt64() {
		return 0, domain.Errorf(domain.KindValidation, "amount %q is out of range", s)
	}
	return scaled.IntPart(), nil
}
