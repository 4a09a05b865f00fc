// Package currency converts upstream milliunit amounts into exact decimal
// currency values and builds the transaction, account and category views
// returned by tools.
//
// Upstream stores every amount as an integer number of thousandths of the
// currency unit. Division by 1000 is done with shopspring/decimal so that
// no binary floating point error is introduced.
package currency
