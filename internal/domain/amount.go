package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Money columns are numeric(20, 4).
const (
	AmountScale     = 4
	amountPrecision = 20
)

var amountLimit = decimal.New(1, amountPrecision-AmountScale)

// ParseAmount parses a user supplied signed money amount.
//
// Zero, more than AmountScale decimals and values that do not fit the money
// columns are rejected with ErrInvalidAmount.
func ParseAmount(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}

	if d.IsZero() || !d.Equal(d.Round(AmountScale)) || d.Abs().GreaterThanOrEqual(amountLimit) {
		return decimal.Zero, ErrInvalidAmount
	}

	return d, nil
}
