package model

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Amount is a wallet value stored in minor units (1/100 of a currency unit).
type Amount int64

const amountScale = 2

// maxAmount bounds a single amount in minor units.
var maxAmount = decimal.New(1, 15)

var errAmountPrecision = errors.New("amount has too many decimal places")

// ParseAmount converts human input such as "1.5" or "100" into an Amount.
func ParseAmount(raw string) (Amount, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("parse amount %q: %w", raw, err)
	}
	return AmountFromDecimal(d)
}

// MustParseAmount is ParseAmount for constants.
func MustParseAmount(raw string) Amount {
	a, err := ParseAmount(raw)
	if err != nil {
		panic(err)
	}
	return a
}

// AmountFromDecimal converts a decimal value, rejecting sub-cent precision.
func AmountFromDecimal(d decimal.Decimal) (Amount, error) {
	scaled := d.Shift(amountScale)
	if !scaled.IsInteger() {
		return 0, errAmountPrecision
	}
	if scaled.Abs().GreaterThanOrEqual(maxAmount) {
		return 0, fmt.Errorf("amount %s out of range", d.String())
	}
	return Amount(scaled.IntPart()), nil
}

// Decimal returns the value in currency units.
func (a Amount) Decimal() decimal.Decimal {
	return decimal.New(int64(a), -amountScale)
}

// String formats the amount without trailing zeros ("1.5", "150").
func (a Amount) String() string {
	return a.Decimal().String()
}

// Positive reports whether a is strictly greater than zero.
func (a Amount) Positive() bool {
	return a > 0
}
