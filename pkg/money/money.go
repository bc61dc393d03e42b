// Package money provides formatting helpers for Colombian peso amounts.
// Treinta exports carry whole-peso values; go-money handles the COP
// minor-unit convention and shopspring/decimal the float conversion.
package money

import (
	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// COP is the ISO-4217 code for the Colombian peso.
const COP = "COP"

// FromFloat converts a peso amount into a Money value in minor units.
func FromFloat(amount float64) *money.Money {
	currency := money.GetCurrency(COP)
	d := decimal.NewFromFloat(amount)
	minor := d.Mul(decimal.New(1, int32(currency.Fraction))).Round(0).IntPart()
	return money.New(minor, COP)
}

// Display renders a peso amount for logs and export documents.
func Display(amount float64) string {
	return FromFloat(amount).Display()
}

// Abs returns the absolute value of a peso amount.
func Abs(amount float64) float64 {
	if amount < 0 {
		return -amount
	}
	return amount
}
