// Package moneypkg holds the rounding policy of stored amounts.
package moneypkg

import "github.com/shopspring/decimal"

// Places is the precision of every stored amount.
const Places = 2

// Round2 rounds d half away from zero to two decimal places.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(Places)
}

// Diff returns round2(after - before).
func Diff(before, after decimal.Decimal) decimal.Decimal {
	return Round2(after.Sub(before))
}

// String formats d with exactly two decimals.
func String(d decimal.Decimal) string {
	return d.StringFixed(Places)
}
