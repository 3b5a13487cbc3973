package domain

import "github.com/shopspring/decimal"

// Quote is the best-effort price of one instrument.
// Price and PrevClose are nil when the upstream had no value.
type Quote struct {
	Symbol           string           `json:"symbol"`
	Price            *decimal.Decimal `json:"price"`
	PrevClose        *decimal.Decimal `json:"prev_close"`
	ObservedAtMillis int64            `json:"ts"`
}
