package domain

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// ErrAlreadyApplied indicates that the automatic change for that asset, day and kind already exists.
var ErrAlreadyApplied = errors.New("change already applied for this day")

// ErrStaleAmount indicates that the asset amount moved since it was read, so a
// change computed from it would not chain onto the stored amount.
var ErrStaleAmount = errors.New("asset amount changed since it was read")

// ChangeKind tells who produced a change record.
type ChangeKind string

// Change kinds.
const (
	ChangeManual     ChangeKind = "manual"
	ChangeInterest   ChangeKind = "interest"
	ChangeClosePrice ChangeKind = "close_price"
)

// Annotations written with automatic changes. Other readers of the ledger
// match on them, so they must not change.
const (
	NoteInterest   = "自动收益(日复利)"
	NoteClosePrice = "自动收盘价更新"
)

// Change is an append-only audit record of an asset amount change.
type Change struct {
	ID       int64           `json:"id"`
	AssetID  int64           `json:"asset_id"`
	Before   decimal.Decimal `json:"before"`
	After    decimal.Decimal `json:"after"`
	Diff     decimal.Decimal `json:"diff"`
	At       time.Time       `json:"at"`
	DayStart time.Time       `json:"day_start"`
	Kind     ChangeKind      `json:"kind"`
	Notes    string          `json:"notes"`
}

// CreateChangeParams is the input data to append a change record.
type CreateChangeParams struct {
	AssetID  int64
	Before   decimal.Decimal
	After    decimal.Decimal
	Diff     decimal.Decimal
	At       time.Time
	DayStart time.Time
	Kind     ChangeKind
	Notes    string
}

// ApplyValuationParams is the input data of one atomic valuation step:
// the asset amount update and its change record.
type ApplyValuationParams struct {
	AssetID       int64
	Amount        decimal.Decimal
	ValuationDate time.Time
	Change        CreateChangeParams
}

// ApplyValuationResult is the result of the valuation transaction.
type ApplyValuationResult struct {
	Asset  Asset  `json:"asset"`
	Change Change `json:"change"`
}

// ListChangesParams is the input data to page through an asset's changes.
type ListChangesParams struct {
	AssetID int64
	Limit   int32
	Offset  int32
}
