// Package domain provides defenitions of all entities.
package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	// ErrAssetNotFound indicates that the asset is not found.
	ErrAssetNotFound = errors.New("asset not found")
	// ErrInvalidAmount indicates invalid amount.
	ErrInvalidAmount = errors.New("invalid amount")
	// ErrInvalidAssetID indicates a malformed asset id filter.
	ErrInvalidAssetID = errors.New("invalid asset id")
	// ErrAssetTypeNotFound indicates an unknown asset type code.
	ErrAssetTypeNotFound = errors.New("asset type not found")
	// ErrInvalidQuantity indicates a negative holding quantity.
	ErrInvalidQuantity = errors.New("invalid quantity")
)

// Category is the valuation behaviour of an asset, derived from its type.
type Category string

// Asset categories.
const (
	CategoryInterest Category = "interest"
	CategoryHoldings Category = "holdings"
	CategoryOther    Category = "other"
)

// CategoryRules decides the category of an asset type.
//
// Interest-bearing types are matched by code or, for free-text legacy types,
// by a marker contained in the label.
type CategoryRules struct {
	InterestCodes       []string
	InterestLabelMarker string
	HoldingsCodes       []string
}

// Classify returns the category of the type with the given code and label.
func (r CategoryRules) Classify(code, label string) Category {
	for _, c := range r.InterestCodes {
		if c == code {
			return CategoryInterest
		}
	}

	if r.InterestLabelMarker != "" && strings.Contains(label, r.InterestLabelMarker) {
		return CategoryInterest
	}

	for _, c := range r.HoldingsCodes {
		if c == code {
			return CategoryHoldings
		}
	}

	return CategoryOther
}

// Asset holds the current valuation of something owned.
type Asset struct {
	ID        int64           `json:"id"`
	Name      string          `json:"name"`
	TypeCode  string          `json:"type_code"`
	TypeLabel string          `json:"type_label"`
	Category  Category        `json:"category"`
	Amount    decimal.Decimal `json:"amount"`
	Currency  string          `json:"currency"`
	// ValuationDate is the start of the civil day through which Amount is known.
	ValuationDate time.Time           `json:"valuation_date"`
	AnnualRate    decimal.NullDecimal `json:"annual_rate"`
	StartDate     *time.Time          `json:"start_date,omitempty"`
	Holdings      []Holding           `json:"holdings,omitempty"`
	UpdatedAt     time.Time           `json:"updated_at"`
}

// Holding is one instrument position of a holdings-bearing asset.
type Holding struct {
	ID       int64           `json:"id"`
	AssetID  int64           `json:"asset_id"`
	Symbol   string          `json:"symbol"`
	Quantity decimal.Decimal `json:"quantity"`
}

// ListCandidatesParams is the input data to select assets eligible for a job.
type ListCandidatesParams struct {
	// AssetID restricts the selection to one asset when set.
	AssetID *int64
	// TodayStart is the start of the current civil day.
	TodayStart time.Time
}

// UpdateAmountParams is the input data for a manual amount edit.
type UpdateAmountParams struct {
	AssetID       int64
	Amount        decimal.Decimal
	ValuationDate time.Time
	DayStart      time.Time
	At            time.Time
	Notes         string
}

// CreateAssetParams is the input data to create an asset.
type CreateAssetParams struct {
	Name          string
	TypeCode      string
	Amount        decimal.Decimal
	Currency      string
	ValuationDate time.Time
	AnnualRate    decimal.NullDecimal
	StartDate     *time.Time
}

// CreateHoldingParams is the input data to add a holding to an asset.
type CreateHoldingParams struct {
	AssetID  int64
	Symbol   string
	Quantity decimal.Decimal
}
