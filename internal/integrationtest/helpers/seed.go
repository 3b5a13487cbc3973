// Package helpers seeds the database in integration tests.
package helpers

import (
	"context"
	"testing"
	"time"

	"github.com/go-petr/pet-ledger/internal/assetrepo"
	"github.com/go-petr/pet-ledger/internal/changerepo"
	"github.com/go-petr/pet-ledger/internal/domain"
	"github.com/go-petr/pet-ledger/pkg/dbpkg"
	"github.com/go-petr/pet-ledger/pkg/randompkg"
	"github.com/shopspring/decimal"
)

// Rules are the category rules matching the seeded asset types.
var Rules = domain.CategoryRules{
	InterestCodes:       []string{"huobi", "money_fund"},
	InterestLabelMarker: "货币基金",
	HoldingsCodes:       []string{"stock"},
}

// SeedInterestAsset creates a money fund asset valued on valuationDate inside a test transaction.
func SeedInterestAsset(t *testing.T, tx dbpkg.SQLInterface, amount, rate decimal.Decimal, valuationDate time.Time) domain.Asset {
	t.Helper()

	arg := domain.CreateAssetParams{
		Name:          randompkg.AssetName(),
		TypeCode:      "money_fund",
		Amount:        amount,
		Currency:      "CNY",
		ValuationDate: valuationDate,
		AnnualRate:    decimal.NullDecimal{Decimal: rate, Valid: true},
		StartDate:     &valuationDate,
	}

	return seedAsset(t, tx, arg)
}

// SeedStockAsset creates a stock asset with holdings of the given quantities inside a test transaction.
func SeedStockAsset(t *testing.T, tx dbpkg.SQLInterface, valuationDate time.Time, quantities ...int64) domain.Asset {
	t.Helper()

	arg := domain.CreateAssetParams{
		Name:          randompkg.AssetName(),
		TypeCode:      "stock",
		Amount:        randompkg.AmountBetween(1_000, 10_000),
		Currency:      "CNY",
		ValuationDate: valuationDate,
	}

	asset := seedAsset(t, tx, arg)
	repo := assetrepo.NewTxRepoPGS(tx, Rules)

	for _, q := range quantities {
		harg := domain.CreateHoldingParams{
			AssetID:  asset.ID,
			Symbol:   randompkg.Symbol(),
			Quantity: decimal.NewFromInt(q),
		}

		h, err := repo.AddHolding(context.Background(), harg)
		if err != nil {
			t.Fatalf("repo.AddHolding(context.Background(), %+v) returned error: %v", harg, err)
		}

		asset.Holdings = append(asset.Holdings, h)
	}

	return asset
}

func seedAsset(t *testing.T, tx dbpkg.SQLInterface, arg domain.CreateAssetParams) domain.Asset {
	t.Helper()

	repo := assetrepo.NewTxRepoPGS(tx, Rules)

	asset, err := repo.Create(context.Background(), arg)
	if err != nil {
		t.Fatalf("repo.Create(context.Background(), %+v) returned error: %v", arg, err)
	}

	return asset
}

// SeedChange appends a change record inside a test transaction.
func SeedChange(t *testing.T, tx dbpkg.SQLInterface, assetID int64, kind domain.ChangeKind, dayStart time.Time) domain.Change {
	t.Helper()

	before := randompkg.AmountBetween(100, 1000)
	after := randompkg.AmountBetween(100, 1000)

	arg := domain.CreateChangeParams{
		AssetID:  assetID,
		Before:   before,
		After:    after,
		Diff:     after.Sub(before),
		At:       dayStart.Add(time.Minute),
		DayStart: dayStart,
		Kind:     kind,
		Notes:    randompkg.String(10),
	}

	change, err := changerepo.NewRepoPGS(tx).Create(context.Background(), arg)
	if err != nil {
		t.Fatalf("changeRepo.Create(context.Background(), %+v) returned error: %v", arg, err)
	}

	return change
}
