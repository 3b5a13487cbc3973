//go:build integration

package assetrepo_test

import (
	"context"
	"log"
	"os"
	"testing"
	"time"

	"github.com/go-petr/pet-ledger/internal/assetrepo"
	"github.com/go-petr/pet-ledger/internal/changerepo"
	"github.com/go-petr/pet-ledger/internal/domain"
	"github.com/go-petr/pet-ledger/internal/integrationtest"
	"github.com/go-petr/pet-ledger/internal/integrationtest/helpers"
	"github.com/go-petr/pet-ledger/internal/middleware"
	"github.com/go-petr/pet-ledger/pkg/configpkg"
	"github.com/go-petr/pet-ledger/pkg/daybucket"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/shopspring/decimal"
)

var (
	dbDriver string
	dbSource string
	ctx      context.Context
	today    daybucket.Bucket
)

func TestMain(m *testing.M) {
	config, err := configpkg.Load("../../configs")
	if err != nil {
		log.Fatal("cannot load config:", err)
	}

	dbDriver = config.DBDriver
	dbSource = config.DBSource

	logger := middleware.GetLogger(config)
	ctx = logger.WithContext(context.Background())

	today = daybucket.Of(time.Now(), config.DayOffset)

	os.Exit(m.Run())
}

func TestListInterestCandidates(t *testing.T) {
	t.Parallel()

	tx := integrationtest.SetupTX(t, dbDriver, dbSource)

	rate := decimal.RequireFromString("0.0365")
	eligible := helpers.SeedInterestAsset(t, tx, decimal.RequireFromString("10000.00"), rate, today.AddDays(-3).Start)
	notStarted := helpers.SeedInterestAsset(t, tx, decimal.RequireFromString("10000.00"), rate, today.Next().Start)
	zeroRate := helpers.SeedInterestAsset(t, tx, decimal.RequireFromString("10000.00"), decimal.Zero, today.Start)
	stock := helpers.SeedStockAsset(t, tx, today.Start, 100)

	repo := assetrepo.NewTxRepoPGS(tx, helpers.Rules)

	got, err := repo.ListInterestCandidates(ctx, domain.ListCandidatesParams{TodayStart: today.Start})
	if err != nil {
		t.Fatalf("repo.ListInterestCandidates returned error: %v", err)
	}

	ids := map[int64]bool{}
	for _, a := range got {
		ids[a.ID] = true

		if a.Category != domain.CategoryInterest {
			t.Errorf("a.Category = %v, want %v", a.Category, domain.CategoryInterest)
		}
	}

	if !ids[eligible.ID] {
		t.Errorf("eligible asset %d is not a candidate", eligible.ID)
	}

	for _, id := range []int64{notStarted.ID, zeroRate.ID, stock.ID} {
		if ids[id] {
			t.Errorf("asset %d is a candidate, want excluded", id)
		}
	}

	// Filter by id
	got, err = repo.ListInterestCandidates(ctx, domain.ListCandidatesParams{
		TodayStart: today.Start,
		AssetID:    &eligible.ID,
	})
	if err != nil {
		t.Fatalf("repo.ListInterestCandidates returned error: %v", err)
	}

	if len(got) != 1 || got[0].ID != eligible.ID {
		t.Errorf("filtered candidates = %+v, want only asset %d", got, eligible.ID)
	}
}

func TestListHoldingsCandidates(t *testing.T) {
	t.Parallel()

	tx := integrationtest.SetupTX(t, dbDriver, dbSource)

	stock := helpers.SeedStockAsset(t, tx, today.Start, 100, 200)
	helpers.SeedStockAsset(t, tx, today.Start)

	repo := assetrepo.NewTxRepoPGS(tx, helpers.Rules)

	got, err := repo.ListHoldingsCandidates(ctx, domain.ListCandidatesParams{
		TodayStart: today.Start,
		AssetID:    &stock.ID,
	})
	if err != nil {
		t.Fatalf("repo.ListHoldingsCandidates returned error: %v", err)
	}

	if len(got) != 1 {
		t.Fatalf("len(got) = %d, want 1", len(got))
	}

	if diff := cmp.Diff(stock.Holdings, got[0].Holdings); diff != "" {
		t.Errorf("holdings mismatch (-want +got):\n%s", diff)
	}

	if got[0].Category != domain.CategoryHoldings {
		t.Errorf("got[0].Category = %v, want %v", got[0].Category, domain.CategoryHoldings)
	}
}

func TestGet(t *testing.T) {
	t.Parallel()

	tx := integrationtest.SetupTX(t, dbDriver, dbSource)
	repo := assetrepo.NewTxRepoPGS(tx, helpers.Rules)

	want := helpers.SeedStockAsset(t, tx, today.Start, 10)

	got, err := repo.Get(ctx, want.ID)
	if err != nil {
		t.Fatalf("repo.Get(ctx, %d) returned error: %v", want.ID, err)
	}

	equateTime := cmpopts.EquateApproxTime(time.Second)
	if diff := cmp.Diff(want, got, equateTime); diff != "" {
		t.Errorf("repo.Get(ctx, %d) returned unexpected difference (-want +got):\n%s", want.ID, diff)
	}

	if _, err := repo.Get(ctx, 0); err != domain.ErrAssetNotFound {
		t.Errorf("repo.Get(ctx, 0) returned error: %v, want %v", err, domain.ErrAssetNotFound)
	}
}

func TestApplyValuation(t *testing.T) {
	db := integrationtest.SetupDB(t, dbDriver, dbSource)
	repo := assetrepo.NewRepoPGS(db, helpers.Rules)

	asset := helpers.SeedInterestAsset(t, db, decimal.RequireFromString("10000.00"),
		decimal.RequireFromString("0.0365"), today.Prev().Start)

	after := decimal.RequireFromString("10001.00")
	arg := domain.ApplyValuationParams{
		AssetID:       asset.ID,
		Amount:        after,
		ValuationDate: today.Start,
		Change: domain.CreateChangeParams{
			AssetID:  asset.ID,
			Before:   asset.Amount,
			After:    after,
			Diff:     after.Sub(asset.Amount),
			At:       today.Start.Add(time.Minute),
			DayStart: today.Start,
			Kind:     domain.ChangeInterest,
			Notes:    domain.NoteInterest,
		},
	}

	got, err := repo.ApplyValuation(ctx, arg)
	if err != nil {
		t.Fatalf("repo.ApplyValuation(ctx, %+v) returned error: %v", arg, err)
	}

	if !got.Asset.Amount.Equal(after) {
		t.Errorf("got.Asset.Amount = %v, want %v", got.Asset.Amount, after)
	}

	if !got.Asset.ValuationDate.Equal(today.Start) {
		t.Errorf("got.Asset.ValuationDate = %v, want %v", got.Asset.ValuationDate, today.Start)
	}

	// A second application for the same day leaves no partial state.
	arg.Amount = decimal.RequireFromString("99999.00")
	if _, err := repo.ApplyValuation(ctx, arg); err != domain.ErrAlreadyApplied {
		t.Fatalf("second repo.ApplyValuation returned error: %v, want %v", err, domain.ErrAlreadyApplied)
	}

	stored, err := repo.Get(ctx, asset.ID)
	if err != nil {
		t.Fatalf("repo.Get returned error: %v", err)
	}

	if !stored.Amount.Equal(after) {
		t.Errorf("stored.Amount = %v, want %v", stored.Amount, after)
	}

	// A change computed from an amount that is no longer stored is rejected.
	stale := arg
	stale.Change.Kind = domain.ChangeClosePrice
	stale.Change.DayStart = today.Prev().Start
	if _, err := repo.ApplyValuation(ctx, stale); err != domain.ErrStaleAmount {
		t.Fatalf("stale repo.ApplyValuation returned error: %v, want %v", err, domain.ErrStaleAmount)
	}

	// The valuation date never moves backwards.
	arg.ValuationDate = today.AddDays(-5).Start
	arg.Amount = after
	arg.Change.Kind = domain.ChangeClosePrice
	arg.Change.Before = after
	arg.Change.Diff = decimal.Zero

	got, err = repo.ApplyValuation(ctx, arg)
	if err != nil {
		t.Fatalf("repo.ApplyValuation returned error: %v", err)
	}

	if !got.Asset.ValuationDate.Equal(today.Start) {
		t.Errorf("got.Asset.ValuationDate = %v, want %v", got.Asset.ValuationDate, today.Start)
	}
}

func TestUpdateAmount(t *testing.T) {
	db := integrationtest.SetupDB(t, dbDriver, dbSource)
	repo := assetrepo.NewRepoPGS(db, helpers.Rules)

	asset := helpers.SeedStockAsset(t, db, today.Prev().Start)

	arg := domain.UpdateAmountParams{
		AssetID:       asset.ID,
		Amount:        asset.Amount.Add(decimal.RequireFromString("12.34")),
		ValuationDate: today.Start,
		DayStart:      today.Start,
		At:            time.Now().UTC(),
	}

	got, err := repo.UpdateAmount(ctx, arg)
	if err != nil {
		t.Fatalf("repo.UpdateAmount(ctx, %+v) returned error: %v", arg, err)
	}

	if !got.Amount.Equal(arg.Amount) {
		t.Errorf("got.Amount = %v, want %v", got.Amount, arg.Amount)
	}

	// Same amount again logs nothing.
	if _, err := repo.UpdateAmount(ctx, arg); err != nil {
		t.Fatalf("repo.UpdateAmount(ctx, %+v) returned error: %v", arg, err)
	}

	changes, err := changerepo.NewRepoPGS(db).List(ctx, domain.ListChangesParams{AssetID: asset.ID, Limit: 10})
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}

	if len(changes) != 1 {
		t.Fatalf("len(changes) = %d, want 1", len(changes))
	}

	if changes[0].Kind != domain.ChangeManual || !changes[0].Diff.Equal(decimal.RequireFromString("12.34")) {
		t.Errorf("changes[0] = %+v, want manual change with diff 12.34", changes[0])
	}
}
