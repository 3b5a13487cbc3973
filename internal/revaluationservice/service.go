// Package revaluationservice marks holdings-bearing assets to the previous close.
package revaluationservice

import (
	"context"
	"errors"
	"time"

	"github.com/go-petr/pet-ledger/internal/domain"
	"github.com/go-petr/pet-ledger/pkg/daybucket"
	"github.com/go-petr/pet-ledger/pkg/moneypkg"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// The close price change is stamped near the end of the civil day.
const closeOffset = 18 * time.Hour

// AssetRepo provides data access layer interface needed by revaluation service layer.
//
//go:generate mockgen -source service.go -destination service_mock.go -package revaluationservice
type AssetRepo interface {
	ListHoldingsCandidates(ctx context.Context, arg domain.ListCandidatesParams) ([]domain.Asset, error)
	ApplyValuation(ctx context.Context, arg domain.ApplyValuationParams) (domain.ApplyValuationResult, error)
}

// ChangeRepo provides the audit ledger lookups needed by revaluation service layer.
type ChangeRepo interface {
	Exists(ctx context.Context, assetID int64, kind domain.ChangeKind, dayStart time.Time) (bool, error)
}

// QuoteGateway prices instruments. It returns one quote per symbol and never fails.
type QuoteGateway interface {
	Quotes(ctx context.Context, symbols []string) []domain.Quote
}

// Service facilitates revaluation service layer logic.
type Service struct {
	assets  AssetRepo
	changes ChangeRepo
	quotes  QuoteGateway
	offset  time.Duration
}

// New returns revaluation service.
func New(ar AssetRepo, cr ChangeRepo, qg QuoteGateway, offset time.Duration) *Service {
	return &Service{
		assets:  ar,
		changes: cr,
		quotes:  qg,
		offset:  offset,
	}
}

// Candidates lists the assets the next run would consider, with their holdings.
func (s *Service) Candidates(ctx context.Context, params domain.RunParams) (domain.CandidatesResult, error) {
	today := daybucket.Of(params.Now, s.offset)

	assets, err := s.assets.ListHoldingsCandidates(ctx, domain.ListCandidatesParams{
		AssetID:    params.AssetID,
		TodayStart: today.Start,
	})
	if err != nil {
		return domain.CandidatesResult{}, err
	}

	return domain.CandidatesResult{
		Count:      len(assets),
		Candidates: assets,
		TodayStart: today.Start,
		TodayEnd:   today.End,
	}, nil
}

// Run values every candidate at the previous close of its holdings, once per civil day.
// Missed days are not backfilled.
func (s *Service) Run(ctx context.Context, params domain.RunParams) (domain.RunResult, error) {
	l := zerolog.Ctx(ctx)

	result := domain.NewRunResult()
	today := daybucket.Of(params.Now, s.offset)

	assets, err := s.assets.ListHoldingsCandidates(ctx, domain.ListCandidatesParams{
		AssetID:    params.AssetID,
		TodayStart: today.Start,
	})
	if err != nil {
		return result, err
	}

	for _, asset := range assets {
		if s.revalue(ctx, asset, today, &result) {
			result.Processed++
			result.IDs = append(result.IDs, asset.ID)
		}
	}

	l.Info().
		Int("candidates", len(assets)).
		Int("processed", result.Processed).
		Int("failures", len(result.Failures)).
		Msg("close price revaluation finished")

	return result, nil
}

func (s *Service) revalue(ctx context.Context, asset domain.Asset, today daybucket.Bucket, result *domain.RunResult) bool {
	l := zerolog.Ctx(ctx).With().Int64("asset_id", asset.ID).Logger()

	done, err := s.changes.Exists(ctx, asset.ID, domain.ChangeClosePrice, today.Start)
	if err != nil {
		result.Failures = append(result.Failures, failure(asset.ID, today, err))
		return false
	}

	if done {
		result.Skipped = append(result.Skipped, domain.SkippedAsset{AssetID: asset.ID, Reason: domain.SkipAlreadyApplied})
		return false
	}

	if len(asset.Holdings) == 0 {
		result.Skipped = append(result.Skipped, domain.SkippedAsset{AssetID: asset.ID, Reason: domain.SkipNoHoldings})
		return false
	}

	symbols := make([]string, len(asset.Holdings))
	for i, h := range asset.Holdings {
		symbols[i] = h.Symbol
	}

	sum, unpriced := aggregate(asset.Holdings, s.quotes.Quotes(ctx, symbols))
	if len(unpriced) > 0 {
		l.Warn().Strs("symbols", unpriced).Msg("holdings without previous close count as zero")

		if result.Unpriced == nil {
			result.Unpriced = map[int64][]string{}
		}
		result.Unpriced[asset.ID] = unpriced
	}

	before := moneypkg.Round2(asset.Amount)
	after := moneypkg.Round2(sum)
	at := today.Start.Add(closeOffset)

	_, err = s.assets.ApplyValuation(ctx, domain.ApplyValuationParams{
		AssetID:       asset.ID,
		Amount:        after,
		ValuationDate: today.Start,
		Change: domain.CreateChangeParams{
			AssetID:  asset.ID,
			Before:   before,
			After:    after,
			Diff:     moneypkg.Diff(before, after),
			At:       at,
			DayStart: today.Start,
			Kind:     domain.ChangeClosePrice,
			Notes:    domain.NoteClosePrice,
		},
	})

	if errors.Is(err, domain.ErrAlreadyApplied) {
		result.Skipped = append(result.Skipped, domain.SkippedAsset{AssetID: asset.ID, Reason: domain.SkipAlreadyApplied})
		return false
	}

	if errors.Is(err, domain.ErrStaleAmount) {
		l.Info().Msg("asset amount changed since candidates were listed")
		result.Skipped = append(result.Skipped, domain.SkippedAsset{AssetID: asset.ID, Reason: domain.SkipStaleAmount})

		return false
	}

	if err != nil {
		l.Error().Err(err).Msg("apply close price")
		result.Failures = append(result.Failures, failure(asset.ID, today, err))

		return false
	}

	result.Changes = append(result.Changes, domain.ChangeEntry{
		AssetID: asset.ID,
		Before:  before,
		After:   after,
		Diff:    moneypkg.Diff(before, after),
		At:      at,
	})

	return true
}

// aggregate sums previous close times quantity. Holdings without a previous
// close contribute zero and are returned as unpriced.
func aggregate(holdings []domain.Holding, quotes []domain.Quote) (decimal.Decimal, []string) {
	bySymbol := make(map[string]domain.Quote, len(quotes))
	for _, q := range quotes {
		bySymbol[q.Symbol] = q
	}

	sum := decimal.Zero

	var unpriced []string

	for i, h := range holdings {
		var q domain.Quote
		if i < len(quotes) && quotes[i].Symbol == h.Symbol {
			q = quotes[i]
		} else {
			q = bySymbol[h.Symbol]
		}

		if q.PrevClose == nil {
			unpriced = append(unpriced, h.Symbol)
			continue
		}

		sum = sum.Add(q.PrevClose.Mul(h.Quantity))
	}

	return sum, unpriced
}

func failure(assetID int64, day daybucket.Bucket, err error) domain.FailedAsset {
	return domain.FailedAsset{
		AssetID: assetID,
		Day:     day.Start,
		Error:   err.Error(),
	}
}
