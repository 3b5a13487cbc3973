// Package accrualservice accrues daily compound interest on interest-bearing assets.
package accrualservice

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

// Interest of a day lands one minute after the day starts.
const stepOffset = time.Minute

var daysInYear = decimal.NewFromInt(365)

// AssetRepo provides data access layer interface needed by accrual service layer.
//
//go:generate mockgen -source service.go -destination service_mock.go -package accrualservice
type AssetRepo interface {
	ListInterestCandidates(ctx context.Context, arg domain.ListCandidatesParams) ([]domain.Asset, error)
	Get(ctx context.Context, id int64) (domain.Asset, error)
	ApplyValuation(ctx context.Context, arg domain.ApplyValuationParams) (domain.ApplyValuationResult, error)
}

// ChangeRepo provides the audit ledger lookups needed by accrual service layer.
type ChangeRepo interface {
	Exists(ctx context.Context, assetID int64, kind domain.ChangeKind, dayStart time.Time) (bool, error)
}

// Service facilitates accrual service layer logic.
type Service struct {
	assets  AssetRepo
	changes ChangeRepo
	offset  time.Duration
}

// New returns accrual service. The offset is the UTC offset of the civil calendar.
func New(ar AssetRepo, cr ChangeRepo, offset time.Duration) *Service {
	return &Service{
		assets:  ar,
		changes: cr,
		offset:  offset,
	}
}

// Candidates lists the assets the next run would consider, without changing anything.
func (s *Service) Candidates(ctx context.Context, params domain.RunParams) (domain.CandidatesResult, error) {
	today := daybucket.Of(params.Now, s.offset)

	assets, err := s.assets.ListInterestCandidates(ctx, domain.ListCandidatesParams{
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

// Run brings every candidate up to date through today, one compounding step
// per missed day, oldest first.
//
// Failures of one asset are reported in the result and do not stop the run.
func (s *Service) Run(ctx context.Context, params domain.RunParams) (domain.RunResult, error) {
	l := zerolog.Ctx(ctx)

	result := domain.NewRunResult()
	today := daybucket.Of(params.Now, s.offset)

	assets, err := s.assets.ListInterestCandidates(ctx, domain.ListCandidatesParams{
		AssetID:    params.AssetID,
		TodayStart: today.Start,
	})
	if err != nil {
		return result, err
	}

	for _, asset := range assets {
		applied := s.accrue(ctx, asset, today, &result)

		if applied > 0 {
			result.Processed++
			result.IDs = append(result.IDs, asset.ID)
		}
	}

	l.Info().
		Int("candidates", len(assets)).
		Int("processed", result.Processed).
		Int("failures", len(result.Failures)).
		Msg("interest accrual finished")

	return result, nil
}

// accrue applies the missed days of one asset and returns how many were applied.
func (s *Service) accrue(ctx context.Context, asset domain.Asset, today daybucket.Bucket, result *domain.RunResult) int {
	l := zerolog.Ctx(ctx).With().Int64("asset_id", asset.ID).Logger()

	done, err := s.changes.Exists(ctx, asset.ID, domain.ChangeInterest, today.Start)
	if err != nil {
		result.Failures = append(result.Failures, failure(asset.ID, today, err))
		return 0
	}

	if done {
		result.Skipped = append(result.Skipped, domain.SkippedAsset{AssetID: asset.ID, Reason: domain.SkipAlreadyApplied})
		return 0
	}

	missed := daybucket.DaysBetween(daybucket.Of(asset.ValuationDate, s.offset), today)
	if missed < 1 {
		missed = 1
	}

	rate := asset.AnnualRate.Decimal
	amount := asset.Amount
	applied := 0

	for i := 0; i < missed; i++ {
		day := today.AddDays(-(missed - 1 - i))

		// Checked right before each write so concurrent runs see each other.
		done, err := s.changes.Exists(ctx, asset.ID, domain.ChangeInterest, day.Start)
		if err != nil {
			result.Failures = append(result.Failures, failure(asset.ID, day, err))
			return applied
		}

		if done {
			// Applied by a concurrent run, the next day compounds on what it stored.
			current, err := s.assets.Get(ctx, asset.ID)
			if err != nil {
				result.Failures = append(result.Failures, failure(asset.ID, day, err))
				return applied
			}

			amount = current.Amount

			continue
		}

		interest := amount.Mul(rate).Div(daysInYear)
		before := moneypkg.Round2(amount)
		after := moneypkg.Round2(amount.Add(interest))
		at := day.Start.Add(stepOffset)

		_, err = s.assets.ApplyValuation(ctx, domain.ApplyValuationParams{
			AssetID:       asset.ID,
			Amount:        after,
			ValuationDate: day.Start,
			Change: domain.CreateChangeParams{
				AssetID:  asset.ID,
				Before:   before,
				After:    after,
				Diff:     moneypkg.Diff(before, after),
				At:       at,
				DayStart: day.Start,
				Kind:     domain.ChangeInterest,
				Notes:    domain.NoteInterest,
			},
		})

		if errors.Is(err, domain.ErrAlreadyApplied) {
			// Another run got there first and owns the rest of this asset.
			l.Info().Time("day", day.Start).Msg("interest already applied concurrently")
			result.Skipped = append(result.Skipped, domain.SkippedAsset{AssetID: asset.ID, Reason: domain.SkipAlreadyApplied})

			return applied
		}

		if errors.Is(err, domain.ErrStaleAmount) {
			// The stored amount moved under this run; the next run picks up from it.
			l.Info().Time("day", day.Start).Msg("asset amount changed concurrently")
			result.Skipped = append(result.Skipped, domain.SkippedAsset{AssetID: asset.ID, Reason: domain.SkipStaleAmount})

			return applied
		}

		if err != nil {
			// Later days compound on this one, so the asset stops here.
			l.Error().Err(err).Time("day", day.Start).Msg("apply interest")
			result.Failures = append(result.Failures, failure(asset.ID, day, err))

			return applied
		}

		result.Changes = append(result.Changes, domain.ChangeEntry{
			AssetID: asset.ID,
			Before:  before,
			After:   after,
			Diff:    moneypkg.Diff(before, after),
			At:      at,
		})

		amount = after
		applied++
	}

	return applied
}

func failure(assetID int64, day daybucket.Bucket, err error) domain.FailedAsset {
	return domain.FailedAsset{
		AssetID: assetID,
		Day:     day.Start,
		Error:   err.Error(),
	}
}
