// Package assetservice manages business logic layer of assets.
package assetservice

import (
	"context"
	"time"

	"github.com/go-petr/pet-ledger/internal/domain"
	"github.com/go-petr/pet-ledger/pkg/daybucket"
	"github.com/go-petr/pet-ledger/pkg/moneypkg"
	"github.com/shopspring/decimal"
)

// NoteManual annotates manual amount edits without a note of their own.
const NoteManual = "手动更新"

// Repo provides data access layer interface needed by asset service layer.
//
//go:generate mockgen -source service.go -destination service_mock.go -package assetservice
type Repo interface {
	Get(ctx context.Context, id int64) (domain.Asset, error)
	UpdateAmount(ctx context.Context, arg domain.UpdateAmountParams) (domain.Asset, error)
}

// ChangeRepo provides the audit ledger reads needed by asset service layer.
type ChangeRepo interface {
	List(ctx context.Context, arg domain.ListChangesParams) ([]domain.Change, error)
}

// Service facilitates asset service layer logic.
type Service struct {
	repo    Repo
	changes ChangeRepo
	offset  time.Duration
	now     func() time.Time
}

// New returns asset service struct to manage asset bussines logic.
func New(ar Repo, cr ChangeRepo, offset time.Duration) *Service {
	return &Service{
		repo:    ar,
		changes: cr,
		offset:  offset,
		now:     time.Now,
	}
}

// Get returns the asset with its holdings.
func (s *Service) Get(ctx context.Context, id int64) (domain.Asset, error) {
	return s.repo.Get(ctx, id)
}

// ListChanges returns one page of the asset's audit trail, newest first.
func (s *Service) ListChanges(ctx context.Context, assetID int64, pageSize, pageID int32) ([]domain.Change, error) {
	if _, err := s.repo.Get(ctx, assetID); err != nil {
		return nil, err
	}

	changes, err := s.changes.List(ctx, domain.ListChangesParams{
		AssetID: assetID,
		Limit:   pageSize,
		Offset:  (pageID - 1) * pageSize,
	})
	if err != nil {
		return nil, err
	}

	return changes, nil
}

// UpdateAmount sets the amount of the asset by hand and marks it valued as of today.
func (s *Service) UpdateAmount(ctx context.Context, id int64, amount, notes string) (domain.Asset, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return domain.Asset{}, domain.ErrInvalidAmount
	}

	if notes == "" {
		notes = NoteManual
	}

	now := s.now()
	today := daybucket.Of(now, s.offset)

	return s.repo.UpdateAmount(ctx, domain.UpdateAmountParams{
		AssetID:       id,
		Amount:        moneypkg.Round2(d),
		ValuationDate: today.Start,
		DayStart:      today.Start,
		At:            now.UTC(),
		Notes:         notes,
	})
}
