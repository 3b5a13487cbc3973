// Package changerepo manages the append-only audit ledger of asset changes.
package changerepo

import (
	"context"
	"time"

	"github.com/go-petr/pet-ledger/internal/domain"
	"github.com/go-petr/pet-ledger/pkg/dbpkg"
	"github.com/go-petr/pet-ledger/pkg/errorspkg"
	"github.com/rs/zerolog"
)

// RepoPGS facilitates change repository layer logic.
type RepoPGS struct {
	db dbpkg.SQLInterface
}

// NewRepoPGS returns change RepoPGS.
func NewRepoPGS(db dbpkg.SQLInterface) *RepoPGS {
	return &RepoPGS{
		db: db,
	}
}

const createQuery = `
INSERT INTO
    asset_changes (asset_id, before_amount, after_amount, diff, at, day_start, kind, notes)
VALUES
    ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING id, asset_id, before_amount, after_amount, diff, at, day_start, kind, notes
`

// Create appends the change record and then returns it.
func (r *RepoPGS) Create(ctx context.Context, arg domain.CreateChangeParams) (domain.Change, error) {
	l := zerolog.Ctx(ctx)

	row := r.db.QueryRowContext(ctx, createQuery,
		arg.AssetID,
		arg.Before,
		arg.After,
		arg.Diff,
		arg.At,
		arg.DayStart,
		arg.Kind,
		arg.Notes,
	)

	var c domain.Change

	err := scanChange(row, &c)
	if err != nil {
		l.Error().Err(err).Msgf("Create(ctx context.Context, %+v)", arg)

		if dbpkg.IsUniqueViolation(err) {
			return c, domain.ErrAlreadyApplied
		}

		switch dbpkg.ConstraintName(err) {
		case "asset_changes_asset_id_fkey":
			return c, domain.ErrAssetNotFound
		case "asset_changes_diff_check":
			return c, domain.ErrInvalidAmount
		}

		return c, errorspkg.ErrInternal
	}

	return c, nil
}

const existsQuery = `
SELECT EXISTS (
    SELECT 1 FROM asset_changes
    WHERE asset_id = $1 AND kind = $2 AND day_start = $3
)
`

// Exists reports whether an automatic change of the kind was already applied
// to the asset on the day that starts at dayStart.
func (r *RepoPGS) Exists(ctx context.Context, assetID int64, kind domain.ChangeKind, dayStart time.Time) (bool, error) {
	l := zerolog.Ctx(ctx)

	var exists bool

	err := r.db.QueryRowContext(ctx, existsQuery, assetID, kind, dayStart).Scan(&exists)
	if err != nil {
		l.Error().Err(err).Send()
		return false, errorspkg.ErrInternal
	}

	return exists, nil
}

const listQuery = `
SELECT
    id, asset_id, before_amount, after_amount, diff, at, day_start, kind, notes
FROM asset_changes
WHERE asset_id = $1
ORDER BY at DESC, id DESC
LIMIT $2 OFFSET $3
`

// List returns the asset's change records, newest first.
func (r *RepoPGS) List(ctx context.Context, arg domain.ListChangesParams) ([]domain.Change, error) {
	l := zerolog.Ctx(ctx)

	rows, err := r.db.QueryContext(ctx, listQuery, arg.AssetID, arg.Limit, arg.Offset)
	if err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}
	defer rows.Close()

	items := []domain.Change{}

	for rows.Next() {
		var c domain.Change
		if err := scanChange(rows, &c); err != nil {
			l.Error().Err(err).Send()
			return nil, errorspkg.ErrInternal
		}

		items = append(items, c)
	}

	if err := rows.Close(); err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}

	if err := rows.Err(); err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}

	return items, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanChange(s scanner, c *domain.Change) error {
	err := s.Scan(
		&c.ID,
		&c.AssetID,
		&c.Before,
		&c.After,
		&c.Diff,
		&c.At,
		&c.DayStart,
		&c.Kind,
		&c.Notes,
	)
	if err != nil {
		return err
	}

	c.At = c.At.UTC()
	c.DayStart = c.DayStart.UTC()

	return nil
}
