// Package assetrepo manages repository layer of assets and their holdings.
package assetrepo

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-petr/pet-ledger/internal/changerepo"
	"github.com/go-petr/pet-ledger/internal/domain"
	"github.com/go-petr/pet-ledger/pkg/dbpkg"
	"github.com/go-petr/pet-ledger/pkg/errorspkg"
	"github.com/go-petr/pet-ledger/pkg/moneypkg"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// RepoPGS facilitates asset repository layer logic.
type RepoPGS struct {
	db    dbpkg.SQLInterface
	conn  *sql.DB
	rules domain.CategoryRules
}

// NewTxRepoPGS returns asset RepoPGS bound to an outer transaction.
func NewTxRepoPGS(db dbpkg.SQLInterface, rules domain.CategoryRules) *RepoPGS {
	return &RepoPGS{
		db:    db,
		rules: rules,
	}
}

// NewRepoPGS returns asset RepoPGS with connection to start transactions.
func NewRepoPGS(db *sql.DB, rules domain.CategoryRules) *RepoPGS {
	return &RepoPGS{
		db:    db,
		conn:  db,
		rules: rules,
	}
}

const assetColumns = `
    a.id, a.name, t.code, t.label, a.amount, a.currency,
    a.valuation_date, a.annual_rate, a.start_date, a.updated_at
`

const listInterestCandidatesQuery = `
SELECT` + assetColumns + `
FROM assets a
JOIN asset_types t ON t.id = a.type_id
WHERE
    (t.code = ANY (string_to_array($1, ',')) OR ($2 <> '' AND strpos(t.label, $2) > 0))
    AND a.annual_rate IS NOT NULL AND a.annual_rate <> 0
    AND a.start_date IS NOT NULL AND a.start_date <= $3
    AND ($4::bigint IS NULL OR a.id = $4)
ORDER BY a.id
`

// ListInterestCandidates returns the interest-bearing assets with a nonzero
// rate whose accrual started on or before the given day.
func (r *RepoPGS) ListInterestCandidates(ctx context.Context, arg domain.ListCandidatesParams) ([]domain.Asset, error) {
	l := zerolog.Ctx(ctx)

	rows, err := r.db.QueryContext(ctx, listInterestCandidatesQuery,
		strings.Join(r.rules.InterestCodes, ","),
		r.rules.InterestLabelMarker,
		arg.TodayStart,
		nullID(arg.AssetID),
	)
	if err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}

	return r.collect(ctx, rows, false)
}

const listHoldingsCandidatesQuery = `
SELECT` + assetColumns + `
FROM assets a
JOIN asset_types t ON t.id = a.type_id
WHERE
    t.code = ANY (string_to_array($1, ','))
    AND ($2::bigint IS NULL OR a.id = $2)
ORDER BY a.id
`

// ListHoldingsCandidates returns the holdings-bearing assets with their holdings.
func (r *RepoPGS) ListHoldingsCandidates(ctx context.Context, arg domain.ListCandidatesParams) ([]domain.Asset, error) {
	l := zerolog.Ctx(ctx)

	rows, err := r.db.QueryContext(ctx, listHoldingsCandidatesQuery,
		strings.Join(r.rules.HoldingsCodes, ","),
		nullID(arg.AssetID),
	)
	if err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}

	return r.collect(ctx, rows, true)
}

func (r *RepoPGS) collect(ctx context.Context, rows *sql.Rows, withHoldings bool) ([]domain.Asset, error) {
	l := zerolog.Ctx(ctx)

	defer rows.Close()

	items := []domain.Asset{}

	for rows.Next() {
		var a domain.Asset
		if err := r.scanAsset(rows, &a); err != nil {
			l.Error().Err(err).Send()
			return nil, errorspkg.ErrInternal
		}

		items = append(items, a)
	}

	if err := rows.Close(); err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}

	if err := rows.Err(); err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}

	if !withHoldings {
		return items, nil
	}

	for i := range items {
		holdings, err := r.ListHoldings(ctx, items[i].ID)
		if err != nil {
			return nil, err
		}

		items[i].Holdings = holdings
	}

	return items, nil
}

const getQuery = `
SELECT` + assetColumns + `
FROM assets a
JOIN asset_types t ON t.id = a.type_id
WHERE a.id = $1
`

// Get returns the asset with the given id and its holdings.
func (r *RepoPGS) Get(ctx context.Context, id int64) (domain.Asset, error) {
	l := zerolog.Ctx(ctx)

	var a domain.Asset

	err := r.scanAsset(r.db.QueryRowContext(ctx, getQuery, id), &a)
	if err != nil {
		l.Error().Err(err).Send()

		if errors.Is(err, sql.ErrNoRows) {
			return a, domain.ErrAssetNotFound
		}

		return a, errorspkg.ErrInternal
	}

	a.Holdings, err = r.ListHoldings(ctx, id)
	if err != nil {
		return a, err
	}

	return a, nil
}

const listHoldingsQuery = `
SELECT id, asset_id, symbol, quantity
FROM asset_holdings
WHERE asset_id = $1
ORDER BY id
`

// ListHoldings returns the holdings of the asset.
func (r *RepoPGS) ListHoldings(ctx context.Context, assetID int64) ([]domain.Holding, error) {
	l := zerolog.Ctx(ctx)

	rows, err := r.db.QueryContext(ctx, listHoldingsQuery, assetID)
	if err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}
	defer rows.Close()

	items := []domain.Holding{}

	for rows.Next() {
		var h domain.Holding
		if err := rows.Scan(&h.ID, &h.AssetID, &h.Symbol, &h.Quantity); err != nil {
			l.Error().Err(err).Send()
			return nil, errorspkg.ErrInternal
		}

		items = append(items, h)
	}

	if err := rows.Err(); err != nil {
		l.Error().Err(err).Send()
		return nil, errorspkg.ErrInternal
	}

	return items, nil
}

const createQuery = `
INSERT INTO
    assets (name, type_id, amount, currency, valuation_date, annual_rate, start_date)
SELECT
    $1, t.id, $3, $4, $5, $6, $7
FROM asset_types t
WHERE t.code = $2
RETURNING id
`

// Create creates the asset and then returns it.
func (r *RepoPGS) Create(ctx context.Context, arg domain.CreateAssetParams) (domain.Asset, error) {
	l := zerolog.Ctx(ctx)

	var id int64

	err := r.db.QueryRowContext(ctx, createQuery,
		arg.Name,
		arg.TypeCode,
		arg.Amount,
		arg.Currency,
		arg.ValuationDate,
		arg.AnnualRate,
		arg.StartDate,
	).Scan(&id)
	if err != nil {
		l.Error().Err(err).Msgf("Create(ctx context.Context, %+v)", arg)

		if errors.Is(err, sql.ErrNoRows) {
			return domain.Asset{}, domain.ErrAssetTypeNotFound
		}

		return domain.Asset{}, errorspkg.ErrInternal
	}

	return r.Get(ctx, id)
}

const addHoldingQuery = `
INSERT INTO
    asset_holdings (asset_id, symbol, quantity)
VALUES
    ($1, $2, $3)
RETURNING id, asset_id, symbol, quantity
`

// AddHolding adds a holding to the asset and then returns it.
func (r *RepoPGS) AddHolding(ctx context.Context, arg domain.CreateHoldingParams) (domain.Holding, error) {
	l := zerolog.Ctx(ctx)

	var h domain.Holding

	err := r.db.QueryRowContext(ctx, addHoldingQuery, arg.AssetID, arg.Symbol, arg.Quantity).
		Scan(&h.ID, &h.AssetID, &h.Symbol, &h.Quantity)
	if err != nil {
		l.Error().Err(err).Msgf("AddHolding(ctx context.Context, %+v)", arg)

		switch dbpkg.ConstraintName(err) {
		case "asset_holdings_asset_id_fkey":
			return h, domain.ErrAssetNotFound
		case "asset_holdings_quantity_check":
			return h, domain.ErrInvalidQuantity
		}

		return h, errorspkg.ErrInternal
	}

	return h, nil
}

const lockQuery = `
SELECT amount FROM assets
WHERE id = $1
FOR UPDATE
`

const setAmountQuery = `
UPDATE assets
SET
    amount = $2,
    valuation_date = GREATEST(valuation_date, $3),
    updated_at = now()
WHERE id = $1
`

// ApplyValuation sets the asset amount and valuation date and appends the
// change record within a single db transaction.
//
// The valuation date never moves backwards. When the change for that day and
// kind already exists the transaction is rolled back and domain.ErrAlreadyApplied
// is returned. When the locked amount differs from the change's before amount
// nothing is written and domain.ErrStaleAmount is returned.
func (r *RepoPGS) ApplyValuation(ctx context.Context, arg domain.ApplyValuationParams) (domain.ApplyValuationResult, error) {
	l := zerolog.Ctx(ctx)

	var result domain.ApplyValuationResult

	err := r.inTx(ctx, func(txRepo *RepoPGS, changeRepo *changerepo.RepoPGS) error {
		current, err := txRepo.lock(ctx, arg.AssetID)
		if err != nil {
			return err
		}

		// Writers of the asset are serialized by the row lock from here on.
		if arg.Change.Kind != domain.ChangeManual {
			applied, err := changeRepo.Exists(ctx, arg.AssetID, arg.Change.Kind, arg.Change.DayStart)
			if err != nil {
				return err
			}

			if applied {
				return domain.ErrAlreadyApplied
			}
		}

		if !current.Equal(arg.Change.Before) {
			return domain.ErrStaleAmount
		}

		if err := txRepo.setAmount(ctx, arg.AssetID, arg); err != nil {
			return err
		}

		change, err := changeRepo.Create(ctx, arg.Change)
		if err != nil {
			return err
		}

		result.Change = change

		result.Asset, err = txRepo.Get(ctx, arg.AssetID)

		return err
	})
	if err != nil {
		l.Error().Err(err).Int64("asset_id", arg.AssetID).Msg("apply valuation")
		return domain.ApplyValuationResult{}, err
	}

	return result, nil
}

// UpdateAmount is the manual edit of the asset amount. A manual change record
// is appended in the same transaction when the amount differs.
func (r *RepoPGS) UpdateAmount(ctx context.Context, arg domain.UpdateAmountParams) (domain.Asset, error) {
	l := zerolog.Ctx(ctx)

	var asset domain.Asset

	err := r.inTx(ctx, func(txRepo *RepoPGS, changeRepo *changerepo.RepoPGS) error {
		before, err := txRepo.lock(ctx, arg.AssetID)
		if err != nil {
			return err
		}

		if !before.Equal(arg.Amount) {
			apply := domain.ApplyValuationParams{
				AssetID:       arg.AssetID,
				Amount:        arg.Amount,
				ValuationDate: arg.ValuationDate,
			}
			if err := txRepo.setAmount(ctx, arg.AssetID, apply); err != nil {
				return err
			}

			_, err = changeRepo.Create(ctx, domain.CreateChangeParams{
				AssetID:  arg.AssetID,
				Before:   before,
				After:    arg.Amount,
				Diff:     moneypkg.Diff(before, arg.Amount),
				At:       arg.At,
				DayStart: arg.DayStart,
				Kind:     domain.ChangeManual,
				Notes:    arg.Notes,
			})
			if err != nil {
				return err
			}
		}

		asset, err = txRepo.Get(ctx, arg.AssetID)

		return err
	})
	if err != nil {
		l.Error().Err(err).Int64("asset_id", arg.AssetID).Msg("update amount")
		return domain.Asset{}, err
	}

	return asset, nil
}

func (r *RepoPGS) inTx(ctx context.Context, fn func(*RepoPGS, *changerepo.RepoPGS) error) error {
	l := zerolog.Ctx(ctx)

	if r.conn == nil {
		l.Error().Msg("transaction requested on a tx-bound repo")
		return errorspkg.ErrInternal
	}

	tx, err := r.conn.BeginTx(ctx, nil)
	if err != nil {
		l.Error().Err(err).Send()
		return errorspkg.ErrInternal
	}

	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			l.Error().Err(err).Send()
		}
	}()

	if err := fn(NewTxRepoPGS(tx, r.rules), changerepo.NewRepoPGS(tx)); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		l.Error().Err(err).Send()
		return errorspkg.ErrInternal
	}

	return nil
}

func (r *RepoPGS) lock(ctx context.Context, id int64) (amount decimal.Decimal, err error) {
	l := zerolog.Ctx(ctx)

	err = r.db.QueryRowContext(ctx, lockQuery, id).Scan(&amount)
	if err != nil {
		l.Error().Err(err).Send()

		if errors.Is(err, sql.ErrNoRows) {
			return amount, domain.ErrAssetNotFound
		}

		return amount, errorspkg.ErrInternal
	}

	return amount, nil
}

func (r *RepoPGS) setAmount(ctx context.Context, id int64, arg domain.ApplyValuationParams) error {
	l := zerolog.Ctx(ctx)

	if _, err := r.db.ExecContext(ctx, setAmountQuery, id, arg.Amount, arg.ValuationDate); err != nil {
		l.Error().Err(err).Send()
		return errorspkg.ErrInternal
	}

	return nil
}

func (r *RepoPGS) scanAsset(s interface{ Scan(...any) error }, a *domain.Asset) error {
	var startDate sql.NullTime

	err := s.Scan(
		&a.ID,
		&a.Name,
		&a.TypeCode,
		&a.TypeLabel,
		&a.Amount,
		&a.Currency,
		&a.ValuationDate,
		&a.AnnualRate,
		&startDate,
		&a.UpdatedAt,
	)
	if err != nil {
		return err
	}

	a.ValuationDate = a.ValuationDate.UTC()
	a.UpdatedAt = a.UpdatedAt.UTC()
	a.StartDate = nil

	if startDate.Valid {
		sd := startDate.Time.UTC()
		a.StartDate = &sd
	}

	a.Category = r.rules.Classify(a.TypeCode, a.TypeLabel)

	return nil
}

func nullID(id *int64) sql.NullInt64 {
	if id == nil {
		return sql.NullInt64{}
	}

	return sql.NullInt64{Int64: *id, Valid: true}
}
