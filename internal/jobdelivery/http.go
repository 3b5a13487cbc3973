// Package jobdelivery manages delivery layer of the valuation jobs.
package jobdelivery

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-petr/pet-ledger/internal/domain"
	"github.com/go-petr/pet-ledger/pkg/errorspkg"
	"github.com/go-petr/pet-ledger/pkg/moneypkg"
	"github.com/go-petr/pet-ledger/pkg/web"
	"github.com/rs/zerolog"
)

// Engine runs one valuation job.
//
//go:generate mockgen -source http.go -destination http_mock.go -package jobdelivery
type Engine interface {
	Run(ctx context.Context, params domain.RunParams) (domain.RunResult, error)
	Candidates(ctx context.Context, params domain.RunParams) (domain.CandidatesResult, error)
}

// Locker keeps runs of the same job from overlapping.
type Locker interface {
	Acquire(ctx context.Context, job string) (release func(), err error)
}

// Handler facilitates job delivery layer logic.
type Handler struct {
	accrual     Engine
	revaluation Engine
	locker      Locker
	now         func() time.Time
}

// NewHandler returns job handler.
func NewHandler(accrual, revaluation Engine, locker Locker) *Handler {
	return &Handler{
		accrual:     accrual,
		revaluation: revaluation,
		locker:      locker,
		now:         time.Now,
	}
}

type jobRequest struct {
	AssetID *int64 `form:"assetId" binding:"omitempty,min=1"`
}

type changeResponse struct {
	AssetID int64     `json:"asset_id"`
	Before  string    `json:"before"`
	After   string    `json:"after"`
	Diff    string    `json:"diff"`
	At      time.Time `json:"at"`
}

type runResponse struct {
	Processed int                   `json:"processed"`
	IDs       []int64               `json:"ids"`
	Changes   []changeResponse      `json:"changes"`
	Skipped   []domain.SkippedAsset `json:"skipped"`
	Failures  []domain.FailedAsset  `json:"failures"`
	Unpriced  map[int64][]string    `json:"unpriced,omitempty"`
}

func newRunResponse(res domain.RunResult) runResponse {
	changes := make([]changeResponse, len(res.Changes))
	for i, c := range res.Changes {
		changes[i] = changeResponse{
			AssetID: c.AssetID,
			Before:  moneypkg.String(c.Before),
			After:   moneypkg.String(c.After),
			Diff:    moneypkg.String(c.Diff),
			At:      c.At.UTC(),
		}
	}

	return runResponse{
		Processed: res.Processed,
		IDs:       res.IDs,
		Changes:   changes,
		Skipped:   res.Skipped,
		Failures:  res.Failures,
		Unpriced:  res.Unpriced,
	}
}

// RunInterestAccrual handles http request to accrue interest.
func (h *Handler) RunInterestAccrual(gctx *gin.Context) {
	h.run(gctx, domain.JobInterestAccrual, h.accrual)
}

// DryRunInterestAccrual handles http request to list interest accrual candidates.
func (h *Handler) DryRunInterestAccrual(gctx *gin.Context) {
	h.dryRun(gctx, h.accrual)
}

// RunClosePrice handles http request to revalue holdings at the previous close.
func (h *Handler) RunClosePrice(gctx *gin.Context) {
	h.run(gctx, domain.JobClosePrice, h.revaluation)
}

// DryRunClosePrice handles http request to list close price candidates.
func (h *Handler) DryRunClosePrice(gctx *gin.Context) {
	h.dryRun(gctx, h.revaluation)
}

func (h *Handler) bind(gctx *gin.Context) (domain.RunParams, bool) {
	l := zerolog.Ctx(gctx.Request.Context())

	var req jobRequest
	if err := gctx.ShouldBindQuery(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.Error(domain.ErrInvalidAssetID))

		return domain.RunParams{}, false
	}

	return domain.RunParams{Now: h.now(), AssetID: req.AssetID}, true
}

func (h *Handler) run(gctx *gin.Context, job string, engine Engine) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	params, ok := h.bind(gctx)
	if !ok {
		return
	}

	release, err := h.locker.Acquire(ctx, job)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrJobInProgress):
			gctx.JSON(http.StatusConflict, web.Error(err))
		case errors.Is(err, errorspkg.ErrUnavailable):
			gctx.JSON(http.StatusServiceUnavailable, web.Error(err))
		default:
			gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))
		}

		return
	}
	defer release()

	res, err := engine.Run(ctx, params)
	if err != nil {
		l.Error().Err(err).Str("job", job).Send()
		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))

		return
	}

	gctx.JSON(http.StatusOK, web.Response{Data: newRunResponse(res)})
}

func (h *Handler) dryRun(gctx *gin.Context, engine Engine) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	params, ok := h.bind(gctx)
	if !ok {
		return
	}

	res, err := engine.Candidates(ctx, params)
	if err != nil {
		l.Error().Err(err).Send()
		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))

		return
	}

	gctx.JSON(http.StatusOK, web.Response{Data: res})
}
