// Package assetdelivery manages delivery layer of assets.
package assetdelivery

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/go-petr/pet-ledger/internal/domain"
	"github.com/go-petr/pet-ledger/pkg/errorspkg"
	"github.com/go-petr/pet-ledger/pkg/web"
)

// Service provides service layer interface needed by asset delivery layer.
//
//go:generate mockgen -source http.go -destination http_mock.go -package assetdelivery
type Service interface {
	Get(ctx context.Context, id int64) (domain.Asset, error)
	ListChanges(ctx context.Context, assetID int64, pageSize, pageID int32) ([]domain.Change, error)
	UpdateAmount(ctx context.Context, id int64, amount, notes string) (domain.Asset, error)
}

// Handler facilitates asset delivery layer logic.
type Handler struct {
	service Service
}

// NewHandler returns asset handler.
func NewHandler(as Service) Handler {
	return Handler{service: as}
}

type data struct {
	Asset domain.Asset `json:"asset"`
}
type response struct {
	Data data `json:"data,omitempty"`
}

type assetURI struct {
	ID int64 `uri:"id" binding:"required,min=1"`
}

func badRequest(gctx *gin.Context, err error) {
	var (
		ve     validator.ValidationErrors
		errMsg = err.Error()
	)

	if errors.As(err, &ve) {
		errMsg = web.GetErrorMsg(ve)
	}

	zerolog.Ctx(gctx.Request.Context()).Info().Err(err).Send()
	gctx.JSON(http.StatusBadRequest, web.Response{Error: errMsg})
}

func serviceError(gctx *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrAssetNotFound):
		gctx.JSON(http.StatusNotFound, web.Error(domain.ErrAssetNotFound))
	case errors.Is(err, domain.ErrInvalidAmount):
		gctx.JSON(http.StatusBadRequest, web.Error(domain.ErrInvalidAmount))
	default:
		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))
	}
}

// Get handles http request to get asset with its holdings.
func (h *Handler) Get(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	var uri assetURI
	if err := gctx.ShouldBindUri(&uri); err != nil {
		badRequest(gctx, err)
		return
	}

	asset, err := h.service.Get(ctx, uri.ID)
	if err != nil {
		serviceError(gctx, err)
		return
	}

	gctx.JSON(http.StatusOK, response{Data: data{asset}})
}

type listChangesRequest struct {
	PageID   int32 `form:"page_id" binding:"required,min=1"`
	PageSize int32 `form:"page_size" binding:"required,min=1,max=100"`
}

type dataChanges struct {
	Changes []domain.Change `json:"changes"`
}
type responseChanges struct {
	Data dataChanges `json:"data,omitempty"`
}

// ListChanges handles http request to page through the asset's audit trail.
func (h *Handler) ListChanges(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	var uri assetURI
	if err := gctx.ShouldBindUri(&uri); err != nil {
		badRequest(gctx, err)
		return
	}

	var req listChangesRequest
	if err := gctx.ShouldBindQuery(&req); err != nil {
		badRequest(gctx, err)
		return
	}

	changes, err := h.service.ListChanges(ctx, uri.ID, req.PageSize, req.PageID)
	if err != nil {
		serviceError(gctx, err)
		return
	}

	if changes == nil {
		changes = []domain.Change{}
	}

	gctx.JSON(http.StatusOK, responseChanges{Data: dataChanges{changes}})
}

type updateAmountRequest struct {
	Amount string `json:"amount" binding:"required,decimal"`
	Notes  string `json:"notes" binding:"max=200"`
}

// UpdateAmount handles http request to set the asset amount by hand.
func (h *Handler) UpdateAmount(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var uri assetURI
	if err := gctx.ShouldBindUri(&uri); err != nil {
		badRequest(gctx, err)
		return
	}

	var req updateAmountRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		badRequest(gctx, err)
		return
	}

	asset, err := h.service.UpdateAmount(ctx, uri.ID, req.Amount, req.Notes)
	if err != nil {
		serviceError(gctx, err)
		return
	}

	l.Info().Int64("asset_id", asset.ID).Str("amount", asset.Amount.StringFixed(2)).Msg("manual amount update")
	gctx.JSON(http.StatusOK, response{Data: data{asset}})
}
