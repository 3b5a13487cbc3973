// Package sessiondelivery manages delivery layer of admin sessions.
package sessiondelivery

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-petr/pet-ledger/internal/domain"
	"github.com/go-petr/pet-ledger/pkg/errorspkg"
	"github.com/go-petr/pet-ledger/pkg/web"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// Service provides service layer interface needed by session delivery layer.
//
//go:generate mockgen -source http.go -destination http_mock.go -package sessiondelivery
type Service interface {
	Create(ctx context.Context, password string) (string, time.Time, error)
}

// Handler facilitates session delivery layer logic.
type Handler struct {
	service Service
}

// NewHandler returns session handler.
func NewHandler(ss Service) *Handler {
	return &Handler{
		service: ss,
	}
}

type createRequest struct {
	Password string `json:"password" binding:"required"`
}

// Create handles http login request and returns the access token.
func (h *Handler) Create(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(ctx)

	var req createRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		l.Info().Err(err).Send()

		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			gctx.JSON(http.StatusBadRequest, web.Response{Error: web.GetErrorMsg(ve)})

			return
		}

		gctx.JSON(http.StatusBadRequest, web.Error(err))

		return
	}

	accessToken, expiresAt, err := h.service.Create(ctx, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrWrongPassword) {
			gctx.JSON(http.StatusUnauthorized, web.Error(err))
			return
		}

		gctx.JSON(http.StatusInternalServerError, web.Error(errorspkg.ErrInternal))

		return
	}

	gctx.JSON(http.StatusOK, web.Response{
		AccessToken:          accessToken,
		AccessTokenExpiresAt: expiresAt,
	})
}
