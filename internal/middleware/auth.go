// Package middleware provides gin middlewares shared by all routes.
package middleware

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-petr/pet-ledger/internal/domain"
	"github.com/go-petr/pet-ledger/pkg/tokenpkg"
	"github.com/go-petr/pet-ledger/pkg/web"
)

const (
	// AuthHeaderKey is the header carrying the session token.
	AuthHeaderKey = "authorization"
	// AuthTypeBearer is the only supported authorization type.
	AuthTypeBearer = "bearer"
	// AuthPayloadKey is the gin context key of the verified token payload.
	AuthPayloadKey = "authorization_payload"
	// JobTokenHeaderKey is the header carrying the job shared secret.
	JobTokenHeaderKey = "X-Job-Token"
)

var (
	ErrAuthHeaderNotFound  = errors.New("authorization header is not provided")
	ErrBadAuthHeaderFormat = errors.New("invalid authorization header format")
	ErrUnsupportedAuthType = errors.New("unsupported authorization type")
)

// AddAuthorization sets a fresh token of the given type on the request.
func AddAuthorization(
	request *http.Request,
	tokenMaker tokenpkg.Maker,
	authorizationType string,
	username string,
	duration time.Duration,
) error {
	token, _, err := tokenMaker.CreateToken(username, duration)
	if err != nil {
		return err
	}

	authorizationHeader := fmt.Sprintf("%s %s", authorizationType, token)
	request.Header.Set(AuthHeaderKey, authorizationHeader)

	return nil
}

func verifyBearer(header string, tokenMaker tokenpkg.Maker) (*tokenpkg.Payload, error) {
	if len(header) == 0 {
		return nil, ErrAuthHeaderNotFound
	}

	fields := strings.Fields(header)
	if len(fields) < 2 {
		return nil, ErrBadAuthHeaderFormat
	}

	if strings.ToLower(fields[0]) != AuthTypeBearer {
		return nil, ErrUnsupportedAuthType
	}

	return tokenMaker.VerifyToken(fields[1])
}

// AuthMiddleware only lets requests with a valid session token through.
func AuthMiddleware(tokenMaker tokenpkg.Maker) gin.HandlerFunc {
	return func(gctx *gin.Context) {
		payload, err := verifyBearer(gctx.GetHeader(AuthHeaderKey), tokenMaker)
		if err != nil {
			gctx.AbortWithStatusJSON(http.StatusUnauthorized, web.Error(err))
			return
		}

		gctx.Set(AuthPayloadKey, payload)
		gctx.Next()
	}
}

// JobAuth lets a job trigger through when it carries the shared secret or a
// valid session token. An empty secret never matches.
func JobAuth(secret string, tokenMaker tokenpkg.Maker) gin.HandlerFunc {
	return func(gctx *gin.Context) {
		if secret != "" {
			got := gctx.GetHeader(JobTokenHeaderKey)
			if subtle.ConstantTimeCompare([]byte(got), []byte(secret)) == 1 {
				gctx.Next()
				return
			}
		}

		payload, err := verifyBearer(gctx.GetHeader(AuthHeaderKey), tokenMaker)
		if err != nil {
			gctx.AbortWithStatusJSON(http.StatusUnauthorized, web.Error(domain.ErrUnauthorized))
			return
		}

		gctx.Set(AuthPayloadKey, payload)
		gctx.Next()
	}
}
