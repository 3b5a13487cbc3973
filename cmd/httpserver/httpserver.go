// Package httpserver manages server creation and api routing.
package httpserver

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/go-petr/pet-ledger/internal/accrualservice"
	"github.com/go-petr/pet-ledger/internal/assetdelivery"
	"github.com/go-petr/pet-ledger/internal/assetrepo"
	"github.com/go-petr/pet-ledger/internal/assetservice"
	"github.com/go-petr/pet-ledger/internal/changerepo"
	"github.com/go-petr/pet-ledger/internal/domain"
	"github.com/go-petr/pet-ledger/internal/jobdelivery"
	"github.com/go-petr/pet-ledger/internal/joblock"
	"github.com/go-petr/pet-ledger/internal/middleware"
	"github.com/go-petr/pet-ledger/internal/quotegateway"
	"github.com/go-petr/pet-ledger/internal/revaluationservice"
	"github.com/go-petr/pet-ledger/internal/sessiondelivery"
	"github.com/go-petr/pet-ledger/internal/sessionservice"
	"github.com/go-petr/pet-ledger/pkg/configpkg"
	"github.com/go-petr/pet-ledger/pkg/tokenpkg"
)

// Server holds db connection, handlers router and configuration.
type Server struct {
	DB     *sql.DB
	Redis  *redis.Client
	Engine *gin.Engine
	Config configpkg.Config

	Accrual     *accrualservice.Service
	Revaluation *revaluationservice.Service
}

// ServeHTTP implements the http.Handler interface for the Server type.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Engine.ServeHTTP(w, r)
}

// Close releases the redis client. The db is owned by the caller.
func (s *Server) Close() error {
	if s.Redis == nil {
		return nil
	}

	return s.Redis.Close()
}

// Engines holds the valuation engines built from config. It is shared by the
// HTTP server and the command line tool.
type Engines struct {
	Accrual     *accrualservice.Service
	Revaluation *revaluationservice.Service
	Assets      *assetrepo.RepoPGS
	Changes     *changerepo.RepoPGS
	Redis       *redis.Client
}

// CategoryRules builds asset classification rules from config.
func CategoryRules(config configpkg.Config) domain.CategoryRules {
	return domain.CategoryRules{
		InterestCodes:       configpkg.SplitList(config.InterestTypeCodes),
		InterestLabelMarker: config.InterestLabelMarker,
		HoldingsCodes:       configpkg.SplitList(config.HoldingsTypeCodes),
	}
}

// NewEngines wires repositories, the quote gateway and both engines.
// Redis is used for quote caching when REDIS_ADDRESS is set.
func NewEngines(conn *sql.DB, config configpkg.Config) *Engines {
	assetRepo := assetrepo.NewRepoPGS(conn, CategoryRules(config))
	changeRepo := changerepo.NewRepoPGS(conn)

	var (
		rdb   *redis.Client
		cache quotegateway.Cache
	)

	if config.RedisAddress != "" {
		rdb = redis.NewClient(&redis.Options{Addr: config.RedisAddress})
		cache = quotegateway.NewRedisCache(rdb, config.QuoteCacheTTL)
	}

	gateway := quotegateway.New(quotegateway.Config{
		BaseURL:       config.QuoteBaseURL,
		Timeout:       config.QuoteTimeout,
		RatePerSecond: config.QuoteRatePerSecond,
	}, cache)

	return &Engines{
		Accrual:     accrualservice.New(assetRepo, changeRepo, config.DayOffset),
		Revaluation: revaluationservice.New(assetRepo, changeRepo, gateway, config.DayOffset),
		Assets:      assetRepo,
		Changes:     changeRepo,
		Redis:       rdb,
	}
}

// New creates Server type with instantiated domains and routes.
func New(conn *sql.DB, logger zerolog.Logger, config configpkg.Config) (*Server, error) {
	tokenMaker, err := tokenpkg.New(config.TokenKind, config.TokenSymmetricKey)
	if err != nil {
		return nil, errors.New("cannot create token maker")
	}

	engines := NewEngines(conn, config)

	var locker jobdelivery.Locker = joblock.NopLocker{}
	if engines.Redis != nil {
		locker = joblock.NewRedisLocker(engines.Redis, config.JobLockTTL)
	}

	assetService := assetservice.New(engines.Assets, engines.Changes, config.DayOffset)
	sessionService := sessionservice.New(config.AdminPasswordHash, tokenMaker, config.AccessTokenDuration)

	jobHandler := jobdelivery.NewHandler(engines.Accrual, engines.Revaluation, locker)
	assetHandler := assetdelivery.NewHandler(assetService)
	sessionHandler := sessiondelivery.NewHandler(sessionService)

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(middleware.RequestLogger(logger))
	engine.Use(gin.Recovery())

	engine.GET("/health", health(conn))
	engine.POST("/sessions", sessionHandler.Create)

	jobRoutes := engine.Group("/jobs").Use(middleware.JobAuth(config.JobToken, tokenMaker))

	jobRoutes.POST("/interest-accrual", jobHandler.RunInterestAccrual)
	jobRoutes.GET("/interest-accrual", jobHandler.DryRunInterestAccrual)
	jobRoutes.POST("/close-price", jobHandler.RunClosePrice)
	jobRoutes.GET("/close-price", jobHandler.DryRunClosePrice)

	authRoutes := engine.Group("/").Use(middleware.AuthMiddleware(tokenMaker))

	authRoutes.GET("/assets/:id", assetHandler.Get)
	authRoutes.GET("/assets/:id/changes", assetHandler.ListChanges)
	authRoutes.PUT("/assets/:id/amount", assetHandler.UpdateAmount)

	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		err := v.RegisterValidation("decimal", assetdelivery.ValidDecimal)
		if err != nil {
			return nil, errors.New("cannot register decimal validator")
		}
	}

	server := &Server{
		DB:          conn,
		Redis:       engines.Redis,
		Engine:      engine,
		Config:      config,
		Accrual:     engines.Accrual,
		Revaluation: engines.Revaluation,
	}

	return server, nil
}

type healthResponse struct {
	OK bool   `json:"ok"`
	DB string `json:"db"`
}

func health(conn *sql.DB) gin.HandlerFunc {
	return func(gctx *gin.Context) {
		ctx := gctx.Request.Context()

		var one int
		if err := conn.QueryRowContext(ctx, "SELECT 1").Scan(&one); err != nil {
			zerolog.Ctx(ctx).Error().Err(err).Msg("health check")
			gctx.JSON(http.StatusInternalServerError, healthResponse{OK: false, DB: "down"})

			return
		}

		gctx.JSON(http.StatusOK, healthResponse{OK: true, DB: "up"})
	}
}
