package assetdelivery

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/golang/mock/gomock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/go-petr/pet-ledger/internal/domain"
	"github.com/go-petr/pet-ledger/internal/middleware"
	"github.com/go-petr/pet-ledger/pkg/errorspkg"
	"github.com/go-petr/pet-ledger/pkg/randompkg"
	"github.com/go-petr/pet-ledger/pkg/tokenpkg"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)

	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		if err := v.RegisterValidation("decimal", ValidDecimal); err != nil {
			panic(err)
		}
	}

	os.Exit(m.Run())
}

func setupRouter(t *testing.T, service Service) (*gin.Engine, tokenpkg.Maker) {
	t.Helper()

	tokenMaker, err := tokenpkg.NewPasetoMaker(randompkg.String(32))
	require.NoError(t, err)

	h := NewHandler(service)

	router := gin.New()
	authRoutes := router.Group("/").Use(middleware.AuthMiddleware(tokenMaker))
	authRoutes.GET("/assets/:id", h.Get)
	authRoutes.GET("/assets/:id/changes", h.ListChanges)
	authRoutes.PUT("/assets/:id/amount", h.UpdateAmount)

	return router, tokenMaker
}

type jsonResponse struct {
	Data struct {
		Asset   *domain.Asset   `json:"asset"`
		Changes []domain.Change `json:"changes"`
	} `json:"data"`
	Error string `json:"error"`
}

func TestGet(t *testing.T) {
	t.Parallel()

	asset := domain.Asset{
		ID:       3,
		Name:     "Brokerage",
		TypeCode: "stock",
		Category: domain.CategoryHoldings,
		Amount:   decimal.RequireFromString("5000.00"),
		Currency: "CNY",
		Holdings: []domain.Holding{{ID: 1, AssetID: 3, Symbol: "600519.SS", Quantity: decimal.NewFromInt(10)}},
	}

	testCases := []struct {
		name           string
		path           string
		noAuth         bool
		buildStubs     func(service *MockService)
		wantStatusCode int
		wantError      string
	}{
		{
			name: "OK",
			path: "/assets/3",
			buildStubs: func(service *MockService) {
				service.EXPECT().Get(gomock.Any(), int64(3)).Times(1).Return(asset, nil)
			},
			wantStatusCode: http.StatusOK,
		},
		{
			name:   "NoAuthorization",
			path:   "/assets/3",
			noAuth: true,
			buildStubs: func(service *MockService) {
				service.EXPECT().Get(gomock.Any(), gomock.Any()).Times(0)
			},
			wantStatusCode: http.StatusUnauthorized,
			wantError:      middleware.ErrAuthHeaderNotFound.Error(),
		},
		{
			name: "InvalidID",
			path: "/assets/0",
			buildStubs: func(service *MockService) {
				service.EXPECT().Get(gomock.Any(), gomock.Any()).Times(0)
			},
			wantStatusCode: http.StatusBadRequest,
			wantError:      "ID field is required",
		},
		{
			name: "ErrAssetNotFound",
			path: "/assets/3",
			buildStubs: func(service *MockService) {
				service.EXPECT().Get(gomock.Any(), int64(3)).Times(1).Return(domain.Asset{}, domain.ErrAssetNotFound)
			},
			wantStatusCode: http.StatusNotFound,
			wantError:      domain.ErrAssetNotFound.Error(),
		},
		{
			name: "ErrInternal",
			path: "/assets/3",
			buildStubs: func(service *MockService) {
				service.EXPECT().Get(gomock.Any(), int64(3)).Times(1).Return(domain.Asset{}, errorspkg.ErrInternal)
			},
			wantStatusCode: http.StatusInternalServerError,
			wantError:      errorspkg.ErrInternal.Error(),
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			service := NewMockService(ctrl)
			tc.buildStubs(service)

			router, tokenMaker := setupRouter(t, service)

			recorder := httptest.NewRecorder()
			request := httptest.NewRequest(http.MethodGet, tc.path, nil)
			if !tc.noAuth {
				err := middleware.AddAuthorization(request, tokenMaker, middleware.AuthTypeBearer, domain.AdminUsername, time.Minute)
				require.NoError(t, err)
			}

			router.ServeHTTP(recorder, request)
			require.Equal(t, tc.wantStatusCode, recorder.Code)

			var got jsonResponse
			require.NoError(t, json.NewDecoder(recorder.Body).Decode(&got))
			require.Equal(t, tc.wantError, got.Error)

			if tc.wantStatusCode == http.StatusOK {
				require.NotNil(t, got.Data.Asset)
				require.Equal(t, asset.ID, got.Data.Asset.ID)
				require.True(t, asset.Amount.Equal(got.Data.Asset.Amount))
				require.Len(t, got.Data.Asset.Holdings, 1)
				require.Equal(t, "600519.SS", got.Data.Asset.Holdings[0].Symbol)
			}
		})
	}
}

func TestListChanges(t *testing.T) {
	t.Parallel()

	changes := []domain.Change{
		{ID: 9, AssetID: 3, Kind: domain.ChangeClosePrice, Diff: decimal.RequireFromString("12.50")},
		{ID: 8, AssetID: 3, Kind: domain.ChangeManual, Diff: decimal.RequireFromString("-1.00")},
	}

	testCases := []struct {
		name           string
		query          string
		buildStubs     func(service *MockService)
		wantStatusCode int
		wantError      string
		wantLen        int
	}{
		{
			name:  "OK",
			query: "?page_id=2&page_size=5",
			buildStubs: func(service *MockService) {
				service.EXPECT().
					ListChanges(gomock.Any(), int64(3), int32(5), int32(2)).
					Times(1).
					Return(changes, nil)
			},
			wantStatusCode: http.StatusOK,
			wantLen:        2,
		},
		{
			name:  "MissingPage",
			query: "?page_size=5",
			buildStubs: func(service *MockService) {
				service.EXPECT().ListChanges(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
			},
			wantStatusCode: http.StatusBadRequest,
			wantError:      "PageID field is required",
		},
		{
			name:  "PageTooLarge",
			query: "?page_id=1&page_size=500",
			buildStubs: func(service *MockService) {
				service.EXPECT().ListChanges(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
			},
			wantStatusCode: http.StatusBadRequest,
			wantError:      "PageSize must be at most 100",
		},
		{
			name:  "ErrAssetNotFound",
			query: "?page_id=1&page_size=5",
			buildStubs: func(service *MockService) {
				service.EXPECT().
					ListChanges(gomock.Any(), int64(3), int32(5), int32(1)).
					Times(1).
					Return(nil, domain.ErrAssetNotFound)
			},
			wantStatusCode: http.StatusNotFound,
			wantError:      domain.ErrAssetNotFound.Error(),
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			service := NewMockService(ctrl)
			tc.buildStubs(service)

			router, tokenMaker := setupRouter(t, service)

			recorder := httptest.NewRecorder()
			request := httptest.NewRequest(http.MethodGet, "/assets/3/changes"+tc.query, nil)
			err := middleware.AddAuthorization(request, tokenMaker, middleware.AuthTypeBearer, domain.AdminUsername, time.Minute)
			require.NoError(t, err)

			router.ServeHTTP(recorder, request)
			require.Equal(t, tc.wantStatusCode, recorder.Code)

			var got jsonResponse
			require.NoError(t, json.NewDecoder(recorder.Body).Decode(&got))
			require.Equal(t, tc.wantError, got.Error)
			require.Len(t, got.Data.Changes, tc.wantLen)
		})
	}
}

func TestUpdateAmount(t *testing.T) {
	t.Parallel()

	updated := domain.Asset{ID: 3, Amount: decimal.RequireFromString("1234.50")}

	testCases := []struct {
		name           string
		body           gin.H
		buildStubs     func(service *MockService)
		wantStatusCode int
		wantError      string
	}{
		{
			name: "OK",
			body: gin.H{"amount": "1234.5", "notes": "statement"},
			buildStubs: func(service *MockService) {
				service.EXPECT().
					UpdateAmount(gomock.Any(), int64(3), "1234.5", "statement").
					Times(1).
					Return(updated, nil)
			},
			wantStatusCode: http.StatusOK,
		},
		{
			name: "MissingAmount",
			body: gin.H{"notes": "statement"},
			buildStubs: func(service *MockService) {
				service.EXPECT().UpdateAmount(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
			},
			wantStatusCode: http.StatusBadRequest,
			wantError:      "Amount field is required",
		},
		{
			name: "NotADecimal",
			body: gin.H{"amount": "lots"},
			buildStubs: func(service *MockService) {
				service.EXPECT().UpdateAmount(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
			},
			wantStatusCode: http.StatusBadRequest,
			wantError:      "Amount must be a decimal number",
		},
		{
			name: "ErrAssetNotFound",
			body: gin.H{"amount": "1"},
			buildStubs: func(service *MockService) {
				service.EXPECT().
					UpdateAmount(gomock.Any(), int64(3), "1", "").
					Times(1).
					Return(domain.Asset{}, domain.ErrAssetNotFound)
			},
			wantStatusCode: http.StatusNotFound,
			wantError:      domain.ErrAssetNotFound.Error(),
		},
		{
			name: "ErrInternal",
			body: gin.H{"amount": "1"},
			buildStubs: func(service *MockService) {
				service.EXPECT().
					UpdateAmount(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
					Times(1).
					Return(domain.Asset{}, errorspkg.ErrInternal)
			},
			wantStatusCode: http.StatusInternalServerError,
			wantError:      errorspkg.ErrInternal.Error(),
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			service := NewMockService(ctrl)
			tc.buildStubs(service)

			router, tokenMaker := setupRouter(t, service)

			body, err := json.Marshal(tc.body)
			require.NoError(t, err)

			recorder := httptest.NewRecorder()
			request := httptest.NewRequest(http.MethodPut, "/assets/3/amount", bytes.NewReader(body))
			err = middleware.AddAuthorization(request, tokenMaker, middleware.AuthTypeBearer, domain.AdminUsername, time.Minute)
			require.NoError(t, err)

			router.ServeHTTP(recorder, request)
			require.Equal(t, tc.wantStatusCode, recorder.Code)

			var got jsonResponse
			require.NoError(t, json.NewDecoder(recorder.Body).Decode(&got))
			require.Equal(t, tc.wantError, got.Error)

			if tc.wantStatusCode == http.StatusOK {
				require.True(t, updated.Amount.Equal(got.Data.Asset.Amount))
			}
		})
	}
}
