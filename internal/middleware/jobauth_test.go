package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-petr/pet-ledger/internal/domain"
	"github.com/go-petr/pet-ledger/pkg/randompkg"
	"github.com/go-petr/pet-ledger/pkg/tokenpkg"
	"github.com/go-petr/pet-ledger/pkg/web"
)

func TestJobAuth(t *testing.T) {
	tokenMaker, err := tokenpkg.NewPasetoMaker(randompkg.String(32))
	if err != nil {
		t.Fatalf("tokenpkg.NewPasetoMaker returned error: %v", err)
	}

	const secret = "s3cret-job-token"

	testCases := []struct {
		name           string
		secret         string
		setupAuth      func(t *testing.T, r *http.Request)
		wantStatusCode int
	}{
		{
			name:   "SharedSecret",
			secret: secret,
			setupAuth: func(t *testing.T, r *http.Request) {
				r.Header.Set(JobTokenHeaderKey, secret)
			},
			wantStatusCode: http.StatusOK,
		},
		{
			name:   "WrongSecret",
			secret: secret,
			setupAuth: func(t *testing.T, r *http.Request) {
				r.Header.Set(JobTokenHeaderKey, secret+"x")
			},
			wantStatusCode: http.StatusUnauthorized,
		},
		{
			name:   "EmptySecretNeverMatches",
			secret: "",
			setupAuth: func(t *testing.T, r *http.Request) {
				r.Header.Set(JobTokenHeaderKey, "")
			},
			wantStatusCode: http.StatusUnauthorized,
		},
		{
			name:   "WrongSecretButSession",
			secret: secret,
			setupAuth: func(t *testing.T, r *http.Request) {
				r.Header.Set(JobTokenHeaderKey, "wrong")
				if err := AddAuthorization(r, tokenMaker, AuthTypeBearer, domain.AdminUsername, time.Minute); err != nil {
					t.Fatalf("AddAuthorization returned error: %v", err)
				}
			},
			wantStatusCode: http.StatusOK,
		},
		{
			name:   "ExpiredSession",
			secret: secret,
			setupAuth: func(t *testing.T, r *http.Request) {
				if err := AddAuthorization(r, tokenMaker, AuthTypeBearer, domain.AdminUsername, -time.Minute); err != nil {
					t.Fatalf("AddAuthorization returned error: %v", err)
				}
			},
			wantStatusCode: http.StatusUnauthorized,
		},
		{
			name:           "Nothing",
			secret:         secret,
			setupAuth:      func(t *testing.T, r *http.Request) {},
			wantStatusCode: http.StatusUnauthorized,
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			gin.SetMode(gin.ReleaseMode)
			server := gin.New()

			called := false
			server.POST("/job", JobAuth(tc.secret, tokenMaker), func(gctx *gin.Context) {
				called = true
				gctx.JSON(http.StatusOK, gin.H{})
			})

			request := httptest.NewRequest(http.MethodPost, "/job", nil)
			tc.setupAuth(t, request)

			recorder := httptest.NewRecorder()
			server.ServeHTTP(recorder, request)

			if recorder.Code != tc.wantStatusCode {
				t.Errorf("recorder.Code = %v, want %v", recorder.Code, tc.wantStatusCode)
			}

			if tc.wantStatusCode == http.StatusOK {
				return
			}

			if called {
				t.Error("handler ran for an unauthorized trigger")
			}

			got := web.Response{}
			if err := json.NewDecoder(recorder.Body).Decode(&got); err != nil {
				t.Fatalf("Decoding response body error: %v", err)
			}

			if got.Error != domain.ErrUnauthorized.Error() {
				t.Errorf("got.Error = %v, want %v", got.Error, domain.ErrUnauthorized)
			}
		})
	}
}
