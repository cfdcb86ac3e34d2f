package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/go-petr/pet-finance/pkg/randompkg"
	"github.com/go-petr/pet-finance/pkg/tokenpkg"
	"github.com/go-petr/pet-finance/pkg/web"
)

func TestAuthMiddleware(t *testing.T) {
	maker, err := tokenpkg.NewMaker(tokenpkg.TypePaseto, randompkg.String(32))
	require.NoError(t, err)

	otherMaker, err := tokenpkg.NewMaker(tokenpkg.TypeJWT, randompkg.String(32))
	require.NoError(t, err)

	owner := randompkg.Owner()

	bearer := func(m tokenpkg.Maker, authType string, d time.Duration) func(t *testing.T, r *http.Request) {
		return func(t *testing.T, r *http.Request) {
			require.NoError(t, AddAuthorization(r, m, authType, owner, d))
		}
	}

	testCases := []struct {
		name       string
		setupAuth  func(t *testing.T, r *http.Request)
		wantStatus int
		wantError  string
	}{
		{
			name:       "NoHeader",
			setupAuth:  func(t *testing.T, r *http.Request) {},
			wantStatus: http.StatusUnauthorized,
			wantError:  ErrAuthHeaderNotFound.Error(),
		},
		{
			name: "TypeOnly",
			setupAuth: func(t *testing.T, r *http.Request) {
				r.Header.Set(AuthHeaderKey, AuthTypeBearer)
			},
			wantStatus: http.StatusUnauthorized,
			wantError:  ErrBadAuthHeaderFormat.Error(),
		},
		{
			name:       "BasicAuth",
			setupAuth:  bearer(maker, "basic", time.Minute),
			wantStatus: http.StatusUnauthorized,
			wantError:  ErrUnsupportedAuthType.Error(),
		},
		{
			name:       "ExpiredToken",
			setupAuth:  bearer(maker, AuthTypeBearer, -time.Minute),
			wantStatus: http.StatusUnauthorized,
			wantError:  tokenpkg.ErrExpiredToken.Error(),
		},
		{
			name:       "ForeignToken",
			setupAuth:  bearer(otherMaker, AuthTypeBearer, time.Minute),
			wantStatus: http.StatusUnauthorized,
			wantError:  tokenpkg.ErrInvalidToken.Error(),
		},
		{
			name:       "OK",
			setupAuth:  bearer(maker, AuthTypeBearer, time.Minute),
			wantStatus: http.StatusOK,
		},
		{
			name:       "CaseInsensitiveType",
			setupAuth:  bearer(maker, "Bearer", time.Minute),
			wantStatus: http.StatusOK,
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			gin.SetMode(gin.ReleaseMode)
			server := gin.New()
			server.GET("/whoami", AuthMiddleware(maker), func(gctx *gin.Context) {
				gctx.JSON(http.StatusOK, web.Response{Data: Username(gctx)})
			})

			request, err := http.NewRequest(http.MethodGet, "/whoami", nil)
			require.NoError(t, err)

			tc.setupAuth(t, request)

			recorder := httptest.NewRecorder()
			server.ServeHTTP(recorder, request)

			require.Equal(t, tc.wantStatus, recorder.Code)

			var got web.Response
			require.NoError(t, json.NewDecoder(recorder.Body).Decode(&got))

			if tc.wantError != "" {
				require.NotNil(t, got.Error)
				require.Equal(t, tc.wantError, got.Error.Message)

				return
			}

			require.Nil(t, got.Error)
			require.Equal(t, owner, got.Data)
		})
	}
}

func TestUsernameWithoutPayload(t *testing.T) {
	gin.SetMode(gin.ReleaseMode)

	gctx, _ := gin.CreateTestContext(httptest.NewRecorder())
	require.Empty(t, Username(gctx))

	gctx.Set(AuthPayloadKey, "not a payload")
	require.Empty(t, Username(gctx))
}
