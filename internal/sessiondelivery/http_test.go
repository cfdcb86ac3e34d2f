package sessiondelivery

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang/mock/gomock"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/go-petr/pet-finance/internal/domain"
	"github.com/go-petr/pet-finance/pkg/errorspkg"
	"github.com/go-petr/pet-finance/pkg/randompkg"
	"github.com/go-petr/pet-finance/pkg/tokenpkg"
	"github.com/go-petr/pet-finance/pkg/web"
)

func TestRenewAccessToken(t *testing.T) {
	symmetricKey := randompkg.String(32)

	tokenMaker, err := tokenpkg.NewPasetoMaker(symmetricKey)
	if err != nil {
		t.Fatalf("tokenpkg.NewPasetoMaker(%v) returned error: %v", symmetricKey, err)
	}

	type requestBody struct {
		RefreshToken string `json:"refresh_token"`
	}

	username := randompkg.Owner()
	duration := time.Minute

	token, payload, err := tokenMaker.CreateToken(username, duration)
	if err != nil {
		t.Fatalf("tokenMaker.CreateToken(%v, %v) returned error: %v", username, duration, err)
	}

	failing := func(err error) func(service *MockService) {
		return func(service *MockService) {
			service.EXPECT().
				RenewAccessToken(gomock.Any(), token).
				Times(1).
				Return("", time.Time{}, err)
		}
	}

	testCases := []struct {
		name           string
		requestBody    requestBody
		buildStubs     func(service *MockService)
		wantStatusCode int
		wantError      string
	}{
		{
			name:        "OK",
			requestBody: requestBody{RefreshToken: token},
			buildStubs: func(service *MockService) {
				service.EXPECT().
					RenewAccessToken(gomock.Any(), token).
					Times(1).
					Return(token, payload.ExpiredAt, nil)
			},
			wantStatusCode: http.StatusOK,
		},
		{
			name:        "RequiredRefreshToken",
			requestBody: requestBody{},
			buildStubs: func(service *MockService) {
				service.EXPECT().
					RenewAccessToken(gomock.Any(), gomock.Any()).
					Times(0)
			},
			wantStatusCode: http.StatusBadRequest,
			wantError:      "RefreshToken field is required",
		},
		{
			name:           "ExpiredToken",
			requestBody:    requestBody{RefreshToken: token},
			buildStubs:     failing(tokenpkg.ErrExpiredToken),
			wantStatusCode: http.StatusUnauthorized,
			wantError:      tokenpkg.ErrExpiredToken.Error(),
		},
		{
			name:           "BlockedSession",
			requestBody:    requestBody{RefreshToken: token},
			buildStubs:     failing(domain.ErrBlockedSession),
			wantStatusCode: http.StatusUnauthorized,
			wantError:      domain.ErrBlockedSession.Error(),
		},
		{
			name:           "MismatchedRefreshToken",
			requestBody:    requestBody{RefreshToken: token},
			buildStubs:     failing(domain.ErrMismatchedRefreshToken),
			wantStatusCode: http.StatusUnauthorized,
			wantError:      domain.ErrMismatchedRefreshToken.Error(),
		},
		{
			name:           "SessionNotFound",
			requestBody:    requestBody{RefreshToken: token},
			buildStubs:     failing(domain.ErrSessionNotFound),
			wantStatusCode: http.StatusNotFound,
			wantError:      domain.ErrSessionNotFound.Error(),
		},
		{
			name:           "InternalServiceError",
			requestBody:    requestBody{RefreshToken: token},
			buildStubs:     failing(errorspkg.ErrInternal),
			wantStatusCode: http.StatusInternalServerError,
			wantError:      errorspkg.ErrInternal.Error(),
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			sessionService := NewMockService(ctrl)
			sessionHandler := NewHandler(sessionService)

			gin.SetMode(gin.ReleaseMode)
			server := gin.New()
			url := "/sessions"

			server.POST(url, sessionHandler.RenewAccessToken)

			tc.buildStubs(sessionService)

			body, err := json.Marshal(tc.requestBody)
			if err != nil {
				t.Fatalf("Encoding request body error: %v", err)
			}

			req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(body))
			if err != nil {
				t.Fatalf("Creating request error: %v", err)
			}

			w := httptest.NewRecorder()
			server.ServeHTTP(w, req)

			if got := w.Code; got != tc.wantStatusCode {
				t.Errorf("Status code: got %v, want %v", got, tc.wantStatusCode)
			}

			var res web.Response
			if err := json.NewDecoder(w.Body).Decode(&res); err != nil {
				t.Fatalf("Decoding response body error: %v", err)
			}

			if tc.wantStatusCode != http.StatusOK {
				if res.Error == nil || res.Error.Message != tc.wantError {
					t.Errorf("res.Error = %+v, want message %q", res.Error, tc.wantError)
				}

				return
			}

			want := web.Response{
				AccessToken:          token,
				AccessTokenExpiresAt: &payload.ExpiredAt,
			}

			if diff := cmp.Diff(want, res, cmpopts.EquateApproxTime(time.Second)); diff != "" {
				t.Errorf("response mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
