package entrydelivery

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang/mock/gomock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/go-petr/pet-finance/internal/domain"
	"github.com/go-petr/pet-finance/internal/middleware"
	"github.com/go-petr/pet-finance/pkg/errorspkg"
	"github.com/go-petr/pet-finance/pkg/randompkg"
	"github.com/go-petr/pet-finance/pkg/tokenpkg"
	"github.com/go-petr/pet-finance/pkg/web"
)

var testMaker tokenpkg.Maker

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)

	maker, err := tokenpkg.NewJWTMaker(randompkg.String(32))
	if err != nil {
		panic(err)
	}

	testMaker = maker

	os.Exit(m.Run())
}

func serve(t *testing.T, service Service, method, path string, body any, username string) *httptest.ResponseRecorder {
	t.Helper()

	h := NewHandler(service)

	server := gin.New()
	routes := server.Group("/accounts/:id/entries", middleware.AuthMiddleware(testMaker))
	routes.POST("", h.Create)
	routes.GET("", h.List)

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	request, err := http.NewRequest(method, path, &buf)
	require.NoError(t, err)
	require.NoError(t, middleware.AddAuthorization(request, testMaker, middleware.AuthTypeBearer, username, time.Minute))

	recorder := httptest.NewRecorder()
	server.ServeHTTP(recorder, request)

	return recorder
}

func TestCreateAPI(t *testing.T) {
	username := randompkg.Owner()

	result := domain.EntryResult{
		Entry: domain.Entry{
			ID:        1,
			AccountID: 5,
			Amount:    decimal.RequireFromString("-12.30"),
			Notes:     "lunch",
			CreatedAt: time.Now().UTC(),
		},
		Account: domain.Account{
			ID:          5,
			Owner:       username,
			Balance:     decimal.RequireFromString("87.70"),
			HideBalance: true,
		},
	}

	testCases := []struct {
		name       string
		path       string
		body       any
		buildStubs func(service *MockService)
		wantStatus int
	}{
		{
			name: "OK",
			path: "/accounts/5/entries",
			body: gin.H{"amount": "-12.30", "notes": "lunch"},
			buildStubs: func(service *MockService) {
				service.EXPECT().Record(gomock.Any(), username, int32(5), "-12.30", "lunch").Times(1).Return(result, nil)
			},
			wantStatus: http.StatusCreated,
		},
		{
			name: "MissingAmount",
			path: "/accounts/5/entries",
			body: gin.H{"notes": "lunch"},
			buildStubs: func(service *MockService) {
				service.EXPECT().Record(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
			},
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "BadAccountID",
			path: "/accounts/x/entries",
			body: gin.H{"amount": "1"},
			buildStubs: func(service *MockService) {
				service.EXPECT().Record(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
			},
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "Overdraft",
			path: "/accounts/5/entries",
			body: gin.H{"amount": "-1000"},
			buildStubs: func(service *MockService) {
				service.EXPECT().Record(gomock.Any(), username, int32(5), "-1000", "").Times(1).Return(domain.EntryResult{}, domain.ErrInsufficientFunds)
			},
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "NotFound",
			path: "/accounts/5/entries",
			body: gin.H{"amount": "1"},
			buildStubs: func(service *MockService) {
				service.EXPECT().Record(gomock.Any(), username, int32(5), "1", "").Times(1).Return(domain.EntryResult{}, domain.ErrAccountNotFound)
			},
			wantStatus: http.StatusNotFound,
		},
		{
			name: "InvalidAmount",
			path: "/accounts/5/entries",
			body: gin.H{"amount": "0"},
			buildStubs: func(service *MockService) {
				service.EXPECT().Record(gomock.Any(), username, int32(5), "0", "").Times(1).Return(domain.EntryResult{}, domain.ErrInvalidAmount)
			},
			wantStatus: http.StatusBadRequest,
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			service := NewMockService(ctrl)
			tc.buildStubs(service)

			recorder := serve(t, service, http.MethodPost, tc.path, tc.body, username)
			require.Equal(t, tc.wantStatus, recorder.Code)

			if tc.wantStatus == http.StatusCreated {
				var res struct {
					Data struct {
						Entry   domain.Entry `json:"entry"`
						Account struct {
							Balance *decimal.Decimal `json:"balance"`
						} `json:"account"`
					} `json:"data"`
				}
				require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &res))
				require.True(t, result.Entry.Amount.Equal(res.Data.Entry.Amount))
				require.Equal(t, "lunch", res.Data.Entry.Notes)
				require.Nil(t, res.Data.Account.Balance)

				return
			}

			var res web.Response
			require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &res))
			require.NotNil(t, res.Error)
		})
	}
}

func TestListAPI(t *testing.T) {
	username := randompkg.Owner()

	testCases := []struct {
		name       string
		path       string
		buildStubs func(service *MockService)
		wantStatus int
	}{
		{
			name: "OK",
			path: "/accounts/5/entries?page_id=1&page_size=10",
			buildStubs: func(service *MockService) {
				service.EXPECT().List(gomock.Any(), username, int32(5), int32(10), int32(1)).Times(1).Return(nil, nil)
			},
			wantStatus: http.StatusOK,
		},
		{
			name: "MissingPage",
			path: "/accounts/5/entries",
			buildStubs: func(service *MockService) {
				service.EXPECT().List(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
			},
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "PageIDTooLarge",
			path: "/accounts/5/entries?page_id=2147483647&page_size=100",
			buildStubs: func(service *MockService) {
				service.EXPECT().List(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
			},
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "LastPage",
			path: "/accounts/5/entries?page_id=10000&page_size=100",
			buildStubs: func(service *MockService) {
				service.EXPECT().List(gomock.Any(), username, int32(5), int32(100), int32(10000)).Times(1).Return(nil, nil)
			},
			wantStatus: http.StatusOK,
		},
		{
			name: "InternalError",
			path: "/accounts/5/entries?page_id=1&page_size=10",
			buildStubs: func(service *MockService) {
				service.EXPECT().List(gomock.Any(), username, int32(5), int32(10), int32(1)).Times(1).Return(nil, errorspkg.ErrInternal)
			},
			wantStatus: http.StatusInternalServerError,
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			service := NewMockService(ctrl)
			tc.buildStubs(service)

			recorder := serve(t, service, http.MethodGet, tc.path, nil, username)
			require.Equal(t, tc.wantStatus, recorder.Code)

			if tc.wantStatus == http.StatusOK {
				require.JSONEq(t, `{"data":{"entries":[]}}`, recorder.Body.String())
			}
		})
	}
}
