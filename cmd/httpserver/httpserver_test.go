package httpserver

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/go-petr/pet-finance/internal/middleware"
	"github.com/go-petr/pet-finance/internal/telemetry"
	"github.com/go-petr/pet-finance/pkg/configpkg"
	"github.com/go-petr/pet-finance/pkg/randompkg"
	"github.com/go-petr/pet-finance/pkg/tokenpkg"
)

func testConfig(tokenType string) configpkg.Config {
	return configpkg.Config{
		TokenType:            tokenType,
		TokenSymmetricKey:    randompkg.String(32),
		AccessTokenDuration:  time.Minute,
		RefreshTokenDuration: time.Hour,
		IdempotencyTTL:       time.Minute,
	}
}

func TestNew(t *testing.T) {
	server, err := New(nil, zerolog.Nop(), testConfig(tokenpkg.TypeJWT))
	require.NoError(t, err)
	require.Nil(t, server.Redis)
	require.NoError(t, server.Close())
}

func TestNewUnsupportedTokenType(t *testing.T) {
	_, err := New(nil, zerolog.Nop(), testConfig("macaroon"))
	require.Error(t, err)
}

func TestNewShortSymmetricKey(t *testing.T) {
	config := testConfig(tokenpkg.TypePaseto)
	config.TokenSymmetricKey = "short"

	_, err := New(nil, zerolog.Nop(), config)
	require.Error(t, err)
}

func TestNewZeroRefreshDuration(t *testing.T) {
	config := testConfig(tokenpkg.TypePaseto)
	config.RefreshTokenDuration = 0

	_, err := New(nil, zerolog.Nop(), config)
	require.Error(t, err)
}

func TestRoutes(t *testing.T) {
	config := testConfig(tokenpkg.TypePaseto)

	server, err := New(nil, zerolog.Nop(), config)
	require.NoError(t, err)

	maker, err := tokenpkg.NewMaker(config.TokenType, config.TokenSymmetricKey)
	require.NoError(t, err)

	testCases := []struct {
		name       string
		method     string
		path       string
		auth       bool
		wantStatus int
	}{
		{name: "AccountsNeedAuth", method: http.MethodGet, path: "/accounts", wantStatus: http.StatusUnauthorized},
		{name: "CandidatesNeedAuth", method: http.MethodGet, path: "/accounts/candidates", wantStatus: http.StatusUnauthorized},
		{name: "FlagsNeedAuth", method: http.MethodPatch, path: "/accounts/1", wantStatus: http.StatusUnauthorized},
		{name: "EntriesNeedAuth", method: http.MethodPost, path: "/accounts/1/entries", wantStatus: http.StatusUnauthorized},
		{name: "TransfersNeedAuth", method: http.MethodPost, path: "/transfers", wantStatus: http.StatusUnauthorized},
		{name: "TransferBadBody", method: http.MethodPost, path: "/transfers", auth: true, wantStatus: http.StatusBadRequest},
		{name: "SignUpBadBody", method: http.MethodPost, path: "/users", wantStatus: http.StatusBadRequest},
		{name: "RenewWithoutToken", method: http.MethodPost, path: "/sessions", wantStatus: http.StatusBadRequest},
		{name: "Unknown", method: http.MethodGet, path: "/nope", wantStatus: http.StatusNotFound},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			request, err := http.NewRequest(tc.method, tc.path, strings.NewReader("{}"))
			require.NoError(t, err)

			if tc.auth {
				err = middleware.AddAuthorization(request, maker, middleware.AuthTypeBearer, randompkg.Owner(), time.Minute)
				require.NoError(t, err)
			}

			recorder := httptest.NewRecorder()
			server.ServeHTTP(recorder, request)

			require.Equal(t, tc.wantStatus, recorder.Code)
			require.NotEmpty(t, recorder.Header().Get(middleware.RequestIDHeader))
		})
	}
}

func TestMetricsEndpoint(t *testing.T) {
	server, err := New(nil, zerolog.Nop(), testConfig(tokenpkg.TypePaseto))
	require.NoError(t, err)

	telemetry.TransfersTotal.WithLabelValues("ok").Add(0)

	request, err := http.NewRequest(http.MethodGet, "/metrics", nil)
	require.NoError(t, err)

	recorder := httptest.NewRecorder()
	server.ServeHTTP(recorder, request)

	require.Equal(t, http.StatusOK, recorder.Code)
	require.Contains(t, recorder.Body.String(), "pet_finance_transfers_total")
}
