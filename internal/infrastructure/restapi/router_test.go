package restapi

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"sambv/internal/app/port"
	"sambv/internal/app/provider"
	"sambv/internal/app/service"
	"sambv/internal/client"
	"sambv/internal/domain/entity"
	"sambv/internal/infrastructure/flagstore"
	"sambv/internal/infrastructure/hostframe"
	networkdefinition "sambv/internal/infrastructure/network/definition"
	"sambv/internal/infrastructure/tokenloader"
	"sambv/internal/pkg/logger"
	"sambv/internal/pkg/utils"

	"github.com/benbjohnson/clock"
	"github.com/gin-gonic/gin"
	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type stubQuotes struct{ err error }

func (s stubQuotes) FetchQuote(_ context.Context, req entity.QuoteRequest) (*entity.Quote, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &entity.Quote{Price: "2500", BuyAmount: "2500000000", SellAmount: "1000000000000000000"}, nil
}

type stubLogos struct{}

func (stubLogos) GetLogo(_ context.Context, address string) string {
	return "https://logos.test/" + address + ".png"
}

type stubSearch struct{}

func (stubSearch) Search(_ context.Context, q string) []entity.SearchResult {
	return []entity.SearchResult{{BaseSymbol: q, PairAddress: "0xpair"}}
}

type testServer struct {
	router   *gin.Engine
	sessions *service.SessionManager
}

func newTestServer(t *testing.T, quotes port.QuoteService) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	l := logger.NewNop()

	flags, err := flagstore.NewFileStore(filepath.Join(t.TempDir(), "flags.yml"), l)
	require.NoError(t, err)
	network, err := networkdefinition.NewNetworkDefinitionProvider(l, "base", "")
	require.NoError(t, err)
	tokens := provider.NewTokenProvider(tokenloader.DefaultTokens(), l)

	manager := service.NewSessionManager(service.SessionDeps{
		Tokens:    tokens,
		Quotes:    quotes,
		Host:      hostframe.NewSimulated(entity.HostUser{FID: 42, Username: "tester"}, l),
		Flags:     flags,
		Clock:     clock.NewMock(),
		Logger:    l,
		Publisher: service.NewNopPublisher(),
		Leaderboard: service.NewLeaderboardService(
			[]entity.LeaderboardUser{{Username: "dwr.eth", XP: 12200}}, "you", 2750, entity.Avatar{}),
	}, service.SessionConfig{
		QuoteDebounce: 500 * time.Millisecond,
		ToastTTL:      2500 * time.Millisecond,
		SwapConfirm:   2 * time.Second,
		LimitOrder:    time.Second,
		Deposit:       time.Second,
		Launch:        2 * time.Second,
		Notification:  time.Second,
		Vaults:        []entity.Vault{{ID: "usdc-vault", Name: "USDC Vault"}},
	}, time.Hour, 0)
	t.Cleanup(manager.Shutdown)

	zl := zap.NewNop()
	router := SetupRouter(
		NewSessionHandler(manager, zl),
		NewMarketHandler(tokens, stubLogos{}, stubSearch{}, quotes, network, zl),
		zl,
		RouterOptions{},
	)
	return &testServer{router: router, sessions: manager}
}

func (s *testServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *testServer) createSession(t *testing.T) string {
	t.Helper()
	w := s.do(t, http.MethodPost, "/api/v1/sessions", map[string]string{"deviceId": "device-1"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var resp SessionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.SessionID)
	return resp.SessionID
}

func TestSessionLifecycle(t *testing.T) {
	srv := newTestServer(t, stubQuotes{})
	id := srv.createSession(t)

	w := srv.do(t, http.MethodGet, "/api/v1/sessions/"+id, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resp SessionResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "device-1", resp.DeviceID)
	assert.Equal(t, entity.TabSwap, resp.ActiveTab)
	assert.Equal(t, 3, resp.Progression.Level)
	assert.True(t, resp.Profile.Framed)
	require.NotNil(t, resp.Profile.User)
	assert.Equal(t, "tester", resp.Profile.User.Username)

	w = srv.do(t, http.MethodDelete, "/api/v1/sessions/"+id, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = srv.do(t, http.MethodGet, "/api/v1/sessions/"+id, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), service.ErrSessionNotFound.Error())
}

func TestCreateSessionWithoutBody(t *testing.T) {
	srv := newTestServer(t, stubQuotes{})
	w := srv.do(t, http.MethodPost, "/api/v1/sessions", nil)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, 1, srv.sessions.Count())
}

func TestAwardAndToast(t *testing.T) {
	srv := newTestServer(t, stubQuotes{})
	id := srv.createSession(t)

	w := srv.do(t, http.MethodPost, "/api/v1/sessions/"+id+"/xp", map[string]any{"xp": 0, "action": "nothing"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = srv.do(t, http.MethodPost, "/api/v1/sessions/"+id+"/xp", map[string]any{"xp": 1_000_001, "action": "too much"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = srv.do(t, http.MethodPost, "/api/v1/sessions/"+id+"/xp", map[string]any{"xp": uint64(math.MaxUint64), "action": "wrap"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = srv.do(t, http.MethodPost, "/api/v1/sessions/"+id+"/xp", map[string]any{"xp": 100, "action": "Daily check-in"})
	require.Equal(t, http.StatusOK, w.Code)
	var update entity.ProgressionUpdate
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &update))
	assert.Equal(t, "Daily check-in", update.Toast.Message)

	w = srv.do(t, http.MethodGet, "/api/v1/sessions/"+id+"/toast", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = srv.do(t, http.MethodDelete, "/api/v1/sessions/"+id+"/toast", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"dismissed":true}`, w.Body.String())

	w = srv.do(t, http.MethodGet, "/api/v1/sessions/"+id+"/toast", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestTabSelection(t *testing.T) {
	srv := newTestServer(t, stubQuotes{})
	id := srv.createSession(t)

	w := srv.do(t, http.MethodPut, "/api/v1/sessions/"+id+"/tab", map[string]string{"tab": "earn"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"tab":"earn"`)
	assert.Contains(t, w.Body.String(), "usdc-vault")

	w = srv.do(t, http.MethodPut, "/api/v1/sessions/"+id+"/tab", map[string]string{"tab": "settings"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"tab":"swap"`)

	w = srv.do(t, http.MethodGet, "/api/v1/sessions/"+id+"/tabs/active", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"tab":"swap"`)
}

func TestPanelErrorsMapToStatus(t *testing.T) {
	srv := newTestServer(t, stubQuotes{})
	id := srv.createSession(t)
	base := "/api/v1/sessions/" + id

	w := srv.do(t, http.MethodPost, base+"/swap/execute", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = srv.do(t, http.MethodPut, base+"/swap", map[string]string{"payToken": "DOGE"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = srv.do(t, http.MethodPost, base+"/earn/deposits", map[string]string{"vaultId": "usdc-vault"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = srv.do(t, http.MethodPost, base+"/earn/deposits", map[string]string{"vaultId": "nope", "amount": "10"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = srv.do(t, http.MethodPost, base+"/earn/deposits", map[string]string{"vaultId": "usdc-vault", "amount": "10"})
	assert.Equal(t, http.StatusAccepted, w.Code)
	w = srv.do(t, http.MethodPost, base+"/earn/deposits", map[string]string{"vaultId": "usdc-vault", "amount": "10"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = srv.do(t, http.MethodPost, base+"/swap/share", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = srv.do(t, http.MethodPut, base+"/profile/avatar", map[string]string{"kind": "emoji", "value": ""})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestWalletConnect(t *testing.T) {
	srv := newTestServer(t, stubQuotes{})
	id := srv.createSession(t)
	base := "/api/v1/sessions/" + id

	w := srv.do(t, http.MethodPut, base+"/profile/wallet", map[string]string{"address": "not-an-address"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	addr := "0x52908400098527886e0f7030069857d2e4169ee7"
	w = srv.do(t, http.MethodPut, base+"/profile/wallet", map[string]string{"address": addr})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var profile entity.ProfileView
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &profile))
	assert.Equal(t, utils.ChecksumAddress(addr), profile.Wallet)

	w = srv.do(t, http.MethodGet, base+"/tabs/swap", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), profile.Wallet)

	w = srv.do(t, http.MethodDelete, base+"/profile/wallet", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), profile.Wallet)
}

func TestMarketEndpoints(t *testing.T) {
	srv := newTestServer(t, stubQuotes{})

	w := srv.do(t, http.MethodGet, "/api/v1/tokens", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"symbol":"USDC"`)

	w = srv.do(t, http.MethodGet, "/api/v1/tokens/0xabc/logo", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "https://logos.test/0xabc.png")

	w = srv.do(t, http.MethodGet, "/api/v1/search?q=", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"results":[]}`, w.Body.String())

	w = srv.do(t, http.MethodGet, "/api/v1/search?q=DEGEN", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"baseSymbol":"DEGEN"`)

	w = srv.do(t, http.MethodGet, "/api/v1/network", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"chainId":8453`)

	w = srv.do(t, http.MethodPost, "/api/v1/quote", map[string]string{"sellToken": "ETH", "buyToken": "USDC", "sellAmount": "1"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var quote QuoteResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &quote))
	assert.Equal(t, "2500", quote.ReceiveAmount)

	w = srv.do(t, http.MethodPost, "/api/v1/quote", map[string]string{"sellToken": "ETH", "buyToken": "PEPE", "sellAmount": "1"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestQuoteRejectedIsBadGateway(t *testing.T) {
	srv := newTestServer(t, stubQuotes{err: fmt.Errorf("%w: Validation Failed", client.ErrQuoteRejected)})
	w := srv.do(t, http.MethodPost, "/api/v1/quote", map[string]string{"sellToken": "ETH", "buyToken": "USDC", "sellAmount": "1"})
	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestStatusFor(t *testing.T) {
	cases := map[error]int{
		service.ErrSessionClosed:         http.StatusGone,
		service.ErrPanelBusy:             http.StatusConflict,
		service.ErrAlreadyShared:         http.StatusConflict,
		service.ErrInvalidURL:            http.StatusBadRequest,
		utils.ErrInvalidAmount:           http.StatusBadRequest,
		service.ErrNoWallet:              http.StatusUnprocessableEntity,
		port.ErrOutsideFrame:             http.StatusFailedDependency,
		service.ErrNotificationsDeclined: http.StatusFailedDependency,
		errors.New("boom"):               http.StatusInternalServerError,
	}
	for err, want := range cases {
		assert.Equal(t, want, statusFor(err), err.Error())
	}
	assert.Equal(t, http.StatusFailedDependency, statusFor(fmt.Errorf("share: %w", port.ErrOutsideFrame)))
}

func TestHealthAndMetrics(t *testing.T) {
	srv := newTestServer(t, stubQuotes{})
	w := srv.do(t, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = srv.do(t, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
