package service

import (
	"context"
	"errors"
	"math/big"
	"strings"
	"sync"
	"sync/atomic"

	"sambv/internal/app/port"
	"sambv/internal/domain/entity"
	wire "sambv/internal/entity"
	"sambv/internal/pkg/logger"
)

var testLogger = logger.NewNop()

var (
	tokETH  = entity.SwapToken{ChainID: 8453, Address: entity.NativeTokenAddress, Name: "Ether", Symbol: "ETH", Decimals: 18}
	tokUSDC = entity.SwapToken{ChainID: 8453, Address: "0x833589fCD6eDb6E08f4c7C32D4f71b54bdA02913", Name: "USD Coin", Symbol: "USDC", Decimals: 6}
	tokWETH = entity.SwapToken{ChainID: 8453, Address: "0x4200000000000000000000000000000000000006", Name: "Wrapped Ether", Symbol: "WETH", Decimals: 18}
)

const testWallet = "0x1111111111111111111111111111111111111111"

type staticTokens []entity.SwapToken

func (s staticTokens) GetSwapTokens() []entity.SwapToken { return s }

func (s staticTokens) FindToken(q string) (entity.SwapToken, bool) {
	for _, t := range s {
		if strings.EqualFold(t.Symbol, q) || strings.EqualFold(t.Address, q) {
			return t, true
		}
	}
	return entity.SwapToken{}, false
}

// fakeDEX counts calls and returns canned pairs.
type fakeDEX struct {
	mu      sync.Mutex
	calls   int
	pairs   []wire.PairData
	err     error
	block   chan struct{}
	queries []string
}

func (f *fakeDEX) GetTokenPairs(_ context.Context, _ string) ([]wire.PairData, error) {
	f.mu.Lock()
	f.calls++
	block := f.block
	f.mu.Unlock()
	if block != nil {
		<-block
	}
	return f.pairs, f.err
}

func (f *fakeDEX) Search(_ context.Context, q string) ([]wire.PairData, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, q)
	return f.pairs, f.err
}

func (f *fakeDEX) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// fakeQuotes records every request and answers with a buy amount equal to the sell amount
// in the buy token's smallest unit.
type fakeQuotes struct {
	mu       sync.Mutex
	requests []entity.QuoteRequest
	err      error
	gate     chan struct{}
}

func (f *fakeQuotes) FetchQuote(ctx context.Context, req entity.QuoteRequest) (*entity.Quote, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	gate, err := f.gate, f.err
	f.mu.Unlock()
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}
	return &entity.Quote{BuyAmount: "2500000", SellAmount: "1000000000000000000", Price: "2500", To: "0xdef1", Data: "0x"}, nil
}

func (f *fakeQuotes) Requests() []entity.QuoteRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]entity.QuoteRequest, len(f.requests))
	copy(out, f.requests)
	return out
}

// fakeHost is an in-frame host unless outside is set.
type fakeHost struct {
	outside bool
	decline bool
	casts   atomic.Int32
	opened  []string
	mu      sync.Mutex
}

func (h *fakeHost) fail() error {
	if h.outside {
		return port.ErrOutsideFrame
	}
	return nil
}

func (h *fakeHost) Ready(context.Context) error { return h.fail() }

func (h *fakeHost) UserContext(context.Context) (*entity.HostUser, error) {
	if err := h.fail(); err != nil {
		return nil, err
	}
	return &entity.HostUser{FID: 42, Username: "alice"}, nil
}

func (h *fakeHost) OpenURL(_ context.Context, u string) error {
	if err := h.fail(); err != nil {
		return err
	}
	h.mu.Lock()
	h.opened = append(h.opened, u)
	h.mu.Unlock()
	return nil
}

func (h *fakeHost) QuickAuthToken(context.Context) (string, error) {
	if err := h.fail(); err != nil {
		return "", err
	}
	return "jwt-token", nil
}

func (h *fakeHost) AddMiniApp(context.Context) (*entity.NotificationDetails, error) {
	if err := h.fail(); err != nil {
		return nil, err
	}
	if h.decline {
		return nil, nil
	}
	return &entity.NotificationDetails{URL: "https://host.example/notify", Token: "notif-token"}, nil
}

func (h *fakeHost) ComposeCast(context.Context, string, []string) error {
	if err := h.fail(); err != nil {
		return err
	}
	h.casts.Add(1)
	return nil
}

type memFlags struct {
	mu        sync.Mutex
	onboarded map[string]bool
	tokens    map[string]string
}

func newMemFlags() *memFlags {
	return &memFlags{onboarded: map[string]bool{}, tokens: map[string]string{}}
}

func (m *memFlags) OnboardingComplete(_ context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.onboarded[id], nil
}

func (m *memFlags) SetOnboardingComplete(_ context.Context, id string, done bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onboarded[id] = done
	return nil
}

func (m *memFlags) NotificationToken(_ context.Context, id string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tokens[id], nil
}

func (m *memFlags) SetNotificationToken(_ context.Context, id, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens[id] = token
	return nil
}

// recordingPublisher keeps every published event.
type recordingPublisher struct {
	mu     sync.Mutex
	events []entity.Event
}

func (r *recordingPublisher) Publish(e entity.Event) {
	r.mu.Lock()
	r.events = append(r.events, e)
	r.mu.Unlock()
}

func (r *recordingPublisher) Count(t entity.EventType) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.events {
		if e.Type == t {
			n++
		}
	}
	return n
}

// fakeChain answers balance reads; symbols listed in failing report per-item errors.
type fakeChain struct {
	balances map[string]*big.Int
	failing  map[string]bool
	err      error
}

func (c *fakeChain) GetBalances(_ context.Context, reqs []entity.BalanceRequestItem) ([]entity.BalanceResultItem, error) {
	if c.err != nil {
		return nil, c.err
	}
	out := make([]entity.BalanceResultItem, 0, len(reqs))
	for _, r := range reqs {
		res := entity.BalanceResultItem{
			WalletAddress: r.WalletAddress,
			TokenAddress:  r.TokenAddress,
			TokenSymbol:   r.TokenSymbol,
			Decimals:      r.TokenDecimals,
			IsNative:      r.Type == entity.NativeBalanceRequest,
			Balance:       c.balances[r.TokenSymbol],
		}
		if c.failing[r.TokenSymbol] {
			res.Error = errors.New("execution reverted")
		}
		out = append(out, res)
	}
	return out, nil
}

func (c *fakeChain) Definition() entity.NetworkDefinition {
	return entity.NetworkDefinition{ChainID: 8453, Identifier: "base", Decimals: 18}
}
