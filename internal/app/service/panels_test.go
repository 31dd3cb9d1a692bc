package service

import (
	"context"
	"errors"
	"math/big"
	"testing"
	"time"

	"sambv/internal/app/port"
	"sambv/internal/domain/entity"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	clk     *clock.Mock
	quotes  *fakeQuotes
	host    *fakeHost
	flags   *memFlags
	pub     *recordingPublisher
	session *Session
}

func testSessionConfig() SessionConfig {
	return SessionConfig{
		QuoteDebounce:    500 * time.Millisecond,
		ToastTTL:         2500 * time.Millisecond,
		SwapConfirm:      4 * time.Second,
		LimitOrder:       1500 * time.Millisecond,
		Deposit:          2 * time.Second,
		Launch:           2 * time.Second,
		Notification:     1500 * time.Millisecond,
		BlockExplorerURL: "https://basescan.org",
		Vaults: []entity.Vault{
			{ID: "v1", Name: "USDC Vault", APY: 8.5, TVL: "$12.5M"},
			{ID: "v2", Name: "ETH Vault", APY: 4.2, TVL: "$48.1M"},
		},
		Holdings: []entity.Holding{
			{Symbol: "ETH", Address: entity.NativeTokenAddress, Decimals: 18, Balance: 2, Price: 2500},
			{Symbol: "USDC", Address: tokUSDC.Address, Decimals: 6, Balance: 1000, Price: 1},
		},
	}
}

func newTestEnv(t *testing.T, host *fakeHost, chain port.BlockchainClient) *testEnv {
	t.Helper()
	env := &testEnv{
		clk:    clock.NewMock(),
		quotes: &fakeQuotes{},
		host:   host,
		flags:  newMemFlags(),
		pub:    &recordingPublisher{},
	}
	deps := SessionDeps{
		Tokens:      staticTokens{tokETH, tokUSDC, tokWETH},
		Quotes:      env.quotes,
		Host:        host,
		Flags:       env.flags,
		Chain:       chain,
		Leaderboard: NewLeaderboardService(nil, "you", 2750, entity.Avatar{Kind: entity.AvatarEmoji, Value: "🦊"}),
		Publisher:   env.pub,
		Clock:       env.clk,
		Logger:      testLogger,
	}
	env.session = newSession("s1", "device-1", deps, testSessionConfig())
	env.session.Profile.Init(context.Background())
	t.Cleanup(env.session.Close)
	return env
}

func (e *testEnv) earned() uint64 {
	return e.session.Progression.State().EarnedXP()
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	require.Eventually(t, cond, time.Second, 5*time.Millisecond)
}

func TestSwapExecuteRequiresQuoteAndWallet(t *testing.T) {
	env := newTestEnv(t, &fakeHost{}, nil)
	swap := env.session.Swap

	_, err := swap.Execute()
	assert.ErrorIs(t, err, ErrNoQuote)

	swap.SetAmount("1")
	_, err = swap.Execute()
	assert.ErrorIs(t, err, ErrNoQuote, "quote still loading")

	env.clk.Add(500 * time.Millisecond)
	waitFor(t, func() bool { return swap.View().Quote.Quote != nil })

	_, err = swap.Execute()
	assert.ErrorIs(t, err, ErrNoWallet)
}

func TestSwapExecuteConfirmsAndAwards(t *testing.T) {
	env := newTestEnv(t, &fakeHost{}, nil)
	swap := env.session.Swap
	require.NoError(t, env.session.ConnectWallet(testWallet))
	base := env.earned()

	swap.SetAmount("1")
	env.clk.Add(500 * time.Millisecond)
	waitFor(t, func() bool { return swap.View().Quote.Quote != nil })
	assert.Equal(t, testWallet, env.quotes.Requests()[0].Taker)

	tx, err := swap.Execute()
	require.NoError(t, err)
	assert.Equal(t, entity.TxPending, tx.Status)
	assert.Len(t, tx.Hash, 66)
	assert.Equal(t, entity.PanelProcessing, swap.View().Status)

	_, err = swap.Execute()
	assert.ErrorIs(t, err, ErrPanelBusy)

	env.clk.Add(4 * time.Second)
	waitFor(t, func() bool { return swap.View().Status == entity.PanelSuccess })
	assert.Equal(t, entity.TxConfirmed, swap.View().Transactions[0].Status)
	waitFor(t, func() bool { return env.earned() == base+50 })

	hist := env.session.Progression.State().History
	assert.Equal(t, "Swapped ETH → USDC", hist[len(hist)-1].Action)
}

func TestActionsOnClosedSessionRollBack(t *testing.T) {
	env := newTestEnv(t, &fakeHost{}, nil)
	s := env.session
	require.NoError(t, s.ConnectWallet(testWallet))
	s.Swap.SetAmount("1")
	env.clk.Add(500 * time.Millisecond)
	waitFor(t, func() bool { return s.Swap.View().Quote.Quote != nil })
	notifBefore := s.Profile.View().Notifications

	s.Close()

	_, err := s.Swap.Execute()
	assert.ErrorIs(t, err, ErrSessionClosed)
	assert.Equal(t, entity.PanelIdle, s.Swap.View().Status)
	assert.Empty(t, s.Swap.View().Transactions)

	_, err = s.Swap.PlaceLimitOrder("3000")
	assert.ErrorIs(t, err, ErrSessionClosed)
	assert.Equal(t, entity.PanelIdle, s.Swap.View().Status)

	assert.ErrorIs(t, s.Earn.Deposit("v1", "10"), ErrSessionClosed)
	assert.Equal(t, entity.PanelIdle, s.Earn.View().Status)
	assert.Empty(t, s.Earn.View().Pending)

	assert.ErrorIs(t, s.Launch.Launch("Test", "TST"), ErrSessionClosed)
	assert.Equal(t, entity.PanelIdle, s.Launch.View().Status)

	assert.ErrorIs(t, s.Profile.EnableNotifications(context.Background()), ErrSessionClosed)
	assert.Equal(t, notifBefore, s.Profile.View().Notifications)
}

func TestSwapSelectSameTokenFlips(t *testing.T) {
	env := newTestEnv(t, &fakeHost{}, nil)
	swap := env.session.Swap

	require.NoError(t, swap.SelectPayToken("usdc"))
	v := swap.View()
	assert.Equal(t, "USDC", v.PayToken.Symbol)
	assert.Equal(t, "ETH", v.ReceiveToken.Symbol)

	swap.Flip()
	v = swap.View()
	assert.Equal(t, "ETH", v.PayToken.Symbol)
	assert.Equal(t, "USDC", v.ReceiveToken.Symbol)

	assert.ErrorIs(t, swap.SelectReceiveToken("NOPE"), ErrUnknownToken)
}

func TestSwapShareOncePerTransaction(t *testing.T) {
	env := newTestEnv(t, &fakeHost{}, nil)
	swap := env.session.Swap
	ctx := context.Background()

	assert.ErrorIs(t, swap.Share(ctx, ""), ErrNothingToShare)

	require.NoError(t, env.session.ConnectWallet(testWallet))
	swap.SetAmount("1")
	env.clk.Add(500 * time.Millisecond)
	waitFor(t, func() bool { return swap.View().Quote.Quote != nil })
	base := env.earned()
	_, err := swap.Execute()
	require.NoError(t, err)
	env.clk.Add(4 * time.Second)
	waitFor(t, func() bool { return env.earned() == base+50 })

	base = env.earned()
	require.NoError(t, swap.Share(ctx, ""))
	assert.ErrorIs(t, swap.Share(ctx, ""), ErrAlreadyShared)
	assert.Equal(t, base+50, env.earned())
	assert.EqualValues(t, 1, env.host.casts.Load())
}

func TestLimitOrderAwards(t *testing.T) {
	env := newTestEnv(t, &fakeHost{}, nil)
	swap := env.session.Swap

	_, err := swap.PlaceLimitOrder("2600")
	assert.ErrorIs(t, err, ErrMissingInput)

	swap.SetAmount("1")
	base := env.earned()
	order, err := swap.PlaceLimitOrder("2600")
	require.NoError(t, err)
	assert.Equal(t, "ETH", order.SellSymbol)

	env.clk.Add(1500 * time.Millisecond)
	waitFor(t, func() bool { return len(swap.View().LimitOrders) == 1 })
	waitFor(t, func() bool { return env.earned() == base+75 })
}

func TestEarnDeposit(t *testing.T) {
	env := newTestEnv(t, &fakeHost{}, nil)
	earn := env.session.Earn
	base := env.earned()

	assert.ErrorIs(t, earn.Deposit("v1", ""), ErrMissingInput)
	assert.ErrorIs(t, earn.Deposit("nope", "10"), ErrUnknownVault)

	require.NoError(t, earn.Deposit("v1", "250.5"))
	assert.ErrorIs(t, earn.Deposit("v2", "1"), ErrPanelBusy)
	assert.Equal(t, "v1", earn.View().Pending)

	env.clk.Add(2 * time.Second)
	waitFor(t, func() bool { return earn.View().Status == entity.PanelSuccess })
	assert.InDelta(t, 250.5, earn.View().Vaults[0].UserPosition, 1e-9)
	waitFor(t, func() bool { return env.earned() == base+100 })

	hist := env.session.Progression.State().History
	assert.Equal(t, "Deposited into USDC Vault", hist[len(hist)-1].Action)

	earn.Reset()
	assert.Equal(t, entity.PanelIdle, earn.View().Status)
}

func TestEarnDepositCoercesMalformedAmount(t *testing.T) {
	env := newTestEnv(t, &fakeHost{}, nil)
	earn := env.session.Earn

	require.NoError(t, earn.Deposit("v2", "lots"))
	env.clk.Add(2 * time.Second)
	waitFor(t, func() bool { return earn.View().Status == entity.PanelSuccess })
	assert.Zero(t, earn.View().Vaults[1].UserPosition)
}

func TestLaunchAndShare(t *testing.T) {
	env := newTestEnv(t, &fakeHost{}, nil)
	launch := env.session.Launch
	ctx := context.Background()
	base := env.earned()

	assert.ErrorIs(t, launch.Launch("Test", ""), ErrMissingInput)
	require.NoError(t, launch.Launch("Test Token", "test"))
	assert.Equal(t, "TEST", launch.View().Ticker)

	env.clk.Add(2 * time.Second)
	waitFor(t, func() bool { return len(launch.View().Launched) == 1 })
	v := launch.View()
	assert.Empty(t, v.Name)
	assert.Empty(t, v.Ticker)
	waitFor(t, func() bool { return env.earned() == base+500 })

	require.NoError(t, launch.Share(ctx, ""))
	assert.ErrorIs(t, launch.Share(ctx, v.Launched[0].ID), ErrAlreadyShared)
	assert.Equal(t, base+600, env.earned())
	assert.True(t, launch.View().Launched[0].Shared)
}

func TestLaunchShareOutsideFrame(t *testing.T) {
	env := newTestEnv(t, &fakeHost{outside: true}, nil)
	launch := env.session.Launch

	require.NoError(t, launch.Launch("Test", "TST"))
	env.clk.Add(2 * time.Second)
	waitFor(t, func() bool { return len(launch.View().Launched) == 1 })

	err := launch.Share(context.Background(), "")
	assert.ErrorIs(t, err, port.ErrOutsideFrame)
	assert.False(t, launch.View().Launched[0].Shared)
}

func TestPortfolioStaticValues(t *testing.T) {
	env := newTestEnv(t, &fakeHost{}, nil)

	v := env.session.Portfolio.View(context.Background())
	assert.False(t, v.Live)
	assert.InDelta(t, 6000, v.TotalValueUSD, 1e-9)
	assert.InDelta(t, 5000, v.Holdings[0].ValueUSD, 1e-9)
	assert.InDelta(t, 83.333, v.Holdings[0].Share, 1e-3)
}

func TestPortfolioLiveBalancesFallBackToZero(t *testing.T) {
	chain := &fakeChain{
		balances: map[string]*big.Int{"ETH": big.NewInt(1_000_000_000_000_000_000)},
		failing:  map[string]bool{"USDC": true},
	}
	env := newTestEnv(t, &fakeHost{}, chain)
	require.NoError(t, env.session.ConnectWallet(testWallet))

	v := env.session.Portfolio.View(context.Background())
	assert.True(t, v.Live)
	assert.InDelta(t, 1, v.Holdings[0].Balance, 1e-9)
	assert.Zero(t, v.Holdings[1].Balance)
	require.Len(t, v.Errors, 1)
	assert.Equal(t, "USDC", v.Errors[0].Symbol)
	assert.InDelta(t, 2500, v.TotalValueUSD, 1e-9)
	assert.InDelta(t, 100, v.Holdings[0].Share, 1e-9)
}

func TestPortfolioChainOutage(t *testing.T) {
	env := newTestEnv(t, &fakeHost{}, &fakeChain{err: errors.New("rpc down")})
	require.NoError(t, env.session.ConnectWallet(testWallet))

	v := env.session.Portfolio.View(context.Background())
	assert.Len(t, v.Errors, 2)
	assert.Zero(t, v.TotalValueUSD)
	for _, h := range v.Holdings {
		assert.Zero(t, h.Share)
	}
}

func TestProfileWalletRewardOnce(t *testing.T) {
	env := newTestEnv(t, &fakeHost{}, nil)
	base := env.earned()

	assert.ErrorIs(t, env.session.ConnectWallet("0x123"), ErrInvalidAddress)
	require.NoError(t, env.session.ConnectWallet(testWallet))
	env.session.DisconnectWallet()
	require.NoError(t, env.session.ConnectWallet(testWallet))

	assert.Equal(t, base+200, env.earned())
	assert.Equal(t, testWallet, env.session.Profile.View().Wallet)
	assert.Equal(t, testWallet, env.session.Swap.View().Taker)
}

func TestProfileSignIn(t *testing.T) {
	env := newTestEnv(t, &fakeHost{}, nil)
	p := env.session.Profile

	v := p.View()
	assert.True(t, v.Framed)
	require.NotNil(t, v.User)
	assert.Equal(t, "alice", v.User.Username)

	auth, err := p.SignIn(context.Background())
	require.NoError(t, err)
	assert.True(t, auth.IsAuthenticated)
	assert.Equal(t, int64(42), auth.FID)

	p.SignOut()
	assert.False(t, p.View().Auth.IsAuthenticated)
}

func TestProfileOutsideFrameDegrades(t *testing.T) {
	env := newTestEnv(t, &fakeHost{outside: true}, nil)
	p := env.session.Profile

	v := p.View()
	assert.False(t, v.Framed)
	assert.Nil(t, v.User)

	_, err := p.SignIn(context.Background())
	assert.ErrorIs(t, err, port.ErrOutsideFrame)
	assert.False(t, p.View().Auth.IsAuthenticated)

	assert.Error(t, p.EnableNotifications(context.Background()))
	assert.Equal(t, entity.NotificationsErrored, p.View().Notifications)
}

func TestProfileEnableNotifications(t *testing.T) {
	env := newTestEnv(t, &fakeHost{}, nil)
	p := env.session.Profile

	require.NoError(t, p.EnableNotifications(context.Background()))
	assert.Equal(t, entity.NotificationsPending, p.View().Notifications)

	env.clk.Add(1500 * time.Millisecond)
	waitFor(t, func() bool { return p.View().Notifications == entity.NotificationsEnabled })
	assert.Equal(t, "notif-token", p.View().NotificationToken)
	waitFor(t, func() bool {
		tok, _ := env.flags.NotificationToken(context.Background(), "device-1")
		return tok == "notif-token"
	})
}

func TestProfileNotificationsDeclined(t *testing.T) {
	env := newTestEnv(t, &fakeHost{decline: true}, nil)
	p := env.session.Profile

	assert.ErrorIs(t, p.EnableNotifications(context.Background()), ErrNotificationsDeclined)
	assert.Equal(t, entity.NotificationsErrored, p.View().Notifications)
}

func TestProfileAvatarValidation(t *testing.T) {
	env := newTestEnv(t, &fakeHost{}, nil)
	p := env.session.Profile

	cases := []struct {
		avatar entity.Avatar
		ok     bool
	}{
		{entity.Avatar{Kind: entity.AvatarImageURL, Value: "https://img/pfp.png"}, true},
		{entity.Avatar{Kind: entity.AvatarImageURL, Value: "ftp://img/pfp.png"}, false},
		{entity.Avatar{Kind: entity.AvatarInlineGraphic, Value: "data:image/svg+xml;base64,PHN2Zz4="}, true},
		{entity.Avatar{Kind: entity.AvatarInlineGraphic, Value: "<svg/>"}, false},
		{entity.Avatar{Kind: entity.AvatarEmoji, Value: "🐸"}, true},
		{entity.Avatar{Kind: entity.AvatarEmoji, Value: " "}, false},
		{entity.Avatar{Kind: "sticker", Value: "x"}, false},
	}
	for _, tc := range cases {
		err := p.SetAvatar(tc.avatar)
		if tc.ok {
			assert.NoError(t, err, tc.avatar.Value)
		} else {
			assert.ErrorIs(t, err, ErrInvalidAvatar, tc.avatar.Value)
		}
	}
	require.NotNil(t, p.Avatar())
	assert.Equal(t, "🐸", p.Avatar().Value)
}

func TestProfileOnboardingPersists(t *testing.T) {
	env := newTestEnv(t, &fakeHost{}, nil)
	require.NoError(t, env.session.Profile.CompleteOnboarding(context.Background()))
	assert.True(t, env.session.Profile.View().OnboardingComplete)

	done, _ := env.flags.OnboardingComplete(context.Background(), "device-1")
	assert.True(t, done)
}

func TestProfileOpenURL(t *testing.T) {
	env := newTestEnv(t, &fakeHost{}, nil)
	p := env.session.Profile

	assert.ErrorIs(t, p.OpenURL(context.Background(), "javascript:alert(1)"), ErrInvalidURL)
	require.NoError(t, p.OpenURL(context.Background(), "https://basescan.org"))
	assert.Equal(t, []string{"https://basescan.org"}, env.host.opened)
}
