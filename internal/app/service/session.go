package service

import (
	"context"
	"sync"
	"time"

	"sambv/internal/app/port"
	"sambv/internal/domain/entity"
	"sambv/internal/pkg/metrics"
	"sambv/internal/pkg/schedule"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
)

// SessionConfig holds the per-session timings and seed data.
type SessionConfig struct {
	QuoteDebounce    time.Duration
	ToastTTL         time.Duration
	SwapConfirm      time.Duration
	LimitOrder       time.Duration
	Deposit          time.Duration
	Launch           time.Duration
	Notification     time.Duration
	BlockExplorerURL string
	Vaults           []entity.Vault
	Holdings         []entity.Holding
}

// SessionDeps are the collaborators shared by every session. Chain and Prices may be nil.
type SessionDeps struct {
	Tokens      port.TokenProvider
	Quotes      port.QuoteService
	Host        port.HostFrame
	Flags       port.FlagStore
	Chain       port.BlockchainClient
	Prices      port.PriceService
	Leaderboard *LeaderboardService
	Publisher   port.EventPublisher
	Clock       clock.Clock
	Logger      port.Logger
}

// Session is the state of one mini-app instance.
type Session struct {
	ID        string
	DeviceID  string
	CreatedAt time.Time

	Progression *ProgressionService
	Toasts      *ToastNotifier
	Swap        *SwapPanel
	Earn        *EarnPanel
	Launch      *LaunchPanel
	Portfolio   *PortfolioPanel
	Profile     *ProfilePanel
	Router      *TabRouter

	leaderboard *LeaderboardService
	watcher     *QuoteWatcher
	sched       *schedule.Scheduler
	closeOnce   sync.Once
}

func newSession(id, deviceID string, deps SessionDeps, cfg SessionConfig) *Session {
	clk := deps.Clock
	events := newSessionEvents(id, deps.Publisher, clk)
	sched := schedule.New(clk)

	toasts := NewToastNotifier(id, clk, cfg.ToastTTL, deps.Publisher)
	prog := NewProgressionService(id, clk, toasts, deps.Publisher, deps.Logger)
	watcher := NewQuoteWatcher(deps.Quotes, clk, cfg.QuoteDebounce, deps.Logger, func(v entity.QuoteView) {
		events.publish(entity.EventQuoteUpdated, v)
	})

	swap := NewSwapPanel(deps.Tokens, watcher, prog, deps.Host, sched, events, SwapPanelConfig{
		ConfirmDelay:     cfg.SwapConfirm,
		LimitOrderDelay:  cfg.LimitOrder,
		BlockExplorerURL: cfg.BlockExplorerURL,
	}, deps.Logger)
	earn := NewEarnPanel(cfg.Vaults, prog, sched, events, cfg.Deposit)
	launch := NewLaunchPanel(prog, deps.Host, sched, events, cfg.Launch, deps.Logger)
	portfolio := NewPortfolioPanel(cfg.Holdings, deps.Chain, deps.Prices, deps.Logger)
	profile := NewProfilePanel(deviceID, deps.Host, deps.Flags, prog, sched, events, cfg.Notification, deps.Logger)

	return &Session{
		ID:          id,
		DeviceID:    deviceID,
		CreatedAt:   clk.Now(),
		Progression: prog,
		Toasts:      toasts,
		Swap:        swap,
		Earn:        earn,
		Launch:      launch,
		Portfolio:   portfolio,
		Profile:     profile,
		Router:      NewTabRouter(swap, earn, launch, portfolio, profile),
		leaderboard: deps.Leaderboard,
		watcher:     watcher,
		sched:       sched,
	}
}

// ConnectWallet connects address in the profile and uses it as swap taker and portfolio wallet.
func (s *Session) ConnectWallet(address string) error {
	if err := s.Profile.ConnectWallet(address); err != nil {
		return err
	}
	wallet := s.Profile.Wallet()
	s.Portfolio.SetWallet(wallet)
	return s.Swap.SetTaker(wallet)
}

// DisconnectWallet clears the wallet everywhere it is used.
func (s *Session) DisconnectWallet() {
	s.Profile.DisconnectWallet()
	s.Portfolio.SetWallet("")
	_ = s.Swap.SetTaker("")
}

// Leaderboard ranks the session's user among the seed rows.
func (s *Session) Leaderboard() []entity.LeaderboardUser {
	if s.leaderboard == nil {
		return []entity.LeaderboardUser{}
	}
	return s.leaderboard.Rank(s.Progression.State(), s.Profile.Avatar())
}

// Close cancels every pending timer and in-flight quote request. It is idempotent.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.sched.Close()
		s.watcher.Stop()
		s.Toasts.Close()
	})
}

// SessionManager creates sessions and evicts them after a period of inactivity.
type SessionManager struct {
	deps   SessionDeps
	cfg    SessionConfig
	cache  *gocache.Cache
	logger port.Logger
}

// NewSessionManager creates a manager whose sessions expire after idleTTL without access.
// A cleanupInterval of zero disables background eviction; Sweep can be called instead.
func NewSessionManager(deps SessionDeps, cfg SessionConfig, idleTTL, cleanupInterval time.Duration) *SessionManager {
	if deps.Clock == nil {
		deps.Clock = clock.New()
	}
	if deps.Publisher == nil {
		deps.Publisher = nopPublisher{}
	}
	m := &SessionManager{
		deps:   deps,
		cfg:    cfg,
		cache:  gocache.New(idleTTL, cleanupInterval),
		logger: deps.Logger,
	}
	m.cache.OnEvicted(func(id string, v any) {
		if s, ok := v.(*Session); ok {
			s.Close()
			metrics.ActiveSessions.Dec()
			m.logger.Debug("Session closed", "session", id)
		}
	})
	return m
}

// Create starts a session for deviceID and initialises it against the host frame.
func (m *SessionManager) Create(ctx context.Context, deviceID string) *Session {
	if deviceID == "" {
		deviceID = "default"
	}
	s := newSession(uuid.NewString(), deviceID, m.deps, m.cfg)
	s.Profile.Init(ctx)

	m.cache.SetDefault(s.ID, s)
	metrics.ActiveSessions.Inc()
	m.logger.Info("Session created", "session", s.ID, "device", deviceID)
	return s
}

// Get returns a live session and refreshes its idle timer. A session that expired or
// was evicted between the lookup and the refresh is reported as not found.
func (m *SessionManager) Get(id string) (*Session, error) {
	v, ok := m.cache.Get(id)
	if !ok {
		return nil, ErrSessionNotFound
	}
	s := v.(*Session)
	if err := m.cache.Replace(id, s, gocache.DefaultExpiration); err != nil {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// Close tears a session down.
func (m *SessionManager) Close(id string) error {
	if _, ok := m.cache.Get(id); !ok {
		return ErrSessionNotFound
	}
	m.cache.Delete(id)
	return nil
}

// Count returns the number of live sessions.
func (m *SessionManager) Count() int {
	return m.cache.ItemCount()
}

// Sweep evicts idle sessions now.
func (m *SessionManager) Sweep() {
	m.cache.DeleteExpired()
}

// Shutdown closes every session.
func (m *SessionManager) Shutdown() {
	m.cache.DeleteExpired()
	for id := range m.cache.Items() {
		m.cache.Delete(id)
	}
}
