package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"sambv/internal/app/port"
	"sambv/internal/domain/entity"
	"sambv/internal/pkg/schedule"
	"sambv/internal/pkg/utils"
)

// ProfilePanel holds the identity side of a session: host user, sign-in, wallet,
// avatar, notifications and onboarding.
type ProfilePanel struct {
	deviceID    string
	host        port.HostFrame
	flags       port.FlagStore
	progression *ProgressionService
	sched       *schedule.Scheduler
	events      sessionEvents
	notifDelay  time.Duration
	logger      port.Logger

	mu                 sync.Mutex
	framed             bool
	user               *entity.HostUser
	auth               entity.AuthState
	wallet             string
	walletRewarded     bool
	avatar             *entity.Avatar
	notifications      entity.NotificationStatus
	notificationToken  string
	onboardingComplete bool
}

// NewProfilePanel creates a profile panel for deviceID. Call Init before use.
func NewProfilePanel(
	deviceID string,
	host port.HostFrame,
	flags port.FlagStore,
	progression *ProgressionService,
	sched *schedule.Scheduler,
	events sessionEvents,
	notificationDelay time.Duration,
	l port.Logger,
) *ProfilePanel {
	return &ProfilePanel{
		deviceID:      deviceID,
		host:          host,
		flags:         flags,
		progression:   progression,
		sched:         sched,
		events:        events,
		notifDelay:    notificationDelay,
		logger:        l,
		notifications: entity.NotificationsIdle,
	}
}

// Init signals readiness to the host, loads the viewer and restores persisted flags.
// Host failures are logged; the panel then behaves as outside the frame.
func (p *ProfilePanel) Init(ctx context.Context) {
	framed := true
	if err := p.host.Ready(ctx); err != nil {
		framed = false
		p.logHostError("ready", err)
	}
	user, err := p.host.UserContext(ctx)
	if err != nil {
		p.logHostError("user context", err)
		user = nil
	}

	onboarded, err := p.flags.OnboardingComplete(ctx, p.deviceID)
	if err != nil {
		p.logger.Warn("Failed to read onboarding flag", "device", p.deviceID, "error", err)
	}
	token, err := p.flags.NotificationToken(ctx, p.deviceID)
	if err != nil {
		p.logger.Warn("Failed to read notification token", "device", p.deviceID, "error", err)
	}

	p.mu.Lock()
	p.framed = framed
	p.user = user
	p.onboardingComplete = onboarded
	if token != "" {
		p.notificationToken = token
		p.notifications = entity.NotificationsEnabled
	}
	p.mu.Unlock()
}

// SignIn requests a quick-auth token from the host.
func (p *ProfilePanel) SignIn(ctx context.Context) (entity.AuthState, error) {
	token, err := p.host.QuickAuthToken(ctx)
	if err != nil {
		p.logHostError("quick auth", err)
		return entity.AuthState{}, fmt.Errorf("sign in: %w", err)
	}

	p.mu.Lock()
	p.auth = entity.AuthState{IsAuthenticated: true, Token: token}
	if p.user != nil {
		p.auth.FID = p.user.FID
	}
	auth := p.auth
	p.mu.Unlock()

	p.notify()
	return auth, nil
}

// SignOut forgets the sign-in token.
func (p *ProfilePanel) SignOut() {
	p.mu.Lock()
	p.auth = entity.AuthState{}
	p.mu.Unlock()
	p.notify()
}

// ConnectWallet records the wallet address. The first connection of a session earns XP.
func (p *ProfilePanel) ConnectWallet(address string) error {
	address = strings.TrimSpace(address)
	if !utils.IsEVMAddress(address) {
		return fmt.Errorf("%w: %s", ErrInvalidAddress, address)
	}

	p.mu.Lock()
	p.wallet = utils.ChecksumAddress(address)
	reward := !p.walletRewarded
	p.walletRewarded = true
	p.mu.Unlock()

	if reward {
		p.progression.Award(uint64(entity.RewardWalletConnect), "Connected wallet")
	}
	p.notify()
	return nil
}

// DisconnectWallet clears the wallet address.
func (p *ProfilePanel) DisconnectWallet() {
	p.mu.Lock()
	p.wallet = ""
	p.mu.Unlock()
	p.notify()
}

// Wallet returns the connected wallet, or "".
func (p *ProfilePanel) Wallet() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.wallet
}

// EnableNotifications asks the host to add the mini-app. Registration completes after
// the configured delay and the token is persisted for the device.
func (p *ProfilePanel) EnableNotifications(ctx context.Context) error {
	p.mu.Lock()
	if p.notifications == entity.NotificationsPending {
		p.mu.Unlock()
		return ErrPanelBusy
	}
	p.mu.Unlock()

	details, err := p.host.AddMiniApp(ctx)
	if err == nil && details == nil {
		err = ErrNotificationsDeclined
	}
	if err != nil {
		p.logHostError("add mini app", err)
		p.mu.Lock()
		p.notifications = entity.NotificationsErrored
		p.mu.Unlock()
		p.notify()
		return fmt.Errorf("enable notifications: %w", err)
	}

	p.mu.Lock()
	prev := p.notifications
	p.notifications = entity.NotificationsPending
	p.mu.Unlock()

	token := details.Token
	scheduled := p.sched.After(p.notifDelay, func() {
		p.mu.Lock()
		p.notifications = entity.NotificationsEnabled
		p.notificationToken = token
		p.mu.Unlock()

		if err := p.flags.SetNotificationToken(context.Background(), p.deviceID, token); err != nil {
			p.logger.Warn("Failed to persist notification token", "device", p.deviceID, "error", err)
		}
		p.notify()
	})
	if !scheduled {
		p.mu.Lock()
		p.notifications = prev
		p.mu.Unlock()
		return ErrSessionClosed
	}
	p.notify()
	return nil
}

// SetAvatar validates and stores the avatar.
func (p *ProfilePanel) SetAvatar(a entity.Avatar) error {
	a.Value = strings.TrimSpace(a.Value)
	switch a.Kind {
	case entity.AvatarImageURL:
		if !isHTTPURL(a.Value) {
			return fmt.Errorf("%w: image url must be http(s)", ErrInvalidAvatar)
		}
	case entity.AvatarInlineGraphic:
		if !strings.HasPrefix(a.Value, "data:image/") {
			return fmt.Errorf("%w: inline graphic must be a data:image URI", ErrInvalidAvatar)
		}
	case entity.AvatarEmoji:
		if a.Value == "" {
			return fmt.Errorf("%w: emoji is empty", ErrInvalidAvatar)
		}
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidAvatar, a.Kind)
	}

	p.mu.Lock()
	p.avatar = &a
	p.mu.Unlock()
	p.notify()
	return nil
}

// Avatar returns the chosen avatar, or nil.
func (p *ProfilePanel) Avatar() *entity.Avatar {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.avatar == nil {
		return nil
	}
	a := *p.avatar
	return &a
}

// OpenURL asks the host to open an external link.
func (p *ProfilePanel) OpenURL(ctx context.Context, raw string) error {
	if !isHTTPURL(raw) {
		return fmt.Errorf("%w: %s", ErrInvalidURL, raw)
	}
	if err := p.host.OpenURL(ctx, raw); err != nil {
		p.logHostError("open url", err)
		return fmt.Errorf("open url: %w", err)
	}
	return nil
}

// CompleteOnboarding marks onboarding as done and persists the flag.
func (p *ProfilePanel) CompleteOnboarding(ctx context.Context) error {
	if err := p.flags.SetOnboardingComplete(ctx, p.deviceID, true); err != nil {
		return fmt.Errorf("persist onboarding flag: %w", err)
	}
	p.mu.Lock()
	p.onboardingComplete = true
	p.mu.Unlock()
	p.notify()
	return nil
}

// View renders the panel.
func (p *ProfilePanel) View() entity.ProfileView {
	state := p.progression.State()

	p.mu.Lock()
	defer p.mu.Unlock()
	view := entity.ProfileView{
		Auth:               p.auth,
		Wallet:             p.wallet,
		Progression:        state,
		Notifications:      p.notifications,
		NotificationToken:  p.notificationToken,
		OnboardingComplete: p.onboardingComplete,
		Framed:             p.framed,
	}
	if p.user != nil {
		u := *p.user
		view.User = &u
	}
	if p.avatar != nil {
		a := *p.avatar
		view.Avatar = &a
	}
	return view
}

func (p *ProfilePanel) logHostError(call string, err error) {
	if errors.Is(err, port.ErrOutsideFrame) {
		p.logger.Debug("Host call skipped outside frame", "call", call)
		return
	}
	p.logger.Warn("Host call failed", "call", call, "error", err)
}

func (p *ProfilePanel) notify() {
	p.events.publish(entity.EventPanelUpdated, panelUpdate{Tab: entity.TabProfile, View: p.View()})
}

func isHTTPURL(raw string) bool {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" {
		return false
	}
	return u.Scheme == "http" || u.Scheme == "https"
}
