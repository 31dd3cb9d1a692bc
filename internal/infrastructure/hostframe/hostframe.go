// Package hostframe provides the host-frame capabilities available to a session
// when no real host SDK is attached.
package hostframe

import (
	"context"
	"fmt"
	"strings"

	"sambv/internal/app/port"
	"sambv/internal/domain/entity"
	"sambv/internal/infrastructure/configloader"
	"sambv/internal/pkg/utils"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/google/uuid"
)

const (
	ModeDetached  = "detached"
	ModeSimulated = "simulated"
)

// New builds the host frame selected by cfg.Mode.
func New(cfg configloader.HostFrameConfig, l port.Logger) (port.HostFrame, error) {
	switch strings.ToLower(cfg.Mode) {
	case ModeDetached, "":
		return Detached{}, nil
	case ModeSimulated:
		return NewSimulated(entity.HostUser{
			FID:         cfg.FID,
			Username:    cfg.Username,
			DisplayName: cfg.DisplayName,
			PfpURL:      cfg.PfpURL,
		}, l), nil
	default:
		return nil, fmt.Errorf("unknown host frame mode %q", cfg.Mode)
	}
}

// Detached is the host frame seen when the mini-app runs outside the host:
// every call fails with port.ErrOutsideFrame.
type Detached struct{}

var _ port.HostFrame = Detached{}

func (Detached) Ready(context.Context) error { return port.ErrOutsideFrame }

func (Detached) UserContext(context.Context) (*entity.HostUser, error) {
	return nil, port.ErrOutsideFrame
}

func (Detached) OpenURL(context.Context, string) error { return port.ErrOutsideFrame }

func (Detached) QuickAuthToken(context.Context) (string, error) { return "", port.ErrOutsideFrame }

func (Detached) AddMiniApp(context.Context) (*entity.NotificationDetails, error) {
	return nil, port.ErrOutsideFrame
}

func (Detached) ComposeCast(context.Context, string, []string) error { return port.ErrOutsideFrame }

// Simulated behaves like a cooperative host. Tokens are random and carry no signature.
type Simulated struct {
	user   entity.HostUser
	logger port.Logger
}

var _ port.HostFrame = (*Simulated)(nil)

// NewSimulated creates a simulated host that reports user as the viewer.
func NewSimulated(user entity.HostUser, l port.Logger) *Simulated {
	if user.Username == "" {
		user.Username = "you"
	}
	return &Simulated{user: user, logger: l}
}

// Ready implements port.HostFrame.
func (s *Simulated) Ready(ctx context.Context) error {
	return ctx.Err()
}

// UserContext implements port.HostFrame.
func (s *Simulated) UserContext(ctx context.Context) (*entity.HostUser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	u := s.user
	return &u, nil
}

// OpenURL implements port.HostFrame.
func (s *Simulated) OpenURL(ctx context.Context, url string) error {
	s.logger.Info("Host open url", "url", url)
	return ctx.Err()
}

// QuickAuthToken implements port.HostFrame.
func (s *Simulated) QuickAuthToken(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return "qa_" + randomHex(), nil
}

// AddMiniApp implements port.HostFrame.
func (s *Simulated) AddMiniApp(ctx context.Context) (*entity.NotificationDetails, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &entity.NotificationDetails{
		URL:   "https://api.farcaster.xyz/v1/frame-notifications",
		Token: uuid.NewString(),
	}, nil
}

// ComposeCast implements port.HostFrame.
func (s *Simulated) ComposeCast(ctx context.Context, text string, embeds []string) error {
	s.logger.Info("Host compose cast", "text", utils.Truncate(text, 80), "embeds", len(embeds))
	return ctx.Err()
}

func randomHex() string {
	id := uuid.New()
	return crypto.Keccak256Hash(id[:]).Hex()[2:]
}
