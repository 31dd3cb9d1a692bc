package port

import (
	"context"
	"errors"

	"sambv/internal/domain/entity"
)

// ErrOutsideFrame is returned by host calls made while not embedded in the host frame.
var ErrOutsideFrame = errors.New("not running inside the host frame")

// HostFrame is the capability surface offered by the social-network host.
// Every call may fail when running outside the host frame.
type HostFrame interface {
	Ready(ctx context.Context) error
	UserContext(ctx context.Context) (*entity.HostUser, error)
	OpenURL(ctx context.Context, url string) error
	QuickAuthToken(ctx context.Context) (string, error)
	AddMiniApp(ctx context.Context) (*entity.NotificationDetails, error)
	ComposeCast(ctx context.Context, text string, embeds []string) error
}

// FlagStore persists per-device flags.
type FlagStore interface {
	OnboardingComplete(ctx context.Context, deviceID string) (bool, error)
	SetOnboardingComplete(ctx context.Context, deviceID string, done bool) error
	NotificationToken(ctx context.Context, deviceID string) (string, error)
	SetNotificationToken(ctx context.Context, deviceID string, token string) error
}
