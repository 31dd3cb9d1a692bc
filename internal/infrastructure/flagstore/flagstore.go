// Package flagstore persists the per-device flags of the mini-app.
package flagstore

import (
	"fmt"
	"strings"

	"sambv/internal/app/port"
	"sambv/internal/infrastructure/configloader"
)

// Flag names shared by every backend.
const (
	FlagOnboardingComplete = "onboarding_complete"
	FlagNotificationToken  = "notification_token"
)

// Store is a port.FlagStore that holds resources until closed.
type Store interface {
	port.FlagStore
	Close() error
}

// New opens the backend selected by cfg.Backend.
func New(cfg configloader.FlagStoreConfig, l port.Logger) (Store, error) {
	switch strings.ToLower(cfg.Backend) {
	case "file", "":
		return NewFileStore(cfg.FilePath, l)
	case "redis":
		return NewRedisStore(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.KeyPrefix), nil
	default:
		return nil, fmt.Errorf("unknown flag store backend %q", cfg.Backend)
	}
}
