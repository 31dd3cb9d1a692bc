package flagstore

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps flags in Redis under "<prefix>:<device>:<flag>".
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore creates a store; the connection is made lazily by the client.
func NewRedisStore(addr, password string, db int, prefix string) *RedisStore {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &RedisStore{client: client, prefix: prefix}
}

var _ Store = (*RedisStore)(nil)

func (s *RedisStore) key(deviceID, flag string) string {
	if s.prefix == "" {
		return fmt.Sprintf("%s:%s", deviceID, flag)
	}
	return fmt.Sprintf("%s:%s:%s", s.prefix, deviceID, flag)
}

func (s *RedisStore) get(ctx context.Context, deviceID, flag string) (string, error) {
	v, err := s.client.Get(ctx, s.key(deviceID, flag)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("redis get %s: %w", flag, err)
	}
	return v, nil
}

func (s *RedisStore) OnboardingComplete(ctx context.Context, deviceID string) (bool, error) {
	v, err := s.get(ctx, deviceID, FlagOnboardingComplete)
	if err != nil || v == "" {
		return false, err
	}
	done, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("malformed %s flag %q: %w", FlagOnboardingComplete, v, err)
	}
	return done, nil
}

func (s *RedisStore) SetOnboardingComplete(ctx context.Context, deviceID string, done bool) error {
	return s.client.Set(ctx, s.key(deviceID, FlagOnboardingComplete), strconv.FormatBool(done), 0).Err()
}

func (s *RedisStore) NotificationToken(ctx context.Context, deviceID string) (string, error) {
	return s.get(ctx, deviceID, FlagNotificationToken)
}

func (s *RedisStore) SetNotificationToken(ctx context.Context, deviceID, token string) error {
	return s.client.Set(ctx, s.key(deviceID, FlagNotificationToken), token, 0).Err()
}

// Ping checks the connection.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close implements Store.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
