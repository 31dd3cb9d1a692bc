package flagstore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"sambv/internal/app/port"

	"gopkg.in/yaml.v3"
)

type deviceFlags struct {
	OnboardingComplete bool   `yaml:"onboarding_complete,omitempty"`
	NotificationToken  string `yaml:"notification_token,omitempty"`
}

// FileStore keeps flags for every device in one YAML file. The file is rewritten on
// each change.
type FileStore struct {
	path   string
	logger port.Logger

	mu      sync.Mutex
	devices map[string]deviceFlags
}

// NewFileStore loads path. A missing file starts an empty store.
func NewFileStore(path string, l port.Logger) (*FileStore, error) {
	s := &FileStore{path: path, logger: l, devices: make(map[string]deviceFlags)}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return s, nil
		}
		return nil, fmt.Errorf("failed to read flag file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &s.devices); err != nil {
		return nil, fmt.Errorf("failed to parse flag file %s: %w", path, err)
	}
	if s.devices == nil {
		s.devices = make(map[string]deviceFlags)
	}
	l.Debug("Flag file loaded", "path", path, "devices", len(s.devices))
	return s, nil
}

func (s *FileStore) OnboardingComplete(_ context.Context, deviceID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.devices[deviceID].OnboardingComplete, nil
}

func (s *FileStore) SetOnboardingComplete(_ context.Context, deviceID string, done bool) error {
	return s.update(deviceID, func(f *deviceFlags) { f.OnboardingComplete = done })
}

func (s *FileStore) NotificationToken(_ context.Context, deviceID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.devices[deviceID].NotificationToken, nil
}

func (s *FileStore) SetNotificationToken(_ context.Context, deviceID, token string) error {
	return s.update(deviceID, func(f *deviceFlags) { f.NotificationToken = token })
}

// Close implements Store.
func (s *FileStore) Close() error { return nil }

func (s *FileStore) update(deviceID string, fn func(*deviceFlags)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, existed := s.devices[deviceID]
	next := prev
	fn(&next)
	s.devices[deviceID] = next

	if err := s.writeLocked(); err != nil {
		if existed {
			s.devices[deviceID] = prev
		} else {
			delete(s.devices, deviceID)
		}
		return err
	}
	return nil
}

// writeLocked replaces the file through a temporary sibling so readers never see a partial write.
func (s *FileStore) writeLocked() error {
	data, err := yaml.Marshal(s.devices)
	if err != nil {
		return fmt.Errorf("failed to encode flags: %w", err)
	}
	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create flag directory: %w", err)
		}
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("failed to write flag file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace flag file: %w", err)
	}
	return nil
}

var _ Store = (*FileStore)(nil)
