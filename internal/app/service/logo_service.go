package service

import (
	"context"
	"strings"
	"time"

	"sambv/internal/app/port"
	"sambv/internal/client"
	"sambv/internal/domain/entity"
	"sambv/internal/pkg/metrics"
	"sambv/internal/pkg/utils"

	"github.com/benbjohnson/clock"
	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"
)

// cachedLogo is what the logo cache stores per lowercase address.
type cachedLogo struct {
	url      string
	storedAt time.Time
}

// logoServiceImpl implements port.LogoService on top of DEX Screener.
type logoServiceImpl struct {
	dexscreenerClient client.DEXScreenerClient
	cache             *gocache.Cache
	group             singleflight.Group
	clock             clock.Clock
	ttl               time.Duration
	nativeLogoURL     string
	logger            port.Logger
}

// NewLogoService creates a logo resolver whose entries live for ttl.
// A cleanupInterval of zero disables the background janitor.
func NewLogoService(
	dsc client.DEXScreenerClient,
	clk clock.Clock,
	ttl time.Duration,
	cleanupInterval time.Duration,
	nativeLogoURL string,
	l port.Logger,
) port.LogoService {
	if clk == nil {
		clk = clock.New()
	}
	return &logoServiceImpl{
		dexscreenerClient: dsc,
		cache:             gocache.New(ttl, cleanupInterval),
		clock:             clk,
		ttl:               ttl,
		nativeLogoURL:     nativeLogoURL,
		logger:            l,
	}
}

// GetLogo implements port.LogoService. It never fails: lookup errors yield "".
func (s *logoServiceImpl) GetLogo(ctx context.Context, address string) string {
	address = strings.TrimSpace(address)
	if address == entity.NativeTokenAddress {
		return s.nativeLogoURL
	}
	key := utils.NormalizeAddress(address)
	if key == "" {
		return ""
	}

	if url, ok := s.lookup(key); ok {
		metrics.LogoLookups.WithLabelValues("hit").Inc()
		return url
	}
	metrics.LogoLookups.WithLabelValues("miss").Inc()

	// Concurrent misses share one request; the request is not tied to any single caller.
	fetchCtx := context.WithoutCancel(ctx)
	v, _, _ := s.group.Do(key, func() (any, error) {
		if url, ok := s.lookup(key); ok {
			return url, nil
		}
		return s.fetch(fetchCtx, address, key), nil
	})
	url, _ := v.(string)
	if url == "" {
		metrics.LogoLookups.WithLabelValues("empty").Inc()
	}
	return url
}

func (s *logoServiceImpl) lookup(key string) (string, bool) {
	item, ok := s.cache.Get(key)
	if !ok {
		return "", false
	}
	entry, ok := item.(cachedLogo)
	if !ok || s.clock.Since(entry.storedAt) >= s.ttl {
		return "", false
	}
	return entry.url, true
}

func (s *logoServiceImpl) fetch(ctx context.Context, address, key string) string {
	pairs, err := s.dexscreenerClient.GetTokenPairs(ctx, address)
	if err != nil {
		s.logger.Warn("Logo lookup failed", "address", address, "error", err)
		return ""
	}
	if len(pairs) == 0 {
		s.logger.Debug("No pairs found for logo lookup", "address", address)
		return ""
	}
	url := pairs[0].LogoURL()
	if url != "" {
		s.cache.Set(key, cachedLogo{url: url, storedAt: s.clock.Now()}, s.ttl)
	}
	return url
}
