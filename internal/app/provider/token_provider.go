package provider

import (
	"context"
	"strings"
	"sync"

	"sambv/internal/app/port"
	"sambv/internal/domain/entity"
)

type tokenProviderImpl struct {
	logger port.Logger

	mu     sync.RWMutex
	tokens []entity.SwapToken
}

// TokenProvider is a port.TokenProvider whose missing logos can be filled in later.
type TokenProvider interface {
	port.TokenProvider
	// ResolveLogos fills empty token logos from logos and reports how many were found.
	ResolveLogos(ctx context.Context, logos port.LogoService) int
}

// NewTokenProvider creates a provider over a fixed token list.
func NewTokenProvider(tokens []entity.SwapToken, logger port.Logger) TokenProvider {
	own := make([]entity.SwapToken, len(tokens))
	copy(own, tokens)
	return &tokenProviderImpl{tokens: own, logger: logger}
}

// GetSwapTokens returns a copy of the token list.
func (p *tokenProviderImpl) GetSwapTokens() []entity.SwapToken {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]entity.SwapToken, len(p.tokens))
	copy(out, p.tokens)
	return out
}

// FindToken matches symbol or address, ignoring case.
func (p *tokenProviderImpl) FindToken(symbolOrAddress string) (entity.SwapToken, bool) {
	q := strings.TrimSpace(symbolOrAddress)
	p.mu.RLock()
	defer p.mu.RUnlock()
	for _, t := range p.tokens {
		if strings.EqualFold(t.Symbol, q) || strings.EqualFold(t.Address, q) {
			return t, true
		}
	}
	return entity.SwapToken{}, false
}

func (p *tokenProviderImpl) ResolveLogos(ctx context.Context, logos port.LogoService) int {
	p.mu.RLock()
	var missing []entity.SwapToken
	for _, t := range p.tokens {
		if t.Logo == "" {
			missing = append(missing, t)
		}
	}
	p.mu.RUnlock()

	found := make(map[string]string, len(missing))
	for _, t := range missing {
		if url := logos.GetLogo(ctx, t.Address); url != "" {
			found[t.Address] = url
		}
	}

	p.mu.Lock()
	for i := range p.tokens {
		if url, ok := found[p.tokens[i].Address]; ok && p.tokens[i].Logo == "" {
			p.tokens[i].Logo = url
		}
	}
	p.mu.Unlock()

	if len(missing) > 0 {
		p.logger.Info("Token logos resolved", "missing", len(missing), "found", len(found))
	}
	return len(found)
}
