package service

import (
	"context"
	"strings"

	"sambv/internal/app/port"
	"sambv/internal/client"
	"sambv/internal/domain/entity"
)

const maxSearchResults = 20

type tokenSearchServiceImpl struct {
	dexscreenerClient client.DEXScreenerClient
	logger            port.Logger
}

// NewTokenSearchService creates a port.TokenSearcher backed by DEX Screener search.
func NewTokenSearchService(dsc client.DEXScreenerClient, l port.Logger) port.TokenSearcher {
	return &tokenSearchServiceImpl{dexscreenerClient: dsc, logger: l}
}

// Search implements port.TokenSearcher. Failures return an empty result.
func (s *tokenSearchServiceImpl) Search(ctx context.Context, query string) []entity.SearchResult {
	query = strings.TrimSpace(query)
	results := []entity.SearchResult{}
	if query == "" {
		return results
	}

	pairs, err := s.dexscreenerClient.Search(ctx, query)
	if err != nil {
		s.logger.Warn("Token search failed", "query", query, "error", err)
		return results
	}

	for _, p := range pairs {
		if len(results) == maxSearchResults {
			break
		}
		results = append(results, entity.SearchResult{
			ChainID:     p.ChainID,
			DexID:       p.DexID,
			PairAddress: p.PairAddress,
			BaseAddress: p.BaseToken.Address,
			BaseSymbol:  p.BaseToken.Symbol,
			BaseName:    p.BaseToken.Name,
			QuoteSymbol: p.QuoteToken.Symbol,
			PriceUSD:    p.PriceUsd,
			LogoURL:     p.LogoURL(),
			URL:         p.URL,
		})
	}
	return results
}
