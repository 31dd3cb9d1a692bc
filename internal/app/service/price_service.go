package service

import (
	"context"
	"strings"
	"time"

	"sambv/internal/app/port"
	"sambv/internal/client"
	"sambv/internal/domain/entity"
	wire "sambv/internal/entity"
	"sambv/internal/pkg/utils"

	gocache "github.com/patrickmn/go-cache"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"
)

var stablecoinSymbols = map[string]struct{}{
	"USDC":  {},
	"USDT":  {},
	"DAI":   {},
	"USDBC": {},
}

// priceServiceImpl implements port.PriceService on top of DEX Screener pairs.
type priceServiceImpl struct {
	dexscreenerClient client.DEXScreenerClient
	network           entity.NetworkDefinition
	cache             *gocache.Cache
	maxConcurrency    int
	logger            port.Logger
}

// NewPriceService creates a price resolver for the tokens of network. Prices are reused
// for ttl; at most maxConcurrency pair lookups run at once.
func NewPriceService(dsc client.DEXScreenerClient, network entity.NetworkDefinition, ttl time.Duration, maxConcurrency int, l port.Logger) port.PriceService {
	if maxConcurrency <= 0 {
		maxConcurrency = 4
	}
	return &priceServiceImpl{
		dexscreenerClient: dsc,
		network:           network,
		cache:             gocache.New(ttl, 2*ttl),
		maxConcurrency:    maxConcurrency,
		logger:            l,
	}
}

// Prices implements port.PriceService. Native addresses are priced through the wrapped
// native token and reported under the address they were asked for.
func (s *priceServiceImpl) Prices(ctx context.Context, addresses []string) map[string]entity.TokenPrice {
	lookup := make(map[string][]string) // market address -> requested keys
	for _, a := range addresses {
		key := strings.ToLower(strings.TrimSpace(a))
		market := key
		if key == "" || key == entity.NativeTokenAddress {
			key = entity.NativeTokenAddress
			market = utils.NormalizeAddress(s.network.WrappedNative)
		}
		if market == "" {
			continue
		}
		lookup[market] = lo.Uniq(append(lookup[market], key))
	}

	found := make(map[string]entity.TokenPrice, len(lookup))
	var missing []string
	for market := range lookup {
		if v, ok := s.cache.Get(market); ok {
			found[market] = v.(entity.TokenPrice)
			continue
		}
		missing = append(missing, market)
	}

	if len(missing) > 0 {
		results := make([]*entity.TokenPrice, len(missing))
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(s.maxConcurrency)
		for i, market := range missing {
			g.Go(func() error {
				pairs, err := s.dexscreenerClient.GetTokenPairs(gctx, market)
				if err != nil {
					s.logger.Warn("Price lookup failed", "address", market, "error", err)
					return nil
				}
				if pair := s.selectBestPair(pairs, market); pair != nil {
					results[i] = &entity.TokenPrice{
						USD:       utils.CoerceFloat(pair.PriceUsd),
						Change24h: pair.PriceChange.H24,
						PairURL:   pair.URL,
					}
				}
				return nil
			})
		}
		_ = g.Wait()

		for i, market := range missing {
			if results[i] == nil {
				continue
			}
			s.cache.SetDefault(market, *results[i])
			found[market] = *results[i]
		}
	}

	out := make(map[string]entity.TokenPrice, len(addresses))
	for market, keys := range lookup {
		price, ok := found[market]
		if !ok {
			continue
		}
		for _, k := range keys {
			out[k] = price
		}
	}
	return out
}

// selectBestPair prefers the most liquid stablecoin-quoted pair and falls back to the
// most liquid pair of any quote. Pairs on other chains are ignored.
func (s *priceServiceImpl) selectBestPair(pairs []wire.PairData, baseTokenAddress string) *wire.PairData {
	var bestOverall, bestStable *wire.PairData
	for i := range pairs {
		pair := &pairs[i]
		if !strings.EqualFold(pair.BaseToken.Address, baseTokenAddress) {
			continue
		}
		if s.network.DEXScreenerChainID != "" && pair.ChainID != "" && pair.ChainID != s.network.DEXScreenerChainID {
			continue
		}
		if utils.CoerceFloat(pair.PriceUsd) <= 0 {
			continue
		}
		if _, ok := stablecoinSymbols[strings.ToUpper(pair.QuoteToken.Symbol)]; ok && moreLiquid(pair, bestStable) {
			bestStable = pair
		}
		if moreLiquid(pair, bestOverall) {
			bestOverall = pair
		}
	}

	switch {
	case bestStable != nil:
		s.logger.Debug("Selected price from stablecoin pair",
			"address", baseTokenAddress, "pair", bestStable.PairAddress, "priceUsd", bestStable.PriceUsd)
		return bestStable
	case bestOverall != nil:
		s.logger.Debug("Selected price from most liquid pair",
			"address", baseTokenAddress, "pair", bestOverall.PairAddress, "priceUsd", bestOverall.PriceUsd)
		return bestOverall
	default:
		s.logger.Debug("No usable price pair", "address", baseTokenAddress, "pairs", len(pairs))
		return nil
	}
}

func moreLiquid(pair, best *wire.PairData) bool {
	if best == nil {
		return true
	}
	return liquidityUSD(pair) > liquidityUSD(best)
}

func liquidityUSD(p *wire.PairData) float64 {
	if p.Liquidity == nil {
		return 0
	}
	return p.Liquidity.Usd
}
