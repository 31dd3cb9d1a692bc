package service

import (
	"context"
	"strings"
	"sync"

	"sambv/internal/app/port"
	"sambv/internal/domain/entity"
	"sambv/internal/pkg/utils"
)

// PortfolioPanel values the configured holdings. With a connected wallet and a chain
// client the balances are read on-chain; otherwise the configured balances are shown.
// With a price service the configured prices are replaced by market prices where known.
type PortfolioPanel struct {
	chain  port.BlockchainClient
	prices port.PriceService
	logger port.Logger

	mu       sync.Mutex
	holdings []entity.Holding
	wallet   string
}

// NewPortfolioPanel creates a portfolio panel. chain and prices may be nil.
func NewPortfolioPanel(holdings []entity.Holding, chain port.BlockchainClient, prices port.PriceService, l port.Logger) *PortfolioPanel {
	own := make([]entity.Holding, len(holdings))
	copy(own, holdings)
	return &PortfolioPanel{chain: chain, prices: prices, logger: l, holdings: own}
}

// SetWallet sets the wallet whose balances are read. An empty address clears it.
func (p *PortfolioPanel) SetWallet(address string) {
	p.mu.Lock()
	p.wallet = strings.TrimSpace(address)
	p.mu.Unlock()
}

// View renders the portfolio. A balance that cannot be read falls back to zero and is
// reported in the view's Errors.
func (p *PortfolioPanel) View(ctx context.Context) entity.PortfolioView {
	p.mu.Lock()
	holdings := make([]entity.Holding, len(p.holdings))
	copy(holdings, p.holdings)
	wallet := p.wallet
	p.mu.Unlock()

	view := entity.PortfolioView{Wallet: wallet}
	if wallet != "" && p.chain != nil {
		view.Live = true
		view.Errors = p.readBalances(ctx, wallet, holdings)
	}
	if p.prices != nil {
		view.LivePrices = p.applyPrices(ctx, holdings)
	}
	view.Holdings, view.TotalValueUSD = valueHoldings(holdings)
	return view
}

func (p *PortfolioPanel) readBalances(ctx context.Context, wallet string, holdings []entity.Holding) []entity.HoldingError {
	requests := make([]entity.BalanceRequestItem, 0, len(holdings))
	for _, h := range holdings {
		req := entity.BalanceRequestItem{
			Type:          entity.TokenBalanceRequest,
			WalletAddress: wallet,
			TokenAddress:  h.Address,
			TokenSymbol:   h.Symbol,
			TokenDecimals: h.Decimals,
		}
		if h.Address == "" || h.Address == entity.NativeTokenAddress {
			req.Type = entity.NativeBalanceRequest
			req.TokenDecimals = p.chain.Definition().Decimals
		}
		requests = append(requests, req)
	}

	var errs []entity.HoldingError
	results, err := p.chain.GetBalances(ctx, requests)
	if err != nil {
		p.logger.Warn("Balance read failed", "wallet", wallet, "error", err)
		for i := range holdings {
			holdings[i].Balance = 0
			errs = append(errs, entity.HoldingError{Symbol: holdings[i].Symbol, Address: holdings[i].Address, Message: err.Error()})
		}
		return errs
	}

	for i := range holdings {
		if i >= len(results) {
			holdings[i].Balance = 0
			errs = append(errs, entity.HoldingError{Symbol: holdings[i].Symbol, Address: holdings[i].Address, Message: "no result"})
			continue
		}
		res := results[i]
		if res.Error != nil {
			holdings[i].Balance = 0
			errs = append(errs, entity.HoldingError{Symbol: holdings[i].Symbol, Address: holdings[i].Address, Message: res.Error.Error()})
			continue
		}
		holdings[i].Balance = utils.CoerceFloat(utils.FormatUnits(res.Balance, res.Decimals))
	}
	return errs
}

// applyPrices overwrites price and 24h change of every holding with a known market
// and reports how many were updated.
func (p *PortfolioPanel) applyPrices(ctx context.Context, holdings []entity.Holding) int {
	addresses := make([]string, len(holdings))
	for i, h := range holdings {
		addresses[i] = h.Address
	}
	prices := p.prices.Prices(ctx, addresses)

	updated := 0
	for i := range holdings {
		key := strings.ToLower(holdings[i].Address)
		if key == "" {
			key = entity.NativeTokenAddress
		}
		price, ok := prices[key]
		if !ok {
			continue
		}
		holdings[i].Price = price.USD
		holdings[i].Change24h = price.Change24h
		updated++
	}
	return updated
}

// valueHoldings fills ValueUSD and Share and returns the total value.
func valueHoldings(holdings []entity.Holding) ([]entity.Holding, float64) {
	var total float64
	for i := range holdings {
		holdings[i].ValueUSD = holdings[i].Balance * holdings[i].Price
		total += holdings[i].ValueUSD
	}
	for i := range holdings {
		if total > 0 {
			holdings[i].Share = holdings[i].ValueUSD / total * 100
		} else {
			holdings[i].Share = 0
		}
	}
	return holdings, total
}
