package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"sambv/internal/app/port"
	"sambv/internal/client"
	"sambv/internal/domain/entity"
	"sambv/internal/pkg/metrics"
	"sambv/internal/pkg/utils"
)

// nativeSellToken is how the aggregator names the chain's native currency.
const nativeSellToken = "ETH"

type quoteServiceImpl struct {
	zeroExClient client.ZeroExClient
	slippage     float64
	logger       port.Logger
}

// NewQuoteService creates a port.QuoteService using the 0x aggregator.
func NewQuoteService(zc client.ZeroExClient, slippagePercentage float64, l port.Logger) port.QuoteService {
	return &quoteServiceImpl{zeroExClient: zc, slippage: slippagePercentage, logger: l}
}

// FetchQuote implements port.QuoteService.
func (s *quoteServiceImpl) FetchQuote(ctx context.Context, req entity.QuoteRequest) (*entity.Quote, error) {
	sellAmount, err := utils.ParseUnits(req.SellAmount, req.SellToken.Decimals)
	if err != nil {
		return nil, err
	}
	if sellAmount.Sign() == 0 {
		return nil, fmt.Errorf("%w: zero", utils.ErrInvalidAmount)
	}

	params := client.ZeroExQuoteParams{
		SellToken:          aggregatorToken(req.SellToken),
		BuyToken:           aggregatorToken(req.BuyToken),
		SellAmount:         sellAmount.String(),
		TakerAddress:       req.Taker,
		SlippagePercentage: s.slippage,
	}

	start := time.Now()
	raw, err := s.zeroExClient.GetQuote(ctx, params)
	metrics.QuoteLatency.Observe(time.Since(start).Seconds())
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			metrics.QuoteRequests.WithLabelValues("cancelled").Inc()
		} else {
			metrics.QuoteRequests.WithLabelValues("error").Inc()
		}
		return nil, fmt.Errorf("quote %s -> %s: %w", req.SellToken.Symbol, req.BuyToken.Symbol, err)
	}
	metrics.QuoteRequests.WithLabelValues("ok").Inc()

	return &entity.Quote{
		Price:           raw.Price,
		GuaranteedPrice: raw.GuaranteedPrice,
		BuyAmount:       raw.BuyAmount,
		SellAmount:      utils.FirstNonEmpty(raw.SellAmount, params.SellAmount),
		EstimatedGas:    utils.FirstNonEmpty(raw.EstimatedGas, raw.Gas),
		To:              raw.To,
		Data:            raw.Data,
		Value:           raw.Value,
		AllowanceTarget: raw.AllowanceTarget,
		BuyTokenAddress: raw.BuyTokenAddress,
	}, nil
}

func aggregatorToken(t entity.SwapToken) string {
	if t.IsNative() {
		return nativeSellToken
	}
	return t.Address
}
