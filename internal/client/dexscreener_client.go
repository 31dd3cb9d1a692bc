package client

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"sambv/internal/entity"

	jsoniter "github.com/json-iterator/go"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// DEXScreenerClient defines the interface for interacting with the DEX Screener API.
type DEXScreenerClient interface {
	// GetTokenPairs returns the pairs trading the token at address.
	GetTokenPairs(ctx context.Context, tokenAddress string) ([]entity.PairData, error)
	// Search runs a free-text pair search.
	Search(ctx context.Context, query string) ([]entity.PairData, error)
}

// dexScreenerClientImpl is the implementation of DEXScreenerClient.
type dexScreenerClientImpl struct {
	client  *fasthttp.Client
	baseURL string
	timeout time.Duration
	limiter *rate.Limiter
	logger  *zap.Logger
}

// NewDEXScreenerClient creates a new instance of dexScreenerClientImpl.
// A nil limiter disables client-side rate limiting.
func NewDEXScreenerClient(baseURL string, timeout time.Duration, limiter *rate.Limiter, logger *zap.Logger) DEXScreenerClient {
	return &dexScreenerClientImpl{
		client:  &fasthttp.Client{Name: "sambv"},
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: timeout,
		limiter: limiter,
		logger:  logger.Named("DEXScreenerClient"),
	}
}

// GetTokenPairs implements the DEXScreenerClient interface.
func (c *dexScreenerClientImpl) GetTokenPairs(ctx context.Context, tokenAddress string) ([]entity.PairData, error) {
	if tokenAddress == "" {
		return nil, fmt.Errorf("tokenAddress cannot be empty")
	}
	requestURL := fmt.Sprintf("%s/latest/dex/tokens/%s", c.baseURL, url.PathEscape(tokenAddress))
	return c.getPairs(ctx, requestURL)
}

// Search implements the DEXScreenerClient interface.
func (c *dexScreenerClientImpl) Search(ctx context.Context, query string) ([]entity.PairData, error) {
	requestURL := fmt.Sprintf("%s/latest/dex/search?q=%s", c.baseURL, url.QueryEscape(query))
	return c.getPairs(ctx, requestURL)
}

func (c *dexScreenerClientImpl) getPairs(ctx context.Context, requestURL string) ([]entity.PairData, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter wait for %s: %w", requestURL, err)
		}
	}

	c.logger.Debug("Requesting pairs from DEX Screener", zap.String("url", requestURL))

	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	req.SetRequestURI(requestURL)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("Accept", "application/json")

	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	if err := doWithContext(ctx, c.client, req, resp, c.timeout); err != nil {
		c.logger.Error("Failed to execute request to DEX Screener", zap.String("url", requestURL), zap.Error(err))
		return nil, fmt.Errorf("failed to execute request to %s: %w", requestURL, err)
	}

	rawBody := resp.Body()
	if resp.StatusCode() != fasthttp.StatusOK {
		c.logger.Error("DEX Screener API request failed",
			zap.String("url", requestURL),
			zap.Int("statusCode", resp.StatusCode()),
			zap.ByteString("responseBody", rawBody),
		)
		return nil, fmt.Errorf("DEX Screener API request to %s failed with status %d", requestURL, resp.StatusCode())
	}

	var wrapper entity.DEXTokenPair
	if err := json.Unmarshal(rawBody, &wrapper); err != nil {
		c.logger.Error("Failed to unmarshal DEX Screener response",
			zap.String("url", requestURL),
			zap.ByteString("responseBody", rawBody),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to unmarshal DEX Screener response from %s: %w", requestURL, err)
	}

	pairs := wrapper.Pairs
	if len(pairs) == 0 && wrapper.Pair != nil {
		pairs = []entity.PairData{*wrapper.Pair}
	}
	c.logger.Debug("Successfully unmarshalled DEX Screener response",
		zap.String("url", requestURL),
		zap.Int("pairCount", len(pairs)))
	return pairs, nil
}

// doWithContext executes req honouring the context deadline when there is one and
// the client default timeout otherwise.
func doWithContext(ctx context.Context, c *fasthttp.Client, req *fasthttp.Request, resp *fasthttp.Response, timeout time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	var err error
	if deadline, ok := ctx.Deadline(); ok {
		err = c.DoDeadline(req, resp, deadline)
	} else {
		err = c.DoTimeout(req, resp, timeout)
	}
	if err != nil {
		return err
	}
	// fasthttp cannot abort an in-flight call; a cancelled caller gets the error instead.
	return ctx.Err()
}
