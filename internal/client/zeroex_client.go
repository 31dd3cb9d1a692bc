package client

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"sambv/internal/entity"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

// ErrQuoteRejected is returned when the aggregator answers with a non-2xx status.
var ErrQuoteRejected = errors.New("swap quote failed")

// ZeroExQuoteParams are the query parameters of GET /quote. SellAmount is in the
// sell token's smallest unit.
type ZeroExQuoteParams struct {
	SellToken          string
	BuyToken           string
	SellAmount         string
	TakerAddress       string
	SlippagePercentage float64
}

// ZeroExClient defines the interface for the 0x swap API.
type ZeroExClient interface {
	GetQuote(ctx context.Context, params ZeroExQuoteParams) (*entity.ZeroExQuote, error)
}

type zeroExClientImpl struct {
	client  *fasthttp.Client
	baseURL string
	apiKey  string
	timeout time.Duration
	logger  *zap.Logger
}

// NewZeroExClient creates a 0x client against a chain-scoped base URL such as
// https://base.api.0x.org/swap/v1.
func NewZeroExClient(baseURL, apiKey string, timeout time.Duration, logger *zap.Logger) ZeroExClient {
	return &zeroExClientImpl{
		client:  &fasthttp.Client{Name: "sambv"},
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		timeout: timeout,
		logger:  logger.Named("ZeroExClient"),
	}
}

// GetQuote implements the ZeroExClient interface.
func (c *zeroExClientImpl) GetQuote(ctx context.Context, params ZeroExQuoteParams) (*entity.ZeroExQuote, error) {
	q := url.Values{}
	q.Set("sellToken", params.SellToken)
	q.Set("buyToken", params.BuyToken)
	q.Set("sellAmount", params.SellAmount)
	q.Set("slippagePercentage", strconv.FormatFloat(params.SlippagePercentage, 'f', -1, 64))
	if params.TakerAddress != "" {
		q.Set("takerAddress", params.TakerAddress)
	}
	requestURL := c.baseURL + "/quote?" + q.Encode()

	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	req.SetRequestURI(requestURL)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("0x-api-key", c.apiKey)
	}

	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	c.logger.Debug("Requesting swap quote", zap.String("url", requestURL))
	if err := doWithContext(ctx, c.client, req, resp, c.timeout); err != nil {
		return nil, fmt.Errorf("failed to execute request to %s: %w", requestURL, err)
	}

	rawBody := resp.Body()
	if status := resp.StatusCode(); status < 200 || status >= 300 {
		reason := ""
		var apiErr entity.ZeroExError
		if err := json.Unmarshal(rawBody, &apiErr); err == nil {
			reason = apiErr.Reason
		}
		if reason == "" {
			reason = fmt.Sprintf("status %d", status)
		}
		c.logger.Warn("0x quote rejected",
			zap.Int("statusCode", status),
			zap.String("reason", reason),
			zap.ByteString("responseBody", rawBody))
		return nil, fmt.Errorf("%w: %s", ErrQuoteRejected, reason)
	}

	var quote entity.ZeroExQuote
	if err := json.Unmarshal(rawBody, &quote); err != nil {
		return nil, fmt.Errorf("failed to unmarshal 0x quote from %s: %w", requestURL, err)
	}
	return &quote, nil
}
