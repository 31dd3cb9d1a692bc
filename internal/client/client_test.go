package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestDEXScreenerGetTokenPairs(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		assert.Equal(t, "/latest/dex/tokens/0xabc", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"schemaVersion":"1.0.0","pairs":[{"chainId":"base","pairAddress":"0xpair","baseToken":{"address":"0xabc","symbol":"DEGEN","logoURI":"https://img/base.png"},"quoteToken":{"symbol":"WETH"},"priceUsd":"0.024","info":{"imageUrl":"https://img/info.png"}}]}`))
	}))
	defer srv.Close()

	c := NewDEXScreenerClient(srv.URL, time.Second, nil, zap.NewNop())
	pairs, err := c.GetTokenPairs(context.Background(), "0xabc")

	require.NoError(t, err)
	require.Len(t, pairs, 1)
	assert.Equal(t, "DEGEN", pairs[0].BaseToken.Symbol)
	assert.Equal(t, "https://img/info.png", pairs[0].LogoURL())
	assert.Equal(t, int32(1), hits.Load())
}

func TestDEXScreenerSearchEscapesQuery(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/latest/dex/search", r.URL.Path)
		assert.Equal(t, "brett & co", r.URL.Query().Get("q"))
		_, _ = w.Write([]byte(`{"pairs":[]}`))
	}))
	defer srv.Close()

	c := NewDEXScreenerClient(srv.URL, time.Second, nil, zap.NewNop())
	pairs, err := c.Search(context.Background(), "brett & co")

	require.NoError(t, err)
	assert.Empty(t, pairs)
}

func TestDEXScreenerNonOK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewDEXScreenerClient(srv.URL, time.Second, nil, zap.NewNop())
	_, err := c.GetTokenPairs(context.Background(), "0xabc")
	assert.Error(t, err)
}

func TestZeroExGetQuote(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/swap/v1/quote", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "ETH", q.Get("sellToken"))
		assert.Equal(t, "0x833589fCD6eDb6E08f4c7C32D4f71b54bdA02913", q.Get("buyToken"))
		assert.Equal(t, "1000000000000000000", q.Get("sellAmount"))
		assert.Equal(t, "0.01", q.Get("slippagePercentage"))
		assert.Equal(t, "0x1111111111111111111111111111111111111111", q.Get("takerAddress"))
		assert.Equal(t, "secret", r.Header.Get("0x-api-key"))
		_, _ = w.Write([]byte(`{"price":"3250.1","buyAmount":"3250100000","sellAmount":"1000000000000000000","estimatedGas":"150000","to":"0xdef1","data":"0xabcdef","value":"1000000000000000000"}`))
	}))
	defer srv.Close()

	c := NewZeroExClient(srv.URL+"/swap/v1", "secret", time.Second, zap.NewNop())
	quote, err := c.GetQuote(context.Background(), ZeroExQuoteParams{
		SellToken:          "ETH",
		BuyToken:           "0x833589fCD6eDb6E08f4c7C32D4f71b54bdA02913",
		SellAmount:         "1000000000000000000",
		TakerAddress:       "0x1111111111111111111111111111111111111111",
		SlippagePercentage: 0.01,
	})

	require.NoError(t, err)
	assert.Equal(t, "3250100000", quote.BuyAmount)
	assert.Equal(t, "150000", quote.EstimatedGas)
	assert.Equal(t, "0xdef1", quote.To)
}

func TestZeroExOmitsEmptyTaker(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, present := r.URL.Query()["takerAddress"]
		assert.False(t, present)
		_, _ = w.Write([]byte(`{"buyAmount":"1"}`))
	}))
	defer srv.Close()

	c := NewZeroExClient(srv.URL, "", time.Second, zap.NewNop())
	_, err := c.GetQuote(context.Background(), ZeroExQuoteParams{SellToken: "ETH", BuyToken: "USDC", SellAmount: "1"})
	require.NoError(t, err)
}

func TestZeroExRejectionCarriesReason(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"code":100,"reason":"Validation Failed"}`))
	}))
	defer srv.Close()

	c := NewZeroExClient(srv.URL, "", time.Second, zap.NewNop())
	_, err := c.GetQuote(context.Background(), ZeroExQuoteParams{SellToken: "ETH", BuyToken: "USDC", SellAmount: "1"})

	require.ErrorIs(t, err, ErrQuoteRejected)
	assert.Contains(t, err.Error(), "Validation Failed")
}

func TestCancelledContextSkipsRequest(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := NewZeroExClient(srv.URL, "", time.Second, zap.NewNop())
	_, err := c.GetQuote(ctx, ZeroExQuoteParams{SellToken: "ETH", BuyToken: "USDC", SellAmount: "1"})

	require.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, hits.Load())
}
