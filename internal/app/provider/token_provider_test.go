package provider

import (
	"context"
	"testing"

	"sambv/internal/domain/entity"
	"sambv/internal/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mapLogos map[string]string

func (m mapLogos) GetLogo(_ context.Context, address string) string { return m[address] }

func TestFindTokenIgnoresCase(t *testing.T) {
	p := NewTokenProvider([]entity.SwapToken{
		{Symbol: "ETH", Address: entity.NativeTokenAddress},
		{Symbol: "USDC", Address: "0x833589fCD6eDb6E08f4c7C32D4f71b54bdA02913"},
	}, logger.NewNop())

	tok, ok := p.FindToken("usdc")
	require.True(t, ok)
	assert.Equal(t, "USDC", tok.Symbol)

	tok, ok = p.FindToken("0x833589fcd6edb6e08f4c7c32d4f71b54bda02913")
	require.True(t, ok)
	assert.Equal(t, "USDC", tok.Symbol)

	_, ok = p.FindToken("DOGE")
	assert.False(t, ok)
}

func TestResolveLogosFillsOnlyMissing(t *testing.T) {
	p := NewTokenProvider([]entity.SwapToken{
		{Symbol: "ETH", Address: entity.NativeTokenAddress, Logo: "https://img/eth.png"},
		{Symbol: "DEGEN", Address: "0xdegen"},
		{Symbol: "BRETT", Address: "0xbrett"},
	}, logger.NewNop())

	n := p.ResolveLogos(context.Background(), mapLogos{"0xdegen": "https://img/degen.png", entity.NativeTokenAddress: "https://img/other.png"})
	assert.Equal(t, 1, n)

	tokens := p.GetSwapTokens()
	assert.Equal(t, "https://img/eth.png", tokens[0].Logo)
	assert.Equal(t, "https://img/degen.png", tokens[1].Logo)
	assert.Empty(t, tokens[2].Logo)
}
