package tokenloader

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"sambv/internal/app/port"
	"sambv/internal/domain/entity"
	"sambv/internal/pkg/utils"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// BaseChainID is the chain the default token list belongs to.
const BaseChainID = 8453

// DefaultTokens returns the built-in Base swap list.
func DefaultTokens() []entity.SwapToken {
	return []entity.SwapToken{
		{
			ChainID:  BaseChainID,
			Address:  entity.NativeTokenAddress,
			Name:     "Ethereum",
			Symbol:   "ETH",
			Decimals: 18,
			Logo:     "https://assets.coingecko.com/coins/images/279/large/ethereum.png",
			Tags:     []string{"verified", "hot"},
		},
		{
			ChainID:  BaseChainID,
			Address:  "0x833589fCD6eDb6E08f4c7C32D4f71b54bdA02913",
			Name:     "USD Coin",
			Symbol:   "USDC",
			Decimals: 6,
			Logo:     "https://assets.coingecko.com/coins/images/6319/large/usdc.png",
			Tags:     []string{"verified", "hot"},
		},
		{
			ChainID:  BaseChainID,
			Address:  "0x4ed4e862860bed51a9570b96d89af5e1b0efefed",
			Name:     "Degen",
			Symbol:   "DEGEN",
			Decimals: 18,
			Logo:     "https://assets.coingecko.com/coins/images/34008/large/degen.png",
			Tags:     []string{"hot"},
		},
		{
			ChainID:  BaseChainID,
			Address:  "0x4200000000000000000000000000000000000006",
			Name:     "Wrapped Ether",
			Symbol:   "WETH",
			Decimals: 18,
			Logo:     "https://assets.coingecko.com/coins/images/2518/large/weth.png",
			Tags:     []string{"verified"},
		},
		{
			ChainID:  BaseChainID,
			Address:  "0x532f27101965dd16442e59d40670faf5ebb142e4",
			Name:     "Brett",
			Symbol:   "BRETT",
			Decimals: 18,
			Logo:     "https://assets.coingecko.com/coins/images/35564/large/brett.png",
			Tags:     []string{"hot"},
		},
	}
}

// Load reads the swap token list for chainID from a JSON file. An empty path, or a path
// that does not exist, yields DefaultTokens. Tokens for another chain, with a malformed
// address or a duplicate symbol are skipped.
func Load(path string, chainID uint64, logger port.Logger) ([]entity.SwapToken, error) {
	if path == "" {
		logger.Info("No token file configured, using built-in Base token list")
		return DefaultTokens(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			logger.Warn("Token file not found, using built-in Base token list", "path", path)
			return DefaultTokens(), nil
		}
		return nil, fmt.Errorf("failed to read token file %s: %w", path, err)
	}

	var tokensInFile []entity.SwapToken
	if err := json.Unmarshal(data, &tokensInFile); err != nil {
		return nil, fmt.Errorf("failed to unmarshal tokens from %s: %w", path, err)
	}

	valid := make([]entity.SwapToken, 0, len(tokensInFile))
	seen := make(map[string]struct{}, len(tokensInFile))
	for _, token := range tokensInFile {
		if token.ChainID != chainID {
			logger.Warn("Token has mismatched ChainID in file, skipping token.",
				"file", path, "token_symbol", token.Symbol, "token_chain_id", token.ChainID, "expected_chain_id", chainID)
			continue
		}
		if token.Address != entity.NativeTokenAddress && !utils.IsEVMAddress(token.Address) {
			logger.Warn("Token has invalid address, skipping token.", "file", path, "token_symbol", token.Symbol, "token_address", token.Address)
			continue
		}
		key := strings.ToUpper(token.Symbol)
		if _, dup := seen[key]; dup || key == "" {
			logger.Warn("Duplicate or empty token symbol, skipping token.", "file", path, "token_symbol", token.Symbol)
			continue
		}
		seen[key] = struct{}{}
		valid = append(valid, token)
	}

	if len(valid) < 2 {
		return nil, fmt.Errorf("token file %s has %d usable tokens, need at least 2", path, len(valid))
	}
	logger.Info("Successfully loaded and validated tokens from file", "file", path, "count", len(valid))
	return valid, nil
}
