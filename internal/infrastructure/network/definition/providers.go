package networkdefinition

import (
	"fmt"
	"strings"

	"sambv/internal/app/port"
	"sambv/internal/domain/entity"
)

const ethLogoURL = "https://assets.coingecko.com/coins/images/279/large/ethereum.png"

// Predefined network definitions
var ( //nolint:gochecknoglobals // Global for definitions
	Base = entity.NetworkDefinition{
		ChainID:            8453,
		Name:               "Base",
		Identifier:         "base",
		NativeSymbol:       "ETH",
		Decimals:           18,
		NativeLogoURL:      ethLogoURL,
		RPCURL:             "https://mainnet.base.org",
		BlockExplorerURL:   "https://basescan.org",
		DEXScreenerChainID: "base",
		ZeroExBaseURL:      "https://base.api.0x.org/swap/v1",
		WrappedNative:      "0x4200000000000000000000000000000000000006",
	}
	Ethereum = entity.NetworkDefinition{
		ChainID:            1,
		Name:               "Ethereum Mainnet",
		Identifier:         "ethereum",
		NativeSymbol:       "ETH",
		Decimals:           18,
		NativeLogoURL:      ethLogoURL,
		RPCURL:             "https://ethereum-rpc.publicnode.com",
		BlockExplorerURL:   "https://etherscan.io",
		DEXScreenerChainID: "ethereum",
		ZeroExBaseURL:      "https://api.0x.org/swap/v1",
		WrappedNative:      "0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2",
	}
	Optimism = entity.NetworkDefinition{
		ChainID:            10,
		Name:               "OP Mainnet",
		Identifier:         "optimism",
		NativeSymbol:       "ETH",
		Decimals:           18,
		NativeLogoURL:      ethLogoURL,
		RPCURL:             "https://mainnet.optimism.io",
		BlockExplorerURL:   "https://optimistic.etherscan.io",
		DEXScreenerChainID: "optimism",
		ZeroExBaseURL:      "https://optimism.api.0x.org/swap/v1",
		WrappedNative:      "0x4200000000000000000000000000000000000006",
	}
	Arbitrum = entity.NetworkDefinition{
		ChainID:            42161,
		Name:               "Arbitrum One",
		Identifier:         "arbitrum",
		NativeSymbol:       "ETH",
		Decimals:           18,
		NativeLogoURL:      ethLogoURL,
		RPCURL:             "https://arb1.arbitrum.io/rpc",
		BlockExplorerURL:   "https://arbiscan.io",
		DEXScreenerChainID: "arbitrum",
		ZeroExBaseURL:      "https://arbitrum.api.0x.org/swap/v1",
		WrappedNative:      "0x82aF49447D8a07e3bd95BD0d56f35241523fBab1",
	}
)

// allKnownDefinitions is a helper to quickly access all hardcoded definitions.
var allKnownDefinitions = map[string]entity.NetworkDefinition{
	Base.Identifier:     Base,
	Ethereum.Identifier: Ethereum,
	Optimism.Identifier: Optimism,
	Arbitrum.Identifier: Arbitrum,
}

// NetworkDefinitionProvider provides the definition of the chain the mini-app runs on.
type NetworkDefinitionProvider struct {
	logger  port.Logger
	current entity.NetworkDefinition
}

var _ port.NetworkDefinitionProvider = (*NetworkDefinitionProvider)(nil)

// NewNetworkDefinitionProvider selects the network named identifier. A non-empty rpcURL
// replaces the public endpoint of that network.
func NewNetworkDefinitionProvider(log port.Logger, identifier, rpcURL string) (*NetworkDefinitionProvider, error) {
	def, ok := lookup(identifier)
	if !ok {
		return nil, fmt.Errorf("unknown network %q", identifier)
	}
	if rpcURL != "" {
		def.RPCURL = rpcURL
	}
	log.Info(fmt.Sprintf("NetworkDefinitionProvider initialized. Active network: %s", def.Name),
		"chain_id", def.ChainID, "dexscreener_id", def.DEXScreenerChainID)
	return &NetworkDefinitionProvider{logger: log, current: def}, nil
}

// Current returns the active network.
func (p *NetworkDefinitionProvider) Current() entity.NetworkDefinition {
	return p.current
}

// GetNetworkDefinitionByName returns a known network by identifier or display name.
func (p *NetworkDefinitionProvider) GetNetworkDefinitionByName(nameOrIdentifier string) (entity.NetworkDefinition, bool) {
	if strings.EqualFold(nameOrIdentifier, p.current.Identifier) || strings.EqualFold(nameOrIdentifier, p.current.Name) {
		return p.current, true
	}
	return lookup(nameOrIdentifier)
}

// GetNetworkDefinitionByChainID returns a known network by chain ID.
func (p *NetworkDefinitionProvider) GetNetworkDefinitionByChainID(chainID uint64) (entity.NetworkDefinition, bool) {
	if p.current.ChainID == chainID {
		return p.current, true
	}
	for _, def := range allKnownDefinitions {
		if def.ChainID == chainID {
			return def, true
		}
	}
	return entity.NetworkDefinition{}, false
}

func lookup(nameOrIdentifier string) (entity.NetworkDefinition, bool) {
	key := strings.ToLower(strings.TrimSpace(nameOrIdentifier))
	if def, ok := allKnownDefinitions[key]; ok {
		return def, true
	}
	for _, def := range allKnownDefinitions {
		if strings.EqualFold(def.Name, key) {
			return def, true
		}
	}
	return entity.NetworkDefinition{}, false
}
