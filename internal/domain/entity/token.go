package entity

// NativeTokenAddress is the sentinel address used for the chain's native currency.
const NativeTokenAddress = "native"

// SwapToken describes a token that can be selected in the swap panel.
type SwapToken struct {
	ChainID  uint64   `json:"chainId" yaml:"chainId"`
	Address  string   `json:"address" yaml:"address"`
	Name     string   `json:"name" yaml:"name"`
	Symbol   string   `json:"symbol" yaml:"symbol"`
	Decimals uint8    `json:"decimals" yaml:"decimals"`
	Logo     string   `json:"logo" yaml:"logo"`
	Tags     []string `json:"tags,omitempty" yaml:"tags,omitempty"`
}

// IsNative reports whether the token is the chain's native currency.
func (t SwapToken) IsNative() bool {
	return t.Address == NativeTokenAddress
}

// HasTag reports whether the token carries the given tag (e.g. "hot", "verified").
func (t SwapToken) HasTag(tag string) bool {
	for _, x := range t.Tags {
		if x == tag {
			return true
		}
	}
	return false
}

// TokenPrice is a live market price for one token.
type TokenPrice struct {
	USD       float64 `json:"usd"`
	Change24h float64 `json:"change24h"`
	PairURL   string  `json:"pairUrl,omitempty"`
}

// SearchResult is a trimmed market search hit.
type SearchResult struct {
	ChainID     string `json:"chainId"`
	DexID       string `json:"dexId"`
	PairAddress string `json:"pairAddress"`
	BaseAddress string `json:"baseAddress"`
	BaseSymbol  string `json:"baseSymbol"`
	BaseName    string `json:"baseName"`
	QuoteSymbol string `json:"quoteSymbol"`
	PriceUSD    string `json:"priceUsd"`
	LogoURL     string `json:"logoUrl,omitempty"`
	URL         string `json:"url"`
}
