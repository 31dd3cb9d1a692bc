package entity

// DEXTokenPair is the envelope returned by /latest/dex/tokens and /latest/dex/search.
type DEXTokenPair struct {
	SchemaVersion string     `json:"schemaVersion"`
	Pair          *PairData  `json:"pair"`
	Pairs         []PairData `json:"pairs"`
}

// PairData contains detailed information about a trading pair.
type PairData struct {
	ChainID       string          `json:"chainId"`
	DexID         string          `json:"dexId"`
	URL           string          `json:"url"`
	PairAddress   string          `json:"pairAddress"`
	BaseToken     DEXToken        `json:"baseToken"`
	QuoteToken    DEXToken        `json:"quoteToken"`
	PriceNative   string          `json:"priceNative"`
	PriceUsd      string          `json:"priceUsd"`
	Volume        PairVolume      `json:"volume"`
	PriceChange   PairPriceChange `json:"priceChange"`
	Liquidity     *DEXLiquidity   `json:"liquidity"`
	Fdv           float64         `json:"fdv"`
	MarketCap     float64         `json:"marketCap"`
	PairCreatedAt int64           `json:"pairCreatedAt"`
	Info          *PairInfo       `json:"info"`
}

// PairInfo carries the optional presentation metadata of a pair.
type PairInfo struct {
	ImageURL string `json:"imageUrl"`
	Header   string `json:"header"`
}

// DEXToken represents a token in a trading pair.
type DEXToken struct {
	Address string `json:"address"`
	Name    string `json:"name"`
	Symbol  string `json:"symbol"`
	LogoURI string `json:"logoURI"`
}

// DEXLiquidity represents the liquidity information for a pair.
type DEXLiquidity struct {
	Usd   float64 `json:"usd"`
	Base  float64 `json:"base"`
	Quote float64 `json:"quote"`
}

// PairVolume represents trading volume over different periods.
type PairVolume struct {
	H1  float64 `json:"h1"`
	H24 float64 `json:"h24"`
}

// PairPriceChange represents price change percentage over different periods.
type PairPriceChange struct {
	H1  float64 `json:"h1"`
	H24 float64 `json:"h24"`
}

// LogoURL returns the first available image for the pair in priority order:
// pair info image, base token logo, quote token logo.
func (p PairData) LogoURL() string {
	if p.Info != nil && p.Info.ImageURL != "" {
		return p.Info.ImageURL
	}
	if p.BaseToken.LogoURI != "" {
		return p.BaseToken.LogoURI
	}
	return p.QuoteToken.LogoURI
}

// ZeroExQuote is the subset of the 0x /swap/v1/quote response the mini-app reads.
type ZeroExQuote struct {
	ChainID         int    `json:"chainId"`
	Price           string `json:"price"`
	GuaranteedPrice string `json:"guaranteedPrice"`
	To              string `json:"to"`
	Data            string `json:"data"`
	Value           string `json:"value"`
	Gas             string `json:"gas"`
	EstimatedGas    string `json:"estimatedGas"`
	BuyTokenAddress string `json:"buyTokenAddress"`
	BuyAmount       string `json:"buyAmount"`
	SellAmount      string `json:"sellAmount"`
	AllowanceTarget string `json:"allowanceTarget"`
}

// ZeroExError is the error body returned by 0x on non-2xx responses.
type ZeroExError struct {
	Code             int    `json:"code"`
	Reason           string `json:"reason"`
	ValidationErrors []struct {
		Field  string `json:"field"`
		Code   int    `json:"code"`
		Reason string `json:"reason"`
	} `json:"validationErrors"`
}
