package entity

// NetworkDefinition holds what the mini-app needs to know about the chain it runs on.
type NetworkDefinition struct {
	ChainID            uint64 `json:"chainId" yaml:"chainId"`
	Name               string `json:"name" yaml:"name"`
	Identifier         string `json:"identifier" yaml:"identifier"` // e.g. "base"
	NativeSymbol       string `json:"nativeSymbol" yaml:"nativeSymbol"`
	Decimals           uint8  `json:"decimals" yaml:"decimals"`
	NativeLogoURL      string `json:"nativeLogoUrl" yaml:"nativeLogoUrl"`
	RPCURL             string `json:"rpcUrl,omitempty" yaml:"rpcUrl,omitempty"`
	BlockExplorerURL   string `json:"blockExplorerUrl,omitempty" yaml:"blockExplorerUrl,omitempty"`
	DEXScreenerChainID string `json:"dexScreenerChainId" yaml:"dexScreenerChainId"`
	ZeroExBaseURL      string `json:"zeroExBaseUrl" yaml:"zeroExBaseUrl"`
	WrappedNative      string `json:"wrappedNative,omitempty" yaml:"wrappedNative,omitempty"` // priced in place of the native currency
}
