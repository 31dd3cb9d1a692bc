package entity

// QuoteRequest is a swap quote request expressed in human-readable units.
type QuoteRequest struct {
	SellToken  SwapToken
	BuyToken   SwapToken
	SellAmount string // major units, e.g. "1.5"
	Taker      string // optional
}

// Quote is the priced execution plan returned by the aggregator.
type Quote struct {
	Price           string `json:"price"`
	GuaranteedPrice string `json:"guaranteedPrice,omitempty"`
	BuyAmount       string `json:"buyAmount"`
	SellAmount      string `json:"sellAmount"`
	EstimatedGas    string `json:"estimatedGas"`
	To              string `json:"to"`
	Data            string `json:"data"`
	Value           string `json:"value"`
	AllowanceTarget string `json:"allowanceTarget,omitempty"`
	BuyTokenAddress string `json:"buyTokenAddress,omitempty"`
}

// QuoteView is what the swap panel renders for the receive side.
type QuoteView struct {
	Sequence      uint64 `json:"sequence"`
	Loading       bool   `json:"loading"`
	Quote         *Quote `json:"quote,omitempty"`
	ReceiveAmount string `json:"receiveAmount"` // major units, "0" without a quote
}
