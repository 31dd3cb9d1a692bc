package entity

import "strings"

// Tab enumerates the panels reachable from the navigation bar.
type Tab string

const (
	TabSwap      Tab = "swap"
	TabEarn      Tab = "earn"
	TabLaunch    Tab = "launch"
	TabPortfolio Tab = "portfolio"
	TabProfile   Tab = "profile"
)

// Tabs lists every tab in navigation order.
var Tabs = []Tab{TabSwap, TabEarn, TabLaunch, TabPortfolio, TabProfile}

// ParseTab maps a name to a Tab. Unknown names fall back to the swap tab.
func ParseTab(name string) (Tab, bool) {
	t := Tab(strings.ToLower(strings.TrimSpace(name)))
	for _, known := range Tabs {
		if t == known {
			return t, true
		}
	}
	return TabSwap, false
}

// PanelStatus is the lifecycle of a panel action.
type PanelStatus string

const (
	PanelIdle       PanelStatus = "idle"
	PanelProcessing PanelStatus = "processing"
	PanelSuccess    PanelStatus = "success"
)

// TxStatus is the simulated confirmation state of a transaction.
type TxStatus string

const (
	TxPending   TxStatus = "pending"
	TxConfirmed TxStatus = "confirmed"
)

// TxItem is a transaction tracked by the swap panel.
type TxItem struct {
	Hash      string   `json:"hash"`
	Title     string   `json:"title"`
	Status    TxStatus `json:"status"`
	Timestamp int64    `json:"timestamp"`
}

// LimitOrder is a simulated resting order.
type LimitOrder struct {
	ID         string `json:"id"`
	SellSymbol string `json:"sellSymbol"`
	BuySymbol  string `json:"buySymbol"`
	Amount     string `json:"amount"`
	LimitPrice string `json:"limitPrice"`
	CreatedAt  int64  `json:"createdAt"`
}

// SwapView is the rendered state of the swap panel.
type SwapView struct {
	Status       PanelStatus  `json:"status"`
	PayToken     SwapToken    `json:"payToken"`
	ReceiveToken SwapToken    `json:"receiveToken"`
	PayAmount    string       `json:"payAmount"`
	Taker        string       `json:"taker,omitempty"`
	Quote        QuoteView    `json:"quote"`
	Transactions []TxItem     `json:"transactions"`
	LimitOrders  []LimitOrder `json:"limitOrders"`
}

// Vault is a yield vault offered by the earn panel.
type Vault struct {
	ID           string  `json:"id" yaml:"id"`
	Name         string  `json:"name" yaml:"name"`
	APY          float64 `json:"apy" yaml:"apy"`
	TVL          string  `json:"tvl" yaml:"tvl"`
	Utilization  float64 `json:"utilization" yaml:"utilization"`
	UserPosition float64 `json:"userPosition" yaml:"userPosition"`
}

// EarnView is the rendered state of the earn panel.
type EarnView struct {
	Status  PanelStatus `json:"status"`
	Pending string      `json:"pendingVaultId,omitempty"`
	Vaults  []Vault     `json:"vaults"`
}

// LaunchedToken is a token deployed through the launch panel.
type LaunchedToken struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Ticker     string `json:"ticker"`
	DeployedAt int64  `json:"deployedAt"`
	Shared     bool   `json:"shared"`
}

// LaunchView is the rendered state of the launch panel.
type LaunchView struct {
	Status   PanelStatus     `json:"status"`
	Name     string          `json:"name"`
	Ticker   string          `json:"ticker"`
	Launched []LaunchedToken `json:"launched"`
}

// Holding is a single token position in the portfolio.
type Holding struct {
	Symbol    string  `json:"symbol" yaml:"symbol"`
	Name      string  `json:"name" yaml:"name"`
	Address   string  `json:"address,omitempty" yaml:"address,omitempty"`
	Decimals  uint8   `json:"decimals,omitempty" yaml:"decimals,omitempty"`
	Balance   float64 `json:"balance" yaml:"balance"`
	Price     float64 `json:"price" yaml:"price"`
	Change24h float64 `json:"change24h" yaml:"change24h"`
	Icon      string  `json:"icon" yaml:"icon"`
	ValueUSD  float64 `json:"valueUSD"`
	Share     float64 `json:"share"` // percentage of total value
}

// HoldingError reports a holding whose live balance could not be read.
type HoldingError struct {
	Symbol  string `json:"symbol"`
	Address string `json:"address,omitempty"`
	Message string `json:"message"`
}

// PortfolioView is the rendered state of the portfolio panel.
type PortfolioView struct {
	Wallet        string         `json:"wallet,omitempty"`
	Live          bool           `json:"live"`
	LivePrices    int            `json:"livePrices"` // holdings priced from the market
	Holdings      []Holding      `json:"holdings"`
	TotalValueUSD float64        `json:"totalValueUSD"`
	Errors        []HoldingError `json:"errors,omitempty"`
}

// NotificationStatus tracks notification registration in the profile panel.
type NotificationStatus string

const (
	NotificationsIdle    NotificationStatus = "idle"
	NotificationsPending NotificationStatus = "pending"
	NotificationsEnabled NotificationStatus = "enabled"
	NotificationsErrored NotificationStatus = "error"
)

// ProfileView is the rendered state of the profile panel.
type ProfileView struct {
	User               *HostUser          `json:"user,omitempty"`
	Auth               AuthState          `json:"auth"`
	Wallet             string             `json:"wallet,omitempty"`
	Avatar             *Avatar            `json:"avatar,omitempty"`
	Progression        ProgressionState   `json:"progression"`
	Notifications      NotificationStatus `json:"notifications"`
	NotificationToken  string             `json:"notificationToken,omitempty"`
	OnboardingComplete bool               `json:"onboardingComplete"`
	Framed             bool               `json:"framed"`
}
