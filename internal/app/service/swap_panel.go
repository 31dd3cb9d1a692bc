package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"sambv/internal/app/port"
	"sambv/internal/domain/entity"
	"sambv/internal/pkg/schedule"
	"sambv/internal/pkg/utils"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/google/uuid"
	"github.com/samber/lo"
)

const maxTrackedTransactions = 20

// SwapPanel is the swap tab: token selection, amount entry, quote display and simulated execution.
type SwapPanel struct {
	tokens       port.TokenProvider
	watcher      *QuoteWatcher
	awarder      port.XPAwarder
	host         port.HostFrame
	sched        *schedule.Scheduler
	events       sessionEvents
	explorerURL  string
	confirmDelay time.Duration
	limitDelay   time.Duration
	logger       port.Logger

	mu      sync.Mutex
	status  entity.PanelStatus
	pay     entity.SwapToken
	receive entity.SwapToken
	amount  string
	taker   string
	txs     []entity.TxItem
	orders  []entity.LimitOrder
	shared  map[string]bool
}

// SwapPanelConfig carries the simulated latencies and the block explorer used in share links.
type SwapPanelConfig struct {
	ConfirmDelay     time.Duration
	LimitOrderDelay  time.Duration
	BlockExplorerURL string
}

// NewSwapPanel creates a swap panel that starts with the first two swap tokens selected.
func NewSwapPanel(
	tokens port.TokenProvider,
	watcher *QuoteWatcher,
	awarder port.XPAwarder,
	host port.HostFrame,
	sched *schedule.Scheduler,
	events sessionEvents,
	cfg SwapPanelConfig,
	l port.Logger,
) *SwapPanel {
	p := &SwapPanel{
		tokens:       tokens,
		watcher:      watcher,
		awarder:      awarder,
		host:         host,
		sched:        sched,
		events:       events,
		explorerURL:  strings.TrimRight(cfg.BlockExplorerURL, "/"),
		confirmDelay: cfg.ConfirmDelay,
		limitDelay:   cfg.LimitOrderDelay,
		logger:       l,
		status:       entity.PanelIdle,
		txs:          []entity.TxItem{},
		orders:       []entity.LimitOrder{},
		shared:       make(map[string]bool),
	}
	list := tokens.GetSwapTokens()
	if len(list) > 0 {
		p.pay = list[0]
	}
	if len(list) > 1 {
		p.receive = list[1]
	}
	return p
}

// SelectPayToken selects the token to sell. Picking the current receive token flips the pair.
func (p *SwapPanel) SelectPayToken(symbolOrAddress string) error {
	t, ok := p.tokens.FindToken(symbolOrAddress)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownToken, symbolOrAddress)
	}
	p.mu.Lock()
	if t.Address == p.receive.Address {
		p.receive = p.pay
	}
	p.pay = t
	p.requoteLocked()
	p.mu.Unlock()
	p.notify()
	return nil
}

// SelectReceiveToken selects the token to buy. Picking the current pay token flips the pair.
func (p *SwapPanel) SelectReceiveToken(symbolOrAddress string) error {
	t, ok := p.tokens.FindToken(symbolOrAddress)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownToken, symbolOrAddress)
	}
	p.mu.Lock()
	if t.Address == p.pay.Address {
		p.pay = p.receive
	}
	p.receive = t
	p.requoteLocked()
	p.mu.Unlock()
	p.notify()
	return nil
}

// Flip swaps the pay and receive tokens.
func (p *SwapPanel) Flip() {
	p.mu.Lock()
	p.pay, p.receive = p.receive, p.pay
	p.requoteLocked()
	p.mu.Unlock()
	p.notify()
}

// SetAmount sets the pay amount in major units. Any string is accepted.
func (p *SwapPanel) SetAmount(amount string) {
	p.mu.Lock()
	p.amount = strings.TrimSpace(amount)
	p.requoteLocked()
	p.mu.Unlock()
	p.notify()
}

// SetTaker sets the wallet quotes are requested for. An empty address clears it.
func (p *SwapPanel) SetTaker(address string) error {
	address = strings.TrimSpace(address)
	if address != "" && !utils.IsEVMAddress(address) {
		return fmt.Errorf("%w: %s", ErrInvalidAddress, address)
	}
	p.mu.Lock()
	p.taker = address
	p.requoteLocked()
	p.mu.Unlock()
	p.notify()
	return nil
}

// Execute submits the current quote as a simulated transaction. The transaction is
// confirmed after the configured delay, which also awards the swap XP.
func (p *SwapPanel) Execute() (entity.TxItem, error) {
	p.mu.Lock()
	if p.status == entity.PanelProcessing {
		p.mu.Unlock()
		return entity.TxItem{}, ErrPanelBusy
	}
	view := p.watcher.View()
	if view.Quote == nil || view.Loading {
		p.mu.Unlock()
		return entity.TxItem{}, ErrNoQuote
	}
	if p.taker == "" {
		p.mu.Unlock()
		return entity.TxItem{}, ErrNoWallet
	}

	now := p.sched.Clock().Now()
	tx := entity.TxItem{
		Hash:      simulatedTxHash(view.Quote, p.taker, now),
		Title:     fmt.Sprintf("Swap %s to %s", p.pay.Symbol, p.receive.Symbol),
		Status:    entity.TxPending,
		Timestamp: now.UnixMilli(),
	}
	p.txs = append([]entity.TxItem{tx}, p.txs...)
	if len(p.txs) > maxTrackedTransactions {
		p.txs = p.txs[:maxTrackedTransactions]
	}
	prev := p.status
	p.status = entity.PanelProcessing
	action := fmt.Sprintf("Swapped %s → %s", p.pay.Symbol, p.receive.Symbol)
	p.mu.Unlock()

	if !p.sched.After(p.confirmDelay, func() { p.confirm(tx.Hash, action) }) {
		p.mu.Lock()
		p.txs = lo.Reject(p.txs, func(t entity.TxItem, _ int) bool { return t.Hash == tx.Hash })
		p.status = prev
		p.mu.Unlock()
		return entity.TxItem{}, ErrSessionClosed
	}
	p.notify()
	return tx, nil
}

func (p *SwapPanel) confirm(hash, action string) {
	p.mu.Lock()
	for i := range p.txs {
		if p.txs[i].Hash == hash {
			p.txs[i].Status = entity.TxConfirmed
		}
	}
	p.status = entity.PanelSuccess
	p.mu.Unlock()

	p.awarder.Award(uint64(entity.RewardSwap), action)
	p.notify()
}

// PlaceLimitOrder records a simulated limit order for the current pair and amount.
func (p *SwapPanel) PlaceLimitOrder(limitPrice string) (entity.LimitOrder, error) {
	limitPrice = strings.TrimSpace(limitPrice)

	p.mu.Lock()
	if p.status == entity.PanelProcessing {
		p.mu.Unlock()
		return entity.LimitOrder{}, ErrPanelBusy
	}
	if p.amount == "" || limitPrice == "" {
		p.mu.Unlock()
		return entity.LimitOrder{}, fmt.Errorf("%w: amount and limit price", ErrMissingInput)
	}
	order := entity.LimitOrder{
		ID:         uuid.NewString(),
		SellSymbol: p.pay.Symbol,
		BuySymbol:  p.receive.Symbol,
		Amount:     p.amount,
		LimitPrice: limitPrice,
		CreatedAt:  p.sched.Clock().Now().UnixMilli(),
	}
	prev := p.status
	p.status = entity.PanelProcessing
	p.mu.Unlock()

	scheduled := p.sched.After(p.limitDelay, func() {
		p.mu.Lock()
		p.orders = append([]entity.LimitOrder{order}, p.orders...)
		p.status = entity.PanelSuccess
		p.mu.Unlock()

		p.awarder.Award(uint64(entity.RewardLimitOrder),
			fmt.Sprintf("Limit order: %s → %s @ %s", order.SellSymbol, order.BuySymbol, order.LimitPrice))
		p.notify()
	})
	if !scheduled {
		p.mu.Lock()
		p.status = prev
		p.mu.Unlock()
		return entity.LimitOrder{}, ErrSessionClosed
	}
	p.notify()
	return order, nil
}

// Share composes a cast about a confirmed swap. An empty hash shares the latest one.
// Each transaction earns the share reward once.
func (p *SwapPanel) Share(ctx context.Context, hash string) error {
	p.mu.Lock()
	var tx *entity.TxItem
	for i := range p.txs {
		if p.txs[i].Status == entity.TxConfirmed && (hash == "" || p.txs[i].Hash == hash) {
			tx = &p.txs[i]
			break
		}
	}
	if tx == nil {
		p.mu.Unlock()
		return ErrNothingToShare
	}
	if p.shared[tx.Hash] {
		p.mu.Unlock()
		return ErrAlreadyShared
	}
	title, txHash := tx.Title, tx.Hash
	p.mu.Unlock()

	var embeds []string
	if p.explorerURL != "" {
		embeds = []string{p.explorerURL + "/tx/" + txHash}
	}
	if err := p.host.ComposeCast(ctx, fmt.Sprintf("Just did a %s on SAMBV", title), embeds); err != nil {
		p.logger.Warn("Compose cast failed", "tx", txHash, "error", err)
		return fmt.Errorf("share swap: %w", err)
	}

	p.mu.Lock()
	if p.shared[txHash] {
		p.mu.Unlock()
		return ErrAlreadyShared
	}
	p.shared[txHash] = true
	p.mu.Unlock()

	p.awarder.Award(uint64(entity.RewardShareSwap), "Shared swap")
	return nil
}

// Reset returns the panel to idle.
func (p *SwapPanel) Reset() {
	p.mu.Lock()
	p.status = entity.PanelIdle
	p.mu.Unlock()
	p.notify()
}

// View renders the panel.
func (p *SwapPanel) View() entity.SwapView {
	p.mu.Lock()
	defer p.mu.Unlock()
	txs := make([]entity.TxItem, len(p.txs))
	copy(txs, p.txs)
	orders := make([]entity.LimitOrder, len(p.orders))
	copy(orders, p.orders)
	return entity.SwapView{
		Status:       p.status,
		PayToken:     p.pay,
		ReceiveToken: p.receive,
		PayAmount:    p.amount,
		Taker:        p.taker,
		Quote:        p.watcher.View(),
		Transactions: txs,
		LimitOrders:  orders,
	}
}

// requoteLocked must be called with p.mu held.
func (p *SwapPanel) requoteLocked() {
	p.watcher.Update(entity.QuoteRequest{
		SellToken:  p.pay,
		BuyToken:   p.receive,
		SellAmount: p.amount,
		Taker:      p.taker,
	})
}

func (p *SwapPanel) notify() {
	p.events.publish(entity.EventPanelUpdated, panelUpdate{Tab: entity.TabSwap, View: p.View()})
}

// simulatedTxHash derives a pseudo transaction hash for a submitted quote.
func simulatedTxHash(q *entity.Quote, taker string, at time.Time) string {
	nonce := uuid.New()
	return crypto.Keccak256Hash(
		nonce[:],
		[]byte(taker),
		[]byte(q.To),
		[]byte(q.Data),
		[]byte(q.Value),
		[]byte(at.Format(time.RFC3339Nano)),
	).Hex()
}
