package service

import (
	"context"
	"sync"
	"time"

	"sambv/internal/app/port"
	"sambv/internal/domain/entity"
	"sambv/internal/pkg/debounce"
	"sambv/internal/pkg/metrics"
	"sambv/internal/pkg/utils"

	"github.com/benbjohnson/clock"
)

// QuoteWatcher keeps the receive-side quote of one swap panel in sync with its input.
// Input changes are debounced; only the result of the latest input is ever applied.
type QuoteWatcher struct {
	quotes    port.QuoteService
	debouncer *debounce.Debouncer
	logger    port.Logger
	onChange  func(entity.QuoteView)

	mu   sync.Mutex
	view entity.QuoteView

	emitMu  sync.Mutex
	emitted uint64
}

// NewQuoteWatcher creates a watcher that waits delay after the last input change
// before asking qs for a quote. onChange, if set, receives new views in Sequence order;
// a view older than one already delivered is dropped.
func NewQuoteWatcher(qs port.QuoteService, clk clock.Clock, delay time.Duration, l port.Logger, onChange func(entity.QuoteView)) *QuoteWatcher {
	if onChange == nil {
		onChange = func(entity.QuoteView) {}
	}
	return &QuoteWatcher{
		quotes:    qs,
		debouncer: debounce.New(clk, delay),
		logger:    l,
		onChange:  onChange,
		view:      entity.QuoteView{ReceiveAmount: "0"},
	}
}

// Update records new input. A missing, zero or malformed amount clears the quote at once;
// anything else schedules a fetch and supersedes every earlier one.
func (w *QuoteWatcher) Update(req entity.QuoteRequest) {
	w.mu.Lock()
	var view entity.QuoteView
	if !utils.IsPositiveAmount(req.SellAmount) {
		seq := w.debouncer.Cancel()
		view = entity.QuoteView{Sequence: seq, ReceiveAmount: "0"}
	} else {
		seq := w.debouncer.Trigger(func(ctx context.Context, seq uint64) {
			w.fetch(ctx, seq, req)
		})
		view = entity.QuoteView{Sequence: seq, Loading: true, ReceiveAmount: "0"}
	}
	w.view = view
	w.mu.Unlock()

	w.emit(view)
}

// Clear drops the current quote and any pending fetch.
func (w *QuoteWatcher) Clear() {
	w.Update(entity.QuoteRequest{})
}

// View returns the current quote state.
func (w *QuoteWatcher) View() entity.QuoteView {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.view
}

// Stop cancels pending work and waits for an in-flight fetch to return.
func (w *QuoteWatcher) Stop() {
	w.debouncer.Stop()
}

func (w *QuoteWatcher) fetch(ctx context.Context, seq uint64, req entity.QuoteRequest) {
	quote, err := w.quotes.FetchQuote(ctx, req)

	w.mu.Lock()
	if !w.debouncer.IsCurrent(seq) {
		w.mu.Unlock()
		metrics.StaleQuotes.Inc()
		w.logger.Debug("Discarding stale quote result", "sequence", seq)
		return
	}
	view := entity.QuoteView{Sequence: seq, ReceiveAmount: "0"}
	if err != nil {
		w.logger.Warn("Quote fetch failed",
			"sell", req.SellToken.Symbol,
			"buy", req.BuyToken.Symbol,
			"amount", req.SellAmount,
			"error", err)
	} else {
		view.Quote = quote
		view.ReceiveAmount = utils.FormatUnitsString(quote.BuyAmount, req.BuyToken.Decimals)
	}
	w.view = view
	w.mu.Unlock()

	w.emit(view)
}

func (w *QuoteWatcher) emit(view entity.QuoteView) {
	w.emitMu.Lock()
	defer w.emitMu.Unlock()
	if view.Sequence < w.emitted {
		return
	}
	w.emitted = view.Sequence
	w.onChange(view)
}
