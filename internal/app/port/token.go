package port

import (
	"context"

	"sambv/internal/domain/entity"
)

// TokenProvider returns the tokens selectable in the swap panel.
type TokenProvider interface {
	GetSwapTokens() []entity.SwapToken
	// FindToken looks a token up by symbol or address (case-insensitive).
	FindToken(symbolOrAddress string) (entity.SwapToken, bool)
}

// LogoService resolves token logo URLs. It never fails; "" means "render a placeholder".
type LogoService interface {
	GetLogo(ctx context.Context, address string) string
}

// TokenSearcher proxies a free-text market search.
type TokenSearcher interface {
	Search(ctx context.Context, query string) []entity.SearchResult
}

// QuoteService fetches swap quotes from the aggregator.
type QuoteService interface {
	FetchQuote(ctx context.Context, req entity.QuoteRequest) (*entity.Quote, error)
}

// PriceService resolves live USD prices. The result is keyed by lowercase address and
// omits tokens without a usable market.
type PriceService interface {
	Prices(ctx context.Context, addresses []string) map[string]entity.TokenPrice
}
