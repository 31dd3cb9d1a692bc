package restapi

import (
	"fmt"
	"net/http"
	"strings"

	"sambv/internal/app/port"
	"sambv/internal/app/service"
	"sambv/internal/domain/entity"
	"sambv/internal/pkg/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// QuoteResponse wraps an aggregator quote with the receive amount in major units.
type QuoteResponse struct {
	Quote         *entity.Quote `json:"quote"`
	ReceiveAmount string        `json:"receiveAmount"`
}

type quoteRequest struct {
	SellToken  string `json:"sellToken" binding:"required"`
	BuyToken   string `json:"buyToken" binding:"required"`
	SellAmount string `json:"sellAmount" binding:"required"`
	Taker      string `json:"taker"`
}

// MarketHandler serves the stateless market endpoints: tokens, logos, search and quotes.
type MarketHandler struct {
	tokens  port.TokenProvider
	logos   port.LogoService
	search  port.TokenSearcher
	quotes  port.QuoteService
	network port.NetworkDefinitionProvider
	logger  *zap.Logger
}

// NewMarketHandler creates a new MarketHandler.
func NewMarketHandler(
	tokens port.TokenProvider,
	logos port.LogoService,
	search port.TokenSearcher,
	quotes port.QuoteService,
	network port.NetworkDefinitionProvider,
	logger *zap.Logger,
) *MarketHandler {
	return &MarketHandler{
		tokens:  tokens,
		logos:   logos,
		search:  search,
		quotes:  quotes,
		network: network,
		logger:  logger,
	}
}

// GetTokens lists the selectable swap tokens.
func (h *MarketHandler) GetTokens(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"tokens": h.tokens.GetSwapTokens()})
}

// GetLogo resolves a token logo. An empty url means the client renders a placeholder.
func (h *MarketHandler) GetLogo(c *gin.Context) {
	address := c.Param("address")
	c.JSON(http.StatusOK, gin.H{"address": address, "logo": h.logos.GetLogo(c.Request.Context(), address)})
}

// Search proxies a free-text market search.
func (h *MarketHandler) Search(c *gin.Context) {
	q := strings.TrimSpace(c.Query("q"))
	if q == "" {
		c.JSON(http.StatusOK, gin.H{"results": []entity.SearchResult{}})
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": h.search.Search(c.Request.Context(), q)})
}

// GetQuote fetches a one-off quote outside any session.
func (h *MarketHandler) GetQuote(c *gin.Context) {
	var req quoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	sell, ok := h.tokens.FindToken(req.SellToken)
	if !ok {
		respondError(c, fmt.Errorf("%w: %s", service.ErrUnknownToken, req.SellToken))
		return
	}
	buy, ok := h.tokens.FindToken(req.BuyToken)
	if !ok {
		respondError(c, fmt.Errorf("%w: %s", service.ErrUnknownToken, req.BuyToken))
		return
	}
	if req.Taker != "" && !utils.IsEVMAddress(req.Taker) {
		respondError(c, fmt.Errorf("%w: %s", service.ErrInvalidAddress, req.Taker))
		return
	}

	quote, err := h.quotes.FetchQuote(c.Request.Context(), entity.QuoteRequest{
		SellToken:  sell,
		BuyToken:   buy,
		SellAmount: req.SellAmount,
		Taker:      req.Taker,
	})
	if err != nil {
		h.logger.Warn("Quote request failed", zap.String("sell", sell.Symbol), zap.String("buy", buy.Symbol), zap.Error(err))
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, QuoteResponse{
		Quote:         quote,
		ReceiveAmount: utils.FormatUnitsString(quote.BuyAmount, buy.Decimals),
	})
}

// GetNetwork describes the chain the mini-app runs on.
func (h *MarketHandler) GetNetwork(c *gin.Context) {
	c.JSON(http.StatusOK, h.network.Current())
}
