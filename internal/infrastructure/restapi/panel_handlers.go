package restapi

import (
	"net/http"

	"sambv/internal/domain/entity"

	"github.com/gin-gonic/gin"
)

type swapFormRequest struct {
	PayToken     *string `json:"payToken"`
	ReceiveToken *string `json:"receiveToken"`
	Amount       *string `json:"amount"`
	Flip         bool    `json:"flip"`
}

type limitOrderRequest struct {
	LimitPrice string `json:"limitPrice"`
}

type shareRequest struct {
	ID string `json:"id"`
}

type depositRequest struct {
	VaultID string `json:"vaultId"`
	Amount  string `json:"amount"`
}

type launchRequest struct {
	Name   string `json:"name"`
	Ticker string `json:"ticker"`
}

type walletRequest struct {
	Address string `json:"address" binding:"required"`
}

type openURLRequest struct {
	URL string `json:"url" binding:"required"`
}

// bindOptional binds a JSON body when one was sent.
func bindOptional(c *gin.Context, v any) bool {
	if c.Request.ContentLength == 0 {
		return true
	}
	if err := c.ShouldBindJSON(v); err != nil {
		badRequest(c, err)
		return false
	}
	return true
}

// UpdateSwapForm applies token selection, flip and amount changes in that order.
func (h *SessionHandler) UpdateSwapForm(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	var req swapFormRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if req.PayToken != nil {
		if err := s.Swap.SelectPayToken(*req.PayToken); err != nil {
			respondError(c, err)
			return
		}
	}
	if req.ReceiveToken != nil {
		if err := s.Swap.SelectReceiveToken(*req.ReceiveToken); err != nil {
			respondError(c, err)
			return
		}
	}
	if req.Flip {
		s.Swap.Flip()
	}
	if req.Amount != nil {
		s.Swap.SetAmount(*req.Amount)
	}
	c.JSON(http.StatusOK, s.Swap.View())
}

// ExecuteSwap submits the current quote.
func (h *SessionHandler) ExecuteSwap(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	tx, err := s.Swap.Execute()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, tx)
}

// PlaceLimitOrder records a limit order for the current pair.
func (h *SessionHandler) PlaceLimitOrder(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	var req limitOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	order, err := s.Swap.PlaceLimitOrder(req.LimitPrice)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, order)
}

// ShareSwap casts a confirmed swap. The id is a transaction hash; empty means the latest.
func (h *SessionHandler) ShareSwap(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	var req shareRequest
	if !bindOptional(c, &req) {
		return
	}
	if err := s.Swap.Share(c.Request.Context(), req.ID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, s.Progression.State())
}

// ResetSwap returns the swap panel to idle.
func (h *SessionHandler) ResetSwap(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	s.Swap.Reset()
	c.JSON(http.StatusOK, s.Swap.View())
}

// Deposit starts a simulated vault deposit.
func (h *SessionHandler) Deposit(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	var req depositRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := s.Earn.Deposit(req.VaultID, req.Amount); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, s.Earn.View())
}

// ResetEarn returns the earn panel to idle.
func (h *SessionHandler) ResetEarn(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	s.Earn.Reset()
	c.JSON(http.StatusOK, s.Earn.View())
}

// UpdateLaunchForm stores the draft name and ticker.
func (h *SessionHandler) UpdateLaunchForm(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	var req launchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	s.Launch.SetForm(req.Name, req.Ticker)
	c.JSON(http.StatusOK, s.Launch.View())
}

// LaunchToken starts a simulated token deployment.
func (h *SessionHandler) LaunchToken(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	var req launchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := s.Launch.Launch(req.Name, req.Ticker); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, s.Launch.View())
}

// ShareLaunch casts a launched token. An empty id means the latest launch.
func (h *SessionHandler) ShareLaunch(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	var req shareRequest
	if !bindOptional(c, &req) {
		return
	}
	if err := s.Launch.Share(c.Request.Context(), req.ID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, s.Launch.View())
}

// ResetLaunch returns the launch panel to idle.
func (h *SessionHandler) ResetLaunch(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	s.Launch.Reset()
	c.JSON(http.StatusOK, s.Launch.View())
}

// GetPortfolio renders holdings, live when a wallet and chain are available.
func (h *SessionHandler) GetPortfolio(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, s.Portfolio.View(c.Request.Context()))
}

// SignIn requests a quick-auth token from the host.
func (h *SessionHandler) SignIn(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	auth, err := s.Profile.SignIn(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, auth)
}

// SignOut drops the auth token.
func (h *SessionHandler) SignOut(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	s.Profile.SignOut()
	c.JSON(http.StatusOK, s.Profile.View())
}

// ConnectWallet connects a wallet for swaps and the portfolio.
func (h *SessionHandler) ConnectWallet(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	var req walletRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := s.ConnectWallet(req.Address); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, s.Profile.View())
}

// DisconnectWallet clears the connected wallet.
func (h *SessionHandler) DisconnectWallet(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	s.DisconnectWallet()
	c.JSON(http.StatusOK, s.Profile.View())
}

// EnableNotifications asks the host to add the mini-app.
func (h *SessionHandler) EnableNotifications(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	if err := s.Profile.EnableNotifications(c.Request.Context()); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, s.Profile.View())
}

// SetAvatar stores the profile avatar.
func (h *SessionHandler) SetAvatar(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	var req entity.Avatar
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := s.Profile.SetAvatar(req); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, s.Profile.View())
}

// OpenURL asks the host to open an external link.
func (h *SessionHandler) OpenURL(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	var req openURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := s.Profile.OpenURL(c.Request.Context(), req.URL); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// CompleteOnboarding persists the onboarding flag for the device.
func (h *SessionHandler) CompleteOnboarding(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	if err := s.Profile.CompleteOnboarding(c.Request.Context()); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, s.Profile.View())
}
