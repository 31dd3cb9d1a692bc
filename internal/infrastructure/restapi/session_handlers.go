package restapi

import (
	"net/http"

	"sambv/internal/app/service"
	"sambv/internal/domain/entity"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SessionResponse is the snapshot returned when a session is created or fetched.
type SessionResponse struct {
	SessionID   string                  `json:"sessionId"`
	DeviceID    string                  `json:"deviceId"`
	CreatedAt   int64                   `json:"createdAt"`
	ActiveTab   entity.Tab              `json:"activeTab"`
	Progression entity.ProgressionState `json:"progression"`
	Toast       *entity.Toast           `json:"toast,omitempty"`
	Profile     entity.ProfileView      `json:"profile"`
}

// TabResponse carries one rendered tab.
type TabResponse struct {
	Tab  entity.Tab `json:"tab"`
	View any        `json:"view"`
}

type createSessionRequest struct {
	DeviceID string `json:"deviceId"`
}

type awardRequest struct {
	XP     uint64 `json:"xp" binding:"required,gt=0,lte=1000000"`
	Action string `json:"action" binding:"required"`
}

type selectTabRequest struct {
	Tab string `json:"tab" binding:"required"`
}

// SessionHandler serves session lifecycle, progression and tab routing.
type SessionHandler struct {
	sessions *service.SessionManager
	logger   *zap.Logger
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(sessions *service.SessionManager, logger *zap.Logger) *SessionHandler {
	return &SessionHandler{sessions: sessions, logger: logger}
}

func (h *SessionHandler) session(c *gin.Context) (*service.Session, bool) {
	s, err := h.sessions.Get(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	return s, true
}

func snapshot(s *service.Session) SessionResponse {
	return SessionResponse{
		SessionID:   s.ID,
		DeviceID:    s.DeviceID,
		CreatedAt:   s.CreatedAt.UnixMilli(),
		ActiveTab:   s.Router.Active(),
		Progression: s.Progression.State(),
		Toast:       s.Toasts.Current(),
		Profile:     s.Profile.View(),
	}
}

// CreateSession starts a new mini-app session. The body is optional.
func (h *SessionHandler) CreateSession(c *gin.Context) {
	var req createSessionRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
	}
	if req.DeviceID == "" {
		req.DeviceID = c.GetHeader("X-Device-ID")
	}
	s := h.sessions.Create(c.Request.Context(), req.DeviceID)
	c.JSON(http.StatusCreated, snapshot(s))
}

// GetSession returns the session snapshot.
func (h *SessionHandler) GetSession(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, snapshot(s))
}

// DeleteSession closes the session and cancels its pending work.
func (h *SessionHandler) DeleteSession(c *gin.Context) {
	if err := h.sessions.Close(c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GetProgression returns the XP state.
func (h *SessionHandler) GetProgression(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, s.Progression.State())
}

// AwardXP reports a completed action on behalf of the client.
func (h *SessionHandler) AwardXP(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	var req awardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	c.JSON(http.StatusOK, s.Progression.Award(req.XP, req.Action))
}

// GetToast returns the visible toast or 204.
func (h *SessionHandler) GetToast(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	t := s.Toasts.Current()
	if t == nil {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusOK, t)
}

// DismissToast hides the toast named by ?id=, or whatever is visible.
func (h *SessionHandler) DismissToast(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"dismissed": s.Toasts.Dismiss(c.Query("id"))})
}

// SelectTab switches the active tab. Unknown names fall back to swap.
func (h *SessionHandler) SelectTab(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	var req selectTabRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	tab := s.Router.Select(req.Tab)
	_, view := s.Router.Render(c.Request.Context(), string(tab))
	c.JSON(http.StatusOK, TabResponse{Tab: tab, View: view})
}

// RenderTab renders the named tab without switching to it. "active" renders the active tab.
func (h *SessionHandler) RenderTab(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	name := c.Param("tab")
	if name == "active" {
		name = ""
	}
	tab, view := s.Router.Render(c.Request.Context(), name)
	c.JSON(http.StatusOK, TabResponse{Tab: tab, View: view})
}

// GetLeaderboard ranks the session user among the seed rows.
func (h *SessionHandler) GetLeaderboard(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": s.Leaderboard()})
}
