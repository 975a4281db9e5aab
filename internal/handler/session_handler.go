package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/stemsi/quizlive-backend/internal/game"
	"github.com/stemsi/quizlive-backend/internal/response"
)

// SessionHandler serves the REST snapshot of the projected session. A
// reconnecting client renders from it optimistically while the WebSocket
// handshake is still in flight.
type SessionHandler struct {
	engine *game.Engine
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(engine *game.Engine) *SessionHandler {
	return &SessionHandler{engine: engine}
}

// GetSession godoc
// GET /api/v1/session
// Returns the projected session view, or null data when no game is active.
func (h *SessionHandler) GetSession(c *gin.Context) {
	view := h.engine.Snapshot()
	response.Success(c, http.StatusOK, view)
}
