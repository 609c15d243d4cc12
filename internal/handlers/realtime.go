package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tripboard/internal/ws"
)

// RealtimeHandler issues change-feed credentials.
type RealtimeHandler struct {
	tokens *ws.TokenIssuer
}

// NewRealtimeHandler constructs a RealtimeHandler.
func NewRealtimeHandler(tokens *ws.TokenIssuer) *RealtimeHandler {
	return &RealtimeHandler{tokens: tokens}
}

// Token handles GET /realtime/token. The returned credential opens the
// websocket feed without exposing the session token in a query string.
func (h *RealtimeHandler) Token(c *gin.Context) {
	token := h.tokens.Issue(userIDFromContext(c))
	c.JSON(http.StatusOK, gin.H{"token": token})
}
