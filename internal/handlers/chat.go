package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tripboard/internal/models"
	"tripboard/internal/repositories"
	"tripboard/internal/state"
	"tripboard/internal/telemetry"
	"tripboard/internal/ws"
)

// ChatHandler manages group-chat endpoints.
type ChatHandler struct {
	messageRepo repositories.MessageRepository
	groupRepo   repositories.GroupRepository
	hub         *ws.Hub
	audit       *telemetry.AuditEmitter
}

// NewChatHandler constructs a ChatHandler.
func NewChatHandler(messageRepo repositories.MessageRepository, groupRepo repositories.GroupRepository, hub *ws.Hub, audit *telemetry.AuditEmitter) *ChatHandler {
	return &ChatHandler{messageRepo: messageRepo, groupRepo: groupRepo, hub: hub, audit: audit}
}

func (h *ChatHandler) requireMember(c *gin.Context, groupID string) bool {
	member, err := h.groupRepo.IsMember(c.Request.Context(), groupID, userIDFromContext(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "membership check failed"})
		return false
	}
	if !member {
		c.JSON(http.StatusForbidden, gin.H{"error": "not a member"})
		return false
	}
	return true
}

// ListMessages handles GET /groups/:group_id/messages. Pages walk backward
// through history; each page reads chronologically. The next cursor points
// at the oldest message of the page.
func (h *ChatHandler) ListMessages(c *gin.Context) {
	groupID := c.Param("group_id")
	if !h.requireMember(c, groupID) {
		return
	}

	cursor, _ := state.DecodeCursor(c.Query("cursor"))
	messages, hasMore, err := h.messageRepo.ListMessages(c.Request.Context(), groupID, cursor, parseLimit(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load messages"})
		return
	}

	page := models.MessagePage{Items: messages, HasMore: hasMore}
	if page.Items == nil {
		page.Items = []models.ChatMessage{}
	}
	if hasMore && len(messages) > 0 {
		page.NextCursor = state.CursorFor(messages[0])
	}
	c.JSON(http.StatusOK, page)
}

// PostMessage handles POST /groups/:group_id/messages. The published INSERT
// event carries the full row so subscribed clients append it directly.
func (h *ChatHandler) PostMessage(c *gin.Context) {
	groupID := c.Param("group_id")
	if !h.requireMember(c, groupID) {
		return
	}

	var req struct {
		Content string `json:"content" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	msg, err := h.messageRepo.CreateMessage(c.Request.Context(), groupID, userIDFromContext(c), req.Content)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not send message"})
		return
	}

	h.audit.Emit(c.Request.Context(), "message_sent", "chat", msg.ID, requestIDFromContext(c), userIDPtr(c))
	publishChange(h.hub, models.TableChatMessages, groupID, models.EventInsert, msg, nil)
	c.JSON(http.StatusCreated, msg)
}
