package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"tripboard/internal/models"
	"tripboard/internal/repositories"
	"tripboard/internal/telemetry"
	"tripboard/internal/ws"
)

// FriendHandler manages friendship and invite endpoints.
type FriendHandler struct {
	friendRepo repositories.FriendRepository
	hub        *ws.Hub
	audit      *telemetry.AuditEmitter
}

// NewFriendHandler constructs a FriendHandler.
func NewFriendHandler(friendRepo repositories.FriendRepository, hub *ws.Hub, audit *telemetry.AuditEmitter) *FriendHandler {
	return &FriendHandler{friendRepo: friendRepo, hub: hub, audit: audit}
}

func (h *FriendHandler) emitAudit(c *gin.Context, action, resourceID string) {
	h.audit.Emit(c.Request.Context(), action, "friends", resourceID, requestIDFromContext(c), userIDPtr(c))
}

// notifyBoth pushes a friends-table event into both affected users' feeds.
func (h *FriendHandler) notifyBoth(eventType string, userA, userB string, row any) {
	publishChange(h.hub, models.TableFriends, userA, eventType, row, nil)
	publishChange(h.hub, models.TableFriends, userB, eventType, row, nil)
}

// ListFriends handles GET /friends.
func (h *FriendHandler) ListFriends(c *gin.Context) {
	friends, err := h.friendRepo.ListFriends(c.Request.Context(), userIDFromContext(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load friends"})
		return
	}
	if friends == nil {
		friends = []models.Friend{}
	}
	c.JSON(http.StatusOK, friends)
}

// ListIncoming handles GET /friends/invites/incoming.
func (h *FriendHandler) ListIncoming(c *gin.Context) {
	invites, err := h.friendRepo.ListIncoming(c.Request.Context(), userIDFromContext(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load invites"})
		return
	}
	if invites == nil {
		invites = []models.FriendInvite{}
	}
	c.JSON(http.StatusOK, invites)
}

// ListOutgoing handles GET /friends/invites/outgoing.
func (h *FriendHandler) ListOutgoing(c *gin.Context) {
	invites, err := h.friendRepo.ListOutgoing(c.Request.Context(), userIDFromContext(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load invites"})
		return
	}
	if invites == nil {
		invites = []models.FriendInvite{}
	}
	c.JSON(http.StatusOK, invites)
}

// SendInvite handles POST /friends/invites.
func (h *FriendHandler) SendInvite(c *gin.Context) {
	userID := userIDFromContext(c)

	var req struct {
		InviteeID string `json:"invitee_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.InviteeID == userID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot invite yourself"})
		return
	}

	invite, err := h.friendRepo.CreateInvite(c.Request.Context(), userID, req.InviteeID)
	switch {
	case errors.Is(err, repositories.ErrInviteExists):
		c.JSON(http.StatusConflict, gin.H{"error": "invite already exists"})
		return
	case errors.Is(err, repositories.ErrAlreadyFriends):
		c.JSON(http.StatusConflict, gin.H{"error": "already friends"})
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create invite"})
		return
	}

	h.emitAudit(c, "invite_sent", invite.ID)
	h.notifyBoth(models.EventInsert, invite.InviterID, invite.InviteeID, invite)
	c.JSON(http.StatusCreated, invite)
}

// AcceptInvite handles POST /friends/invites/:invite_id/accept.
func (h *FriendHandler) AcceptInvite(c *gin.Context) {
	userID := userIDFromContext(c)
	inviteID := c.Param("invite_id")

	invite, err := h.friendRepo.GetInvite(c.Request.Context(), inviteID)
	if errors.Is(err, repositories.ErrInviteNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "invite not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load invite"})
		return
	}
	if invite.InviteeID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "not your invite"})
		return
	}

	if err := h.friendRepo.AcceptInvite(c.Request.Context(), inviteID); err != nil {
		if errors.Is(err, repositories.ErrInviteNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "invite not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not accept invite"})
		return
	}

	h.emitAudit(c, "invite_accepted", inviteID)
	h.notifyBoth(models.EventUpdate, invite.InviterID, invite.InviteeID, invite)
	c.Status(http.StatusNoContent)
}

// RejectInvite handles POST /friends/invites/:invite_id/reject.
func (h *FriendHandler) RejectInvite(c *gin.Context) {
	userID := userIDFromContext(c)
	inviteID := c.Param("invite_id")

	invite, err := h.friendRepo.GetInvite(c.Request.Context(), inviteID)
	if errors.Is(err, repositories.ErrInviteNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "invite not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load invite"})
		return
	}
	if invite.InviteeID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "not your invite"})
		return
	}

	if err := h.friendRepo.RejectInvite(c.Request.Context(), inviteID); err != nil {
		if errors.Is(err, repositories.ErrInviteNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "invite not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not reject invite"})
		return
	}

	h.emitAudit(c, "invite_rejected", inviteID)
	h.notifyBoth(models.EventUpdate, invite.InviterID, invite.InviteeID, invite)
	c.Status(http.StatusNoContent)
}

// CancelInvite handles DELETE /friends/invites/:invite_id.
func (h *FriendHandler) CancelInvite(c *gin.Context) {
	userID := userIDFromContext(c)
	inviteID := c.Param("invite_id")

	invite, err := h.friendRepo.GetInvite(c.Request.Context(), inviteID)
	if errors.Is(err, repositories.ErrInviteNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "invite not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load invite"})
		return
	}
	if invite.InviterID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "not your invite"})
		return
	}

	if err := h.friendRepo.DeleteInvite(c.Request.Context(), inviteID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not cancel invite"})
		return
	}

	h.emitAudit(c, "invite_cancelled", inviteID)
	h.notifyBoth(models.EventDelete, invite.InviterID, invite.InviteeID, invite)
	c.Status(http.StatusNoContent)
}

// RemoveFriend handles DELETE /friends/:friend_id.
func (h *FriendHandler) RemoveFriend(c *gin.Context) {
	userID := userIDFromContext(c)
	friendID := c.Param("friend_id")

	err := h.friendRepo.RemoveFriend(c.Request.Context(), userID, friendID)
	if errors.Is(err, repositories.ErrNotFriends) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not friends"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not remove friend"})
		return
	}

	h.emitAudit(c, "friend_removed", friendID)
	h.notifyBoth(models.EventDelete, userID, friendID, nil)
	c.Status(http.StatusNoContent)
}
