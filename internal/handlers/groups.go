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

// GroupHandler manages travel-group endpoints.
type GroupHandler struct {
	groupRepo repositories.GroupRepository
	hub       *ws.Hub
	audit     *telemetry.AuditEmitter
}

// NewGroupHandler constructs a GroupHandler.
func NewGroupHandler(groupRepo repositories.GroupRepository, hub *ws.Hub, audit *telemetry.AuditEmitter) *GroupHandler {
	return &GroupHandler{groupRepo: groupRepo, hub: hub, audit: audit}
}

func (h *GroupHandler) emitAudit(c *gin.Context, action, resourceID string) {
	h.audit.Emit(c.Request.Context(), action, "groups", resourceID, requestIDFromContext(c), userIDPtr(c))
}

// requireMember resolves membership or writes the error response.
func (h *GroupHandler) requireMember(c *gin.Context, groupID string) bool {
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

// notifyMembers pushes a groups-table event into every member's feed.
func (h *GroupHandler) notifyMembers(c *gin.Context, groupID, eventType string, row any) {
	members, err := h.groupRepo.ListMembers(c.Request.Context(), groupID)
	if err != nil {
		return
	}
	for _, m := range members {
		publishChange(h.hub, models.TableGroups, m.UserID, eventType, row, nil)
	}
}

// CreateGroup handles POST /groups.
func (h *GroupHandler) CreateGroup(c *gin.Context) {
	userID := userIDFromContext(c)

	var req struct {
		Name string `json:"name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	group, err := h.groupRepo.CreateGroup(c.Request.Context(), req.Name, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create group"})
		return
	}

	h.emitAudit(c, "group_created", group.ID)
	publishChange(h.hub, models.TableGroups, userID, models.EventInsert, group, nil)
	c.JSON(http.StatusCreated, group)
}

// ListGroups handles GET /groups.
func (h *GroupHandler) ListGroups(c *gin.Context) {
	groups, err := h.groupRepo.ListGroupsForUser(c.Request.Context(), userIDFromContext(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load groups"})
		return
	}
	if groups == nil {
		groups = []models.Group{}
	}
	c.JSON(http.StatusOK, groups)
}

// RenameGroup handles PATCH /groups/:group_id. Only the owner may rename.
func (h *GroupHandler) RenameGroup(c *gin.Context) {
	groupID := c.Param("group_id")

	var req struct {
		Name string `json:"name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	group, err := h.groupRepo.GetGroup(c.Request.Context(), groupID)
	if errors.Is(err, repositories.ErrGroupNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "group not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load group"})
		return
	}
	if group.OwnerID != userIDFromContext(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "only the owner can rename"})
		return
	}

	updated, err := h.groupRepo.RenameGroup(c.Request.Context(), groupID, req.Name)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not rename group"})
		return
	}

	h.emitAudit(c, "group_renamed", groupID)
	h.notifyMembers(c, groupID, models.EventUpdate, updated)
	c.JSON(http.StatusOK, updated)
}

// ListMembers handles GET /groups/:group_id/members.
func (h *GroupHandler) ListMembers(c *gin.Context) {
	groupID := c.Param("group_id")
	if !h.requireMember(c, groupID) {
		return
	}

	members, err := h.groupRepo.ListMembers(c.Request.Context(), groupID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load members"})
		return
	}
	if members == nil {
		members = []models.GroupMember{}
	}
	c.JSON(http.StatusOK, members)
}

// AddMember handles POST /groups/:group_id/members.
func (h *GroupHandler) AddMember(c *gin.Context) {
	groupID := c.Param("group_id")
	if !h.requireMember(c, groupID) {
		return
	}

	var req struct {
		UserID string `json:"user_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	member, err := h.groupRepo.AddMember(c.Request.Context(), groupID, req.UserID)
	switch {
	case errors.Is(err, repositories.ErrMemberExists):
		c.JSON(http.StatusConflict, gin.H{"error": "already a member"})
		return
	case errors.Is(err, repositories.ErrGroupNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "group not found"})
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not add member"})
		return
	}

	h.emitAudit(c, "member_added", req.UserID)
	publishChange(h.hub, models.TableGroupMembers, groupID, models.EventInsert, member, nil)
	// the new member's own group list changed too
	if group, err := h.groupRepo.GetGroup(c.Request.Context(), groupID); err == nil {
		publishChange(h.hub, models.TableGroups, req.UserID, models.EventInsert, group, nil)
	}
	c.JSON(http.StatusCreated, member)
}

// RemoveMember handles DELETE /groups/:group_id/members/:user_id. The alias
// "me" lets a member leave; the owner may remove anyone but can not leave.
func (h *GroupHandler) RemoveMember(c *gin.Context) {
	groupID := c.Param("group_id")
	callerID := userIDFromContext(c)
	targetID := c.Param("user_id")
	if targetID == "me" {
		targetID = callerID
	}

	group, err := h.groupRepo.GetGroup(c.Request.Context(), groupID)
	if errors.Is(err, repositories.ErrGroupNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "group not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load group"})
		return
	}

	if targetID == group.OwnerID {
		c.JSON(http.StatusConflict, gin.H{"error": "owner cannot leave"})
		return
	}
	if callerID != targetID && callerID != group.OwnerID {
		c.JSON(http.StatusForbidden, gin.H{"error": "not allowed"})
		return
	}

	err = h.groupRepo.RemoveMember(c.Request.Context(), groupID, targetID)
	if errors.Is(err, repositories.ErrMemberNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "member not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not remove member"})
		return
	}

	h.emitAudit(c, "member_removed", targetID)
	publishChange(h.hub, models.TableGroupMembers, groupID, models.EventDelete, nil,
		models.GroupMember{GroupID: groupID, UserID: targetID})
	publishChange(h.hub, models.TableGroups, targetID, models.EventDelete, nil, group)
	c.Status(http.StatusNoContent)
}
