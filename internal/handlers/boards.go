package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"tripboard/internal/models"
	"tripboard/internal/repositories"
	"tripboard/internal/state"
	"tripboard/internal/telemetry"
	"tripboard/internal/ws"
)

// BoardHandler manages board-post and comment endpoints.
type BoardHandler struct {
	boardRepo repositories.BoardRepository
	groupRepo repositories.GroupRepository
	hub       *ws.Hub
	audit     *telemetry.AuditEmitter
}

// NewBoardHandler constructs a BoardHandler.
func NewBoardHandler(boardRepo repositories.BoardRepository, groupRepo repositories.GroupRepository, hub *ws.Hub, audit *telemetry.AuditEmitter) *BoardHandler {
	return &BoardHandler{boardRepo: boardRepo, groupRepo: groupRepo, hub: hub, audit: audit}
}

func (h *BoardHandler) emitAudit(c *gin.Context, action, resourceID string) {
	h.audit.Emit(c.Request.Context(), action, "board", resourceID, requestIDFromContext(c), userIDPtr(c))
}

func (h *BoardHandler) requireMember(c *gin.Context, groupID string) bool {
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

// ListPosts handles GET /groups/:group_id/posts. Pages walk newest-first; a
// malformed cursor silently means the first page.
func (h *BoardHandler) ListPosts(c *gin.Context) {
	groupID := c.Param("group_id")
	if !h.requireMember(c, groupID) {
		return
	}

	cursor, _ := state.DecodeCursor(c.Query("cursor"))
	posts, hasMore, err := h.boardRepo.ListPosts(c.Request.Context(), groupID, cursor, parseLimit(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load posts"})
		return
	}

	page := models.PostPage{Items: posts, HasMore: hasMore}
	if page.Items == nil {
		page.Items = []models.BoardPost{}
	}
	if hasMore && len(posts) > 0 {
		page.NextCursor = state.CursorFor(posts[len(posts)-1])
	}
	c.JSON(http.StatusOK, page)
}

// CreatePost handles POST /groups/:group_id/posts.
func (h *BoardHandler) CreatePost(c *gin.Context) {
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

	post, err := h.boardRepo.CreatePost(c.Request.Context(), groupID, userIDFromContext(c), req.Content)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create post"})
		return
	}

	h.emitAudit(c, "post_created", post.ID)
	publishChange(h.hub, models.TableBoardPosts, groupID, models.EventInsert, post, nil)
	c.JSON(http.StatusCreated, post)
}

// DeletePost handles DELETE /posts/:post_id. Only the author may delete.
func (h *BoardHandler) DeletePost(c *gin.Context) {
	postID := c.Param("post_id")

	post, err := h.boardRepo.GetPost(c.Request.Context(), postID)
	if errors.Is(err, repositories.ErrPostNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "post not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load post"})
		return
	}

	err = h.boardRepo.DeletePost(c.Request.Context(), postID, userIDFromContext(c))
	if errors.Is(err, repositories.ErrPostNotFound) {
		c.JSON(http.StatusForbidden, gin.H{"error": "not your post"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not delete post"})
		return
	}

	h.emitAudit(c, "post_deleted", postID)
	publishChange(h.hub, models.TableBoardPosts, post.GroupID, models.EventDelete, nil, post)
	c.Status(http.StatusNoContent)
}

// ListComments handles GET /posts/:post_id/comments.
func (h *BoardHandler) ListComments(c *gin.Context) {
	postID := c.Param("post_id")

	post, err := h.boardRepo.GetPost(c.Request.Context(), postID)
	if errors.Is(err, repositories.ErrPostNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "post not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load post"})
		return
	}
	if !h.requireMember(c, post.GroupID) {
		return
	}

	comments := post.Comments
	if comments == nil {
		comments = []models.PostComment{}
	}
	c.JSON(http.StatusOK, comments)
}

// CreateComment handles POST /posts/:post_id/comments.
func (h *BoardHandler) CreateComment(c *gin.Context) {
	postID := c.Param("post_id")

	post, err := h.boardRepo.GetPost(c.Request.Context(), postID)
	if errors.Is(err, repositories.ErrPostNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "post not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load post"})
		return
	}
	if !h.requireMember(c, post.GroupID) {
		return
	}

	var req struct {
		Content string `json:"content" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	comment, err := h.boardRepo.CreateComment(c.Request.Context(), postID, userIDFromContext(c), req.Content)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create comment"})
		return
	}

	h.emitAudit(c, "comment_created", comment.ID)
	publishChange(h.hub, models.TablePostComments, post.GroupID, models.EventInsert, comment, nil)
	c.JSON(http.StatusCreated, comment)
}
