package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"tripboard/internal/repositories"
	"tripboard/internal/telemetry"
)

// SessionTTL is how long a login session stays valid.
const SessionTTL = 30 * 24 * time.Hour

// AuthHandler manages account registration and sessions.
type AuthHandler struct {
	userRepo repositories.UserRepository
	audit    *telemetry.AuditEmitter
}

// NewAuthHandler constructs an AuthHandler.
func NewAuthHandler(userRepo repositories.UserRepository, audit *telemetry.AuditEmitter) *AuthHandler {
	return &AuthHandler{userRepo: userRepo, audit: audit}
}

// Register handles POST /auth/register: creates the account and returns a
// ready-to-use session token.
func (h *AuthHandler) Register(c *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.userRepo.CreateUser(c.Request.Context(), req.Username)
	if err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "username taken"})
		return
	}
	session, err := h.userRepo.CreateSession(c.Request.Context(), user.ID, SessionTTL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create session"})
		return
	}

	h.audit.Emit(c.Request.Context(), "user_registered", "users", user.ID, requestIDFromContext(c), &user.ID)
	c.JSON(http.StatusCreated, gin.H{"user": user, "token": session.Token})
}
