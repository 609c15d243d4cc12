package handlers

import (
	"encoding/json"
	"log"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"tripboard/internal/models"
	"tripboard/internal/repositories"
	"tripboard/internal/ws"
)

const requestIDContextKey = "request_id"

func requestIDFromContext(c *gin.Context) string {
	if val, ok := c.Get(requestIDContextKey); ok {
		if id, ok := val.(string); ok && id != "" {
			return id
		}
	}

	requestID := c.GetHeader("X-Request-ID")
	if requestID == "" {
		requestID = uuid.NewString()
	}
	c.Set(requestIDContextKey, requestID)
	return requestID
}

func userIDFromContext(c *gin.Context) string {
	return c.GetString("userID")
}

func userIDPtr(c *gin.Context) *string {
	if id := userIDFromContext(c); id != "" {
		return &id
	}
	return nil
}

func parseLimit(c *gin.Context) int {
	limit, err := strconv.Atoi(c.Query("limit"))
	if err != nil {
		return repositories.DefaultPageLimit
	}
	return limit
}

// publishChange marshals the affected rows and hands the event to the hub.
func publishChange(hub *ws.Hub, table, scopeID, eventType string, newRow, oldRow any) {
	if hub == nil {
		return
	}
	ev := models.ChangeEvent{Table: table, ScopeID: scopeID, Type: eventType}
	if newRow != nil {
		raw, err := json.Marshal(newRow)
		if err != nil {
			log.Printf("change event marshal error: %v", err)
			return
		}
		ev.New = raw
	}
	if oldRow != nil {
		raw, err := json.Marshal(oldRow)
		if err != nil {
			log.Printf("change event marshal error: %v", err)
			return
		}
		ev.Old = raw
	}
	hub.Publish(ev)
}
