package ws

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel"

	"tripboard/internal/models"
	"tripboard/internal/observability"
	"tripboard/internal/repositories"
	"tripboard/internal/telemetry"
)

// FeedHandler upgrades change-feed websocket connections and applies
// subscribe frames. Filters a caller is not entitled to are dropped silently
// so one bad frame can not kill the connection.
type FeedHandler struct {
	hub    *Hub
	tokens *TokenIssuer
	groups repositories.GroupRepository
	audit  *telemetry.AuditEmitter
}

// NewFeedHandler constructs a FeedHandler.
func NewFeedHandler(hub *Hub, tokens *TokenIssuer, groups repositories.GroupRepository, audit *telemetry.AuditEmitter) *FeedHandler {
	return &FeedHandler{hub: hub, tokens: tokens, groups: groups, audit: audit}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Handle authenticates the realtime credential and upgrades the connection.
func (h *FeedHandler) Handle(c *gin.Context) {
	ctx, span := otel.Tracer("tripboard/ws").Start(c.Request.Context(), "feed.handshake")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	userID, ok := h.tokens.Validate(c.Query("token"))
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	info := ConnInfo{
		ConnID:      newConnID(),
		UserID:      userID,
		IP:          observability.IPFromRequest(c.Request),
		RequestID:   observability.RequestIDFromRequest(c.Request),
		TraceID:     span.SpanContext().TraceID().String(),
		ConnectedAt: time.Now(),
	}
	client := h.hub.Add(conn, info)

	observability.IncWSActive()
	observability.IncWSEvent("ws_connect")
	h.audit.Emit(ctx, "connect", "feed", info.ConnID, info.RequestID, &userID)

	go h.readLoop(context.WithoutCancel(ctx), client, conn, userID, info)
}

// readLoop consumes subscribe frames until the connection drops.
func (h *FeedHandler) readLoop(ctx context.Context, client *Client, conn *websocket.Conn, userID string, info ConnInfo) {
	defer func() {
		h.hub.Remove(client)
		observability.DecWSActive()
		observability.IncWSEvent("ws_disconnect")
		h.audit.Emit(ctx, "disconnect", "feed", info.ConnID, info.RequestID, &userID)
		conn.Close()
	}()

	for {
		var frame models.SubscribeFrame
		if err := conn.ReadJSON(&frame); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				observability.IncWSEvent("ws_error")
			}
			return
		}
		if h.allowed(ctx, frame, userID) {
			h.hub.Subscribe(client, frame.Table, frame.ScopeID)
			observability.IncWSEvent("subscribe")
		}
	}
}

// allowed checks the caller's entitlement to a filter: user-scoped tables
// must be scoped to the caller, group-scoped tables require membership.
func (h *FeedHandler) allowed(ctx context.Context, frame models.SubscribeFrame, userID string) bool {
	switch frame.Table {
	case models.TableFriends, models.TableGroups:
		return frame.ScopeID == userID
	case models.TableGroupMembers, models.TableBoardPosts, models.TablePostComments, models.TableChatMessages:
		member, err := h.groups.IsMember(ctx, frame.ScopeID, userID)
		return err == nil && member
	default:
		return false
	}
}
