package main

import (
	"context"
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"tripboard/internal/db"
	"tripboard/internal/handlers"
	"tripboard/internal/middleware"
	"tripboard/internal/observability"
	"tripboard/internal/rabbitmq"
	"tripboard/internal/repositories"
	"tripboard/internal/telemetry"
	"tripboard/internal/ws"
)

const serviceName = "tripboard"

func main() {
	_ = godotenv.Load()

	ctx := context.Background()
	shutdownTracing := observability.InitTracing(ctx, serviceName, getEnv("OTLP_ENDPOINT", ""))
	defer func() {
		if err := shutdownTracing(ctx); err != nil {
			log.Printf("tracing shutdown error: %v", err)
		}
	}()

	database, err := db.Connect()
	if err != nil {
		log.Fatalf("failed to connect to db: %v", err)
	}

	publisher := rabbitmq.NewPublisher(getEnv("AMQP_URL", ""), getEnv("AMQP_EXCHANGE", "tripboard.audit"))
	defer publisher.Close()
	if mode := rabbitmq.PublisherMode(publisher); mode != "amqp" {
		log.Printf("audit publisher mode=%s reason=%q", mode, rabbitmq.PublisherNoopReason(publisher))
	}
	audit := telemetry.NewAuditEmitter(publisher, getEnv("AMQP_AUDIT_ROUTING_KEY", "audit.tripboard"), serviceName, getEnv("ENVIRONMENT", "development"))

	userRepo := repositories.NewUserRepo(database)
	friendRepo := repositories.NewFriendRepo(database)
	groupRepo := repositories.NewGroupRepo(database)
	boardRepo := repositories.NewBoardRepo(database)
	messageRepo := repositories.NewMessageRepo(database)

	hub := ws.NewHub()
	tokens := ws.NewTokenIssuer()

	authHandler := handlers.NewAuthHandler(userRepo, audit)
	friendHandler := handlers.NewFriendHandler(friendRepo, hub, audit)
	groupHandler := handlers.NewGroupHandler(groupRepo, hub, audit)
	boardHandler := handlers.NewBoardHandler(boardRepo, groupRepo, hub, audit)
	chatHandler := handlers.NewChatHandler(messageRepo, groupRepo, hub, audit)
	realtimeHandler := handlers.NewRealtimeHandler(tokens)
	feedHandler := ws.NewFeedHandler(hub, tokens, groupRepo, audit)

	router := gin.Default()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(serviceName))
	router.Use(observability.HTTPMetricsMiddleware())

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.POST("/auth/register", authHandler.Register)

	authMiddleware := middleware.AuthMiddleware(userRepo)

	router.GET("/friends", authMiddleware, friendHandler.ListFriends)
	router.DELETE("/friends/:friend_id", authMiddleware, friendHandler.RemoveFriend)
	router.GET("/friends/invites/incoming", authMiddleware, friendHandler.ListIncoming)
	router.GET("/friends/invites/outgoing", authMiddleware, friendHandler.ListOutgoing)
	router.POST("/friends/invites", authMiddleware, friendHandler.SendInvite)
	router.POST("/friends/invites/:invite_id/accept", authMiddleware, friendHandler.AcceptInvite)
	router.POST("/friends/invites/:invite_id/reject", authMiddleware, friendHandler.RejectInvite)
	router.DELETE("/friends/invites/:invite_id", authMiddleware, friendHandler.CancelInvite)

	router.POST("/groups", authMiddleware, groupHandler.CreateGroup)
	router.GET("/groups", authMiddleware, groupHandler.ListGroups)
	router.PATCH("/groups/:group_id", authMiddleware, groupHandler.RenameGroup)
	router.GET("/groups/:group_id/members", authMiddleware, groupHandler.ListMembers)
	router.POST("/groups/:group_id/members", authMiddleware, groupHandler.AddMember)
	router.DELETE("/groups/:group_id/members/:user_id", authMiddleware, groupHandler.RemoveMember)

	router.GET("/groups/:group_id/posts", authMiddleware, boardHandler.ListPosts)
	router.POST("/groups/:group_id/posts", authMiddleware, boardHandler.CreatePost)
	router.DELETE("/posts/:post_id", authMiddleware, boardHandler.DeletePost)
	router.GET("/posts/:post_id/comments", authMiddleware, boardHandler.ListComments)
	router.POST("/posts/:post_id/comments", authMiddleware, boardHandler.CreateComment)

	router.GET("/groups/:group_id/messages", authMiddleware, chatHandler.ListMessages)
	router.POST("/groups/:group_id/messages", authMiddleware, chatHandler.PostMessage)

	router.GET("/realtime/token", authMiddleware, realtimeHandler.Token)
	router.GET("/realtime/ws", feedHandler.Handle)

	port := getEnv("PORT", "8080")
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}
