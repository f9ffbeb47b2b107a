package main

import (
	"context"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"realtime-service/internal/auth"
	"realtime-service/internal/db"
	"realtime-service/internal/handlers"
	"realtime-service/internal/middleware"
	"realtime-service/internal/notify"
	"realtime-service/internal/observability"
	"realtime-service/internal/presence"
	"realtime-service/internal/repositories"
	"realtime-service/internal/ws"
)

const serviceName = "realtime-service"

func main() {
	database, err := db.Connect()
	if err != nil {
		log.Fatalf("failed to connect to db: %v", err)
	}

	secret := getEnv("JWT_SECRET", "")
	if secret == "" {
		log.Fatalf("JWT_SECRET is required")
	}
	verifier := auth.NewVerifier([]byte(secret))

	shutdownTracing := observability.SetupTracing(context.Background(), serviceName, getEnv("OTLP_ENDPOINT", ""))
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			log.Printf("tracing shutdown: %v", err)
		}
	}()

	observability.SetupPublisher(getEnv("AMQP_URL", ""), getEnv("AMQP_EXCHANGE", "forum.events"))

	presenceRepo := repositories.NewPresenceRepo(database)
	settingsRepo := repositories.NewSettingsRepo(database)
	notificationRepo := repositories.NewNotificationRepo(database)
	roomRepo := repositories.NewRoomRepo(database)
	messageRepo := repositories.NewMessageRepo(database)
	userRepo := repositories.NewUserRepo(database)

	registry := ws.NewRegistry()
	tracker := presence.NewTracker(presenceRepo, registry)
	notifyRouter := notify.NewRouter(notificationRepo, settingsRepo, registry)

	notificationHandler := handlers.NewNotificationHandler(notifyRouter, notificationRepo, settingsRepo)
	chatHandler := handlers.NewChatHandler(roomRepo, messageRepo, userRepo, notificationRepo, notifyRouter, registry, tracker)
	wsHandler := ws.NewHandler(registry, verifier, tracker, authTimeout())

	router := gin.Default()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(serviceName))
	router.Use(observability.HTTPMetricsMiddleware())

	authMiddleware := middleware.AuthMiddleware(verifier)

	api := router.Group("/api")
	{
		notifications := api.Group("/notifications", authMiddleware)
		notifications.GET("/unread-count", notificationHandler.UnreadCount)
		notifications.GET("", notificationHandler.List)
		notifications.GET("/settings", notificationHandler.GetSettings)
		notifications.PUT("/settings", notificationHandler.UpdateSettings)
		notifications.PUT("/read-all", notificationHandler.MarkAllRead)
		notifications.PUT("/read-chat-room/:roomId", notificationHandler.MarkRoomRead)
		notifications.PUT("/:id/read", notificationHandler.MarkRead)
		notifications.DELETE("/clear-all", notificationHandler.ClearAll)
		notifications.DELETE("/:id", notificationHandler.Delete)

		api.POST("/events/comment", authMiddleware, notificationHandler.CommentEvent)

		chat := api.Group("/chat", authMiddleware)
		chat.GET("/search", chatHandler.SearchUsers)
		chat.GET("/rooms", chatHandler.ListRooms)
		chat.POST("/room", chatHandler.CreateRoom)
		chat.GET("/messages/:roomId", chatHandler.Messages)
		chat.POST("/message", chatHandler.PostMessage)
		chat.POST("/status", chatHandler.SetStatus)
	}

	// auth for the websocket happens in-band, not at the handshake
	router.GET("/ws", wsHandler.Handle)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	port := getEnv("PORT", "8083")
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func authTimeout() time.Duration {
	raw := getEnv("WS_AUTH_TIMEOUT", "30")
	seconds, err := strconv.Atoi(raw)
	if err != nil || seconds <= 0 {
		seconds = 30
	}
	return time.Duration(seconds) * time.Second
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}
