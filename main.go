package main

import (
	"context"
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"forum-realtime/internal/auth"
	"forum-realtime/internal/chat"
	"forum-realtime/internal/db"
	"forum-realtime/internal/handlers"
	"forum-realtime/internal/middleware"
	"forum-realtime/internal/notify"
	"forum-realtime/internal/observability"
	"forum-realtime/internal/registry"
	"forum-realtime/internal/repositories"
	"forum-realtime/internal/telemetry"
	"forum-realtime/internal/ws"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}

	database, err := db.Connect()
	if err != nil {
		log.Fatalf("failed to connect to db: %v", err)
	}

	shutdownTracing, err := telemetry.InitTracing(context.Background(), "forum-realtime", getEnv("OTLP_ENDPOINT", ""))
	if err != nil {
		log.Fatalf("failed to init tracing: %v", err)
	}
	defer shutdownTracing(context.Background())

	if amqpURL := getEnv("AMQP_URL", ""); amqpURL != "" {
		publisher, err := observability.NewAMQPPublisher(amqpURL, getEnv("AMQP_EXCHANGE", "forum.events"))
		if err != nil {
			log.Printf("amqp events disabled: %v", err)
		} else {
			observability.SetPublisher(publisher)
			defer publisher.Close()
		}
	}

	notifyPublisher := notify.NewPublisher(getEnv("AMQP_URL", ""), getEnv("AMQP_EXCHANGE", "forum.events"))
	defer notifyPublisher.Close()
	notifier := notify.NewNotifier(notifyPublisher, "notifications.private_message", "forum-realtime", getEnv("ENVIRONMENT", "development"))

	var connRegistry registry.Registry
	if redisURL := getEnv("REDIS_URL", ""); redisURL != "" {
		redisRegistry, err := registry.NewRedis(redisURL)
		if err != nil {
			log.Fatalf("failed to connect to redis: %v", err)
		}
		defer redisRegistry.Close()
		connRegistry = redisRegistry
		log.Println("using redis connection registry")
	} else {
		connRegistry = registry.NewMemory()
		log.Println("using in-memory connection registry")
	}

	userRepo := repositories.NewUserRepo(database)
	conversationRepo := repositories.NewConversationRepo(database)
	globalMessageRepo := repositories.NewGlobalMessageRepo(database)
	attachmentRepo := repositories.NewAttachmentRepo(database)

	hub := ws.NewHub()
	authenticator := auth.NewAuthenticator(getEnv("JWT_SECRET", ""))
	tracker := chat.NewTracker(userRepo, connRegistry, hub)
	globalChannel := chat.NewGlobalChannel(globalMessageRepo, userRepo, attachmentRepo, hub)
	privateChannel := chat.NewPrivateChannel(conversationRepo, userRepo, attachmentRepo, connRegistry, hub, notifier)
	socket := chat.NewSocketHandler(hub, authenticator, tracker, globalChannel, privateChannel)

	historyHandler := handlers.NewHistoryHandler(conversationRepo, globalMessageRepo, userRepo, attachmentRepo)
	presenceHandler := handlers.NewPresenceHandler(userRepo)

	router := gin.Default()

	// middlewares
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware("forum-realtime"))
	router.Use(observability.HTTPMetricsMiddleware())

	authMiddleware := middleware.AuthMiddleware(authenticator)

	router.GET("/ws", socket.Handle)
	router.GET("/chat/global/messages", historyHandler.GetGlobalMessages)
	router.GET("/chats/:peer_id/messages", authMiddleware, historyHandler.GetConversationMessages)
	router.GET("/presence/:user_id", presenceHandler.GetPresence)

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	port := getEnv("PORT", "8086")
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
