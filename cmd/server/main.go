package main

import (
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/websocket/v2"
	"github.com/joho/godotenv"
	"github.com/workzen-hq/collab-backend/internal/cache"
	"github.com/workzen-hq/collab-backend/internal/handlers"
	"github.com/workzen-hq/collab-backend/internal/handlers/ws"
	"github.com/workzen-hq/collab-backend/internal/middleware"
	"github.com/workzen-hq/collab-backend/internal/repository"
	"github.com/workzen-hq/collab-backend/internal/service"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	if os.Getenv("JWT_SECRET") == "" {
		log.Fatal("JWT_SECRET is required")
	}

	// Initialize Fiber app
	app := fiber.New(fiber.Config{
		AppName: "Workzen Collab Backend",
	})

	// Middleware
	app.Use(requestid.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     os.Getenv("ALLOWED_ORIGINS"),
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowMethods:     "GET, POST, PUT, DELETE, OPTIONS",
		AllowCredentials: true,
	}))

	// Initialize database connection
	db, err := repository.InitDB()
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// Initialize Redis cache (optional; everything degrades to the DB)
	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}
	redisDB := 0
	if dbStr := os.Getenv("REDIS_DB"); dbStr != "" {
		if parsedDB, err := strconv.Atoi(dbStr); err == nil {
			redisDB = parsedDB
		}
	}

	redisCache := cache.NewRedisCache(redisAddr, os.Getenv("REDIS_PASSWORD"), redisDB)
	if err := redisCache.Ping(); err != nil {
		log.Printf("WARNING: Redis connection failed: %v. Running without cache.", err)
		redisCache = nil
	} else {
		log.Println("Redis cache connected successfully")
	}

	presenceCache := cache.NewPresenceCache(redisCache)
	messageCache := cache.NewMessageCache(redisCache)

	// Initialize repositories
	roomRepo := repository.NewRoomRepository(db)
	channelRepo := repository.NewChannelRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	presenceRepo := repository.NewPresenceRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	// Initialize services
	accessService := service.NewAccessService(roomRepo, channelRepo)
	roomService := service.NewRoomService(roomRepo, accessService)
	channelService := service.NewChannelService(channelRepo, accessService)
	presenceService := service.NewPresenceService(presenceRepo, presenceCache)
	notificationService := service.NewNotificationService(notificationRepo, roomRepo, channelRepo)
	messageService := service.NewMessageService(messageRepo, accessService, messageCache, notificationService)

	// Initialize hub and handlers
	hub := ws.NewHub()
	hub.Start()
	defer hub.Stop()

	wsHandler := handlers.NewWebSocketHandler(hub, accessService, messageService, presenceService)
	messageHandler := handlers.NewMessageHandler(messageService, accessService)
	roomHandler := handlers.NewRoomHandler(roomService)
	channelHandler := handlers.NewChannelHandler(channelService)
	presenceHandler := handlers.NewPresenceHandler(presenceService)
	notificationHandler := handlers.NewNotificationHandler(notificationService)
	broadcastHandler := handlers.NewBroadcastHandler(hub, accessService)

	// Protected API routes
	api := app.Group("/api", middleware.OriginAllowed(), middleware.AuthRequired(), limiter.New(limiter.Config{
		Max:        120,
		Expiration: time.Minute,
	}))

	// Rooms
	api.Post("/rooms", roomHandler.CreateRoom)
	api.Get("/rooms", roomHandler.GetMyRooms)
	api.Get("/rooms/:id", roomHandler.GetRoom)
	api.Delete("/rooms/:id", roomHandler.DeactivateRoom)
	api.Post("/rooms/:id/participants", roomHandler.AddParticipant)
	api.Delete("/rooms/:id/participants/:user_id", roomHandler.RemoveParticipant)
	api.Get("/rooms/:id/messages", messageHandler.GetRoomMessages)
	api.Get("/rooms/:id/messages/search", messageHandler.SearchRoomMessages)
	api.Post("/rooms/:id/messages", messageHandler.PostRoomMessage)
	api.Post("/rooms/:id/broadcast", broadcastHandler.BroadcastToRoom)

	// Channels
	api.Post("/channels", channelHandler.CreateChannel)
	api.Get("/channels", channelHandler.GetMyChannels)
	api.Get("/channels/public", channelHandler.GetPublicChannels)
	api.Get("/channels/:id", channelHandler.GetChannel)
	api.Delete("/channels/:id", channelHandler.DeactivateChannel)
	api.Post("/channels/:id/join", channelHandler.JoinChannel)
	api.Post("/channels/:id/leave", channelHandler.LeaveChannel)
	api.Post("/channels/:id/members", channelHandler.AddMember)
	api.Delete("/channels/:id/members/:user_id", channelHandler.RemoveMember)
	api.Put("/channels/:id/settings", channelHandler.UpdateSettings)
	api.Get("/channels/:id/messages", messageHandler.GetChannelMessages)
	api.Get("/channels/:id/messages/search", messageHandler.SearchChannelMessages)
	api.Post("/channels/:id/messages", messageHandler.PostChannelMessage)
	api.Post("/channels/:id/broadcast", broadcastHandler.BroadcastToChannel)

	// Messages
	api.Get("/messages/:id", messageHandler.GetMessage)
	api.Put("/messages/:id", messageHandler.EditMessage)
	api.Delete("/messages/:id", messageHandler.DeleteMessage)
	api.Post("/messages/:id/read", messageHandler.MarkMessageRead)
	api.Post("/messages/:id/reactions", messageHandler.AddReaction)
	api.Delete("/messages/:id/reactions", messageHandler.RemoveReaction)

	// Presence
	api.Get("/presence/online", presenceHandler.GetOnlineUsers)
	api.Get("/presence/:id", presenceHandler.GetPresence)

	// Notifications
	api.Get("/notifications", notificationHandler.GetUnread)
	api.Post("/notifications/read-all", notificationHandler.MarkAllRead)
	api.Post("/notifications/:id/read", notificationHandler.MarkRead)

	// WebSocket route (websocket upgrade needs special handling)
	app.Use(
		"/ws",
		middleware.OriginAllowed(),
		middleware.AuthRequired(),
		func(c *fiber.Ctx) error {
			if websocket.IsWebSocketUpgrade(c) {
				return c.Next()
			}
			return fiber.ErrUpgradeRequired
		},
	)
	app.Get("/ws", websocket.New(wsHandler.HandleWebSocket))

	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":         "ok",
			"ws_connections": hub.Count(),
		})
	})

	// Graceful shutdown: stop accepting, then close live ws connections.
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		log.Println("Shutting down...")
		hub.Stop()
		_ = app.Shutdown()
	}()

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Server starting on port %s...", port)
	if err := app.Listen(":" + port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
