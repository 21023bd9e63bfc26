package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"Huddle/config"
	"Huddle/controllers"
	"Huddle/logger"
	"Huddle/middlewares"
	"Huddle/repositories/impl"
	"Huddle/routes"
	"Huddle/services"
	"Huddle/websocket"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	logger.Init(cfg.LogLevel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := config.OpenDatabase(cfg.Database)
	if err != nil {
		logger.Error("database unavailable", "error", err)
		os.Exit(1)
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.Error("database handle", "error", err)
		os.Exit(1)
	}
	defer sqlDB.Close()

	identity, err := newIdentityProvider(ctx, cfg.Auth)
	if err != nil {
		logger.Error("auth provider", "error", err)
		os.Exit(1)
	}

	// Initialize repositories and services
	store := impl.NewStore(db)
	hub := websocket.NewHub()

	m := cfg.Messaging
	authz := services.NewAuthorizationService(store)
	limiter := services.NewRateLimiter(m.RateLimitMessages, m.RateLimitWindow)
	allocator := services.NewSequenceAllocator(store, m.SequenceMaxAttempts, m.SequenceBackoff)
	unread := services.NewUnreadService(store, authz, hub)
	messages := services.NewMessageService(store, authz, allocator, limiter, unread, hub, m.MaxMessageLength)
	presence := services.NewPresenceService(authz, hub, m.TypingThrottle, m.TypingExpiry)
	notes := services.NewNoteService(store, authz, hub)

	dispatcher := websocket.NewDispatcher(websocket.Services{
		Messages: messages,
		Unread:   unread,
		Presence: presence,
		Notes:    notes,
		Router:   websocket.NewRouter(hub, authz),
	}, m.EventTimeout)

	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			logger.Error("invalid REDIS_URL", "error", err)
			os.Exit(1)
		}
		rdb := redis.NewClient(opts)
		defer rdb.Close()

		relay := websocket.NewRedisRelay(rdb, hub)
		hub.SetRelay(relay)
		go relay.Run(ctx)
		logger.Info("redis relay enabled", "node", relay.NodeID)
	}

	go hub.Run(ctx)
	go limiter.Run(ctx)

	// Initialize Gin router
	gin.SetMode(cfg.Server.GinMode)
	r := gin.Default()
	routes.RegisterRoutes(r, routes.Handlers{
		Messages:  controllers.NewMessageController(messages),
		Unread:    controllers.NewUnreadController(unread),
		WebSocket: controllers.NewWebSocketController(hub, dispatcher, websocket.NewUpgrader(cfg.Server.AllowedOrigins), m.SocketEventsPerSecond),
		Health:    controllers.NewHealthController(sqlDB, hub.ClientCount),
	}, middlewares.AuthMiddleware(identity))

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: r,
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("starting server", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("listen failed", "error", err)
			os.Exit(1)
		}
	}()

	<-done
	logger.Info("shutting down server")

	shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
	defer stop()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", "error", err)
	}
	cancel()
	logger.Info("server exited")
}

func newIdentityProvider(ctx context.Context, cfg config.Auth) (middlewares.IdentityProvider, error) {
	if cfg.Provider == "firebase" {
		client, err := config.InitFirebase(ctx, cfg.FirebaseCredentialsPath)
		if err != nil {
			return nil, err
		}
		return middlewares.NewFirebaseProvider(client), nil
	}
	return middlewares.NewJWTProvider(cfg.JWTSecret), nil
}
