package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tokenride/internal/config"
	"tokenride/internal/handlers"
	"tokenride/internal/observability"
	"tokenride/internal/repositories/mongodb"
	"tokenride/internal/services"
	"tokenride/pkg/cache"
	"tokenride/pkg/database"
	"tokenride/pkg/logger"
	"tokenride/pkg/websocket"
	"tokenride/routes"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	appLog, err := logger.NewLogger(&logger.Config{
		Level:  cfg.App.LogLevel,
		Format: cfg.App.LogFormat,
		Output: "stdout",
	})
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	if !cfg.App.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	// MongoDB
	db, err := database.NewMongoDB(&database.DatabaseConfig{
		URI:            cfg.Database.URI,
		Database:       cfg.Database.Database,
		MaxPoolSize:    cfg.Database.MaxPoolSize,
		MinPoolSize:    cfg.Database.MinPoolSize,
		ConnectTimeout: cfg.Database.ConnectTimeout,
		SocketTimeout:  cfg.Database.SocketTimeout,
	})
	if err != nil {
		appLog.WithError(err).Fatal("Failed to connect to MongoDB")
	}
	defer db.Close()

	indexCtx, cancelIndexes := context.WithTimeout(context.Background(), 30*time.Second)
	if err := database.EnsureIndexes(indexCtx, db.Database); err != nil {
		appLog.WithError(err).Fatal("Failed to ensure indexes")
	}
	cancelIndexes()

	// Redis
	redisCache, err := cache.NewRedisCache(&cache.RedisConfig{
		Host:         cfg.Redis.Host,
		Port:         cfg.Redis.Port,
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
		DialTimeout:  cfg.Redis.DialTimeout,
		ReadTimeout:  cfg.Redis.ReadTimeout,
		WriteTimeout: cfg.Redis.WriteTimeout,
	})
	if err != nil {
		appLog.WithError(err).Fatal("Failed to connect to Redis")
	}
	defer redisCache.Close()

	// Repositories
	cacheService := services.NewCacheService(redisCache)
	userRepo := mongodb.NewUserRepository(db.Database)
	rideRepo := mongodb.NewRideRepository(db.Database, cacheService)
	redemptionRepo := mongodb.NewRedemptionRepository(db.Database)

	// Relay
	presence := services.NewPresenceService(userRepo, appLog)
	hub := websocket.NewHub(websocket.NewMemoryRegistry(), presence, appLog)
	relayHandler := websocket.NewHandler(hub)
	observability.RegisterRelayConnections(hub.ConnectedCount)

	// Services
	authService := services.NewAuthService(userRepo, cfg.Security.JWTSecret, appLog)
	userService := services.NewUserService(userRepo, appLog)
	rideService := services.NewRideService(rideRepo, userRepo, hub, appLog)
	tokenService := services.NewTokenService(userRepo, rideRepo, appLog)
	rewardService := services.NewRewardService(userRepo, redemptionRepo, appLog)

	router := routes.SetupRouter(&routes.Handlers{
		Auth:   handlers.NewAuthHandler(authService),
		User:   handlers.NewUserHandler(userService),
		Ride:   handlers.NewRideHandler(rideService),
		Token:  handlers.NewTokenHandler(tokenService),
		Reward: handlers.NewRewardHandler(rewardService),
		Relay:  relayHandler,
	}, cfg.Security.JWTSecret, cfg.Security.CORSAllowedOrigins, appLog)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.App.Port),
		Handler: router,
	}

	go func() {
		appLog.WithField("port", cfg.App.Port).Info("Starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLog.WithError(err).Fatal("Server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLog.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		appLog.WithError(err).Error("Forced shutdown")
	}

	appLog.Info("Server stopped")
}
