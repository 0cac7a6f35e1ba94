package routes

import (
	"net/http"

	"tokenride/internal/handlers"
	"tokenride/internal/middleware"
	"tokenride/internal/observability"
	"tokenride/internal/utils"
	"tokenride/pkg/logger"
	"tokenride/pkg/websocket"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handlers bundles everything the router mounts.
type Handlers struct {
	Auth   *handlers.AuthHandler
	User   *handlers.UserHandler
	Ride   *handlers.RideHandler
	Token  *handlers.TokenHandler
	Reward *handlers.RewardHandler
	Relay  *websocket.Handler
}

// SetupRouter assembles the full HTTP surface: REST API under /api, the
// relay under /ws, plus health and metrics endpoints.
func SetupRouter(h *Handlers, jwtSecret string, corsOrigins []string, log *logger.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.CORSMiddleware(corsOrigins))
	router.Use(middleware.RequestLogger(log))
	router.Use(observability.GinMiddleware())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": utils.AppName,
			"version": utils.AppVersion,
		})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api")
	SetupAuthRoutes(api, h.Auth)
	SetupUserRoutes(api, h.User, jwtSecret)
	SetupRideRoutes(api, h.Ride, jwtSecret)
	SetupTokenRoutes(api, h.Token, jwtSecret)
	SetupRewardRoutes(api, h.Reward, jwtSecret)

	router.GET("/ws", middleware.AuthRequired(jwtSecret), h.Relay.HandleWebSocket)

	return router
}
