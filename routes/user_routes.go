package routes

import (
	"tokenride/internal/handlers"
	"tokenride/internal/middleware"

	"github.com/gin-gonic/gin"
)

// SetupUserRoutes sets up routes for profiles, presence and discovery.
func SetupUserRoutes(r *gin.RouterGroup, userHandler *handlers.UserHandler, jwtSecret string) {
	users := r.Group("/users")
	users.Use(middleware.AuthRequired(jwtSecret))
	{
		users.GET("/profile", userHandler.GetProfile)
		users.PUT("/profile", userHandler.UpdateProfile)
		users.DELETE("/profile", userHandler.Deactivate)

		users.PUT("/location", userHandler.UpdateLocation)
		users.PUT("/availability", userHandler.SetAvailability)
		users.GET("/nearby", userHandler.NearbyUsers)
		users.GET("/stats", userHandler.GetStats)

		users.GET("/:id", userHandler.GetUser)
	}
}
