package routes

import (
	"tokenride/internal/handlers"
	"tokenride/internal/middleware"

	"github.com/gin-gonic/gin"
)

// SetupRideRoutes sets up routes for the ride lifecycle.
func SetupRideRoutes(r *gin.RouterGroup, rideHandler *handlers.RideHandler, jwtSecret string) {
	rides := r.Group("/rides")
	rides.Use(middleware.AuthRequired(jwtSecret))
	{
		rides.POST("/create", middleware.DriverCapable(), rideHandler.CreateRide)
		rides.GET("/nearby", rideHandler.NearbyRides)
		rides.GET("/history", rideHandler.History)

		rides.GET("/:id", rideHandler.GetRide)
		rides.POST("/:id/join", middleware.RiderCapable(), rideHandler.JoinRide)
		rides.PUT("/:id/status", rideHandler.UpdateStatus)
		rides.POST("/:id/rate", rideHandler.RateRide)
	}
}
