package routes

import (
	"tokenride/internal/handlers"
	"tokenride/internal/middleware"

	"github.com/gin-gonic/gin"
)

// SetupRewardRoutes sets up routes for the reward catalog and redemptions.
func SetupRewardRoutes(r *gin.RouterGroup, rewardHandler *handlers.RewardHandler, jwtSecret string) {
	rewards := r.Group("/rewards")
	rewards.Use(middleware.AuthRequired(jwtSecret))
	{
		rewards.GET("/available", rewardHandler.Catalog)
		rewards.GET("/user/history", rewardHandler.Redemptions)
		rewards.GET("/categories/summary", rewardHandler.CategorySummaries)

		rewards.GET("/:id", rewardHandler.GetReward)
		rewards.POST("/:id/redeem", rewardHandler.Redeem)
	}
}
