package routes

import (
	"tokenride/internal/handlers"
	"tokenride/internal/middleware"

	"github.com/gin-gonic/gin"
)

// SetupTokenRoutes sets up routes for the token ledger.
func SetupTokenRoutes(r *gin.RouterGroup, tokenHandler *handlers.TokenHandler, jwtSecret string) {
	tokens := r.Group("/tokens")
	tokens.Use(middleware.AuthRequired(jwtSecret))
	{
		tokens.GET("/balance", tokenHandler.GetBalance)
		tokens.POST("/add", tokenHandler.AddTokens)
		tokens.POST("/transfer", tokenHandler.TransferTokens)
		tokens.GET("/history", tokenHandler.History)
	}
}
