package middleware

import (
	"strings"

	"tokenride/internal/models"
	"tokenride/internal/utils"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AuthRequired validates the bearer token and stores the caller's identity
// on the context under "user_id" (ObjectID) and "role" (string).
func AuthRequired(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			utils.UnauthorizedResponse(c, "Authorization header required")
			c.Abort()
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			utils.UnauthorizedResponse(c, "Bearer token required")
			c.Abort()
			return
		}

		claims, err := utils.ValidateToken(tokenString, jwtSecret)
		if err != nil {
			utils.UnauthorizedResponse(c, "Invalid or expired token")
			c.Abort()
			return
		}

		userID, err := claims.UserObjectID()
		if err != nil {
			utils.UnauthorizedResponse(c, "Invalid token subject")
			c.Abort()
			return
		}

		c.Set("user_id", userID)
		c.Set("role", claims.Role)

		c.Next()
	}
}

// DriverCapable requires a role that can offer rides ("driver" or "both").
func DriverCapable() gin.HandlerFunc {
	return requireRole(func(role models.UserRole) bool { return role.CanDrive() }, "Driver access required")
}

// RiderCapable requires a role that can join rides ("rider" or "both").
func RiderCapable() gin.HandlerFunc {
	return requireRole(func(role models.UserRole) bool { return role.CanRide() }, "Rider access required")
}

func requireRole(allowed func(models.UserRole) bool, message string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get("role")
		if !exists {
			utils.UnauthorizedResponse(c, "")
			c.Abort()
			return
		}

		roleStr, ok := role.(string)
		if !ok || !allowed(models.UserRole(roleStr)) {
			utils.ForbiddenResponse(c, message)
			c.Abort()
			return
		}

		c.Next()
	}
}

// CurrentUserID reads the authenticated user's ID set by AuthRequired.
func CurrentUserID(c *gin.Context) (primitive.ObjectID, bool) {
	value, exists := c.Get("user_id")
	if !exists {
		return primitive.NilObjectID, false
	}
	id, ok := value.(primitive.ObjectID)
	return id, ok
}
