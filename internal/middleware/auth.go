package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"taskflow/internal/apperrors"
	"taskflow/internal/constants"
	"taskflow/internal/services"
)

// RequireAuth checks for a valid bearer token and stores the authenticated
// user's ID in the request context.
func RequireAuth(authService *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			apperrors.Unauthorized(c, "Authorization header is required")
			c.Abort()
			return
		}

		// Expected format: "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			apperrors.Unauthorized(c, "Authorization header format must be 'Bearer <token>'")
			c.Abort()
			return
		}

		userID, err := authService.ValidateToken(parts[1])
		if err != nil {
			apperrors.Unauthorized(c, "Invalid or expired token")
			c.Abort()
			return
		}

		c.Set(constants.ContextKeyUserID, userID)
		c.Next()
	}
}

// GetUserID retrieves the current user ID from context
func GetUserID(c *gin.Context) (string, bool) {
	value, exists := c.Get(constants.ContextKeyUserID)
	if !exists {
		return "", false
	}

	userID, ok := value.(string)
	if !ok || userID == "" {
		return "", false
	}
	return userID, true
}
