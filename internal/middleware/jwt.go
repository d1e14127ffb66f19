package middleware

import (
	"expense_tracker/internal/auth"
	"strings"

	"github.com/gin-gonic/gin"
)

// AuthMiddleware validates the bearer token and extracts the caller's identity.
// Every failure class (missing, malformed, expired, bad signature) answers 401
// so callers cannot tell them apart by status code.
func AuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(401, gin.H{"message": "Authentication error", "error": "No token provided"})
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(401, gin.H{"message": "Authentication error", "error": "Invalid authorization format. Use: Bearer <token>"})
			c.Abort()
			return
		}

		claims, err := auth.ValidateToken(parts[1], secret)
		if err != nil {
			c.JSON(401, gin.H{"message": "Authentication error", "error": "Invalid or expired token"})
			c.Abort()
			return
		}

		c.Set(auth.UserIDKey, claims.UserID)
		c.Set(auth.EmailKey, claims.Email)
		c.Next()
	}
}
