package middleware

import (
	"crypto/subtle"

	"github.com/gin-gonic/gin"

	apperrors "wealthtrack/internal/errors"
)

// OperatorAuthMiddleware creates a Gin middleware that validates the X-API-Key
// header against the configured operator API key. An empty key disables the
// guarded routes entirely.
func OperatorAuthMiddleware(apiKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if apiKey == "" {
			abortWithError(c, apperrors.ErrOperatorNotConfigured)
			return
		}
		key := c.GetHeader("X-API-Key")
		if subtle.ConstantTimeCompare([]byte(key), []byte(apiKey)) != 1 {
			abortWithError(c, apperrors.ErrInvalidAPIKey)
			return
		}
		c.Next()
	}
}
