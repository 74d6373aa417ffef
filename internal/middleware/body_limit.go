package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "wealthtrack/internal/errors"
)

// BodyLimit caps request bodies at maxBytes. Requests announcing a larger
// Content-Length are rejected up front; others fail while the handler reads.
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxBytes {
			abortWithError(c, apperrors.ErrPayloadTooLarge)
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
