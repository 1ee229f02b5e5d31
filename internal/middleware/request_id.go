package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/veridoc-app/veridoc/internal/idgen"
)

const ContextRequestIDKey = "request_id"

// RequestID echoes the caller-supplied X-Request-Id or mints one, so audit
// trails and logs can be correlated across services.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-Id")
		if requestID == "" {
			requestID = idgen.RandomHex(16)
		}
		c.Writer.Header().Set("X-Request-Id", requestID)
		c.Set(ContextRequestIDKey, requestID)
		c.Next()
	}
}
