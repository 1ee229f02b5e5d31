package middleware

import "github.com/gin-gonic/gin"

// SecurityHeaders runs first in the pipeline, independent of any payload.
func SecurityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.Writer.Header()
		header.Set("X-Content-Type-Options", "nosniff")
		header.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		header.Set("Cache-Control", "no-store")
		c.Next()
	}
}
