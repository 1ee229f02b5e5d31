package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/veridoc-app/veridoc/internal/middleware"
)

type RouterDeps struct {
	Documents       *DocumentHandler
	Shares          *ShareHandler
	JWTSecret       []byte
	RateLimitWindow time.Duration
	RateLimitMax    int
}

// RegisterRoutes wires the document surface. Every route runs the full
// pipeline: security headers, input sanitizing, rate limiting, then identity.
func RegisterRoutes(api *gin.RouterGroup, deps RouterDeps) {
	docs := api.Group("/documents")
	docs.Use(
		middleware.SecurityHeaders(),
		middleware.SanitizeInputs(),
		middleware.RateLimit(deps.RateLimitWindow, deps.RateLimitMax),
		middleware.Identity(deps.JWTSecret),
	)

	docs.POST("/upload", deps.Documents.Upload)
	docs.GET("", deps.Documents.List)
	docs.GET("/:id", middleware.DocumentID(), deps.Documents.Get)
	docs.POST("/:id/sign", middleware.DocumentID(), deps.Documents.Sign)
	docs.GET("/:id/download", middleware.DocumentID(), deps.Documents.Download)
	docs.GET("/:id/auditlogs", middleware.DocumentID(), deps.Documents.AuditLogs)
	docs.GET("/:id/verify", middleware.DocumentID(), deps.Documents.Verify)

	docs.GET("/:id/shares", middleware.DocumentID(), deps.Shares.List)
	docs.POST("/:id/shares", middleware.DocumentID(), deps.Shares.Add)
	docs.DELETE("/:documentId/shares/:userId", middleware.DocumentID("documentId", "userId"), deps.Shares.Remove)
}
