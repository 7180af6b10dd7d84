package api

import (
	"github.com/Doc-Sharing-PeerDocs/Docgen-Service/cmd/middleware"
	"github.com/Doc-Sharing-PeerDocs/Docgen-Service/internal/api/handlers"
	"github.com/Doc-Sharing-PeerDocs/Docgen-Service/internal/metrics"
	"github.com/gin-gonic/gin"
)

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, PATCH, PUT, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Office-Token")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(200)
			return
		}
		c.Next()
	}
}

func RegisterRoutes(r *gin.Engine) {
	// Enable CORS for preflight requests
	r.Use(corsMiddleware())

	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	api := r.Group("/api")
	{
		api.GET("/health", handlers.HealthCheck)

		authed := api.Group("", middleware.RequireAuth())
		{
			authed.POST("/templates/validate", handlers.ValidateTemplate)    // advisory token check
			authed.POST("/documents/generate", handlers.GenerateDocument)    // one recipient per call
			authed.POST("/documents/share", handlers.ShareDocument)          // idempotent single share
			authed.POST("/documents/share/bulk", handlers.ShareDocumentBulk) // concurrent fan-out
			authed.GET("/documents", handlers.ListDocuments)                 // caller's artifacts
		}
	}
}
