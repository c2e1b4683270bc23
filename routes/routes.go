package routes

import (
	"document-entry-api/controllers"
	"document-entry-api/middleware"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(router *gin.Engine) {
	// API v1 group
	v1 := router.Group("/api/v1")
	{
		// Public routes
		public := v1.Group("")
		{
			// Authentication
			public.POST("/login", controllers.Login)

			// Health check
			public.GET("/health", func(c *gin.Context) {
				c.JSON(200, gin.H{
					"status":  "ok",
					"message": "Document Entry API is running",
				})
			})
		}

		// Protected routes (require authentication)
		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware())
		{
			// User profile
			protected.GET("/profile", controllers.GetProfile)
			protected.PUT("/change-password", controllers.ChangePassword)

			// Document entry work
			work := protected.Group("/document-entry-work")
			{
				work.GET("", controllers.ListDocumentEntryWork)
				work.GET("/summary", controllers.GetDocumentEntrySummary)
				work.GET("/latest/:build/:year/:month", controllers.GetLatestDocumentEntryWork)
				work.GET("/:id", controllers.GetDocumentEntryWork)
				work.POST("", controllers.CreateDocumentEntryWork)
				work.PUT("/:id", controllers.UpdateDocumentEntryWork)
				work.PATCH("/:id/status", controllers.UpdateEntryStatus)
				work.POST("/:id/status/start-all", controllers.StartAllEntryStatuses)
				work.POST("/:id/status/complete-all", controllers.CompleteAllEntryStatuses)
			}
		}
	}
}
