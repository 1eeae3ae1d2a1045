package routes

import (
	"yarukoto-api/internal/handlers"
	"yarukoto-api/internal/middleware"

	"github.com/gin-gonic/gin"
)

func SetupRoutes() *gin.Engine {
	ginRouter := gin.Default()

	// CORS middleware (for frontend integration)
	ginRouter.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	// Health check endpoint
	ginRouter.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"message": "Yarukoto API is running",
		})
	})

	// Public routes (no authentication required)
	api := ginRouter.Group("/api")
	{
		api.POST("/login", handlers.Login)
	}

	// Protected routes (authentication required)
	protectedRoutes := api.Group("")
	protectedRoutes.Use(middleware.JWTAuthMiddleware())
	{
		// Task views
		protectedRoutes.GET("/tasks/today", handlers.GetTodayTasks)
		protectedRoutes.GET("/tasks/date/:date", handlers.GetTasksByDate)
		protectedRoutes.GET("/tasks/search", handlers.SearchTasks)
		protectedRoutes.GET("/tasks/stats/monthly", handlers.GetMonthlyTaskStats)
		// Task lifecycle
		protectedRoutes.POST("/tasks", handlers.CreateTask)
		protectedRoutes.PATCH("/tasks/:id", handlers.UpdateTask)
		protectedRoutes.POST("/tasks/:id/complete", handlers.CompleteTask)
		protectedRoutes.POST("/tasks/:id/uncomplete", handlers.UncompleteTask)
		protectedRoutes.POST("/tasks/:id/skip", handlers.SkipTask)
		protectedRoutes.POST("/tasks/:id/unskip", handlers.UnskipTask)
		protectedRoutes.DELETE("/tasks/:id", handlers.DeleteTask)
		// Categories
		protectedRoutes.GET("/categories", handlers.GetCategories)
		protectedRoutes.POST("/categories", handlers.CreateCategory)
		protectedRoutes.PATCH("/categories/:id", handlers.UpdateCategory)
		protectedRoutes.DELETE("/categories/:id", handlers.DeleteCategory)
		// Realtime events
		protectedRoutes.GET("/ws", handlers.WebSocketHandler)
	}

	return ginRouter
}
