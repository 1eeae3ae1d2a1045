package main

import (
	"log"

	"yarukoto-api/internal/config"
	"yarukoto-api/internal/database"
	"yarukoto-api/internal/routes"
)

func main() {
	cfg := config.Load()

	// Init database
	database.InitDB(cfg.DatabasePath)

	// Setup the routes (public and protected routes)
	ginRoutes := routes.SetupRoutes()

	// Start server
	log.Printf("Server starting on port %s", cfg.Port)
	log.Println("API endpoints:")
	log.Println("  POST   /api/login")
	log.Println("  GET    /api/tasks/today")
	log.Println("  GET    /api/tasks/date/:date")
	log.Println("  GET    /api/tasks/search")
	log.Println("  GET    /api/tasks/stats/monthly")
	log.Println("  POST   /api/tasks")
	log.Println("  PATCH  /api/tasks/:id")
	log.Println("  POST   /api/tasks/:id/complete")
	log.Println("  POST   /api/tasks/:id/uncomplete")
	log.Println("  POST   /api/tasks/:id/skip")
	log.Println("  POST   /api/tasks/:id/unskip")
	log.Println("  DELETE /api/tasks/:id")
	log.Println("  GET    /api/categories")
	log.Println("  POST   /api/categories")
	log.Println("  PATCH  /api/categories/:id")
	log.Println("  DELETE /api/categories/:id")
	log.Println("  GET    /api/ws")
	log.Println("  GET    /health")

	if err := ginRoutes.Run(cfg.Port); err != nil {
		log.Fatal("Failed to start server: ", err)
	}
}
