package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/kareemessam09/GeoQuest/internal/handlers"
	"github.com/kareemessam09/GeoQuest/internal/middleware"
)

func RegisterPlayerRoutes(r gin.IRouter) {
	players := r.Group("/players")
	{
		protected := players.Group("/me")
		protected.Use(middleware.AuthMiddleware())
		{
			protected.GET("/inventory", handlers.GetInventory)
			protected.GET("/stats", handlers.GetStats)
			protected.GET("/achievements", handlers.GetAchievements)
			protected.POST("/avatar", handlers.UploadAvatar)
		}
	}

	// Public
	r.GET("/leaderboard", handlers.GetLeaderboard)
}
