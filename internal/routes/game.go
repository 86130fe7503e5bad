package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/kareemessam09/GeoQuest/internal/handlers"
	"github.com/kareemessam09/GeoQuest/internal/middleware"
)

func RegisterGameRoutes(r gin.IRouter) {
	game := r.Group("/game")
	game.Use(middleware.AuthMiddleware())
	{
		game.GET("/state", handlers.GetGameState)

		// Event ingestion. Fixes are high frequency and rate limited
		// separately from the rest of the API.
		game.POST("/location", middleware.LocationRateLimit(), handlers.PushLocation)
		game.POST("/geofence", handlers.PushTransition)

		// Hunt control
		game.POST("/select/:id", handlers.SelectTreasure)
		game.POST("/clear", handlers.ClearSelection)
		game.POST("/collect", middleware.CollectRateLimit(), handlers.CollectTreasure)
		game.POST("/respawn", handlers.RespawnTreasures)
	}
}
