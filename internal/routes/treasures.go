package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/kareemessam09/GeoQuest/internal/handlers"
	"github.com/kareemessam09/GeoQuest/internal/middleware"
)

func RegisterTreasureRoutes(r gin.IRouter) {
	treasures := r.Group("/treasures")
	treasures.Use(middleware.AuthMiddleware())
	{
		treasures.GET("", handlers.ListTreasures)
		treasures.GET("/:id", handlers.GetTreasure)

		// Out-of-band sharing
		treasures.POST("/share", handlers.ShareTreasures)
		treasures.POST("/import", handlers.ImportTreasures)
	}
}
