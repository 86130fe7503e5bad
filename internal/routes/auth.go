package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/kareemessam09/GeoQuest/internal/handlers"
	"github.com/kareemessam09/GeoQuest/internal/middleware"
)

func RegisterAuthRoutes(r gin.IRouter) {
	r.POST("/register", middleware.AuthRateLimit(), handlers.Register)
	r.POST("/login", middleware.AuthRateLimit(), handlers.Login)
	// Logout needs claims from AuthMiddleware for token revocation.
	r.POST("/logout", middleware.AuthMiddleware(), handlers.Logout)
	r.GET("/me", middleware.AuthMiddleware(), handlers.Me)
}
