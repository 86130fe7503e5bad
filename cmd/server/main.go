package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kareemessam09/GeoQuest/internal/achievements"
	"github.com/kareemessam09/GeoQuest/internal/config"
	"github.com/kareemessam09/GeoQuest/internal/database"
	"github.com/kareemessam09/GeoQuest/internal/game"
	"github.com/kareemessam09/GeoQuest/internal/handlers"
	"github.com/kareemessam09/GeoQuest/internal/inventory"
	"github.com/kareemessam09/GeoQuest/internal/middleware"
	"github.com/kareemessam09/GeoQuest/internal/migrations"
	"github.com/kareemessam09/GeoQuest/internal/models"
	"github.com/kareemessam09/GeoQuest/internal/routes"
	"github.com/kareemessam09/GeoQuest/internal/spawn"
	"github.com/kareemessam09/GeoQuest/pkg/logger"
)

func main() {
	config.LoadConfig()

	env := config.AppConfig.Environment
	if env == "" {
		env = "development"
	}
	logger.Init(env)

	logger.Info().Str("environment", env).Msg("Starting GeoQuest Backend...")

	if env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	database.Connect()
	database.InitRedis()

	logger.Info().Msg("Running database migrations...")
	if err := database.DB.AutoMigrate(
		&models.Player{},
		&models.Treasure{},
		&models.InventoryItem{},
		&models.UserStats{},
		&models.AchievementUnlock{},
	); err != nil {
		logger.Fatal().Err(err).Msg("Failed to run database migrations")
	}
	if err := migrations.NewMigrator(database.DB).Run(); err != nil {
		logger.Fatal().Err(err).Msg("Failed to run versioned migrations")
	}
	logger.Info().Msg("Database migrations complete")

	// Game layer wiring
	spawner := spawn.NewSpawner(database.DB, spawn.NewGenerator(nil))
	inv := inventory.NewRepo(database.DB)
	stats := achievements.NewRepo(database.DB)
	manager := game.NewManager(spawner, inv, stats, game.NewBus())
	manager.SinkFactory = handlers.NewSocketSinks
	handlers.InitGame(manager, spawner, inv, stats)

	r := gin.New()

	r.Use(middleware.LoggingMiddleware())
	r.Use(middleware.ErrorHandlerMiddleware())
	r.Use(gin.Recovery())
	r.Use(middleware.CORSMiddleware())

	// Exempt /socket.io and the location endpoint from the general limit;
	// they carry their own.
	r.Use(func(c *gin.Context) {
		path := c.Request.URL.Path
		if len(path) >= 10 && path[:10] == "/socket.io" {
			c.Next()
			return
		}
		if path == "/api/game/location" {
			c.Next()
			return
		}
		middleware.GeneralRateLimit()(c)
	})

	api := r.Group("/api")
	{
		auth := api.Group("/auth")
		routes.RegisterAuthRoutes(auth)

		routes.RegisterGameRoutes(api)
		routes.RegisterTreasureRoutes(api)
		routes.RegisterPlayerRoutes(api)
	}

	r.GET("/health", func(c *gin.Context) {
		dbStatus := "ok"
		redisStatus := "ok"

		sqlDB, err := database.DB.DB()
		if err != nil || sqlDB.Ping() != nil {
			dbStatus = "error"
		}

		if database.Redis != nil {
			if _, err := database.Redis.Ping(context.Background()).Result(); err != nil {
				redisStatus = "error"
			}
		} else {
			redisStatus = "not configured"
		}

		status := "ok"
		if dbStatus != "ok" {
			status = "degraded"
		}

		c.JSON(200, gin.H{
			"status": status,
			"checks": gin.H{
				"database": dbStatus,
				"redis":    redisStatus,
			},
		})
	})

	socketServer := handlers.InitSocketServer()
	defer socketServer.Close()

	r.GET("/socket.io/*any", handlers.SocketHandler(socketServer))
	r.POST("/socket.io/*any", handlers.SocketHandler(socketServer))

	port := config.AppConfig.Port
	if port == "" {
		port = "8080"
	}

	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().Str("port", port).Str("env", env).Msg("Server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("Shutting down server gracefully...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	// Sessions drain after the HTTP surface stops accepting work.
	manager.Shutdown()

	logger.Info().Msg("Server exited gracefully")
}
