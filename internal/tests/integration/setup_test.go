package integration

import (
	"math/rand"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/kareemessam09/GeoQuest/internal/achievements"
	"github.com/kareemessam09/GeoQuest/internal/config"
	"github.com/kareemessam09/GeoQuest/internal/database"
	"github.com/kareemessam09/GeoQuest/internal/game"
	"github.com/kareemessam09/GeoQuest/internal/handlers"
	"github.com/kareemessam09/GeoQuest/internal/inventory"
	"github.com/kareemessam09/GeoQuest/internal/models"
	"github.com/kareemessam09/GeoQuest/internal/routes"
	"github.com/kareemessam09/GeoQuest/internal/spawn"
	"github.com/kareemessam09/GeoQuest/pkg/logger"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// setupTestServer wires the full HTTP surface over an in-memory database,
// the same way main does it. Handlers use the global database.DB, so the
// override here is what points them at the test database.
func setupTestServer(t *testing.T) (*gin.Engine, *game.Manager) {
	t.Helper()

	config.AppConfig = &config.Config{
		JWTSecret: "test_secret_key_12345",
	}
	logger.Init("test")
	gin.SetMode(gin.TestMode)

	dsn := "file:" + t.Name() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("Failed to open test DB: %v", err)
	}

	if err := db.AutoMigrate(
		&models.Player{},
		&models.Treasure{},
		&models.InventoryItem{},
		&models.UserStats{},
		&models.AchievementUnlock{},
	); err != nil {
		t.Fatalf("Failed to migrate test DB: %v", err)
	}

	database.DB = db

	spawner := spawn.NewSpawner(db, spawn.NewGenerator(rand.New(rand.NewSource(42))))
	inv := inventory.NewRepo(db)
	stats := achievements.NewRepo(db)
	manager := game.NewManager(spawner, inv, stats, game.NewBus())
	handlers.InitGame(manager, spawner, inv, stats)
	t.Cleanup(manager.Shutdown)

	r := gin.New()
	api := r.Group("/api")
	{
		routes.RegisterAuthRoutes(api.Group("/auth"))
		routes.RegisterGameRoutes(api)
		routes.RegisterTreasureRoutes(api)
		routes.RegisterPlayerRoutes(api)
	}

	return r, manager
}
