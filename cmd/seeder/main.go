package main

import (
	"log"

	"github.com/kareemessam09/GeoQuest/internal/config"
	"github.com/kareemessam09/GeoQuest/internal/database"
	"github.com/kareemessam09/GeoQuest/internal/models"
	"github.com/kareemessam09/GeoQuest/internal/seeds"
	"github.com/kareemessam09/GeoQuest/internal/spawn"
	"github.com/kareemessam09/GeoQuest/pkg/logger"
)

func main() {
	config.LoadConfig()
	logger.Init("development")
	database.Connect()

	log.Println("Running migrations (just in case)...")
	if err := database.DB.AutoMigrate(
		&models.Player{},
		&models.Treasure{},
		&models.InventoryItem{},
		&models.UserStats{},
		&models.AchievementUnlock{},
	); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	log.Println("Seeding demo players...")
	players, err := seeds.SeedPlayers()
	if err != nil {
		log.Fatalf("Failed to seed players: %v", err)
	}

	log.Println("Seeding treasure fields...")
	spawner := spawn.NewSpawner(database.DB, spawn.NewGenerator(nil))
	if err := seeds.SeedTreasures(spawner, players); err != nil {
		log.Fatalf("Failed to seed treasures: %v", err)
	}

	log.Println("Seeding complete")
}
