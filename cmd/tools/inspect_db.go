package main

import (
	"fmt"

	"github.com/kareemessam09/GeoQuest/internal/config"
	"github.com/kareemessam09/GeoQuest/internal/database"
	"github.com/kareemessam09/GeoQuest/internal/models"
	"github.com/kareemessam09/GeoQuest/pkg/logger"
)

func main() {
	config.LoadConfig()
	logger.Init("development")
	database.Connect()

	tables := []struct {
		name  string
		model interface{}
	}{
		{"players", &models.Player{}},
		{"spawned_treasures", &models.Treasure{}},
		{"inventory_items", &models.InventoryItem{}},
		{"user_stats", &models.UserStats{}},
		{"achievement_unlocks", &models.AchievementUnlock{}},
	}

	for _, t := range tables {
		var count int64
		database.DB.Model(t.model).Count(&count)
		fmt.Printf("%-22s %d\n", t.name, count)
	}

	var uncollected int64
	database.DB.Model(&models.Treasure{}).Where("collected = ?", false).Count(&uncollected)
	fmt.Printf("%-22s %d\n", "active treasures", uncollected)
}
