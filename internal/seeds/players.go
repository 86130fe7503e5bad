package seeds

import (
	"log"

	"github.com/google/uuid"
	"github.com/kareemessam09/GeoQuest/internal/database"
	"github.com/kareemessam09/GeoQuest/internal/models"
	"golang.org/x/crypto/bcrypt"
)

// demoPlayers are the accounts the dev environment ships with. Password is
// the same for all of them.
var demoPlayers = []struct {
	Username string
	Email    string
}{
	{"explorer_amira", "amira@example.com"},
	{"hunter_omar", "omar@example.com"},
	{"wanderer_lina", "lina@example.com"},
}

const demoPassword = "Treasure2024!"

// SeedPlayers creates the demo accounts if they don't exist and returns
// them for treasure seeding.
func SeedPlayers() ([]models.Player, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(demoPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	out := make([]models.Player, 0, len(demoPlayers))
	for _, d := range demoPlayers {
		var player models.Player
		if err := database.DB.Where("username = ?", d.Username).First(&player).Error; err == nil {
			log.Printf("   Player exists: %s", player.Username)
			out = append(out, player)
			continue
		}

		player = models.Player{
			ID:       uuid.New().String(),
			Username: d.Username,
			Email:    d.Email,
			Password: string(hash),
		}
		if err := database.DB.Create(&player).Error; err != nil {
			return nil, err
		}
		log.Printf("   Created player: %s", player.Username)
		out = append(out, player)
	}
	return out, nil
}
