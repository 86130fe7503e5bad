package seeds

import (
	"log"

	"github.com/kareemessam09/GeoQuest/internal/models"
	"github.com/kareemessam09/GeoQuest/internal/spawn"
)

// Downtown Cairo, where the demo accounts "play".
const (
	seedCenterLat = 30.0444
	seedCenterLon = 31.2357
)

// SeedTreasures gives every demo player an initial treasure field around
// the seed center. Players who already have active treasures are skipped.
func SeedTreasures(spawner *spawn.Spawner, players []models.Player) error {
	for _, p := range players {
		existing, err := spawner.Available(p.ID)
		if err != nil {
			return err
		}
		if len(existing) > 0 {
			log.Printf("   %s already has %d treasures", p.Username, len(existing))
			continue
		}

		spawned, err := spawner.EnsureSpawned(p.ID, seedCenterLat, seedCenterLon)
		if err != nil {
			return err
		}
		if spawned {
			log.Printf("   Spawned treasure field for %s", p.Username)
		}
	}
	return nil
}
