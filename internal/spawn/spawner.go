package spawn

import (
	"sync"
	"time"

	"github.com/kareemessam09/GeoQuest/internal/models"
	"github.com/kareemessam09/GeoQuest/pkg/logger"
	"github.com/kareemessam09/GeoQuest/pkg/utils"
	"gorm.io/gorm"
)

// RespawnInterval is how long a spawned treasure stays in the world before
// expiry makes room for a fresh batch.
const RespawnInterval = 24 * time.Hour

// Spawner keeps each player's available-treasure population within
// [MinTreasures, MaxTreasures] and enforces the respawn window.
type Spawner struct {
	db  *gorm.DB
	gen *Generator

	// Guards against double spawn batches when EnsureSpawned is called
	// twice in quick succession for the same player. In-process only; this
	// is a single-player engine, not a distributed one.
	mu       sync.Mutex
	inFlight map[string]bool
}

func NewSpawner(db *gorm.DB, gen *Generator) *Spawner {
	return &Spawner{
		db:       db,
		gen:      gen,
		inFlight: make(map[string]bool),
	}
}

// Available returns the player's not-collected, not-expired treasures.
func (s *Spawner) Available(playerID string) ([]models.Treasure, error) {
	cutoff := time.Now().Add(-RespawnInterval)
	var treasures []models.Treasure
	err := s.db.
		Where("player_id = ? AND collected = ? AND spawned_at > ?", playerID, false, cutoff).
		Find(&treasures).Error
	return treasures, err
}

// Get returns a single treasure by ID, nil when absent.
func (s *Spawner) Get(treasureID string) (*models.Treasure, error) {
	var t models.Treasure
	err := s.db.Where("id = ?", treasureID).First(&t).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// EnsureSpawned expires old treasures and, when the available count has
// dropped below MinTreasures, persists a fresh batch around the player.
// Returns whether a spawn occurred.
func (s *Spawner) EnsureSpawned(playerID string, centerLat, centerLon float64) (bool, error) {
	s.mu.Lock()
	if s.inFlight[playerID] {
		s.mu.Unlock()
		return false, nil
	}
	s.inFlight[playerID] = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.inFlight, playerID)
		s.mu.Unlock()
	}()

	cutoff := time.Now().Add(-RespawnInterval)
	if err := s.db.
		Where("player_id = ? AND spawned_at < ?", playerID, cutoff).
		Delete(&models.Treasure{}).Error; err != nil {
		return false, err
	}

	var count int64
	if err := s.db.Model(&models.Treasure{}).
		Where("player_id = ? AND collected = ?", playerID, false).
		Count(&count).Error; err != nil {
		return false, err
	}

	if count >= MinTreasures {
		return false, nil
	}

	if err := s.spawnBatch(playerID, centerLat, centerLon, s.gen.BatchSize()); err != nil {
		return false, err
	}
	return true, nil
}

// Respawn wipes the player's treasures and spawns a fresh batch. Used for
// manual refresh.
func (s *Spawner) Respawn(playerID string, centerLat, centerLon float64) error {
	if err := s.db.Where("player_id = ?", playerID).Delete(&models.Treasure{}).Error; err != nil {
		return err
	}
	return s.spawnBatch(playerID, centerLat, centerLon, s.gen.BatchSize())
}

// MarkCollected flips the collected flag. One-way; safe to call once per
// successful collection.
func (s *Spawner) MarkCollected(treasureID string) error {
	return s.db.Model(&models.Treasure{}).
		Where("id = ?", treasureID).
		Update("collected", true).Error
}

// ImportShared inserts treasures received through a share code at their
// shared coordinates, rolling fresh rewards. Treasures the player already
// has at the same spot are skipped. Returns how many were imported.
func (s *Spawner) ImportShared(playerID string, shared []SharedLocation) (int, error) {
	existing, err := s.Available(playerID)
	if err != nil {
		return 0, err
	}

	var batch []models.Treasure
	now := time.Now()
	for _, st := range shared {
		duplicate := false
		for _, t := range existing {
			if t.Name == st.Name && t.Latitude == st.Latitude && t.Longitude == st.Longitude {
				duplicate = true
				break
			}
		}
		if duplicate {
			continue
		}

		batch = append(batch, models.Treasure{
			ID:        utils.GenerateTreasureID(),
			PlayerID:  playerID,
			Name:      st.Name,
			Latitude:  st.Latitude,
			Longitude: st.Longitude,
			Reward:    s.gen.PickWeightedReward(),
			SpawnedAt: now,
		})
	}

	if len(batch) == 0 {
		return 0, nil
	}
	if err := s.db.Create(&batch).Error; err != nil {
		return 0, err
	}
	return len(batch), nil
}

// SharedLocation is a (name, lat, lon) triple received from another player.
type SharedLocation struct {
	Name      string
	Latitude  float64
	Longitude float64
}

// spawnBatch generates and persists count treasures in a single insert so a
// failed write leaves no partial batch behind.
func (s *Spawner) spawnBatch(playerID string, centerLat, centerLon float64, count int) error {
	usedNames := make(map[string]bool)
	now := time.Now()

	batch := make([]models.Treasure, 0, count)
	for i := 0; i < count; i++ {
		lat, lon := s.gen.GeneratePosition(centerLat, centerLon)
		batch = append(batch, models.Treasure{
			ID:        utils.GenerateTreasureID(),
			PlayerID:  playerID,
			Name:      s.gen.pickName(usedNames),
			Latitude:  lat,
			Longitude: lon,
			Reward:    s.gen.PickWeightedReward(),
			SpawnedAt: now,
		})
	}

	if err := s.db.Create(&batch).Error; err != nil {
		return err
	}

	logger.Info().
		Str("player", playerID).
		Int("count", count).
		Msg("Spawned treasure batch")
	return nil
}
