package inventory

import (
	"time"

	"github.com/kareemessam09/GeoQuest/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repo manages collected items. The insert-if-absent on
// (player_id, treasure_id) is the duplicate-collection guard the collect
// path relies on: whichever writer loses the race sees zero rows affected.
type Repo struct {
	db *gorm.DB
}

func NewRepo(db *gorm.DB) *Repo {
	return &Repo{db: db}
}

// Collect inserts an inventory item for the treasure unless one already
// exists. Returns false (and no error) when the treasure was already
// collected.
func (r *Repo) Collect(playerID string, treasure models.Treasure, lat, lon float64) (bool, error) {
	item := models.InventoryItem{
		PlayerID:           playerID,
		TreasureID:         treasure.ID,
		TreasureName:       treasure.Name,
		Reward:             treasure.Reward,
		CollectedAt:        time.Now(),
		CollectedLatitude:  lat,
		CollectedLongitude: lon,
	}

	res := r.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&item)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// Items returns the player's inventory, newest first.
func (r *Repo) Items(playerID string) ([]models.InventoryItem, error) {
	var items []models.InventoryItem
	err := r.db.
		Where("player_id = ?", playerID).
		Order("collected_at desc").
		Find(&items).Error
	return items, err
}

// TotalValue sums the reward values of everything collected.
func (r *Repo) TotalValue(playerID string) (int, error) {
	var total *int
	err := r.db.Model(&models.InventoryItem{}).
		Where("player_id = ?", playerID).
		Select("SUM(reward_value)").
		Scan(&total).Error
	if err != nil || total == nil {
		return 0, err
	}
	return *total, nil
}

// Count returns how many items the player has collected.
func (r *Repo) Count(playerID string) (int64, error) {
	var count int64
	err := r.db.Model(&models.InventoryItem{}).
		Where("player_id = ?", playerID).
		Count(&count).Error
	return count, err
}
