package models

import "time"

// InventoryItem records a collected treasure. The unique index on
// (player_id, treasure_id) is the duplicate-collection guard: the collect
// path inserts with ON CONFLICT DO NOTHING semantics and treats a missed
// insert as an already-collected treasure.
type InventoryItem struct {
	ID         uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	PlayerID   string `gorm:"uniqueIndex:idx_player_treasure;type:text" json:"playerId"`
	TreasureID string `gorm:"uniqueIndex:idx_player_treasure;type:text" json:"treasureId"`

	TreasureName string `json:"treasureName"`
	Reward       Reward `gorm:"embedded" json:"reward"`

	CollectedAt        time.Time `json:"collectedAt"`
	CollectedLatitude  float64   `json:"collectedLatitude"`
	CollectedLongitude float64   `json:"collectedLongitude"`
}

func (InventoryItem) TableName() string {
	return "inventory_items"
}
