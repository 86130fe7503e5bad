package models

import "time"

type RewardType string

const (
	RewardGold         RewardType = "GOLD"
	RewardGem          RewardType = "GEM"
	RewardArtifact     RewardType = "ARTIFACT"
	RewardRareArtifact RewardType = "RARE_ARTIFACT"
)

// Reward is immutable once attached to a treasure.
type Reward struct {
	Type  RewardType `gorm:"column:reward_type;type:text" json:"type"`
	Name  string     `gorm:"column:reward_name" json:"name"`
	Value int        `gorm:"column:reward_value" json:"value"`
}

// Treasure is a spawned treasure around a player. Collected flips one way;
// a collected or expired treasure is excluded from available queries.
type Treasure struct {
	ID        string  `gorm:"primaryKey;type:text" json:"id"`
	PlayerID  string  `gorm:"index;type:text" json:"playerId"`
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`

	Reward Reward `gorm:"embedded" json:"reward"`

	Collected bool      `gorm:"default:false" json:"collected"`
	SpawnedAt time.Time `gorm:"index" json:"spawnedAt"`
}

func (Treasure) TableName() string {
	return "spawned_treasures"
}
