package models

import "time"

// UserStats is a per-player singleton row of running totals. It is mutated
// only through atomic column updates (x = x + ?) so concurrent writers
// (collect vs. the distance-walked path) never lose increments.
type UserStats struct {
	PlayerID string `gorm:"primaryKey;type:text" json:"playerId"`

	TotalTreasuresCollected int     `gorm:"default:0" json:"totalTreasuresCollected"`
	TotalPointsEarned       int     `gorm:"default:0" json:"totalPointsEarned"`
	TotalDistanceWalked     float64 `gorm:"default:0" json:"totalDistanceWalked"`

	// Milliseconds; nil until the first collection.
	FastestCollectionTimeMs *int64 `json:"fastestCollectionTimeMs"`

	FirstPlayDate time.Time `json:"firstPlayDate"`
	LastPlayDate  time.Time `json:"lastPlayDate"`
}

func (UserStats) TableName() string {
	return "user_stats"
}
