package models

import "time"

// RequirementKind tags the closed set of achievement requirements. The rule
// engine switches over every kind; the exhaustiveness check lives in its
// test suite rather than the compiler.
type RequirementKind string

const (
	ReqFirstTreasure      RequirementKind = "FIRST_TREASURE"
	ReqTreasuresCollected RequirementKind = "TREASURES_COLLECTED"
	ReqTotalPointsEarned  RequirementKind = "TOTAL_POINTS_EARNED"
	ReqDistanceWalked     RequirementKind = "DISTANCE_WALKED"
	ReqDaysPlayed         RequirementKind = "DAYS_PLAYED"
	ReqSpeedRunner        RequirementKind = "SPEED_RUNNER"
)

// Requirement is a tagged union: Threshold is meaningful for the counted
// kinds and ignored for FIRST_TREASURE and SPEED_RUNNER.
type Requirement struct {
	Kind      RequirementKind `json:"kind"`
	Threshold int             `json:"threshold,omitempty"`
}

// Achievement is a catalog entry plus unlock state derived from the
// persisted AchievementUnlock rows.
type Achievement struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Icon        string      `json:"icon"`
	Requirement Requirement `json:"requirement"`

	Unlocked   bool       `json:"unlocked"`
	UnlockedAt *time.Time `json:"unlockedAt,omitempty"`
}

// AchievementUnlock persists the monotonic unlock state per achievement ID.
type AchievementUnlock struct {
	PlayerID      string    `gorm:"primaryKey;type:text" json:"playerId"`
	AchievementID string    `gorm:"primaryKey;type:text" json:"achievementId"`
	UnlockedAt    time.Time `json:"unlockedAt"`
}

func (AchievementUnlock) TableName() string {
	return "achievement_unlocks"
}

// AchievementCatalog is the fixed, ordered rule set. Evaluation order and
// the "surface only the first of a batch" behavior both depend on this
// ordering staying stable.
var AchievementCatalog = []Achievement{
	{
		ID:          "first_find",
		Title:       "First Discovery",
		Description: "Find your first treasure",
		Icon:        "🎯",
		Requirement: Requirement{Kind: ReqFirstTreasure},
	},
	{
		ID:          "collector_5",
		Title:       "Treasure Hunter",
		Description: "Collect 5 treasures",
		Icon:        "🏆",
		Requirement: Requirement{Kind: ReqTreasuresCollected, Threshold: 5},
	},
	{
		ID:          "collector_10",
		Title:       "Master Explorer",
		Description: "Collect 10 treasures",
		Icon:        "👑",
		Requirement: Requirement{Kind: ReqTreasuresCollected, Threshold: 10},
	},
	{
		ID:          "points_1000",
		Title:       "Getting Rich",
		Description: "Earn 1,000 total points",
		Icon:        "💰",
		Requirement: Requirement{Kind: ReqTotalPointsEarned, Threshold: 1000},
	},
	{
		ID:          "points_5000",
		Title:       "Wealthy Adventurer",
		Description: "Earn 5,000 total points",
		Icon:        "💎",
		Requirement: Requirement{Kind: ReqTotalPointsEarned, Threshold: 5000},
	},
	{
		ID:          "speed_runner",
		Title:       "Speed Runner",
		Description: "Collect a treasure within 1 minute of selecting it",
		Icon:        "⚡",
		Requirement: Requirement{Kind: ReqSpeedRunner},
	},
	{
		ID:          "walker_1km",
		Title:       "Sunday Stroll",
		Description: "Walk 1 kilometer total",
		Icon:        "🚶",
		Requirement: Requirement{Kind: ReqDistanceWalked, Threshold: 1000},
	},
	{
		ID:          "walker_5km",
		Title:       "Marathon Hunter",
		Description: "Walk 5 kilometers total",
		Icon:        "🏃",
		Requirement: Requirement{Kind: ReqDistanceWalked, Threshold: 5000},
	},
}
